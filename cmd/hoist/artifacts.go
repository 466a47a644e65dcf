package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/quayside/hoist/registry"
)

func runArtifacts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("artifacts: want create, get, list, or delete")
	}
	switch args[0] {
	case "create":
		return runArtifactsCreate(ctx, args[1:])
	case "get":
		return runArtifactsGet(ctx, args[1:])
	case "list":
		return runArtifactsList(ctx, args[1:])
	case "delete":
		return runArtifactsDelete(ctx, args[1:])
	default:
		return fmt.Errorf("artifacts: unknown command %q", args[0])
	}
}

func runArtifactsCreate(ctx context.Context, args []string) error {
	var (
		g           globalOptions
		name        string
		id          string
		description string
	)
	fs := pflag.NewFlagSet("artifacts create", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&name, "name", "", "artifact name (required)")
	fs.StringVar(&id, "id", "", "artifact id (registry-assigned if omitted)")
	fs.StringVar(&description, "description", "", "artifact description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("artifacts create: --name is required")
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	artifact, err := c.Registry().CreateArtifact(ctx, registry.CreateArtifactParams{
		Name:        name,
		ID:          id,
		Description: description,
	})
	if err != nil {
		return err
	}
	return printJSON(artifact)
}

func runArtifactsGet(ctx context.Context, args []string) error {
	var (
		g   globalOptions
		prn string
	)
	fs := pflag.NewFlagSet("artifacts get", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&prn, "prn", "", "artifact PRN (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if prn == "" {
		return fmt.Errorf("artifacts get: --prn is required")
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	artifact, err := c.Registry().GetArtifact(ctx, prn)
	if err != nil {
		return err
	}
	return printJSON(artifact)
}

func runArtifactsList(ctx context.Context, args []string) error {
	var (
		g      globalOptions
		search string
		limit  int
		page   string
	)
	fs := pflag.NewFlagSet("artifacts list", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&search, "search", "", "search expression")
	fs.IntVar(&limit, "limit", 0, "page size")
	fs.StringVar(&page, "page", "", "pagination cursor")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	artifacts, next, err := c.Registry().ListArtifacts(ctx, registry.ListParams{
		Search: search,
		Limit:  limit,
		Page:   page,
	})
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"artifacts": artifacts, "next_page": next})
}

func runArtifactsDelete(ctx context.Context, args []string) error {
	var (
		g   globalOptions
		prn string
	)
	fs := pflag.NewFlagSet("artifacts delete", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&prn, "prn", "", "artifact PRN (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if prn == "" {
		return fmt.Errorf("artifacts delete: --prn is required")
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	return c.Registry().DeleteArtifact(ctx, prn)
}

func runArtifactVersions(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("artifact-versions: want create, get, list, or delete")
	}
	switch args[0] {
	case "create":
		return runArtifactVersionsCreate(ctx, args[1:])
	case "get":
		return runArtifactVersionsGet(ctx, args[1:])
	case "list":
		return runArtifactVersionsList(ctx, args[1:])
	case "delete":
		return runArtifactVersionsDelete(ctx, args[1:])
	default:
		return fmt.Errorf("artifact-versions: unknown command %q", args[0])
	}
}

func runArtifactVersionsCreate(ctx context.Context, args []string) error {
	var (
		g           globalOptions
		artifactPRN string
		version     string
		id          string
		description string
	)
	fs := pflag.NewFlagSet("artifact-versions create", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&artifactPRN, "artifact-prn", "", "owning artifact PRN (required)")
	fs.StringVar(&version, "version", "", "version string (required)")
	fs.StringVar(&id, "id", "", "version id (registry-assigned if omitted)")
	fs.StringVar(&description, "description", "", "version description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if artifactPRN == "" || version == "" {
		return fmt.Errorf("artifact-versions create: --artifact-prn and --version are required")
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	created, err := c.Registry().CreateArtifactVersion(ctx, registry.CreateArtifactVersionParams{
		ArtifactPRN: artifactPRN,
		Version:     version,
		ID:          id,
		Description: description,
	})
	if err != nil {
		return err
	}
	return printJSON(created)
}

func runArtifactVersionsGet(ctx context.Context, args []string) error {
	var (
		g   globalOptions
		prn string
	)
	fs := pflag.NewFlagSet("artifact-versions get", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&prn, "prn", "", "artifact version PRN (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if prn == "" {
		return fmt.Errorf("artifact-versions get: --prn is required")
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	version, err := c.Registry().GetArtifactVersion(ctx, prn)
	if err != nil {
		return err
	}
	return printJSON(version)
}

func runArtifactVersionsList(ctx context.Context, args []string) error {
	var (
		g      globalOptions
		search string
		limit  int
		page   string
	)
	fs := pflag.NewFlagSet("artifact-versions list", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&search, "search", "", "search expression")
	fs.IntVar(&limit, "limit", 0, "page size")
	fs.StringVar(&page, "page", "", "pagination cursor")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	versions, next, err := c.Registry().ListArtifactVersions(ctx, registry.ListParams{
		Search: search,
		Limit:  limit,
		Page:   page,
	})
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"artifact_versions": versions, "next_page": next})
}

func runArtifactVersionsDelete(ctx context.Context, args []string) error {
	var (
		g   globalOptions
		prn string
	)
	fs := pflag.NewFlagSet("artifact-versions delete", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&prn, "prn", "", "artifact version PRN (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if prn == "" {
		return fmt.Errorf("artifact-versions delete: --prn is required")
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	return c.Registry().DeleteArtifactVersion(ctx, prn)
}
