package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/quayside/hoist"
	"github.com/quayside/hoist/pipeline"
	"github.com/quayside/hoist/registry"
)

func runBinaries(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("binaries: want create, get, list, or update")
	}
	switch args[0] {
	case "create":
		return runBinariesCreate(ctx, args[1:])
	case "get":
		return runBinariesGet(ctx, args[1:])
	case "list":
		return runBinariesList(ctx, args[1:])
	case "update":
		return runBinariesUpdate(ctx, args[1:])
	default:
		return fmt.Errorf("binaries: unknown command %q", args[0])
	}
}

func runBinariesCreate(ctx context.Context, args []string) error {
	var (
		g              globalOptions
		versionPRN     string
		target         string
		contentPath    string
		hash           string
		size           uint64
		id             string
		description    string
		signingKeyPRN  string
		privateKeyPath string
		signingKeyPair string
	)
	fs := pflag.NewFlagSet("binaries create", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&versionPRN, "artifact-version-prn", "", "owning artifact version PRN (required)")
	fs.StringVar(&target, "target", "", "target compatibility label (required)")
	fs.StringVar(&contentPath, "content-path", "", "path to the binary content")
	fs.StringVar(&hash, "hash", "", "explicit lowercase hex SHA-256 (with --size, instead of content)")
	fs.Uint64Var(&size, "size", 0, "explicit content size in bytes")
	fs.StringVar(&id, "id", "", "binary id (registry-assigned if omitted)")
	fs.StringVar(&description, "description", "", "binary description")
	fs.StringVar(&signingKeyPRN, "signing-key-prn", "", "signing key PRN")
	fs.StringVar(&privateKeyPath, "signing-key-private-key", "", "PEM PKCS #8 ed25519 private key path")
	fs.StringVar(&signingKeyPair, "signing-key-pair", "", "named signing key pair from the config file")
	fs.Uint64Var(&g.partSize, "binary-part-size", 0, "upload chunk size in bytes")
	fs.IntVar(&g.concurrency, "concurrency", 0, "upload chunks in flight")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if versionPRN == "" || target == "" {
		return fmt.Errorf("binaries create: --artifact-version-prn and --target are required")
	}
	if (signingKeyPRN == "") != (privateKeyPath == "") {
		return fmt.Errorf("binaries create: --signing-key-prn and --signing-key-private-key go together")
	}
	if signingKeyPair != "" {
		if signingKeyPRN != "" {
			return fmt.Errorf("binaries create: --signing-key-pair conflicts with --signing-key-prn")
		}
		pair, err := loadSigningKeyPair(g.configPath, signingKeyPair)
		if err != nil {
			return err
		}
		signingKeyPRN = pair.SigningKeyPRN
		privateKeyPath = pair.PrivateKeyPath
	}

	c, err := g.client()
	if err != nil {
		return err
	}

	req := hoist.CreateBinaryRequest{
		ArtifactVersionPRN: versionPRN,
		Target:             target,
		ContentPath:        contentPath,
		Hash:               hash,
		Size:               size,
		ID:                 id,
		Description:        description,
	}
	if signingKeyPRN != "" {
		req.Signatures = []pipeline.SignatureConfig{
			pipeline.FromPrivateKey(signingKeyPRN, privateKeyPath),
		}
	}

	binary, err := c.CreateBinary(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(binary)
}

func runBinariesGet(ctx context.Context, args []string) error {
	var (
		g   globalOptions
		prn string
	)
	fs := pflag.NewFlagSet("binaries get", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&prn, "prn", "", "binary PRN (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if prn == "" {
		return fmt.Errorf("binaries get: --prn is required")
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	binary, err := c.Registry().GetBinary(ctx, prn)
	if err != nil {
		return err
	}
	return printJSON(binary)
}

func runBinariesList(ctx context.Context, args []string) error {
	var (
		g      globalOptions
		search string
		limit  int
		page   string
	)
	fs := pflag.NewFlagSet("binaries list", pflag.ContinueOnError)
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
	binaries, next, err := c.Registry().ListBinaries(ctx, registry.ListParams{
		Search: search,
		Limit:  limit,
		Page:   page,
	})
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"binaries": binaries, "next_page": next})
}

func runBinariesUpdate(ctx context.Context, args []string) error {
	var (
		g           globalOptions
		prn         string
		state       string
		description string
	)
	fs := pflag.NewFlagSet("binaries update", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&prn, "prn", "", "binary PRN (required)")
	fs.StringVar(&state, "state", "", "target lifecycle state")
	fs.StringVar(&description, "description", "", "binary description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if prn == "" {
		return fmt.Errorf("binaries update: --prn is required")
	}

	var params registry.UpdateBinaryParams
	if state != "" {
		s := registry.BinaryState(state)
		if !s.Known() {
			return fmt.Errorf("binaries update: unknown state %q", state)
		}
		params.State = &s
	}
	if fs.Changed("description") {
		params.Description = &description
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	binary, err := c.Registry().UpdateBinary(ctx, prn, params)
	if err != nil {
		return err
	}
	return printJSON(binary)
}

func runWhoami(ctx context.Context, args []string) error {
	var g globalOptions
	fs := pflag.NewFlagSet("whoami", pflag.ContinueOnError)
	g.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	user, err := c.Registry().Me(ctx)
	if err != nil {
		return err
	}
	return printJSON(user)
}
