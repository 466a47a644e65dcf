package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
)

func runBundles(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("bundles: want push or pull")
	}
	switch args[0] {
	case "push":
		return runBundlesPush(ctx, args[1:])
	case "pull":
		return runBundlesPull(ctx, args[1:])
	default:
		return fmt.Errorf("bundles: unknown command %q", args[0])
	}
}

func runBundlesPush(ctx context.Context, args []string) error {
	var (
		g    globalOptions
		path string
	)
	fs := pflag.NewFlagSet("bundles push", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVarP(&path, "path", "p", "", "bundle archive path (required)")
	fs.Uint64Var(&g.partSize, "binary-part-size", 0, "upload chunk size in bytes")
	fs.IntVar(&g.concurrency, "concurrency", 0, "upload chunks in flight")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("bundles push: --path is required")
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	pushed, err := c.Push(ctx, path)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"prn": pushed.ResourceName(), "name": pushed.BundleName()})
}

func runBundlesPull(ctx context.Context, args []string) error {
	var (
		g      globalOptions
		prn    string
		output string
	)
	fs := pflag.NewFlagSet("bundles pull", pflag.ContinueOnError)
	g.register(fs)
	fs.StringVar(&prn, "bundle-prn", "", "bundle PRN (required)")
	fs.StringVarP(&output, "output", "o", "", "output archive path (derived from the bundle name if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if prn == "" {
		return fmt.Errorf("bundles pull: --bundle-prn is required")
	}

	c, err := g.client()
	if err != nil {
		return err
	}
	written, err := c.Pull(ctx, prn, output)
	if err != nil {
		return err
	}
	fmt.Println(written)
	return nil
}
