package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/quayside/hoist"
)

const usageText = `Usage: hoist <resource> <command> [flags]

Resources:
  binaries           create, get, list, update
  bundles            push, pull
  artifacts          create, get, list, delete
  artifact-versions  create, get, list, delete
  whoami             show the authenticated identity

Global flags (any command):
      --base-url string     registry API base URL
      --api-key string      registry API key
      --api-version int     registry API version (default 2)
      --profile string      named profile from the config file
      --config string       config file path (default ~/.config/hoist/config.json)
  -v, --verbose             log progress to stderr
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "hoist: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "binaries":
		return runBinaries(ctx, args[1:])
	case "bundles":
		return runBundles(ctx, args[1:])
	case "artifacts":
		return runArtifacts(ctx, args[1:])
	case "artifact-versions":
		return runArtifactVersions(ctx, args[1:])
	case "whoami":
		return runWhoami(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Print(usageText)
		return nil
	default:
		fmt.Fprint(os.Stderr, usageText)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// globalOptions are the flags every command accepts.
type globalOptions struct {
	baseURL     string
	apiKey      string
	apiVersion  int
	profile     string
	configPath  string
	verbose     bool
	partSize    uint64
	concurrency int
}

// register adds the global flags to a command's flag set.
func (g *globalOptions) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.baseURL, "base-url", "", "registry API base URL")
	fs.StringVar(&g.apiKey, "api-key", "", "registry API key")
	fs.IntVar(&g.apiVersion, "api-version", 0, "registry API version")
	fs.StringVar(&g.profile, "profile", "", "named profile from the config file")
	fs.StringVar(&g.configPath, "config", "", "config file path")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "log progress to stderr")
}

// client resolves configuration (flags override the profile) and builds
// the high-level client.
func (g *globalOptions) client() (*hoist.Client, error) {
	if g.profile != "" || g.baseURL == "" {
		profile, err := loadProfile(g.configPath, g.profile)
		if err != nil {
			return nil, err
		}
		if g.baseURL == "" {
			g.baseURL = profile.BaseURL
		}
		if g.apiKey == "" {
			g.apiKey = profile.APIKey
		}
		if g.apiVersion == 0 {
			g.apiVersion = profile.APIVersion
		}
	}
	if g.baseURL == "" {
		return nil, fmt.Errorf("no base URL: pass --base-url or configure a profile")
	}

	opts := []hoist.Option{
		hoist.WithBaseURL(g.baseURL),
		hoist.WithAPIKey(g.apiKey),
	}
	if g.apiVersion != 0 {
		opts = append(opts, hoist.WithAPIVersion(g.apiVersion))
	}
	if g.partSize > 0 {
		opts = append(opts, hoist.WithPartSize(g.partSize))
	}
	if g.concurrency > 0 {
		opts = append(opts, hoist.WithConcurrency(g.concurrency))
	}
	if g.verbose {
		opts = append(opts, hoist.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))))
	}
	return hoist.NewClient(opts...)
}

// printJSON writes a result to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
