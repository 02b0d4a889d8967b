// Package cmd implements the dex CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/app"
	"github.com/derickschaefer/dex/internal/config"
	"github.com/derickschaefer/dex/internal/render"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	Format      string
	Out         string
	Timeout     string
	Concurrency int
	Rate        float64
	Language    string
	Quiet       bool
	Verbose     bool
	Debug       bool
}

// rootCmd is the base command. Running `dex` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "dex",
	Short: "dex — a command-line Pokédex backed by PokeAPI",
	Long: `dex is a command-line tool for browsing, filtering and searching the
Pokémon catalog published by PokeAPI (https://pokeapi.co/).

Quick start:
  dex list                     # first page of the catalog
  dex type fire                # every fire-type entry
  dex search chu               # exact lookup, then substring search
  dex get pikachu --tab stats  # one entry in detail
  dex browse                   # interactive session`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(globalFlags.Debug)
		if globalFlags.Format != "" && !render.ValidFormat(globalFlags.Format) {
			return fmt.Errorf("unknown format %q (valid: table|json|jsonl|csv|tsv|md|yaml)", globalFlags.Format)
		}
		return nil
	},
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setupLogging installs the process-wide slog handler on stderr.
func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug

	if globalFlags.Format != "" {
		cfg.Format = globalFlags.Format
	}
	if globalFlags.Timeout != "" {
		d, err := time.ParseDuration(globalFlags.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", globalFlags.Timeout, err)
		}
		cfg.Timeout = d
	}
	if globalFlags.Concurrency > 0 {
		cfg.Concurrency = globalFlags.Concurrency
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}
	if globalFlags.Language != "" {
		cfg.Language = globalFlags.Language
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(cfg), nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv|tsv|md|yaml (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 30s, 2m); unset waits on the transport")
	pf.IntVar(&globalFlags.Concurrency, "concurrency", 0,
		"max parallel detail requests (default: 8)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: unlimited)")
	pf.StringVar(&globalFlags.Language, "lang", "",
		"language for localized text such as descriptions (default: es)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show item counts and timing after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and state transitions to stderr")
}
