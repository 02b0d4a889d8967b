package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/derickschaefer/dex/internal/config"
	"github.com/derickschaefer/dex/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dex configuration",
	Long: `Read and write dex configuration stored in config.json in the current
directory. Environment variables (DEX_BASE_URL, DEX_DB_PATH, DEX_LANGUAGE)
override the file; global flags override both.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
		return nil
	},
}

// configView is the resolved configuration as shown by `config show`.
type configView struct {
	BaseURL     string  `json:"base_url" yaml:"base_url"`
	Format      string  `json:"default_format" yaml:"default_format"`
	Timeout     string  `json:"timeout" yaml:"timeout"`
	Concurrency int     `json:"concurrency" yaml:"concurrency"`
	Rate        float64 `json:"rate" yaml:"rate"`
	PageSize    int     `json:"page_size" yaml:"page_size"`
	BulkLimit   int     `json:"bulk_limit" yaml:"bulk_limit"`
	Language    string  `json:"language" yaml:"language"`
	DBPath      string  `json:"db_path" yaml:"db_path"`
	ConfigFile  string  `json:"config_file" yaml:"config_file"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		cfg := deps.Config

		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}
		timeout := "none"
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout.String()
		}
		rate := "unlimited"
		if cfg.Rate > 0 {
			rate = fmt.Sprintf("%.1f req/s", cfg.Rate)
		}
		v := configView{
			BaseURL:     cfg.BaseURL,
			Format:      cfg.Format,
			Timeout:     timeout,
			Concurrency: cfg.Concurrency,
			Rate:        cfg.Rate,
			PageSize:    cfg.PageSize,
			BulkLimit:   cfg.BulkLimit,
			Language:    cfg.Language,
			DBPath:      cfg.DBPath,
			ConfigFile:  src,
		}

		w := cmd.OutOrStdout()
		switch globalFlags.Format {
		case render.FormatJSON:
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		case render.FormatYAML:
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(v); err != nil {
				return err
			}
			return enc.Close()
		default:
			printKVTable(w, [][]string{
				{"base_url", v.BaseURL},
				{"default_format", v.Format},
				{"timeout", v.Timeout},
				{"concurrency", fmt.Sprintf("%d", v.Concurrency)},
				{"rate", rate},
				{"page_size", fmt.Sprintf("%d", v.PageSize)},
				{"bulk_limit", fmt.Sprintf("%d", v.BulkLimit)},
				{"language", v.Language},
				{"db_path", v.DBPath},
				{"config_file", v.ConfigFile},
			})
			return nil
		}
	},
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Print one value stored in config.json",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.ReadFile(config.DefaultConfigFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no config.json in the current directory (run 'dex config init')")
			}
			return err
		}
		val, err := f.Get(strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Set a configuration value in config.json",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		path := config.DefaultConfigFile

		// Load existing file or start from template
		f, err := config.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			f = config.Template()
		case err != nil:
			return err
		}

		if err := f.Set(key, args[1]); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", key, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

// printKVTable renders a two-column key/value table using aligned columns.
func printKVTable(w io.Writer, rows [][]string) {
	maxKey := 0
	for _, r := range rows {
		if len(r[0]) > maxKey {
			maxKey = len(r[0])
		}
	}
	for _, r := range rows {
		padding := strings.Repeat(" ", maxKey-len(r[0]))
		fmt.Fprintf(w, "  %s%s  %s\n", r[0], padding, r[1])
	}
}
