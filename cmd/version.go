package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version is the release string. Release builds overwrite it via:
//
//	go build -ldflags "-X github.com/derickschaefer/dex/cmd.Version=v0.3.0"
//
// When it is left at "dev", the module version recorded by `go install` is
// used instead.
var Version = "dev"

// BuildTime is optionally injected at build time alongside Version.
var BuildTime = ""

// versionInfo is the structured payload for --format json|yaml output.
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	GOOS      string `json:"goos" yaml:"goos"`
	GOARCH    string `json:"goarch" yaml:"goarch"`
	BuildTime string `json:"build_time,omitempty" yaml:"build_time,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dex version and build information",
	Long: `Print the dex version string and build metadata.

Default output is plain text. Use --format json or yaml for structured output.`,
	Example: `  dex version
  dex version --format json | jq .version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Version:   resolvedVersion(),
			GoVersion: runtime.Version(),
			GOOS:      runtime.GOOS,
			GOARCH:    runtime.GOARCH,
			BuildTime: BuildTime,
		}

		w := cmd.OutOrStdout()
		switch globalFlags.Format {
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		case "jsonl":
			return json.NewEncoder(w).Encode(info)
		case "yaml":
			return yaml.NewEncoder(w).Encode(info)
		default:
			fmt.Fprintf(w, "dex %s\n", info.Version)
			fmt.Fprintf(w, "go  %s\n", info.GoVersion)
			fmt.Fprintf(w, "os  %s/%s\n", info.GOOS, info.GOARCH)
			if info.BuildTime != "" {
				fmt.Fprintf(w, "built %s\n", info.BuildTime)
			}
			return nil
		}
	},
}

func resolvedVersion() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
