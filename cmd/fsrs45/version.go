package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sky-flux/fsrs45"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Model   string `json:"model"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
		Model:   fsrs45.ModelVersion,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
	if outputJSON {
		return outputAsJSON(cmd, info)
	}
	outputText(cmd, "fsrs45 %s\n", info.Version)
	outputText(cmd, "  commit: %s\n", info.Commit)
	outputText(cmd, "  built:  %s\n", info.Date)
	outputText(cmd, "  model:  %s\n", info.Model)
	outputText(cmd, "  go:     %s\n", info.Go)
	outputText(cmd, "  os:     %s/%s\n", info.OS, info.Arch)
	return nil
}
