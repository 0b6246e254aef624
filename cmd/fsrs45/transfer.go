package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cards and memory states as JSON",
	Long: `Write every card and its memory state as JSON.

Example:
  fsrs45 export > deck.json
  fsrs45 export --logs -o backup.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportLogs   bool
	exportOutput string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import cards from an export file",
	Long: `Import cards from a file written by "fsrs45 export", or from a legacy
fsrs-4.5 state file. Use "-" to read standard input.

The import is all or nothing: an invalid entry aborts it without changes.

Example:
  fsrs45 import backup.json
  fsrs45 import --strategy skip --dry-run deck.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importStrategy string
	importDryRun   bool
)

func init() {
	exportCmd.Flags().BoolVar(&exportLogs, "logs", false, "Include review logs")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	importCmd.Flags().StringVar(&importStrategy, "strategy", "replace", "Existing cards: replace or skip")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and count without writing")

	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	if err := st.ExportJSON(cmd.Context(), w, store.ExportOptions{IncludeLogs: exportLogs}); err != nil {
		return err
	}
	if exportOutput != "" {
		logger.Info("exported", zap.String("path", exportOutput), zap.Bool("logs", exportLogs))
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	strategy, err := store.ParseMergeStrategy(importStrategy)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.ImportJSON(cmd.Context(), r, store.ImportOptions{Strategy: strategy, DryRun: importDryRun})
	if err != nil {
		return err
	}

	if outputJSON {
		return outputAsJSON(cmd, result)
	}
	verb := "Imported"
	if result.DryRun {
		verb = "Would import"
	}
	outputText(cmd, "%s %d cards (%s format): %d created, %d replaced, %d skipped, %d review logs\n",
		verb, result.Total, result.Format, result.Created, result.Replaced, result.Skipped, result.Logs)
	return nil
}
