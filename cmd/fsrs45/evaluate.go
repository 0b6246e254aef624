package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45/evaluate"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure how well the model predicted your recorded reviews",
	Long: `Replay the review history of every card and compare the predicted
retrievability with what actually happened. Reports log loss, RMSE and a
calibration table.`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

var evaluateWorkers int

func init() {
	evaluateCmd.Flags().IntVar(&evaluateWorkers, "workers", 0, "Concurrent card replays (default: eval.workers)")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	logs, err := st.AllReviewLogs(cmd.Context())
	if err != nil {
		return err
	}

	workers := appConfig.Eval.Workers
	if evaluateWorkers > 0 {
		workers = evaluateWorkers
	}
	logger.Debug("evaluating", zap.Int("logs", len(logs)), zap.Int("workers", workers))

	report, err := evaluate.New(evaluate.Config{Workers: workers}).Evaluate(cmd.Context(), logs)
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, report)
	}

	outputText(cmd, "Model:             %s\n", report.Model)
	outputText(cmd, "Cards:             %d\n", report.Cards)
	outputText(cmd, "Reviews:           %d (%d scored)\n", report.Reviews, report.CrossDayReviews)
	outputText(cmd, "Log loss:          %.4f\n", report.LogLoss)
	outputText(cmd, "RMSE:              %.4f\n", report.RMSE)
	outputText(cmd, "Mean predicted R:  %.4f\n", report.MeanPredicted)
	outputText(cmd, "Mean recalled:     %.4f\n", report.MeanRecalled)
	outputText(cmd, "\n  R range      count  predicted  recalled\n")
	for _, b := range report.Bins {
		if b.Count == 0 {
			continue
		}
		outputText(cmd, "  [%.1f, %.1f)  %6d  %9.4f  %8.4f\n",
			b.Lower, b.Upper, b.Count, b.MeanPredicted, b.MeanRecalled)
	}
	return nil
}
