package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45"
	"github.com/sky-flux/fsrs45/internal/store"
)

var reviewCmd = &cobra.Command{
	Use:   "review <id> <grade>",
	Short: "Record a review of a card",
	Long: `Grade a card and schedule its next review.

Grades: Again (1), Hard (2), Good (3), Easy (4).

Example:
  fsrs45 review es-001 good
  fsrs45 review es-001 1 --duration 8s`,
	Args: cobra.ExactArgs(2),
	RunE: runReview,
}

var (
	reviewDuration time.Duration
	reviewAt       string
)

var previewCmd = &cobra.Command{
	Use:   "preview <id>",
	Short: "Show the next review for each grade without recording anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule [id...]",
	Short: "Rebuild card states from their review history",
	Long: `Recompute each card's memory state by replaying its review logs
from the unseen state. Cards whose history is incomplete (imported
without logs) keep their state; --all skips them.

Example:
  fsrs45 reschedule es-001
  fsrs45 reschedule --all`,
	RunE: runReschedule,
}

var rescheduleAll bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all progress: every card becomes unseen",
	Long: `Return every card to the unseen state and delete all review logs.
Card content is kept. Requires --yes.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

var resetYes bool

func init() {
	reviewCmd.Flags().DurationVar(&reviewDuration, "duration", 0, "Time spent answering (e.g. 6s)")
	reviewCmd.Flags().StringVar(&reviewAt, "at", "", "Review time in RFC 3339 (default: now)")
	rescheduleCmd.Flags().BoolVar(&rescheduleAll, "all", false, "Reschedule every card")
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm the reset")

	rootCmd.AddCommand(reviewCmd, previewCmd, rescheduleCmd, resetCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	grade, err := fsrs45.ParseGrade(args[1])
	if err != nil {
		return err
	}
	now := time.Now()
	if reviewAt != "" {
		now, err = time.Parse(time.RFC3339, reviewAt)
		if err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
	}
	var duration *time.Duration
	if reviewDuration != 0 {
		if reviewDuration < 0 {
			return errors.New("--duration must not be negative")
		}
		d := reviewDuration
		duration = &d
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.Review(cmd.Context(), args[0], grade, now, duration)
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, newCardView(c, now))
	}
	m, _ := c.State.Memory()
	outputText(cmd, "%s: %s, next review in %s (%s)\n",
		c.ID, grade, formatDays(intervalDays(c.State)), formatTime(m.DueAt))
	return nil
}

type previewRow struct {
	Grade        fsrs45.Grade       `json:"grade"`
	State        fsrs45.ReviewState `json:"state"`
	IntervalDays float64            `json:"interval_days"`
}

func runPreview(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.GetCard(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	options := fsrs45.Preview(c.State, time.Now())
	rows := make([]previewRow, 0, len(fsrs45.Grades))
	for _, g := range fsrs45.Grades {
		rows = append(rows, previewRow{Grade: g, State: options[g], IntervalDays: intervalDays(options[g])})
	}

	if outputJSON {
		return outputAsJSON(cmd, rows)
	}
	for _, r := range rows {
		m, _ := r.State.Memory()
		outputText(cmd, "%-5s  %8s  S=%.4f D=%.4f\n", r.Grade, formatDays(r.IntervalDays), m.Stability, m.Difficulty)
	}
	return nil
}

func runReschedule(cmd *cobra.Command, args []string) error {
	if rescheduleAll == (len(args) > 0) {
		return errors.New("give card IDs or --all")
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ids := args
	if rescheduleAll {
		cards, err := st.ListCards(cmd.Context(), store.ListFilter{})
		if err != nil {
			return err
		}
		ids = make([]string, len(cards))
		for i, c := range cards {
			ids[i] = c.ID
		}
	}

	now := time.Now()
	views := make([]cardView, 0, len(ids))
	var skipped []string
	for _, id := range ids {
		c, err := st.Reschedule(cmd.Context(), id)
		if rescheduleAll && errors.Is(err, store.ErrIncompleteHistory) {
			logger.Warn("reschedule skipped", zap.String("card_id", id), zap.Error(err))
			skipped = append(skipped, id)
			continue
		}
		if err != nil {
			return err
		}
		views = append(views, newCardView(c, now))
	}

	if outputJSON {
		return outputAsJSON(cmd, views)
	}
	outputText(cmd, "Rescheduled %d cards\n", len(views))
	if len(skipped) > 0 {
		outputText(cmd, "Skipped %d cards with incomplete review history\n", len(skipped))
	}
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return errors.New("reset deletes all review history; rerun with --yes")
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Reset(cmd.Context())
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, map[string]int64{"reset": n})
	}
	outputText(cmd, "Reset %d cards\n", n)
	return nil
}
