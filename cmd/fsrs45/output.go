package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sky-flux/fsrs45"
	"github.com/sky-flux/fsrs45/internal/store"
)

// outputAsJSON writes any value as indented JSON to the command's stdout.
func outputAsJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputText prints text to the command's stdout.
func outputText(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// cardView is the JSON shape of a card in command output.
type cardView struct {
	store.Card
	Retrievability float64 `json:"retrievability"`
}

func newCardView(c *store.Card, now time.Time) cardView {
	return cardView{Card: *c, Retrievability: fsrs45.CurrentRetrievability(c.State, now)}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// formatDays renders a day count the way a reviewer reads it.
func formatDays(days float64) string {
	switch {
	case days < 1.0/24:
		return fmt.Sprintf("%.0fm", days*24*60)
	case days < 1:
		return fmt.Sprintf("%.1fh", days*24)
	case days < 365:
		return fmt.Sprintf("%.1fd", days)
	}
	return fmt.Sprintf("%.1fy", days/365)
}

// outputCard prints one card in the configured format.
func outputCard(cmd *cobra.Command, c *store.Card, now time.Time) error {
	view := newCardView(c, now)
	if outputJSON {
		return outputAsJSON(cmd, view)
	}

	outputText(cmd, "ID:     %s\n", c.ID)
	outputText(cmd, "Front:  %s\n", c.Front)
	if c.Back != "" {
		outputText(cmd, "Back:   %s\n", c.Back)
	}
	m, ok := c.State.Memory()
	if !ok {
		outputText(cmd, "Status: unseen\n")
		return nil
	}
	outputText(cmd, "Status: reviewed (%d reviews, %d lapses)\n", m.ReviewCount, m.LapseCount)
	outputText(cmd, "Stability:      %.4f days\n", m.Stability)
	outputText(cmd, "Difficulty:     %.4f\n", m.Difficulty)
	outputText(cmd, "Retrievability: %.4f\n", view.Retrievability)
	outputText(cmd, "Last review:    %s\n", formatTime(m.LastReviewedAt))
	outputText(cmd, "Due:            %s\n", formatTime(m.DueAt))
	return nil
}

// intervalDays returns the scheduled interval of a reviewed state.
func intervalDays(st fsrs45.ReviewState) float64 {
	m, ok := st.Memory()
	if !ok {
		return 0
	}
	return float64(m.DueAt.Sub(m.LastReviewedAt)) / float64(24*time.Hour)
}
