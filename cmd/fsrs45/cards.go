package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sky-flux/fsrs45"
	"github.com/sky-flux/fsrs45/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add <front> [back]",
	Short: "Add a new card",
	Long: `Add a new, unseen card to the deck.

Example:
  fsrs45 add "hola" "hello"
  fsrs45 add --id es-001 "adiós" "goodbye"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAdd,
}

var addID string

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a card and its memory state",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cards",
	Long: `List cards, optionally only those due for review.

Example:
  fsrs45 list
  fsrs45 list --due
  fsrs45 list --status unseen --limit 20`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listStatus string
	listDue    bool
	listOrder  string
	listLimit  int
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a card and its review history",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show deck statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "Card ID (default: random UUID)")

	listCmd.Flags().StringVar(&listStatus, "status", "", "Only cards with this status: unseen, reviewed")
	listCmd.Flags().BoolVar(&listDue, "due", false, "Only cards due now")
	listCmd.Flags().StringVar(&listOrder, "order", "id", "Sort order: id, due")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of cards (0 = no limit)")

	rootCmd.AddCommand(addCmd, showCmd, listCmd, deleteCmd, statsCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	nc := store.NewCard{ID: addID, Front: args[0]}
	if len(args) == 2 {
		nc.Back = args[1]
	}
	c, err := st.AddCard(cmd.Context(), nc)
	if err != nil {
		return fmt.Errorf("add card: %w", err)
	}
	if outputJSON {
		return outputAsJSON(cmd, newCardView(c, time.Now()))
	}
	outputText(cmd, "Added %s\n", c.ID)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.GetCard(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return outputCard(cmd, c, time.Now())
}

func runList(cmd *cobra.Command, args []string) error {
	f := store.ListFilter{OrderBy: listOrder, Limit: listLimit}
	if listStatus != "" {
		status, err := fsrs45.ParseStatus(listStatus)
		if err != nil {
			return err
		}
		f.Status = status
	}
	now := time.Now()
	if listDue {
		f.DueBefore = now.Add(time.Millisecond)
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	cards, err := st.ListCards(cmd.Context(), f)
	if err != nil {
		return err
	}

	if outputJSON {
		views := make([]cardView, 0, len(cards))
		for i := range cards {
			views = append(views, newCardView(&cards[i], now))
		}
		return outputAsJSON(cmd, views)
	}

	if len(cards) == 0 {
		outputText(cmd, "No cards found.\n")
		return nil
	}
	for _, c := range cards {
		m, ok := c.State.Memory()
		if !ok {
			outputText(cmd, "%-36s  unseen                       %s\n", c.ID, c.Front)
			continue
		}
		outputText(cmd, "%-36s  due %s  %s\n", c.ID, formatTime(m.DueAt), c.Front)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteCard(cmd.Context(), args[0]); err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, map[string]string{"deleted": args[0]})
	}
	outputText(cmd, "Deleted %s\n", args[0])
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, stats)
	}
	outputText(cmd, "Deck Statistics\n")
	outputText(cmd, "---------------\n")
	outputText(cmd, "Cards:    %d\n", stats.Total)
	outputText(cmd, "Unseen:   %d\n", stats.Unseen)
	outputText(cmd, "Reviewed: %d\n", stats.Reviewed)
	outputText(cmd, "Due now:  %d\n", stats.Due)
	return nil
}
