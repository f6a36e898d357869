package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vavoo/internal/history"
)

var (
	flagHistoryLimit  int
	flagHistoryClear  bool
	flagHistoryRemove string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent resolutions",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all history entries")
	historyCmd.Flags().StringVar(&flagHistoryRemove, "remove", "", "Delete the entry for a source URL")
}

func historyRun(cmd *cobra.Command, args []string) error {
	store, err := history.OpenDefault()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if flagHistoryClear {
		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "History cleared.")
		return nil
	}

	if flagHistoryRemove != "" {
		if err := store.Remove(cmd.Context(), flagHistoryRemove); err != nil {
			return fmt.Errorf("removing history entry: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Entry removed.")
		return nil
	}

	entries, err := store.Load(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	return newPrinter(os.Stdout, flagJSON).History(entries)
}
