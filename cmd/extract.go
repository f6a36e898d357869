package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vavoo/internal/history"
	"vavoo/internal/media"
)

// extractRun is the default command: vavoo <url...>
func extractRun(cmd *cobra.Command, args []string) error {
	ext, err := newExtractor()
	if err != nil {
		return err
	}
	defer ext.Close()

	var store *history.Store
	if cfg.History {
		store, err = history.OpenDefault()
		if err != nil {
			logger.Warn("history unavailable", "error", err)
		} else {
			defer store.Close()
		}
	}

	out := newPrinter(os.Stdout, flagJSON)
	for _, url := range args {
		logger.Debug("extracting", "url", url, "strategy", ext.Strategy())

		result, err := ext.Extract(cmd.Context(), url)
		if err != nil {
			return fmt.Errorf("extracting %s: %w", url, err)
		}

		if err := out.Result(url, result); err != nil {
			return err
		}

		if store != nil {
			entry := media.HistoryEntry{
				SourceURL:      url,
				DestinationURL: result.DestinationURL,
				Strategy:       ext.Strategy().String(),
				Endpoint:       result.MediaflowEndpoint,
				ResolvedAt:     time.Now(),
			}
			if err := store.Save(cmd.Context(), entry); err != nil {
				logger.Debug("saving history failed", "error", err)
			}
		}
	}

	return nil
}
