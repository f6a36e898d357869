package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"vavoo/internal/extract"
	"vavoo/internal/history"
	"vavoo/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extractor API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8888", "Listen address")
}

func serveRun(cmd *cobra.Command, args []string) error {
	strategy, err := extract.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}

	var recorder server.Recorder
	if cfg.History {
		store, err := history.OpenDefault()
		if err != nil {
			logger.Warn("history unavailable", "error", err)
		} else {
			defer store.Close()
			recorder = store
		}
	}

	factory := func() (extract.Extractor, error) {
		ext, err := newExtractor()
		if err != nil {
			return nil, err
		}
		return ext, nil
	}
	handlers := server.NewHandlers(factory, strategy, recorder, logger)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              flagAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("extractor API listening", "addr", flagAddr, "strategy", strategy)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
