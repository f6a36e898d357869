// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vavoo/internal/config"
	"vavoo/internal/extract"
	"vavoo/internal/session"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagProxies   []string
	flagStrategy  string
	flagRetries   int
	flagDelay     float64
	flagJSON      bool
	flagNoHistory bool
	flagDebug     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "vavoo [url...]",
	Short: "Resolve vavoo.to links into playable stream URLs",
	Long: `vavoo turns vavoo.to media links into a stream URL plus the headers a player
or proxy must send to fetch it. The authenticated strategy performs the vavoo
signature handshake and asks the resolver; the direct strategy passes the link through.`,
	Args:              cobra.MinimumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              extractRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&flagProxies, "proxy", nil, "Proxy URL to route vavoo requests through (repeatable)")
	rootCmd.PersistentFlags().StringVarP(&flagStrategy, "strategy", "s", "", "Extraction strategy: direct | authenticated")
	rootCmd.PersistentFlags().IntVarP(&flagRetries, "retries", "r", 0, "Signature handshake attempts")
	rootCmd.PersistentFlags().Float64Var(&flagDelay, "delay", 0, "Retry backoff unit in seconds")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record resolutions")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(signatureCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	flags := cmd.Flags()
	if flags.Changed("proxy") {
		cfg.Proxies = flagProxies
	}
	if flagStrategy != "" {
		cfg.Strategy = flagStrategy
	}
	if flags.Changed("retries") {
		cfg.Retries = flagRetries
	}
	if flags.Changed("delay") {
		cfg.RetryDelay = flagDelay
	}
	if flagNoHistory {
		cfg.History = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return nil
}

// newExtractor builds an extractor with its own session from the merged configuration.
func newExtractor() (*extract.Vavoo, error) {
	strategy, err := extract.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(session.Config{
		Timeouts:       cfg.Timeouts(),
		Proxies:        cfg.Proxies,
		IdentityHeader: cfg.UserAgent,
		DefaultHeaders: cfg.Headers,
	}, session.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("configuring sessions: %w", err)
	}

	return extract.NewVavoo(sessions,
		extract.WithStrategy(strategy),
		extract.WithEndpoints(extract.Endpoints{
			Ping:    cfg.Endpoints.Ping,
			Ping2:   cfg.Endpoints.Ping2,
			Resolve: cfg.Endpoints.Resolve,
		}),
		extract.WithRetry(cfg.Retries, cfg.Delay()),
		extract.WithLogger(logger),
	), nil
}
