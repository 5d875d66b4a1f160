/*
main.go - bentobox command line

PURPOSE:
  Entry point for the scheduling engine. Subcommands share one Config
  loaded before they run.

COMMANDS:
  serve            Run the HTTP API and the status ticker
  seed <file>      Apply a YAML or JSON seed document to the board
  status [--at]    Print every encounter with its derived status

CONFIGURATION:
  --config points at a YAML file; otherwise ./bentobox.yaml is used when
  present. BENTOBOX_* environment variables override both.

SEE ALSO:
  - config/config.go: Keys and defaults
  - cmd_serve.go: Server startup and graceful shutdown
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/config"
	"github.com/warp/bentobox/generic"
	"github.com/warp/bentobox/generic/store"
	"github.com/warp/bentobox/store/s3"
	"github.com/warp/bentobox/store/sqlite"
)

var (
	cfg        *config.Config
	configPath string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:           "bentobox",
		Short:         "BentoBox encounter scheduling engine",
		Long:          "BentoBox composes encounter templates from a library, places them on a weekly calendar and tracks their status.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a bentobox.yaml file")

	rootCmd.AddCommand(
		serveCmd(),
		seedCmd(),
		statusCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// blobStore opens the configured backend. The returned close func is never nil.
func blobStore(ctx context.Context, logger *slog.Logger) (generic.BlobStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Storage.Driver {
	case config.DriverS3:
		st, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.Storage.S3.Bucket,
			Region:    cfg.Storage.S3.Region,
			Endpoint:  cfg.Storage.S3.Endpoint,
			PathStyle: cfg.Storage.S3.PathStyle,
			Prefix:    cfg.Storage.S3.Prefix,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("opening s3 store: %w", err)
		}
		logger.Info("using s3 store", "bucket", cfg.Storage.S3.Bucket, "prefix", cfg.Storage.S3.Prefix)
		return st, noop, nil
	case config.DriverMemory:
		logger.Warn("using in-memory store; the board is lost on exit")
		return store.NewMemory(), noop, nil
	default:
		st, err := sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Info("using sqlite store", "path", cfg.Storage.SQLitePath)
		return st, st.Close, nil
	}
}

// loadBoard opens the store and restores the persisted board.
func loadBoard(ctx context.Context, logger *slog.Logger, opts ...bento.Option) (*bento.Board, func() error, error) {
	st, closeFn, err := blobStore(ctx, logger)
	if err != nil {
		return nil, closeFn, err
	}
	opts = append([]bento.Option{bento.WithLogger(logger)}, opts...)
	board, err := bento.Load(ctx, st, cfg.Storage.Key, opts...)
	if err != nil {
		_ = closeFn()
		return nil, func() error { return nil }, err
	}
	return board, closeFn, nil
}
