package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xavierca1/leadbridge/internal/config"
	"github.com/xavierca1/leadbridge/internal/infra/queue"
	"github.com/xavierca1/leadbridge/internal/infra/storage"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

type cliOptions struct {
	envFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "leadbridge",
		Short: "Administer the LeadBridge lead, task and meeting store",
		Long: `leadbridge reads and maintains the same store the API serves.
Storage is selected with STORAGE_DRIVER exactly as for the API.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Env file to load instead of .env")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newLeadsCmd(opts),
		newTasksCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newResetCmd(opts),
	)
	return root
}

// withStore opens the configured store, runs fn and flushes the store.
// With RABBITMQ_URL set, changes are published so running API instances
// reload. Without it, an API on a SQL backend finds out on its next write,
// which is then rejected with a conflict instead of overwriting this one.
func withStore(ctx context.Context, opts *cliOptions, fn func(cfg config.Config, store *usecase.Store) error) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}

	backend, err := storage.Open(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()

	storeOpts := []usecase.Option{usecase.WithLogger(slog.Default())}
	if cfg.RabbitMQURL != "" {
		mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer mq.Close()
		origin := "leadbridge-cli-" + uuid.NewString()[:8]
		storeOpts = append(storeOpts, usecase.WithPublisher(queue.NewProducer(mq.Ch, origin)))
	}

	store, err := usecase.OpenStore(ctx, backend, storeOpts...)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	if err := fn(cfg, store); err != nil {
		store.Close(ctx)
		return err
	}
	return store.Close(ctx)
}
