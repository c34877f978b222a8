package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/zeronote/zeronote/internal/api"
	"github.com/zeronote/zeronote/internal/ingest"
	"github.com/zeronote/zeronote/internal/ledger"
	"github.com/zeronote/zeronote/internal/report"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, feed consumer, and report scheduler",
		Long: `Start the long-running service: the HTTP transaction API, the
scheduled spending report, and (when a broker URL is configured) the
transaction feed consumer.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	_ = viper.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	service, store, err := buildService(ctx, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	aggregator := ledger.NewAggregator(store, logger)

	handler := api.NewHandler(service, aggregator, logger)
	server := api.NewServer(viper.GetString("http.addr"), handler, logger)

	scheduler, err := report.NewScheduler(
		aggregator,
		viper.GetString("report.schedule"),
		viper.GetInt("report.window_days"),
		logger,
	)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return server.Run(groupCtx)
	})

	group.Go(func() error {
		return scheduler.Run(groupCtx)
	})

	if brokerURL := viper.GetString("broker.url"); brokerURL != "" {
		consumer, consumerErr := ingest.NewConsumer(
			groupCtx,
			brokerURL,
			brokerSetting("exchange", "zeronote"),
			brokerSetting("queue", "zeronote.transactions"),
			service,
			logger,
		)
		if consumerErr != nil {
			return fmt.Errorf("failed to start feed consumer: %w", consumerErr)
		}
		defer func() { _ = consumer.Close() }()

		group.Go(func() error {
			return consumer.Run(groupCtx)
		})
	} else {
		logger.Info("no broker configured, feed ingestion disabled")
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("service stopped")
	return nil
}

func brokerSetting(key, fallback string) string {
	if value := viper.GetString("broker." + key); value != "" {
		return value
	}
	return fallback
}
