package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/kafka"
)

// analyticsCommand aggregates query events published by other trie-search
// processes and serves the statistics.
func analyticsCommand(app *App) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Consume query events from Kafka and serve aggregated statistics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			if len(cfg.Kafka.Brokers) == 0 {
				return fmt.Errorf("analytics needs at least one kafka broker")
			}
			agg := analytics.NewAggregator()
			consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.QueryEvents, analytics.HandleEvent(agg))

			mux := http.NewServeMux()
			analytics.NewHandler(agg).Register(mux)
			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", port),
				Handler:      mux,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return consumer.Run(ctx)
			})
			g.Go(func() error {
				slog.Info("analytics service listening", "addr", server.Addr, "topic", cfg.Kafka.QueryEvents)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serving analytics: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8081, "HTTP listen port")
	return cmd
}
