package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/middleware"
)

func serveCommand(app *App) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Index the --file arguments and serve queries over HTTP.",
		Long: heredoc.Doc(`
			Index the --file arguments once, then serve the query API under /api/v1,
			health probes under /health and Prometheus metrics on /metrics until
			interrupted.
		`),
		Example: heredoc.Doc(`
			trie-search serve -f a.txt -f b.txt --port 8080
			curl 'localhost:8080/api/v1/proximity?w1=cat&w2=garden&distance=3'
		`),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireFiles(); err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				app.cfg.Server.Port = port
			}
			ctx := cmd.Context()
			svc, err := app.open(ctx, "http", app.files)
			if err != nil {
				return err
			}
			defer svc.Close()
			return serve(ctx, svc)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	return cmd
}

func newChecker(svc *services) *health.Checker {
	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		st := svc.index.Stats()
		if st.Documents == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "no documents indexed"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, %d terms", st.Documents, st.Terms),
		}
	})
	if svc.redis != nil {
		checker.Register("redis", health.Ping(svc.redis.Ping, true))
	}
	if svc.postgres != nil {
		checker.Register("postgres", health.Ping(svc.postgres.Ping, true))
	}
	return checker
}

// newServeMux mounts the query API, analytics, health probes and metrics.
func newServeMux(svc *services) *http.ServeMux {
	mux := http.NewServeMux()
	handler.New(svc.exec, svc.index, svc.cache).Register(mux)
	analytics.NewHandler(svc.aggregator).Register(mux)

	checker := newChecker(svc)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", svc.metrics.Handler())
	return mux
}

func serve(ctx context.Context, svc *services) error {
	cfg := svc.cfg
	mws := []func(http.Handler) http.Handler{
		middleware.Recover,
		middleware.RequestID,
		middleware.Logging,
		middleware.Metrics(svc.metrics),
		middleware.CORS(cfg.Server.CORSOrigins),
	}
	if cfg.Server.RateLimit > 0 {
		mws = append(mws, middleware.RateLimit(middleware.NewLimiter(cfg.Server.RateLimit, time.Minute)))
	}
	mws = append(mws, middleware.Timeout(cfg.Server.RequestTimeout))
	chain := middleware.Chain(newServeMux(svc), mws...)

	if cfg.Metrics.Enabled {
		shutdownMetrics := svc.metrics.Serve(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr, "documents", svc.index.Stats().Documents)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	slog.Info("search service stopped")
	return nil
}
