package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"reply-relay/internal/config"
	hhttp "reply-relay/internal/handler/http"
	"reply-relay/internal/handler/http/middleware"
	hreply "reply-relay/internal/handler/http/reply"
	"reply-relay/internal/handler/http/requestid"
	"reply-relay/internal/infra/completion"
	"reply-relay/internal/infra/normalizer"
	"reply-relay/internal/infra/paramstore"
	"reply-relay/internal/observability/logging"
	"reply-relay/internal/observability/tracing"
	replyUC "reply-relay/internal/usecase/reply"
)

const (
	serviceName     = "reply-relay"
	shutdownTimeout = 10 * time.Second
)

func main() {
	logger := initLogger()

	cfg, err := config.LoadRelayConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Setup(cfg.TracingEnabled, serviceName, cfg.Version)
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			logger.Error("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	if err := resolveAPIKey(ctx, &cfg.Completion); err != nil {
		logger.Error("failed to resolve completion api key", slog.Any("error", err))
		os.Exit(1)
	}

	completer, err := completion.New(cfg.Completion)
	if err != nil {
		logger.Error("failed to create completion client", slog.Any("error", err))
		os.Exit(1)
	}

	corsConfig, err := middleware.LoadCORSConfig(logger)
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.Validator.GetAllowedOrigins()),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Any("allowed_headers", corsConfig.AllowedHeaders),
		slog.Int("max_age", corsConfig.MaxAge))

	handler, err := setupServer(logger, cfg, completer, *corsConfig)
	if err != nil {
		logger.Error("failed to set up server", slog.Any("error", err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Completion.Timeout + 10*time.Second,
	}

	logger.Info("server starting",
		slog.String("addr", srv.Addr),
		slog.String("version", cfg.Version),
		slog.String("provider", cfg.Completion.Provider),
		slog.String("model", cfg.Completion.Model),
		slog.String("normalizer", cfg.Normalizer))

	if err := runServer(ctx, logger, srv); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// initLogger initializes the structured logger and installs it as the default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// resolveAPIKey fills cfg.APIKey from the parameter store when only a
// parameter name was configured.
func resolveAPIKey(ctx context.Context, cfg *config.CompletionConfig) error {
	if cfg.APIKey != "" {
		return nil
	}

	store, err := paramstore.NewFromEnvironment(ctx)
	if err != nil {
		return err
	}

	key, err := paramstore.ResolveAPIKey(ctx, store, cfg.APIKey, cfg.APIKeyParam)
	if err != nil {
		return err
	}
	cfg.APIKey = key
	return nil
}

// setupServer builds the routed handler with every middleware applied.
func setupServer(logger *slog.Logger, cfg *config.RelayConfig, completer completion.Completer, corsConfig middleware.CORSConfig) (http.Handler, error) {
	norm, err := normalizer.New(cfg.Normalizer)
	if err != nil {
		return nil, err
	}

	svc := replyUC.Service{Normalizer: norm, Completer: completer}
	mux := setupRoutes(svc, cfg, completer)

	return applyMiddleware(logger, mux, cfg, corsConfig), nil
}

func setupRoutes(svc hreply.Generator, cfg *config.RelayConfig, completer completion.Completer) *http.ServeMux {
	mux := http.NewServeMux()

	hreply.Register(mux, svc)

	health := hhttp.HealthHandler{Version: cfg.Version, Provider: cfg.Completion.Provider}
	if b, ok := completer.(*completion.Breaker); ok {
		health.Breaker = b
	}
	mux.Handle("GET /health", health)
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return mux
}

// applyMiddleware wraps handler with the middleware chain, outermost first:
//  1. Metrics (count everything, including rejected requests)
//  2. Request ID
//  3. Tracing (server span, X-Trace-Id)
//  4. Request-scoped logger
//  5. Access log
//  6. Recovery (panics become 500 JSON)
//  7. CORS (reject foreign origins before the handler)
//  8. Body size limit
func applyMiddleware(logger *slog.Logger, handler http.Handler, cfg *config.RelayConfig, corsConfig middleware.CORSConfig) http.Handler {
	return hhttp.Chain(handler,
		hhttp.MetricsMiddleware,
		requestid.Middleware,
		tracing.Middleware(hhttp.RouteLabel),
		logging.Middleware(logger),
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		middleware.CORS(corsConfig),
		hhttp.LimitRequestBody(cfg.MaxBodyBytes),
	)
}

// runServer serves until ctx is cancelled, then shuts the server down gracefully.
func runServer(ctx context.Context, logger *slog.Logger, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
