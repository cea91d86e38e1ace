package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/client"
	"github.com/coderunr/editor/internal/config"
	"github.com/coderunr/editor/internal/handler"
	"github.com/coderunr/editor/internal/middleware"
	"github.com/coderunr/editor/internal/session"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Set up logging
	logger := logrus.New()
	logger.SetLevel(cfg.GetLogLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logger.WithField("execute_url", cfg.ExecuteURL).Info("Starting CodeRunr Editor server")

	executor := client.New(cfg.ExecuteURL, cfg.RequestTimeout, client.WithLogger(logger))
	sessions := session.NewManager(session.Options{
		Catalogue:       catalogue.Builtin(),
		Executor:        executor,
		DefaultLanguage: cfg.GetDefaultLanguage(),
		MaxSessions:     cfg.MaxSessions,
		IdleTimeout:     cfg.SessionIdleTimeout,
		Logger:          logger,
	})
	defer sessions.Close()

	server := &http.Server{
		Addr:    cfg.GetBindAddress(),
		Handler: newRouter(cfg, sessions, logger),
		// Security settings
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("Editor server starting on %s", cfg.GetBindAddress())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sessions.RunReaper(gctx, cfg.ReapInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		sessions.Close()
		os.Exit(1)
	}

	logger.Info("Server exited")
}

// newRouter wires middleware and routes
func newRouter(cfg *config.Config, sessions *session.Manager, logger *logrus.Logger) http.Handler {
	h := handler.NewHandler(sessions, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.BodyLimit(cfg.RequestBodyLimit))

	r.Route("/api/v1", h.RegisterRoutes)

	// Root route
	r.Get("/", h.GetVersion)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
