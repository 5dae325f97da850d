// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/oikos/internal/api"
	"github.com/starford/oikos/internal/contentstore"
	"github.com/starford/oikos/internal/mcpserver"
	"github.com/starford/oikos/internal/noteindex"
	"github.com/starford/oikos/internal/searchindex"
	"github.com/starford/oikos/internal/session"
	"github.com/starford/oikos/internal/snapshot"
	"github.com/starford/oikos/internal/sse"
	"github.com/starford/oikos/internal/storage"
	"github.com/starford/oikos/internal/studyservice"
	"github.com/starford/oikos/internal/topics"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP mode stdout carries the
	// protocol, so logs go to stderr.
	logOut := os.Stdout
	if app.mcp {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure data directories exist.
	for _, dir := range []string{
		cfg.Data.Path,
		filepath.Join(cfg.Data.Path, contentstore.LibraryDir),
		filepath.Join(cfg.Data.Path, snapshot.ExportDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	// Initialize file storage.
	files, err := storage.NewFS(cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite search index.
	db, err := searchindex.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init search index: %w", err)
	}
	defer db.Close()

	// In-memory state.
	store := contentstore.New()
	notes := noteindex.New(logger)
	reg := topics.Default()
	sessions := session.NewManager()

	// Load unit content files from the library folder.
	if err := contentstore.LoadLibrary(store, files, logger); err != nil {
		logger.Warn("initial library load failed", slog.String("error", err.Error()))
	}

	// SSE broker and service. The broker pulls stats through the service,
	// so the stats function closes over the pointer assigned right after.
	var svc *studyservice.Service
	broker := sse.NewBroker(2*time.Second, func() map[string]int {
		return svc.Stats()
	})
	svc = studyservice.NewService(store, notes, db, files, broker, logger)

	// Build the search index from the loaded state.
	if err := searchindex.Rebuild(db, store, notes, logger); err != nil {
		logger.Warn("initial index rebuild failed", slog.String("error", err.Error()))
	}

	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	apiRouter := api.NewRouter(svc, reg, sessions, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the library folder and reindex on changes.
	libraryRoot := filepath.Join(cfg.Data.Path, contentstore.LibraryDir)
	g.Go(func() error {
		err := contentstore.Watch(gCtx, store, files, libraryRoot, logger, func() {
			if rErr := searchindex.Rebuild(db, store, notes, logger); rErr != nil {
				logger.Warn("reindex after reload failed", slog.String("error", rErr.Error()))
			}
			broker.PublishChange("content.updated", map[string]string{"source": "library"})
		})
		if err != nil {
			logger.Warn("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
