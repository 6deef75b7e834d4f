// cmd/api/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"overlaytv/internal/config"
	"overlaytv/internal/fonts"
	"overlaytv/internal/handler"
	"overlaytv/internal/logging"
	"overlaytv/internal/render"
	"overlaytv/internal/service"
	"overlaytv/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("overlay service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// ── Config ────────────────────────────────────────────────────────────────
	// CONFIG_FILE is optional; env vars override whatever it sets.
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "overlaytv.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// ── Database ──────────────────────────────────────────────────────────────
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)
	if cfg.Database.Driver == config.DriverSQLite {
		// one writer at a time
		db.SetMaxOpenConns(1)
	}

	// Fail fast rather than accepting traffic.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}

	dialect := service.DialectSQLite
	if cfg.Database.Driver == config.DriverPostgres {
		dialect = service.DialectPostgres
	}
	projectService := &service.ProjectService{
		DB:      db,
		Dialect: dialect,
		Log:     logging.NewComponentLogger(logger, "store"),
	}
	if err := projectService.Migrate(pingCtx); err != nil {
		return err
	}
	logger.Info("connected to database", "driver", cfg.Database.Driver)

	// ── Storage & rendering ───────────────────────────────────────────────────
	previews, err := storage.NewLocalStorage(cfg.Storage.PreviewDir, cfg.Server.BaseURL)
	if err != nil {
		return err
	}
	faces := fonts.NewRegistry()
	defer faces.Close()

	projectHandler := &handler.ProjectHandler{
		Service:   projectService,
		Storage:   previews,
		Renderer:  render.NewRenderer(faces, logging.NewComponentLogger(logger, "render")),
		ShareBase: cfg.Server.ShareBaseURL,
		Log:       logging.NewComponentLogger(logger, "http"),
	}

	// ── Router ────────────────────────────────────────────────────────────────
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := projectService.Ping(r.Context()); err != nil {
			http.Error(w, `{"status":"unhealthy"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	projectHandler.Register(r.PathPrefix("/api/v1").Subrouter())

	r.PathPrefix(storage.PublicPrefix).Handler(
		http.StripPrefix(storage.PublicPrefix, http.FileServer(http.Dir(cfg.Storage.PreviewDir))),
	)

	// ── Middleware ────────────────────────────────────────────────────────────
	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.ExposedHeaders([]string{"X-Preview-URL"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)
	accessLog := logging.NewComponentLogger(logger, "access")
	h := handlers.CustomLoggingHandler(io.Discard, recovery(cors(r)), func(_ io.Writer, p handlers.LogFormatterParams) {
		accessLog.Info("request",
			"method", p.Request.Method,
			"path", p.URL.Path,
			"status", p.StatusCode,
			"bytes", p.Size,
			"duration", time.Since(p.TimeStamp),
		)
	})

	// ── HTTP Server with timeouts ──────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	// ── Graceful Shutdown ──────────────────────────────────────────────────────
	// In-flight saves finish before the process exits.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("overlay service running", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}
	logger.Info("shutdown signal received, draining requests")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped cleanly")
	return nil
}
