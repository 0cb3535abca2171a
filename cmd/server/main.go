// Command server runs the OpenLearn Hub edge service: it fronts the
// curriculum API with a TTL cache, normalizes curriculum payloads into a
// render-ready view, resolves courses against the content catalog, and
// pushes lifecycle events to connected sessions.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openlearnhub/hub-edge/internal/catalog"
	"github.com/openlearnhub/hub-edge/internal/curriculum"
	"github.com/openlearnhub/hub-edge/internal/notify"
	"github.com/openlearnhub/hub-edge/internal/platform/cache"
	"github.com/openlearnhub/hub-edge/internal/platform/config"
	"github.com/openlearnhub/hub-edge/internal/platform/database"
	"github.com/openlearnhub/hub-edge/internal/resolver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv := &server{adminTokenHash: cfg.Admin.TokenHash}

	// Cache: Dragonfly/Redis when reachable, in-process otherwise. The
	// cache is an optimization; a dead cache must not keep the edge down.
	var backend cache.Backend
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Warn("cache unavailable, using in-memory backend", "error", err)
		} else {
			defer c.Close()
			backend = cache.NewRedisBackend(c.Client)
			srv.ready = append(srv.ready, func(r *http.Request) error {
				return c.HealthCheck(r.Context())
			})
		}
	}
	if backend == nil {
		backend = cache.NewMemoryBackend()
	}
	store := cache.NewStore(backend)

	// Catalog: PostgreSQL when configured, YAML directory otherwise.
	var catalogStore catalog.Store
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			slog.Error("failed to connect to catalog database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		catalogStore, err = catalog.NewPostgresStore(db.Pool)
		if err != nil {
			slog.Error("failed to create catalog store", "error", err)
			os.Exit(1)
		}
		srv.ready = append(srv.ready, func(r *http.Request) error {
			return db.HealthCheck(r.Context())
		})
	} else {
		dirStore, err := catalog.NewFromDir(cfg.Catalog.Path)
		if err != nil {
			slog.Error("failed to load content catalog", "error", err)
			os.Exit(1)
		}
		catalogStore = dirStore
		srv.reloadCatalog = func() error {
			return dirStore.ReloadFromDir(cfg.Catalog.Path)
		}
	}

	srv.client = curriculum.NewClient(cfg.Backend.URL, store)
	srv.resolver = resolver.New(catalogStore)
	if cfg.Notify.Enabled {
		srv.hub = notify.NewHub()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:        addr,
		Handler:     srv.routes(),
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: curriculum generation waits on the upstream AI
		// call and the event stream holds its connection open.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "backend", cfg.Backend.URL)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
