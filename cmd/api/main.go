package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seamline.io/internal/audit"
	"seamline.io/internal/authz"
	"seamline.io/internal/config"
	"seamline.io/internal/httpapi"
	"seamline.io/internal/lifecycle"
	"seamline.io/internal/obs"
	"seamline.io/internal/session"
	"seamline.io/internal/store/pg"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load(*configPath)
	if err != nil {
		obs.LogEvent(map[string]any{"level": "error", "msg": "config load failed", "error": err.Error()})
		os.Exit(1)
	}

	opts := httpapi.Options{
		Version:            version,
		RateLimitPerSecond: cfg.RateLimit.PerSecond,
		RateLimitBurst:     cfg.RateLimit.Burst,
	}

	if cfg.Auth.Secret != "" {
		tokens, err := session.NewTokens(cfg.Auth.Secret, cfg.Auth.AccessTTL)
		if err != nil {
			obs.LogEvent(map[string]any{"level": "error", "msg": "token setup failed", "error": err.Error()})
			os.Exit(1)
		}
		opts.Tokens = tokens
	} else {
		obs.LogEvent(map[string]any{"level": "warn", "msg": "auth secret not set, running unauthenticated"})
	}

	if cfg.Database.DSN != "" {
		store, err := pg.Open(cfg.Database.DSN)
		if err != nil {
			obs.LogEvent(map[string]any{"level": "error", "msg": "database open failed", "error": err.Error()})
			os.Exit(1)
		}
		defer store.Close()

		recorder := audit.NewRecorder(store)
		opts.ReadyProbe = httpapi.ReadyProbe{DB: store.DB()}
		opts.Grants = authz.NewGrants(store, recorder)
		opts.Evaluator = authz.NewEvaluator(store)
		opts.Concepts = lifecycle.NewConcepts(store.Concepts())
		opts.Seasons = lifecycle.NewSeasons(store.Seasons())
	} else {
		// No database: serve grants from memory so local development works.
		// Lifecycle endpoints report unavailable until a DSN is configured.
		obs.LogEvent(map[string]any{"level": "warn", "msg": "no database DSN, using in-memory grant store"})
		grantStore := authz.NewMemoryGrantStore()
		opts.Grants = authz.NewGrants(grantStore, nil)
		opts.Evaluator = authz.NewEvaluator(grantStore)
	}

	api := httpapi.New(opts)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		obs.LogEvent(map[string]any{"level": "info", "msg": "server listening", "addr": cfg.Server.Addr, "version": version})
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		obs.LogEvent(map[string]any{"level": "info", "msg": "shutting down", "signal": sig.String()})
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			obs.LogEvent(map[string]any{"level": "error", "msg": "server failed", "error": err.Error()})
			os.Exit(1)
		}
		return
	}

	obs.SetReady(false)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		obs.LogEvent(map[string]any{"level": "error", "msg": "shutdown failed", "error": err.Error()})
		os.Exit(1)
	}
	obs.LogEvent(map[string]any{"level": "info", "msg": "server stopped"})
}
