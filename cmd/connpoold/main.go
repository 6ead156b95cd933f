// Command connpoold runs a set of managed connection pools behind an admin
// HTTP surface: pool statistics, liveness and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/guileen/connpool/api"
	"github.com/guileen/connpool/config"
	"github.com/guileen/connpool/connector/cache"
	"github.com/guileen/connpool/connector/pebbledoc"
	"github.com/guileen/connpool/connector/postgres"
	"github.com/guileen/connpool/connector/tcp"
	"github.com/guileen/connpool/logger"
	"github.com/guileen/connpool/metrics/prom"
	"github.com/guileen/connpool/pool"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "connpoold:", err)
		os.Exit(1)
	}
}

// managedPool is one running pool plus its teardown.
type managedPool struct {
	name  string
	stats api.StatsSource
	close func()
}

func run() error {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	log := logger.NewLogger(logger.Config{
		Level:     logger.ParseLevel(cfg.Logging.Level),
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	})
	logger.Logger = log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var obs pool.Observer = pool.NopObserver{}
	if cfg.Metrics.Enabled {
		obs = prom.NewObserver(prometheus.DefaultRegisterer)
	}

	registry := api.NewRegistry()
	var pools []managedPool
	defer func() {
		for _, mp := range pools {
			mp.close()
		}
	}()

	for _, pc := range cfg.Pools {
		mp, err := buildPool(ctx, pc, obs, log)
		if err != nil {
			return fmt.Errorf("pool %q: %w", pc.Name, err)
		}
		pools = append(pools, mp)
		registry.Register(mp.name, mp.stats)
		log.Info("pool started", "pool", pc.Name, "backend", pc.Backend)
	}

	router := chi.NewRouter()
	router.Mount("/", api.NewHandler(registry, log).Routes())
	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("admin server listening", "addr", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown failed", "error", err)
	}
	return nil
}

func buildPool(ctx context.Context, pc config.PoolConfig, obs pool.Observer, log *slog.Logger) (managedPool, error) {
	cfg := pool.Config{
		Name:                pc.Name,
		MinSize:             pc.MinSize,
		MaxSize:             pc.MaxSize,
		MaxIdleTime:         pc.MaxIdleTime,
		HealthCheckInterval: pc.HealthCheckInterval,
		AcquireTimeout:      pc.AcquireTimeout,
		HealthFailureLimit:  pc.HealthFailureLimit,
		Logger:              log,
		Observer:            obs,
	}

	switch pc.Backend {
	case "tcp":
		p := pool.New(cfg, tcp.New(pc.Address, 5*time.Second))
		if err := p.Initialize(ctx); err != nil {
			return managedPool{}, err
		}
		return managedPool{name: pc.Name, stats: p, close: func() { p.Close() }}, nil

	case "postgres":
		p := pool.New(cfg, postgres.New(pc.Address).WithLogger(log))
		if err := p.Initialize(ctx); err != nil {
			return managedPool{}, err
		}
		return managedPool{name: pc.Name, stats: p, close: func() { p.Close() }}, nil

	case "cache":
		p := pool.New(cfg, cache.New(pc.Address).WithLogger(log))
		if err := p.Initialize(ctx); err != nil {
			return managedPool{}, err
		}
		return managedPool{name: pc.Name, stats: p, close: func() { p.Close() }}, nil

	case "pebble":
		store, err := pebbledoc.Open(pc.Address, nil)
		if err != nil {
			return managedPool{}, err
		}
		p := pool.New(cfg, pebbledoc.NewConnector(store))
		if err := p.Initialize(ctx); err != nil {
			store.Close()
			return managedPool{}, err
		}
		return managedPool{name: pc.Name, stats: p, close: func() {
			p.Close()
			store.Close()
		}}, nil

	default:
		return managedPool{}, fmt.Errorf("unknown backend %q", pc.Backend)
	}
}
