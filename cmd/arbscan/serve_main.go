package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/arbscan/internal/cache"
	"github.com/sawpanic/arbscan/internal/clock"
	"github.com/sawpanic/arbscan/internal/config"
	"github.com/sawpanic/arbscan/internal/engine"
	"github.com/sawpanic/arbscan/internal/fetch"
	httpserver "github.com/sawpanic/arbscan/internal/interfaces/http"
	"github.com/sawpanic/arbscan/internal/metrics"
	"github.com/sawpanic/arbscan/internal/mirror"
	"github.com/sawpanic/arbscan/internal/persistence/postgres"
	"github.com/sawpanic/arbscan/internal/stats"
)

// pipeline bundles the wired components behind the API.
type pipeline struct {
	cfg     *config.Config
	engine  *engine.Engine
	cache   *cache.SnapshotCache
	metrics *metrics.Registry
	mirror  *mirror.Mirror
	repo    *postgres.OpportunityRepo
}

// buildPipeline wires fetcher, cache, engine and the optional sinks from
// configuration. Callers close the returned pipeline when done.
func buildPipeline(cfg *config.Config, clk clock.Clock) (*pipeline, error) {
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, err
	}

	tracker := stats.NewTracker()
	reg := metrics.NewRegistry()

	fetcher := fetch.New(endpoints, cfg.FetchConfig(), tracker, reg, clk)
	snapCache := cache.New(fetcher.FetchAll, cfg.CacheConfig(), clk, tracker, reg)

	p := &pipeline{cfg: cfg, cache: snapCache, metrics: reg}

	if cfg.Redis.Addr != "" {
		p.mirror = mirror.New(cfg.Redis.Addr, cfg.Redis.Key,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		snapCache.OnRefresh(p.mirror.Publish)
		log.Info().Str("addr", cfg.Redis.Addr).Str("key", cfg.Redis.Key).Msg("redis snapshot mirror enabled")
	}

	var sink engine.Sink
	if cfg.Postgres.DSN != "" {
		repo, err := postgres.Open(cfg.Postgres.DSN,
			time.Duration(cfg.Postgres.TimeoutSeconds)*time.Second)
		if err != nil {
			return nil, err
		}
		p.repo = repo
		sink = repo
		log.Info().Msg("postgres analytics sink enabled")
	}

	p.engine = engine.New(cfg.EngineConfig(), snapCache, fetcher, tracker, reg, clk, sink)
	return p, nil
}

func (p *pipeline) close() {
	p.engine.Close()
	if p.mirror != nil {
		_ = p.mirror.Close()
	}
	if p.repo != nil {
		_ = p.repo.Close()
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		host, port, err := splitListen(listen)
		if err != nil {
			return err
		}
		cfg.Server.Host, cfg.Server.Port = host, port
	}

	clk := clock.Real{}
	p, err := buildPipeline(cfg, clk)
	if err != nil {
		return err
	}
	defer p.close()

	// Keep the snapshot warm so requests rarely pay fetch latency.
	p.cache.StartBackground(cfg.BackgroundInterval(), cfg.CacheConfig().TTL)

	srv, err := httpserver.NewServer(httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second,
	}, p.engine, p.metrics, clk)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown requested")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
