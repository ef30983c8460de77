package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/gridpulse/internal/config"
	"github.com/sawpanic/gridpulse/internal/engine"
	httpapi "github.com/sawpanic/gridpulse/internal/interfaces/http"
	"github.com/sawpanic/gridpulse/internal/metrics"
	"github.com/sawpanic/gridpulse/internal/publisher"
	"github.com/sawpanic/gridpulse/internal/scheduler"
	"github.com/sawpanic/gridpulse/internal/store"
	"github.com/sawpanic/gridpulse/internal/stream"
)

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	setLogLevel(logLevel)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	eng, err := engine.New(cfg, engine.NewSampler(seed), time.Now)
	if err != nil {
		return err
	}

	m := metrics.New()
	hub := stream.NewHub()

	sinks := []scheduler.Sink{hub}
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		sinks = append(sinks, publisher.NewRedis(client, cfg.Redis.Key, cfg.Redis.TTL.D()))
		log.Info().Str("addr", cfg.Redis.Addr).Str("key", cfg.Redis.Key).Msg("Redis publisher enabled")
	}
	if cfg.Postgres.Enabled {
		history, err := store.Open(cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer history.Close()
		sinks = append(sinks, history)
		log.Info().Msg("Postgres history recorder enabled")
	}

	sched := scheduler.New(eng, cfg.Scheduler, m, sinks...)
	server := httpapi.NewServer(cfg.HTTP, sched, m, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		if err := sched.Run(ctx); err != nil && err != context.Canceled {
			errCh <- err
		}
	}()
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutdown requested")
	case err := <-errCh:
		log.Error().Err(err).Msg("Fatal component error")
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	setLogLevel(logLevel)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	eng, err := engine.New(cfg, engine.NewSampler(seed), time.Now)
	if err != nil {
		return err
	}
	bundle, err := eng.BuildBundle(1)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(bundle)
}
