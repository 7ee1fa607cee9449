package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridpulse/csgstat/internal/config"
	"github.com/gridpulse/csgstat/internal/engine"
	"github.com/gridpulse/csgstat/pkg/csg"
)

// env wires the engine and its worker from config. Shared by every
// command that runs cycles.
type env struct {
	worker   *engine.Worker
	interval time.Duration
	registry *prometheus.Registry
}

func newEnv(cfg *config.Config) *env {
	client := csg.NewClient(cfg.API.AuthToken,
		csg.WithBaseURL(cfg.API.BaseURL),
		csg.WithRateLimit(cfg.API.RateRPS, cfg.API.RateBurst),
	)

	registry := prometheus.NewRegistry()
	eng := engine.New(client, cfg.Accounts,
		time.Duration(cfg.Update.TimeoutSecs)*time.Second,
		engine.WithMetrics(engine.NewMetrics(registry)),
	)

	return &env{
		worker:   engine.NewWorker(eng),
		interval: time.Duration(cfg.Update.IntervalSecs) * time.Second,
		registry: registry,
	}
}
