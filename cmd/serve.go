package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridpulse/csgstat/internal/engine"
	"github.com/gridpulse/csgstat/internal/monitoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the refresh loop and serve snapshots over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e := newEnv(cfg)

		go func() {
			if err := e.worker.Run(ctx, e.interval); err != nil && !errors.Is(err, context.Canceled) {
				zap.L().Error("refresh loop exited", zap.Error(err))
			}
		}()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(e.worker, monitoring.NewCollector(e.worker), e.registry),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the read surface: health, snapshots, engine status and
// prometheus metrics.
func newRouter(worker *engine.Worker, coll *monitoring.Collector, registry *prometheus.Registry) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/snapshots", func(w http.ResponseWriter, req *http.Request) {
		snaps, _, ok := worker.Latest()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no successful cycle yet"})
			return
		}
		writeJSON(w, http.StatusOK, snaps)
	})

	r.Get("/snapshots/{account}", func(w http.ResponseWriter, req *http.Request) {
		snaps, _, ok := worker.Latest()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no successful cycle yet"})
			return
		}
		snap, ok := snaps[chi.URLParam(req, "account")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown account"})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, coll.Collect())
	})

	r.Post("/refresh", func(w http.ResponseWriter, req *http.Request) {
		worker.Trigger()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
