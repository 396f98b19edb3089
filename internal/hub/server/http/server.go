// Package http exposes the operational surface of the hub: health probes,
// Prometheus metrics and a read-only JSON view of the vehicle and its
// sessions.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/registry"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/vehicle"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
)

type Server struct {
	server  *http.Server
	options *options.HttpOptions
}

// NewServer builds the operational HTTP server. The vehicle store and
// session registry back the read-only API; neither is mutated here.
func NewServer(opts *options.HttpOptions, store *vehicle.Store, sessions *registry.Registry) *Server {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/vehicle", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, store.Snapshot())
	}).Methods(http.MethodGet)
	api.HandleFunc("/sessions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, sessionsView{
			Capacity: sessions.Capacity(),
			Active:   sessions.Count(),
			Sessions: sessions.Authorized(),
		})
	}).Methods(http.MethodGet)

	return &Server{
		server: &http.Server{
			Addr:        opts.Addr,
			Handler:     r,
			ReadTimeout: opts.Timeout,
		},
		options: opts,
	}
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	log.Info("HTTP server started", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

type sessionsView struct {
	Capacity int                 `json:"capacity"`
	Active   int                 `json:"active"`
	Sessions []model.SessionInfo `json:"sessions"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error(err, "Failed to encode response")
	}
}
