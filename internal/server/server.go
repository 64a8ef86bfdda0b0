// Package server carries the process-level HTTP surface: the Telegram
// webhook receiver, liveness probes and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	addr    string
	metrics *Metrics

	// webhookPath is empty in long-polling mode, which disables the route.
	webhookPath string
	updates     chan<- tgbotapi.Update
}

func New(addr string, webhookPath string, updates chan<- tgbotapi.Update, metrics *Metrics) *Server {
	return &Server{
		addr:        addr,
		webhookPath: webhookPath,
		updates:     updates,
		metrics:     metrics,
	}
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] http server shutdown: %s", err)
		}
	}()

	log.Printf("[INFO] http server listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	if s.webhookPath != "" {
		r.Post(s.webhookPath, s.handleWebhook)
	}

	return r
}

// handleWebhook accepts a single Telegram update payload and enqueues it for
// the bot loop. The response carries only a status code.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("[WARN] bad webhook payload: %s", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.metrics.WebhookUpdates.Inc()
	s.updates <- update
	w.WriteHeader(http.StatusOK)
}
