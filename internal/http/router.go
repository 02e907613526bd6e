// Package http assembles the service router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cardhandler "campuscard/internal/card/handler"
	"campuscard/internal/platform/middleware"
	verifyhandler "campuscard/internal/verification/handler"
)

// Registrar is anything that can mount routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires middleware, operational endpoints, and feature handlers.
func NewRouter(card *cardhandler.Handler, verify *verifyhandler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range []Registrar{card, verify} {
		h.Register(r)
	}
	return r
}
