// Package handler provides the relay's HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/gamebridge/kick-relay/internal/auth"
	"github.com/gamebridge/kick-relay/internal/config"
	"github.com/gamebridge/kick-relay/internal/upstream"
)

// Handler holds the dependencies shared by all routes.
type Handler struct {
	cfg      *config.Config
	provider auth.Provider
	client   *upstream.Client
	lookup   *upstream.Lookup
}

// NewHandler creates a new HTTP handler
func NewHandler(cfg *config.Config, provider auth.Provider, client *upstream.Client, lookup *upstream.Lookup) *Handler {
	return &Handler{
		cfg:      cfg,
		provider: provider,
		client:   client,
		lookup:   lookup,
	}
}

// Routes builds the relay's route table. The metrics handler is mounted
// alongside the fixed routes; everything unmatched lands on the catch-all.
func (h *Handler) Routes(metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/{$}", h.HandleRoot)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/test", h.HandleEcho)
	mux.HandleFunc("/emotes/{id}", h.HandleEmote)
	mux.HandleFunc("/api/token", h.HandleTokenExchange)
	mux.HandleFunc("/api/user", h.HandleUserLookup)
	mux.Handle("/metrics", metrics)
	mux.HandleFunc("/", h.HandleNotFound)

	return mux
}
