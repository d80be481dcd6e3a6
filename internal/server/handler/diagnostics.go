package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gamebridge/kick-relay/internal/config"
	"github.com/gamebridge/kick-relay/internal/utils"
)

// HandleRoot reports the service identity and its route table.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"service": "kick-relay",
		"version": config.Version(),
		"time":    time.Now().UTC().Format(time.RFC3339),
		"routes": []string{
			"GET /emotes/{id}",
			"POST /api/token",
			"POST /api/user",
			"GET /health",
			"GET /test",
			"GET /metrics",
		},
	})
}

// HandleHealth reports whether the OAuth client credentials are configured.
// It makes no upstream calls.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":                   "ok",
		"client_id_configured":     h.cfg.OAuth.ClientID != "",
		"client_secret_configured": h.cfg.OAuth.ClientSecret != "",
		"time":                     time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleEcho echoes the request's method, path and headers for CORS
// debugging from the browser.
func (h *Handler) HandleEcho(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		headers[name] = strings.Join(values, ", ")
	}

	utils.WriteJSON(w, map[string]interface{}{
		"method":  r.Method,
		"path":    r.URL.Path,
		"origin":  r.Header.Get("Origin"),
		"headers": headers,
	})
}

// HandleNotFound answers unmatched routes with the requested path and
// method echoed in the body.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONStatus(w, http.StatusNotFound, map[string]interface{}{
		"error":             "not_found",
		"error_description": fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path),
		"method":            r.Method,
		"path":              r.URL.Path,
	})
}
