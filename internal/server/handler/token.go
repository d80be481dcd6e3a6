package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gamebridge/kick-relay/internal/auth"
	"github.com/gamebridge/kick-relay/internal/logger"
	"github.com/gamebridge/kick-relay/internal/utils"
	"go.uber.org/zap"
)

type tokenExchangeRequest struct {
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	CodeVerifier string `json:"code_verifier"`
}

// HandleTokenExchange relays an authorization-code exchange to the identity
// service. Input and configuration are validated before any network call;
// upstream failures are forwarded with their original status and body.
func (h *Handler) HandleTokenExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req tokenExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, "invalid_request", "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Code == "" || req.RedirectURI == "" || req.CodeVerifier == "" {
		utils.WriteError(w, "invalid_request", "code, redirect_uri and code_verifier are required", http.StatusBadRequest)
		return
	}

	if !h.provider.Configured() {
		utils.WriteError(w, "server_misconfigured", "OAuth client credentials are not configured", http.StatusInternalServerError)
		return
	}

	result, err := h.provider.ExchangeCode(r.Context(), req.Code, req.CodeVerifier, req.RedirectURI)
	if err != nil {
		if status, body, ok := auth.UpstreamError(err); ok {
			logger.Error("Token endpoint rejected exchange",
				zap.Int("status", status),
				zap.Error(err),
			)
			// Forward the upstream error body verbatim for diagnostics.
			utils.WriteRaw(w, "application/json", status, body)
			return
		}
		logger.Error("Failed to exchange code", zap.Error(err))
		utils.WriteError(w, "exchange_failed", err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, result)
}
