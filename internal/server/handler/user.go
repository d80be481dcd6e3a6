package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gamebridge/kick-relay/internal/logger"
	"github.com/gamebridge/kick-relay/internal/utils"
	"go.uber.org/zap"
)

type userLookupRequest struct {
	AccessToken string `json:"access_token"`
}

// HandleUserLookup resolves the caller's user via the upstream fallback
// sequence. When every candidate endpoint fails, the last failure is
// reported as a 500.
func (h *Handler) HandleUserLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req userLookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, "invalid_request", "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AccessToken == "" {
		utils.WriteError(w, "invalid_request", "access_token is required", http.StatusBadRequest)
		return
	}

	result, err := h.lookup.User(r.Context(), req.AccessToken)
	if err != nil {
		logger.Error("User lookup exhausted all endpoints", zap.Error(err))
		utils.WriteError(w, "lookup_failed", err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteRaw(w, "application/json", http.StatusOK, result.Body)
}
