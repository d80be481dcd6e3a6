package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gamebridge/kick-relay/internal/logger"
	"github.com/gamebridge/kick-relay/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultEmoteType  = "image/gif"
	emoteCacheControl = "public, max-age=3600"
)

// HandleEmote relays an emote image from the upstream content host. The
// identifier is passed through untouched; whatever the upstream accepts is
// valid here too.
func (h *Handler) HandleEmote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	endpoint := fmt.Sprintf("%s/emotes/%s/fullsize", strings.TrimSuffix(h.cfg.Upstream.EmoteHost, "/"), id)

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, endpoint, nil)
	if err != nil {
		utils.WriteError(w, "upstream_error", "failed to fetch emote", http.StatusInternalServerError)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		logger.Error("Emote fetch failed",
			zap.String("emote_id", id),
			zap.Error(err),
		)
		utils.WriteError(w, "upstream_error", "failed to fetch emote", http.StatusInternalServerError)
		return
	}

	if !resp.Success() {
		// Propagate the upstream status, but not its body.
		utils.WriteError(w, "upstream_error", "failed to fetch emote", resp.StatusCode)
		return
	}

	w.Header().Set("Content-Type", emoteContentType(resp.Header))
	w.Header().Set("Cache-Control", emoteCacheControl)
	if _, err := w.Write(resp.Body); err != nil {
		logger.Error("Failed to write emote body", zap.Error(err))
	}
}

// emoteContentType returns the upstream content type, or the gif default
// when the upstream did not declare one.
func emoteContentType(header http.Header) string {
	if ct := header.Get("Content-Type"); ct != "" {
		return ct
	}
	return defaultEmoteType
}
