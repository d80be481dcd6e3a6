package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gamebridge/kick-relay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emoteConfig(host string) *config.Config {
	return &config.Config{
		Upstream: config.UpstreamConfig{EmoteHost: host},
	}
}

func TestEmoteRelaySuccess(t *testing.T) {
	payload := []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61} // GIF89a

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emotes/12345/fullsize", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer ts.Close()

	h := newTestHandler(emoteConfig(ts.URL))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/emotes/12345", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, payload, rec.Body.Bytes())
}

func TestEmoteRelayPropagatesUpstreamStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	h := newTestHandler(emoteConfig(ts.URL))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/emotes/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code, "upstream status is propagated unchanged")
	assert.Contains(t, rec.Body.String(), "failed to fetch emote")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestEmoteRelayTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused

	h := newTestHandler(emoteConfig(ts.URL))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/emotes/12345", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to fetch emote")
}

func TestEmoteContentTypeDefault(t *testing.T) {
	assert.Equal(t, "image/gif", emoteContentType(http.Header{}))

	header := http.Header{}
	header.Set("Content-Type", "image/webp")
	assert.Equal(t, "image/webp", emoteContentType(header))
}
