package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gamebridge/kick-relay/internal/config"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lookupFixture wires a Lookup against one stub server whose paths stand in
// for the individual upstream endpoints.
func lookupFixture(ts *httptest.Server) *Lookup {
	cfg := &config.UpstreamConfig{
		UsersURL:    ts.URL + "/public/users",
		APIBase:     ts.URL + "/api/v1",
		ChannelsURL: ts.URL + "/channels",
		LegacyUserEndpoints: []string{
			ts.URL + "/legacy/v1/user",
			ts.URL + "/legacy/v2/user",
		},
	}
	return NewLookup(cfg, NewClient())
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestUserNormalizesNewStyleShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/public/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[{"user_id":42,"name":"streamer","email":"s@example.com","profile_picture":"https://img.example.com/42.png"}]}`)
	})
	mux.HandleFunc("/channels/streamer", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "channel lookup is unauthenticated")
		writeJSON(w, `{"slug":"streamer","chatroom":{"id":99,"channel_id":42}}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	result, err := lookupFixture(ts).User(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, result.Normalized)

	var got Profile
	require.NoError(t, json.Unmarshal(result.Body, &got))

	chatroomID := "99"
	want := Profile{
		ID:             "42",
		Username:       "streamer",
		Email:          "s@example.com",
		ProfilePicture: "https://img.example.com/42.png",
		Chatroom:       Chatroom{ID: &chatroomID},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestUserChatroomFailureIsNonFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/public/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[{"user_id":42,"name":"streamer"}]}`)
	})
	mux.HandleFunc("/channels/streamer", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	result, err := lookupFixture(ts).User(context.Background(), "tok")
	require.NoError(t, err, "a failed chatroom lookup must not fail the request")
	require.True(t, result.Normalized)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(result.Body, &got))
	chatroom, ok := got["chatroom"].(map[string]interface{})
	require.True(t, ok)
	assert.Nil(t, chatroom["id"])
	assert.Equal(t, "streamer", got["username"])
}

func TestUserLegacyResponsePassesThrough(t *testing.T) {
	const legacyBody = `{"id":7,"username":"old-timer","verified":true}`

	mux := http.NewServeMux()
	mux.HandleFunc("/public/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/v1/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>cloudflare</html>"))
	})
	mux.HandleFunc("/legacy/v1/user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, legacyBody)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	result, err := lookupFixture(ts).User(context.Background(), "tok")
	require.NoError(t, err)

	assert.False(t, result.Normalized)
	assert.Equal(t, legacyBody, string(result.Body), "legacy payloads are relayed unmodified")
}

func TestUserTriesCandidatesInFixedOrder(t *testing.T) {
	var order []string
	counts := map[string]int{}
	record := func(path string) {
		order = append(order, path)
		counts[path]++
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/public/users", func(w http.ResponseWriter, r *http.Request) {
		record("/public/users")
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/api/v1/user", func(w http.ResponseWriter, r *http.Request) {
		record("/api/v1/user")
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/legacy/v1/user", func(w http.ResponseWriter, r *http.Request) {
		record("/legacy/v1/user")
		writeJSON(w, `{"id":7}`)
	})
	mux.HandleFunc("/legacy/v2/user", func(w http.ResponseWriter, r *http.Request) {
		record("/legacy/v2/user")
		writeJSON(w, `{"id":8}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	_, err := lookupFixture(ts).User(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, []string{"/public/users", "/api/v1/user", "/legacy/v1/user"}, order)
	assert.Zero(t, counts["/legacy/v2/user"], "candidates after acceptance must not be called")
}

func TestUserAllCandidatesFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := lookupFixture(ts).User(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "legacy-2", "the last candidate's failure is reported")
}

func TestUserEmptyDataPassesThrough(t *testing.T) {
	const emptyBody = `{"data":[]}`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, emptyBody)
	}))
	defer ts.Close()

	result, err := lookupFixture(ts).User(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, result.Normalized)
	assert.Equal(t, emptyBody, string(result.Body))
}
