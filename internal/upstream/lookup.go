package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gamebridge/kick-relay/internal/config"
	"github.com/gamebridge/kick-relay/internal/logger"
	"go.uber.org/zap"
)

// namePublicUsers marks the new-style endpoint whose array-wrapped shape is
// the only one that gets normalized.
const namePublicUsers = "public-users"

// Chatroom carries the chat room id of a user's channel. A nil ID serializes
// as null when the channel lookup failed.
type Chatroom struct {
	ID *string `json:"id"`
}

// Profile is the normalized client-facing user shape.
type Profile struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email,omitempty"`
	ProfilePicture string   `json:"profile_picture,omitempty"`
	Chatroom       Chatroom `json:"chatroom"`
}

// UserResult is a ready-to-send user lookup payload. Normalized is true when
// Body holds a Profile; otherwise Body is the accepted endpoint's JSON,
// passed through unmodified.
type UserResult struct {
	Body       []byte
	Normalized bool
}

// Lookup resolves a user from an ordered list of upstream endpoints.
type Lookup struct {
	cfg    *config.UpstreamConfig
	client *Client
}

// NewLookup creates a new user lookup service
func NewLookup(cfg *config.UpstreamConfig, client *Client) *Lookup {
	return &Lookup{
		cfg:    cfg,
		client: client,
	}
}

func bearerGET(endpoint string) func(ctx context.Context, accessToken string) (*http.Request, error) {
	return func(ctx context.Context, accessToken string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}
}

// candidates builds the fallback sequence in order of reliability: the
// new-style public users endpoint, the configured API base, then the legacy
// variants.
func (l *Lookup) candidates() []Candidate {
	cands := []Candidate{
		{Name: namePublicUsers, NewRequest: bearerGET(l.cfg.UsersURL)},
		{Name: "api-base-user", NewRequest: bearerGET(strings.TrimSuffix(l.cfg.APIBase, "/") + "/user")},
	}
	for i, endpoint := range l.cfg.LegacyUserEndpoints {
		cands = append(cands, Candidate{
			Name:       fmt.Sprintf("legacy-%d", i+1),
			NewRequest: bearerGET(endpoint),
		})
	}
	return cands
}

// User tries the candidate endpoints in order and returns the first accepted
// payload. Only the new-style endpoint's response is normalized; anything
// else is relayed as-is.
func (l *Lookup) User(ctx context.Context, accessToken string) (*UserResult, error) {
	accepted, err := l.client.First(ctx, accessToken, l.candidates())
	if err != nil {
		return nil, err
	}

	if accepted.Candidate.Name != namePublicUsers {
		return &UserResult{Body: accepted.Response.Body}, nil
	}

	var payload struct {
		Data []struct {
			UserID         json.Number `json:"user_id"`
			Name           string      `json:"name"`
			Email          string      `json:"email"`
			ProfilePicture string      `json:"profile_picture"`
		} `json:"data"`
	}
	if err := json.Unmarshal(accepted.Response.Body, &payload); err != nil || len(payload.Data) == 0 {
		// Accepted JSON without the array-wrapped shape; relay it untouched.
		return &UserResult{Body: accepted.Response.Body}, nil
	}

	user := payload.Data[0]
	profile := Profile{
		ID:             user.UserID.String(),
		Username:       user.Name,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
	}

	// Secondary lookup is best effort: a missing chatroom id must not fail
	// the whole request.
	if id, err := l.chatroomID(ctx, user.Name); err != nil {
		logger.Warn("Chatroom lookup failed",
			zap.String("username", user.Name),
			zap.Error(err),
		)
	} else {
		profile.Chatroom.ID = &id
	}

	body, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return &UserResult{Body: body, Normalized: true}, nil
}

// chatroomID fetches channel info for the given username, unauthenticated,
// and extracts the nested chatroom id.
func (l *Lookup) chatroomID(ctx context.Context, username string) (string, error) {
	endpoint := strings.TrimSuffix(l.cfg.ChannelsURL, "/") + "/" + url.PathEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	if !resp.Success() {
		return "", fmt.Errorf("channel info request failed with status %d", resp.StatusCode)
	}

	var channel struct {
		Chatroom struct {
			ID json.Number `json:"id"`
		} `json:"chatroom"`
	}
	if err := json.Unmarshal(resp.Body, &channel); err != nil {
		return "", fmt.Errorf("failed to decode channel info: %w", err)
	}
	if channel.Chatroom.ID.String() == "" {
		return "", fmt.Errorf("channel info for %s has no chatroom id", username)
	}
	return channel.Chatroom.ID.String(), nil
}
