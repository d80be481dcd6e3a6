// Package auth performs the server side of the OAuth authorization-code
// exchange against the upstream identity service.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gamebridge/kick-relay/internal/config"
	"go.uber.org/fx"
	"golang.org/x/oauth2"
)

// ErrNotConfigured indicates the relay has no client credentials and cannot
// perform a token exchange. It is a configuration error, not an upstream one.
var ErrNotConfigured = errors.New("oauth client credentials are not configured")

// TokenResult is the client-facing shape of a successful exchange. The
// upstream refresh token is never part of it: refresh tokens must not reach
// the browser.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// Provider exchanges an authorization code for a token
type Provider interface {
	ExchangeCode(ctx context.Context, code, codeVerifier, redirectURI string) (*TokenResult, error)
	Configured() bool
}

// KickProvider implements Provider against the configured identity endpoints
type KickProvider struct {
	cfg          *config.OAuthConfig
	oauth2Config *oauth2.Config
}

func NewKickProvider(cfg *config.OAuthConfig) *KickProvider {
	return &KickProvider{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthorizeURL,
				TokenURL: cfg.TokenURL,
				// The upstream expects client credentials form-encoded,
				// not as basic auth.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// Configured reports whether both client id and secret are set.
func (p *KickProvider) Configured() bool {
	return p.cfg.Configured()
}

// ExchangeCode performs the authorization_code grant and reshapes the
// upstream token into a TokenResult. Upstream failures come back as
// *oauth2.RetrieveError so callers can forward the original status and body.
func (p *KickProvider) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURI string) (*TokenResult, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}

	cfg := *p.oauth2Config // copy
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}

	opts := []oauth2.AuthCodeOption{}
	if codeVerifier != "" {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	}

	tok, err := cfg.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, err
	}

	expiresIn := tok.ExpiresIn
	if expiresIn == 0 && !tok.Expiry.IsZero() {
		expiresIn = int64(time.Until(tok.Expiry).Seconds())
	}

	scope, _ := tok.Extra("scope").(string)

	return &TokenResult{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   expiresIn,
		Scope:       scope,
	}, nil
}

// UpstreamError extracts the upstream token endpoint's status and raw body
// from an exchange error, when there is one to forward.
func UpstreamError(err error) (status int, body []byte, ok bool) {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) && rErr.Response != nil {
		return rErr.Response.StatusCode, rErr.Body, true
	}
	return 0, nil, false
}

// Module provides the auth dependencies
var Module = fx.Module("auth",
	fx.Provide(
		fx.Annotate(
			NewKickProvider,
			fx.As(new(Provider)),
		),
	),
)
