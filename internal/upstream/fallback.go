package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gamebridge/kick-relay/internal/logger"
	"go.uber.org/zap"
)

// ErrNoCandidates indicates an empty fallback list.
var ErrNoCandidates = errors.New("no candidate endpoints configured")

// Candidate is one upstream endpoint in a fallback sequence. Adding an
// endpoint means appending a Candidate, not branching on its URL.
type Candidate struct {
	Name       string
	NewRequest func(ctx context.Context, accessToken string) (*http.Request, error)
}

// Accepted is the first candidate response that passed acceptance.
type Accepted struct {
	Candidate Candidate
	Response  *Response
}

// First tries candidates strictly in order and returns the first accepted
// response. A candidate fails, and the next one is tried, when the call
// errors at transport level, the status is not 2xx, or the content type is
// not JSON. When every candidate fails, the last failure is returned.
func (c *Client) First(ctx context.Context, accessToken string, candidates []Candidate) (*Accepted, error) {
	var lastErr error

	for _, cand := range candidates {
		req, err := cand.NewRequest(ctx, accessToken)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", cand.Name, err)
			continue
		}

		resp, err := c.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", cand.Name, err)
			logger.Warn("Candidate endpoint failed",
				zap.String("endpoint", cand.Name),
				zap.Error(err),
			)
			continue
		}

		if !resp.Success() {
			lastErr = fmt.Errorf("%s: unexpected status %d", cand.Name, resp.StatusCode)
			logger.Warn("Candidate endpoint returned non-success status",
				zap.String("endpoint", cand.Name),
				zap.Int("status", resp.StatusCode),
			)
			continue
		}

		if !resp.IsJSON() {
			lastErr = fmt.Errorf("%s: unexpected content type %q", cand.Name, resp.ContentType())
			logger.Warn("Candidate endpoint returned non-JSON content type",
				zap.String("endpoint", cand.Name),
				zap.String("content_type", resp.ContentType()),
			)
			continue
		}

		return &Accepted{Candidate: cand, Response: resp}, nil
	}

	if lastErr == nil {
		lastErr = ErrNoCandidates
	}
	return nil, lastErr
}
