// Package gateway is the single chokepoint for calls to the library backend.
// It attaches credentials, speaks JSON both ways, and converts non-2xx
// responses into errors carrying the raw body text. It performs no retries;
// retry policy, if any, belongs to callers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"libris/config"
	"libris/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// TokenSource yields the current bearer token, or "" when unauthenticated.
// The session owns the token; the gateway only reads it.
type TokenSource interface {
	Token() string
}

// HTTPError is a non-2xx backend response. Error() returns the raw body text,
// or "HTTP <status>" when the body is empty, matching what views surface.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return e.Body
	}

	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Params defines the required parameters
type Params struct {
	fx.In

	Config *config.Config
	Tokens TokenSource
	Logger *slog.Logger
}

// Gateway is the HTTP client wrapper used by every usecase.
type Gateway struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

// New creates the gateway from configuration. The token source is injected so
// session state stays an explicit dependency.
func New(params Params) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(params.Config.API.BaseURL, "/"),
		client:  &http.Client{Timeout: params.Config.API.Timeout},
		tokens:  params.Tokens,
		logger:  params.Logger,
	}
}

// Do performs a request against the backend. A non-nil body is serialized as
// JSON. The response body is returned as raw JSON; an empty 2xx body yields an
// empty JSON object so callers can decode unconditionally.
func (g *Gateway) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return g.do(ctx, method, path, body, g.tokens.Token())
}

// DoWithToken performs a request with an explicit token override, used during
// login before the session is established.
func (g *Gateway) DoWithToken(ctx context.Context, method, path string, body any, token string) (json.RawMessage, error) {
	return g.do(ctx, method, path, body, token)
}

func (g *Gateway) do(ctx context.Context, method, path string, body any, token string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	g.logger.Debug("gateway request", "method", method, "path", path)

	res, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()

	text, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		g.logger.Debug("gateway error response", "path", path, "status", res.StatusCode)

		return nil, &HTTPError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	if len(bytes.TrimSpace(text)) == 0 {
		return json.RawMessage("{}"), nil
	}

	return json.RawMessage(text), nil
}

// Get is shorthand for Do with http.MethodGet and no body.
func (g *Gateway) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return g.Do(ctx, http.MethodGet, path, nil)
}
