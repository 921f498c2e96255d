package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/featherpost/client/internal/logging"
)

// maxResponseBytes caps how much of a response body the client will read.
const maxResponseBytes = 1 << 20

// Credentials is the session surface the gateway needs: the current bearer
// token and the invalidation hook fired on authorization-denied responses.
type Credentials interface {
	Token() (string, bool)
	Invalidate(ctx context.Context)
}

// Client is the single point of outbound calls to the backend. Every request
// is augmented with the current credential when one is present; anonymous
// calls are allowed for public endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
	limiter *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit throttles outbound calls to the given events per second with
// the provided burst capacity.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			perSecond = 1
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New constructs a Client for the given base URL. creds may be nil for a
// purely anonymous client.
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do issues a JSON request and decodes a 2xx response into out when out is
// non-nil. Failures map onto the error taxonomy: AuthError after triggering
// session invalidation, ValidationError for field-level rejections,
// ServerError for other non-2xx statuses, NetworkError for transport
// failures.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	ctx, op := logging.StartOp(ctx, method+" "+path)

	err := c.do(ctx, method, path, body, out)
	op.End(err)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Err: err}
		}
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	authenticated := false
	if c.creds != nil {
		if token, ok := c.creds.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Err: err}
	}

	logging.FromContext(ctx).Debug("response received", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := errorFromResponse(resp.StatusCode, raw)
		// An authorization-denied response invalidates the session exactly
		// once per offending response, but only when a credential was sent:
		// a 401 on an anonymous call has no session to end.
		var authErr *AuthError
		if authenticated && errors.As(respErr, &authErr) {
			c.creds.Invalidate(ctx)
		}
		return respErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}
