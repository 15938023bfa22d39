// Package gateway wraps every outbound call to the backend: it attaches the
// bearer token, performs at most one transparent refresh-and-retry on a 401,
// and validates response bodies against their declared schemas.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	terrors "tradegate/internal/errors"
	"tradegate/internal/schema"
	"tradegate/internal/session"
)

const refreshPath = "/auth/refresh"

// tokenSchema is the declared shape of the refresh endpoint response.
var tokenSchema = schema.New("TokenPair", schema.Object(
	schema.F("access_token", schema.String()),
	schema.F("refresh_token", schema.String()),
	schema.Opt("token_type", schema.String()),
))

// Descriptor describes one outbound request. It is constructed per call and
// never retained. Body is JSON-encoded; Form is form-encoded and takes
// precedence over Body for endpoints that expect form data.
type Descriptor struct {
	Method       string
	Path         string
	Query        map[string]string
	Body         interface{}
	Form         map[string]string
	RequiresAuth bool
}

// Config holds gateway configuration.
type Config struct {
	BaseURL string
	Tokens  session.Store
	Logger  zerolog.Logger
	Timeout time.Duration
}

// Client is the authenticated request gateway.
type Client struct {
	rest   *resty.Client
	tokens session.Store
	logger zerolog.Logger
}

// New creates a gateway client. Automatic transport-level retries are
// disabled: the only retry the gateway ever performs is the single
// refresh-and-retry cycle on a 401.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "tradegate")

	return &Client{
		rest:   rest,
		tokens: cfg.Tokens,
		logger: cfg.Logger,
	}
}

// Tokens returns the session store the gateway reads bearer tokens from.
func (c *Client) Tokens() session.Store {
	return c.tokens
}

// Do executes the described request and returns the raw response body after
// it passed schema validation.
//
// When the descriptor requires auth and no token pair is stored, it fails
// with ErrUnauthenticated before any network I/O. A 401 response triggers
// exactly one refresh of the token pair followed by one retry of the
// original request; a failed refresh clears the store and surfaces
// ErrSessionExpired. Any other non-2xx response becomes a RequestError, and
// a 2xx body that does not match s becomes a SchemaError.
func (c *Client) Do(ctx context.Context, d Descriptor, s *schema.Schema) (json.RawMessage, error) {
	correlationID := uuid.NewString()

	var access string
	if d.RequiresAuth {
		tokens, ok := c.tokens.Get()
		if !ok {
			return nil, terrors.ErrUnauthenticated
		}
		access = tokens.Access
	}

	resp, err := c.execute(ctx, d, access, correlationID)
	if err != nil {
		return nil, err
	}

	if d.RequiresAuth && resp.StatusCode() == http.StatusUnauthorized {
		refreshed, err := c.refresh(ctx, correlationID)
		if err != nil {
			return nil, err
		}
		resp, err = c.execute(ctx, d, refreshed.Access, correlationID)
		if err != nil {
			return nil, err
		}
	}

	if !resp.IsSuccess() {
		return nil, terrors.NewRequestError(resp.StatusCode(), d.Method, d.Path, string(resp.Body()))
	}

	body := resp.Body()
	if s != nil {
		if err := s.Validate(body); err != nil {
			c.logger.Warn().
				Str("correlation_id", correlationID).
				Str("path", d.Path).
				Str("schema", s.Name()).
				Err(err).
				Msg("Response failed schema validation")
			return nil, err
		}
	}
	return json.RawMessage(body), nil
}

// execute performs a single HTTP round trip.
func (c *Client) execute(ctx context.Context, d Descriptor, access, correlationID string) (*resty.Response, error) {
	req := c.rest.R().
		SetContext(ctx).
		SetHeader("X-Correlation-ID", correlationID)

	if access != "" {
		req.SetAuthToken(access)
	}
	if len(d.Query) > 0 {
		req.SetQueryParams(d.Query)
	}
	if len(d.Form) > 0 {
		req.SetFormData(d.Form)
	} else if d.Body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(d.Body)
	}

	start := time.Now()
	resp, err := req.Execute(d.Method, d.Path)
	duration := time.Since(start)

	event := c.logger.Debug().
		Str("event", "api_call").
		Str("correlation_id", correlationID).
		Str("method", d.Method).
		Str("path", d.Path).
		Dur("duration", duration)

	if err != nil {
		event.Err(err).Msg("API call failed")
		return nil, fmt.Errorf("request %s %s: %w", d.Method, d.Path, err)
	}

	event.Int("status", resp.StatusCode()).Msg("API call completed")
	return resp, nil
}

// refresh performs the single transparent refresh attempt. On any failure
// the token store is cleared before ErrSessionExpired is returned, so a
// stale access token is never reused.
func (c *Client) refresh(ctx context.Context, correlationID string) (session.Tokens, error) {
	tokens, ok := c.tokens.Get()
	if !ok {
		return session.Tokens{}, terrors.ErrUnauthenticated
	}

	// The backend takes the refresh token as a scalar query parameter.
	resp, err := c.execute(ctx, Descriptor{
		Method: http.MethodPost,
		Path:   refreshPath,
		Query:  map[string]string{"refresh_token": tokens.Refresh},
	}, "", correlationID)
	if err != nil {
		return session.Tokens{}, c.expireSession(correlationID, err)
	}
	if !resp.IsSuccess() {
		cause := terrors.NewRequestError(resp.StatusCode(), http.MethodPost, refreshPath, string(resp.Body()))
		return session.Tokens{}, c.expireSession(correlationID, cause)
	}
	if err := tokenSchema.Validate(resp.Body()); err != nil {
		return session.Tokens{}, c.expireSession(correlationID, err)
	}

	var refreshed session.Tokens
	if err := json.Unmarshal(resp.Body(), &refreshed); err != nil {
		return session.Tokens{}, c.expireSession(correlationID, err)
	}

	if err := c.tokens.Set(refreshed); err != nil {
		// The refreshed pair is valid even if persisting it failed.
		c.logger.Warn().Str("correlation_id", correlationID).Err(err).Msg("Failed to persist refreshed session")
	}
	c.logger.Info().Str("correlation_id", correlationID).Msg("Session refreshed")
	return refreshed, nil
}

func (c *Client) expireSession(correlationID string, cause error) error {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Warn().Str("correlation_id", correlationID).Err(err).Msg("Failed to clear session store")
	}
	c.logger.Info().Str("correlation_id", correlationID).Err(cause).Msg("Session expired")
	return terrors.Wrap(terrors.ErrSessionExpired, cause.Error())
}
