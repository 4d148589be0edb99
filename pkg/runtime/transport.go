package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Doer is the subset of *http.Client used by Transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport issues JSON requests against the API base URL, attaching the
// session's bearer token when one is present.
type Transport struct {
	baseURL   string
	userAgent string
	session   *Session
	http      Doer
	logger    zerolog.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(doer Doer) Option {
	return func(t *Transport) {
		t.http = doer
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// NewTransport creates a Transport from config and an explicit session.
// A nil session sends every request unauthenticated.
func NewTransport(config *Config, session *Session, opts ...Option) (*Transport, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if session == nil {
		session = &Session{}
	}

	t := &Transport{
		baseURL:   config.BaseURL,
		userAgent: config.UserAgent,
		session:   session,
		http:      &http.Client{Timeout: config.Timeout},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Session returns the session the transport authenticates with.
func (t *Transport) Session() *Session {
	return t.session
}

// BaseURL returns the configured API base URL.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// Do sends one request. body, when non-nil, is encoded as JSON; a 2xx
// response body is decoded into out when out is non-nil.
func (t *Transport) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := t.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	requestID := req.Header.Get("X-Request-ID")
	start := time.Now()

	resp, err := t.http.Do(req)
	if err != nil {
		t.logger.Debug().
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Err(err).
			Msg("request failed")
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}

	t.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: serverMessage(payload),
		}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrInvalidResponse, err)
	}
	return nil
}

func (t *Transport) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := t.baseURL + path
	if encoded := encodeQuery(query); encoded != "" {
		target += "?" + encoded
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if token := t.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// encodeQuery drops keys whose values are all empty.
func encodeQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	clean := url.Values{}
	for key, values := range query {
		for _, v := range values {
			if v != "" {
				clean.Add(key, v)
			}
		}
	}
	return clean.Encode()
}

// serverMessage extracts the first of message, msg or error from a JSON
// error body.
func serverMessage(payload []byte) string {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	for _, key := range []string{"message", "msg", "error"} {
		if v, ok := body[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
