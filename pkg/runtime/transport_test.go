package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc, session *Session) *Transport {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL + "/api/"
	transport, err := NewTransport(cfg, session)
	require.NoError(t, err)
	return transport
}

func TestTransport_BearerToken(t *testing.T) {
	tests := []struct {
		name       string
		session    *Session
		wantHeader string
	}{
		{name: "token present", session: NewSession("abc", false), wantHeader: "Bearer abc"},
		{name: "empty session", session: &Session{}, wantHeader: ""},
		{name: "nil session", session: nil, wantHeader: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var requestID string
			transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				requestID = r.Header.Get("X-Request-ID")
				w.WriteHeader(http.StatusNoContent)
			}, tt.session)

			err := transport.Do(context.Background(), http.MethodGet, "/countries", nil, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, got)
			assert.NotEmpty(t, requestID)
		})
	}
}

func TestTransport_TokenChangesAreSeen(t *testing.T) {
	session := &Session{}
	var headers []string
	transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
	}, session)

	ctx := context.Background()
	require.NoError(t, transport.Do(ctx, http.MethodGet, "/a", nil, nil, nil))
	session.Set("fresh", true)
	require.NoError(t, transport.Do(ctx, http.MethodGet, "/a", nil, nil, nil))

	assert.Equal(t, []string{"", "Bearer fresh"}, headers)
}

func TestTransport_URLAndQuery(t *testing.T) {
	var gotPath, gotQuery string
	transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}, nil)

	query := url.Values{"season": {"2"}, "country": {""}}
	err := transport.Do(context.Background(), http.MethodGet, "/dishes", query, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "/api/dishes", gotPath)
	assert.Equal(t, "season=2", gotQuery)
}

func TestTransport_EncodesBodyAndDecodesResponse(t *testing.T) {
	transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in["id_country"] = 9
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	}, nil)

	var out struct {
		ID   int    `json:"id_country"`
		Name string `json:"name_country"`
	}
	err := transport.Do(context.Background(), http.MethodPost, "/countries", nil,
		map[string]string{"name_country": "Italy"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 9, out.ID)
	assert.Equal(t, "Italy", out.Name)
}

func TestTransport_HTTPErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantMessage string
	}{
		{name: "not found with error field", status: 404, body: `{"error":"Dish not found"}`, wantErr: ErrNotFound, wantMessage: "Dish not found"},
		{name: "unauthorized with msg field", status: 401, body: `{"msg":"Missing Authorization Header"}`, wantErr: ErrUnauthorized, wantMessage: "Missing Authorization Header"},
		{name: "forbidden", status: 403, body: `{"msg":"admin required"}`, wantErr: ErrForbidden, wantMessage: "admin required"},
		{name: "bad request with message", status: 400, body: `{"message":"exists"}`, wantErr: ErrBadRequest, wantMessage: "exists"},
		{name: "server error without body", status: 500, body: ``, wantErr: ErrServer, wantMessage: ""},
		{name: "non json body", status: 502, body: `<html>`, wantErr: ErrServer, wantMessage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			err := transport.Do(context.Background(), http.MethodGet, "/dishes/1", nil, nil, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.wantMessage, httpErr.Message)
		})
	}
}

func TestTransport_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	server.Close()

	transport, err := NewTransport(cfg, nil)
	require.NoError(t, err)

	err = transport.Do(context.Background(), http.MethodGet, "/countries", nil, nil, nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "/countries", transportErr.Path)
}

func TestTransport_InvalidJSON(t *testing.T) {
	transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}, nil)

	var out map[string]any
	err := transport.Do(context.Background(), http.MethodGet, "/countries", nil, nil, &out)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestTransport_CanceledContext(t *testing.T) {
	transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := transport.Do(ctx, http.MethodGet, "/countries", nil, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Dish not found", UserMessage(&HTTPError{Status: 404, Message: "Dish not found"}, "Failed"))
	assert.Equal(t, "Failed", UserMessage(&HTTPError{Status: 500}, "Failed"))
	assert.Equal(t, "Failed", UserMessage(errors.New("boom"), "Failed"))
	assert.Contains(t, UserMessage(&ValidationError{Field: "rate", Message: "out of range"}, "Failed"), "rate")
}
