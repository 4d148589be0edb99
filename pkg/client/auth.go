package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/marshallshelly/bistro/pkg/runtime"
	"github.com/marshallshelly/bistro/pkg/schema"
)

// ErrNoToken is returned when a login succeeds without an access token.
var ErrNoToken = errors.New("login response carried no access token")

// Auth handles login and registration.
type Auth struct {
	transport *runtime.Transport
}

// Login exchanges credentials for a token and stores it, with the admin
// flag, in the transport's session. Later requests carry the new token.
func (a *Auth) Login(ctx context.Context, req schema.LoginRequest) (schema.LoginResponse, error) {
	var resp schema.LoginResponse
	if err := a.transport.Do(ctx, http.MethodPost, "/login", nil, req, &resp); err != nil {
		return resp, err
	}
	if resp.AccessToken == "" {
		return resp, ErrNoToken
	}
	a.transport.Session().Set(resp.AccessToken, resp.IsAdmin)
	return resp, nil
}

// Register creates a new account. It does not log in.
func (a *Auth) Register(ctx context.Context, req schema.RegisterRequest) (schema.ProcedureResult, error) {
	var result schema.ProcedureResult
	err := a.transport.Do(ctx, http.MethodPost, "/register", nil, req, &result)
	return result, err
}

// Logout forgets the session token.
func (a *Auth) Logout() {
	a.transport.Session().Clear()
}
