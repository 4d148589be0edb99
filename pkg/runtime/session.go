package runtime

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gopkg.in/yaml.v2"
)

// Session holds the bearer token and admin flag of the signed-in user.
// It is safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	token   string
	isAdmin bool
}

// NewSession creates a session from an existing token.
func NewSession(token string, isAdmin bool) *Session {
	return &Session{token: token, isAdmin: isAdmin}
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAdmin reports whether the signed-in user is an administrator.
func (s *Session) IsAdmin() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAdmin
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set replaces the token and admin flag.
func (s *Session) Set(token string, isAdmin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.isAdmin = isAdmin
}

// Clear signs the session out.
func (s *Session) Clear() {
	s.Set("", false)
}

// TokenClaims is the subset of JWT claims shown to the user.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry in the past.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the token payload without verifying its signature.
// The result is informational only; the server remains the authority.
func (s *Session) Claims() (TokenClaims, error) {
	token := s.Token()
	if token == "" {
		return TokenClaims{}, ErrUnauthorized
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("failed to decode token: %w", err)
	}

	var out TokenClaims
	if sub, ok := claims["sub"]; ok {
		out.Subject = fmt.Sprint(sub)
	}
	if iat, ok := claims["iat"].(float64); ok {
		out.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}

// sessionFile is the on-disk layout. The keys match the browser storage
// keys of the web console.
type sessionFile struct {
	Token   string `yaml:"token"`
	IsAdmin bool   `yaml:"is_admin"`
}

// SessionStore persists a Session in a YAML file.
type SessionStore struct {
	path string
}

// NewSessionStore creates a store backed by path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Path returns the file backing the store.
func (s *SessionStore) Path() string {
	return s.path
}

// Load reads the stored session. A missing file yields an empty session.
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var f sessionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return NewSession(f.Token, f.IsAdmin), nil
}

// Save writes the session to disk.
func (s *SessionStore) Save(session *Session) error {
	data, err := yaml.Marshal(sessionFile{
		Token:   session.Token(),
		IsAdmin: session.IsAdmin(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
