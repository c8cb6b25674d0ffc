package authsdk

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Session carries a bearer token for authenticated operations.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	token     string
	user      User
	expiresAt time.Time // zero when unknown or opaque
}

// Token returns the bearer token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the account the session was issued for, if known.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// ExpiresAt returns the local estimate of token expiry, zero if unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Profile fetches the current stored record of the session's user.
func (s *Session) Profile(ctx context.Context) (*ProfileResponse, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/profile", nil, s.Token())
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = out.User
	s.mu.Unlock()
	return &out, nil
}

// ListCategories returns the reference list.
func (s *Session) ListCategories(ctx context.Context) ([]Category, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/categories", nil, s.Token())
	if err != nil {
		return nil, err
	}

	var out []Category
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory adds an entry to the reference list. Requires the admin role.
func (s *Session) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	resp, err := s.client.doRequest(ctx, http.MethodPost, "/categories", req, s.Token())
	if err != nil {
		return nil, err
	}

	var out Category
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session on the server. Signed tokens stay valid until
// they expire, the session drops its copy either way.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.client.doRequest(ctx, http.MethodPost, "/logout", nil, s.Token())
	if err != nil {
		return err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
