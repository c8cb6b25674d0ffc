package authsdk

import (
	"context"
	"net/http"
	"time"
)

// Register creates an account. The enrollment material in the response is
// shown once, store it before discarding the response.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/register", req, "")
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginRaw performs POST /login and returns the raw response.
func (c *SDKClient) LoginRaw(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/login", req, "")
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns a Session holding the issued token.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	out, err := c.LoginRaw(ctx, req)
	if err != nil {
		return nil, err
	}

	s := &Session{client: c, token: out.Token, user: out.User}
	if out.ExpiresIn > 0 {
		s.expiresAt = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return s, nil
}
