package api

import (
	"context"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// AuthService wraps the /auth endpoints. The token grant itself
// (POST /auth/token) is handled by the session store via the OAuth2 password
// flow; everything that needs an established bearer token lives here.
type AuthService struct {
	c *Client
}

// RegisterResponse is returned by POST /auth/register: a token plus the new
// user, so no follow-up profile fetch is needed.
type RegisterResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

// Me fetches the current user's profile.
func (s *AuthService) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := s.c.get(ctx, "/auth/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*RegisterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var resp RegisterResponse
	if err := s.c.post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the session server-side.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.post(ctx, "/auth/logout", nil, nil)
}
