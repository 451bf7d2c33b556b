package remote

import (
	"context"
	"net/http"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

// CurrentUser returns the account behind the bearer token.
func (c *Client) CurrentUser(ctx context.Context) (domain.UserDetail, error) {
	var out domain.UserDetail
	if err := c.get(ctx, "current_user", "/me", nil, &out); err != nil {
		return domain.UserDetail{}, err
	}
	return out, nil
}

// ListUsers returns the user directory.
func (c *Client) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	var out []domain.UserSummary
	if err := c.get(ctx, "list_users", "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	var out domain.Token
	if err := c.send(ctx, "login", http.MethodPost, "/auth/login", creds, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", wrapError("login", http.MethodPost, "/auth/login", http.StatusOK,
			domainerrors.Internal("login response carries no token"))
	}
	return out.Token, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, in domain.Registration) (domain.UserDetail, error) {
	var out domain.UserDetail
	if err := c.send(ctx, "register", http.MethodPost, "/auth/register", in, &out); err != nil {
		return domain.UserDetail{}, err
	}
	return out, nil
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil)
}
