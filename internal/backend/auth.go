// ABOUTME: Authentication endpoints of the backend API
// ABOUTME: Account registration and credential login returning bearer tokens

package backend

import (
	"context"
	"net/http"
)

// Register creates a backend account and returns its bearer token.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
