package whirlwatch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amaumene/whirlwatch/internal/models"
)

// Credentials is the token pair issued on sign-in
type Credentials struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// AuthClient handles the unauthenticated and refresh-token calls
type AuthClient struct {
	transport *Transport
}

// NewAuthClient creates a new sign-in client
func NewAuthClient(transport *Transport) *AuthClient {
	return &AuthClient{transport: transport}
}

// Login exchanges a username and password for a token pair
func (a *AuthClient) Login(ctx context.Context, username, password string) (*Credentials, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	var creds Credentials
	if err := a.transport.do(ctx, request{
		operation: "login",
		method:    http.MethodPost,
		path:      "/login",
		body:      body,
		result:    &creds,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return nil, fmt.Errorf("failed to sign in: backend returned no tokens")
	}

	return &creds, nil
}

// RefreshSession obtains a new access token from a refresh token
func (a *AuthClient) RefreshSession(ctx context.Context, refreshToken string) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := a.transport.do(ctx, request{
		operation: "refresh",
		method:    http.MethodPost,
		path:      "/refresh",
		token:     refreshToken,
		result:    &resp,
	}); err != nil {
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("failed to refresh session: backend returned no token")
	}

	return resp.AccessToken, nil
}

// VerifySession checks the stored session and returns its user
func (c *Client) VerifySession(ctx context.Context) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.call(ctx, request{
		operation: "verify_token",
		method:    http.MethodGet,
		path:      "/verify-token",
		result:    &resp,
	}); err != nil {
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}

	return &resp.User, nil
}
