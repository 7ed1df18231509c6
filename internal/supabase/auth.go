package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// User is a GoTrue user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the token pair GoTrue issues at sign-in.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Auth returns the GoTrue client.
func (c *Client) Auth() *AuthClient {
	return &AuthClient{client: c}
}

// AuthClient handles authentication against GoTrue.
type AuthClient struct {
	client *Client
}

// SignIn exchanges email/password for a session (password grant).
func (a *AuthClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return a.tokenRequest(ctx, fmt.Sprintf("%s/auth/v1/token?grant_type=password", a.client.baseURL), email, password)
}

// SignUp registers a new user.
func (a *AuthClient) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return a.tokenRequest(ctx, fmt.Sprintf("%s/auth/v1/signup", a.client.baseURL), email, password)
}

func (a *AuthClient) tokenRequest(ctx context.Context, reqURL, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("supabase: marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}
	a.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	respBody, err := a.client.do(req)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("supabase: unmarshal session: %w", err)
	}
	if session.User == nil {
		// When email confirmation is pending GoTrue answers with the bare
		// user object instead of a session.
		var user User
		if err := json.Unmarshal(respBody, &user); err == nil && user.ID != "" {
			session.User = &user
		}
	}
	return &session, nil
}

// User resolves an access token to its user.
func (a *AuthClient) User(ctx context.Context, accessToken string) (*User, error) {
	reqURL := fmt.Sprintf("%s/auth/v1/user", a.client.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	a.client.setHeaders(req)

	respBody, err := a.client.do(req)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(respBody, &user); err != nil {
		return nil, fmt.Errorf("supabase: unmarshal user: %w", err)
	}
	return &user, nil
}

// SignOut revokes the session behind an access token.
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	reqURL := fmt.Sprintf("%s/auth/v1/logout", a.client.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return fmt.Errorf("supabase: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	a.client.setHeaders(req)

	_, err = a.client.do(req)
	return err
}
