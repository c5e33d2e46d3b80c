package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ProviderError is a non-2xx answer from the identity provider.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider returned %d: %s", e.Status, e.Body)
}

// Client talks to the Supabase GoTrue API, which owns credentials and issues the JWTs.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("apikey", anonKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(10 * time.Second),
	}
}

type signupResponse struct {
	// Set when email confirmation is disabled.
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	// Set when the account still awaits confirmation.
	ID string `json:"id"`
}

// SignUp registers the account and returns its provider-issued id.
func (c *Client) SignUp(ctx context.Context, email, password string) (string, error) {
	var out signupResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/auth/v1/signup")
	if err != nil {
		return "", fmt.Errorf("call identity provider: %w", err)
	}
	if resp.IsError() {
		return "", &ProviderError{Status: resp.StatusCode(), Body: resp.String()}
	}

	id := out.User.ID
	if id == "" {
		id = out.ID
	}
	if id == "" {
		return "", errors.New("identity provider returned no user id")
	}
	return id, nil
}

// Login exchanges credentials for a token payload, returned untouched.
func (c *Client) Login(ctx context.Context, email, password string) (int, []byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/auth/v1/token")
	if err != nil {
		return 0, nil, fmt.Errorf("call identity provider: %w", err)
	}
	return resp.StatusCode(), resp.Body(), nil
}
