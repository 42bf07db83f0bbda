package gateway

import (
	"context"
	"net/http"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	return c.issueToken(ctx, "login", "/auth/login", creds)
}

func (c *Client) Register(ctx context.Context, creds Credentials) (string, error) {
	return c.issueToken(ctx, "register", "/auth/register", creds)
}

func (c *Client) issueToken(ctx context.Context, op, path string, creds Credentials) (string, error) {
	var out tokenResponse
	if err := c.rest(ctx, op, http.MethodPost, path, nil, creds, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", malformed(op, nil)
	}
	return out.Token, nil
}
