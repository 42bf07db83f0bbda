package gateway

import (
	"context"
	"net/http"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
)

type UserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context) ([]entity.User, error) {
	var out []entity.User
	err := c.rest(ctx, "list users", http.MethodGet, "/api/users", nil, nil, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	var out entity.User
	if err := c.rest(ctx, "get user", http.MethodGet, pathf("/api/users/%s", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out entity.User
	if err := c.rest(ctx, "get user by email", http.MethodGet, pathf("/api/users/by-email/%s", email), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, req UserRequest) (*entity.User, error) {
	var out entity.User
	if err := c.rest(ctx, "create user", http.MethodPost, "/api/users/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, req UserRequest) (*entity.User, error) {
	var out entity.User
	if err := c.rest(ctx, "update user", http.MethodPut, pathf("/api/users/%s", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUserByEmail(ctx context.Context, email string) error {
	return c.rest(ctx, "delete user", http.MethodDelete, pathf("/api/users/by-email/%s", email), nil, nil, nil)
}
