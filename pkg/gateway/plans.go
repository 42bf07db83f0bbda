package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
)

type PlanRequest struct {
	Code            string `json:"code,omitempty"`
	Name            string `json:"name,omitempty"`
	Description     string `json:"description,omitempty"`
	BillingInterval string `json:"billingInterval,omitempty"`
	PriceCents      *int64 `json:"priceCents,omitempty"`
	Currency        string `json:"currency,omitempty"`
	LimitMembers    *int   `json:"limitMembers,omitempty"`
	LimitChecks     *int   `json:"limitChecks,omitempty"`
	Active          *bool  `json:"active,omitempty"`
}

func (c *Client) ListPlans(ctx context.Context) ([]entity.Plan, error) {
	var out []entity.Plan
	err := c.rest(ctx, "list plans", http.MethodGet, "/api/plans", nil, nil, &out)
	return out, err
}

func (c *Client) GetPlan(ctx context.Context, id string) (*entity.Plan, error) {
	var out entity.Plan
	if err := c.rest(ctx, "get plan", http.MethodGet, pathf("/api/plans/%s", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePlan(ctx context.Context, req PlanRequest) (*entity.Plan, error) {
	var out entity.Plan
	if err := c.rest(ctx, "create plan", http.MethodPost, "/api/plans", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePlan(ctx context.Context, id string, req PlanRequest) (*entity.Plan, error) {
	var out entity.Plan
	if err := c.rest(ctx, "update plan", http.MethodPatch, pathf("/api/plans/%s", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetPlanActive(ctx context.Context, id string, active bool) (*entity.Plan, error) {
	var out entity.Plan
	query := url.Values{"value": {strconv.FormatBool(active)}}
	if err := c.rest(ctx, "toggle plan", http.MethodPatch, pathf("/api/plans/%s/active", id), query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.rest(ctx, "delete plan", http.MethodDelete, pathf("/api/plans/%s", id), nil, nil, nil)
}
