package gateway

import (
	"context"
	"net/http"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
)

type SubscriptionRequest struct {
	PlanId    string `json:"planId"`
	StartDate string `json:"startDate"`
	RenewsAt  string `json:"renewsAt"`
	SeatCount int    `json:"seatCount"`
}

func (c *Client) CreateSubscription(ctx context.Context, organizationID string, req SubscriptionRequest) (*entity.Subscription, error) {
	var out entity.Subscription
	if err := c.rest(ctx, "create subscription", http.MethodPost, pathf("/api/organizations/%s/subscriptions", organizationID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
