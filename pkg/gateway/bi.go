package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
)

// Trend periods accepted by RiskTrendsByUser.
const (
	PeriodMonthly = "monthly"
	PeriodWeekly  = "weekly"
)

func (c *Client) KpisByUser(ctx context.Context, orgID string) (*entity.Kpis, error) {
	var out entity.Kpis
	if err := c.rest(ctx, "bi kpis by user", http.MethodGet, pathf("/api/bi/org/%s/kpis/byUser", orgID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) HistoryByUser(ctx context.Context, orgID string) ([]entity.HistoryItem, error) {
	var out []entity.HistoryItem
	err := c.rest(ctx, "bi history by user", http.MethodGet, pathf("/api/bi/org/%s/historial/byUser", orgID), nil, nil, &out)
	return out, err
}

func (c *Client) TopRiskByUser(ctx context.Context, orgID string) ([]entity.HistoryItem, error) {
	var out []entity.HistoryItem
	err := c.rest(ctx, "bi top risk by user", http.MethodGet, pathf("/api/bi/org/%s/top-riesgo/byUser", orgID), nil, nil, &out)
	return out, err
}

func (c *Client) GlobalKpis(ctx context.Context, orgID string) (*entity.Kpis, error) {
	var out entity.Kpis
	if err := c.rest(ctx, "bi global kpis", http.MethodGet, pathf("/api/bi/org/%s/kpis-globales", orgID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) KpisByProject(ctx context.Context, orgID string, projectID entity.ID) (*entity.ProjectBI, error) {
	var out entity.ProjectBI
	if err := c.rest(ctx, "bi kpis by project", http.MethodGet, pathf("/api/bi/org/%s/kpis/byProject/%s", orgID, projectID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GlobalHistory(ctx context.Context, orgID string) ([]entity.HistoryItem, error) {
	var out []entity.HistoryItem
	err := c.rest(ctx, "bi global history", http.MethodGet, pathf("/api/bi/org/%s/historial/global", orgID), nil, nil, &out)
	return out, err
}

// ProjectHistory filters by date when start or end is set (YYYY-MM-DD).
func (c *Client) ProjectHistory(ctx context.Context, orgID string, projectID entity.ID, start, end string) ([]entity.HistoryItem, error) {
	query := url.Values{}
	if start != "" {
		query.Set("start_date", start)
	}
	if end != "" {
		query.Set("end_date", end)
	}
	var out []entity.HistoryItem
	err := c.rest(ctx, "bi project history", http.MethodGet, pathf("/api/bi/org/%s/historial/proyecto/%s", orgID, projectID), query, nil, &out)
	return out, err
}

func (c *Client) RiskTrendsByUser(ctx context.Context, orgID string, userID int64, period string) (map[string]entity.RiskTrend, error) {
	if period == "" {
		period = PeriodMonthly
	}
	var out map[string]entity.RiskTrend
	query := url.Values{"period": {period}}
	err := c.rest(ctx, "bi risk trends", http.MethodGet, pathf("/api/bi/org/%s/trends/riesgo/usuario/%s", orgID, userID), query, nil, &out)
	return out, err
}
