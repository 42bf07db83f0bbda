package service

import (
	"context"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
)

type BIGateway interface {
	KpisByUser(ctx context.Context, orgID string) (*entity.Kpis, error)
	HistoryByUser(ctx context.Context, orgID string) ([]entity.HistoryItem, error)
	TopRiskByUser(ctx context.Context, orgID string) ([]entity.HistoryItem, error)
	GlobalKpis(ctx context.Context, orgID string) (*entity.Kpis, error)
	KpisByProject(ctx context.Context, orgID string, projectID entity.ID) (*entity.ProjectBI, error)
	GlobalHistory(ctx context.Context, orgID string) ([]entity.HistoryItem, error)
	ProjectHistory(ctx context.Context, orgID string, projectID entity.ID, start, end string) ([]entity.HistoryItem, error)
	RiskTrendsByUser(ctx context.Context, orgID string, userID int64, period string) (map[string]entity.RiskTrend, error)
}

// IBIService serves the dashboards of the tab's active organization.
type IBIService interface {
	KpisByUser(ctx context.Context, ws *workspace.Workspace) (*entity.Kpis, error)
	HistoryByUser(ctx context.Context, ws *workspace.Workspace) ([]entity.HistoryItem, error)
	TopRiskByUser(ctx context.Context, ws *workspace.Workspace) ([]entity.HistoryItem, error)
	GlobalKpis(ctx context.Context, ws *workspace.Workspace) (*entity.Kpis, error)
	KpisByProject(ctx context.Context, ws *workspace.Workspace, projectID entity.ID) (*entity.ProjectBI, error)
	GlobalHistory(ctx context.Context, ws *workspace.Workspace) ([]entity.HistoryItem, error)
	ProjectHistory(ctx context.Context, ws *workspace.Workspace, projectID entity.ID, start, end string) ([]entity.HistoryItem, error)
	RiskTrends(ctx context.Context, ws *workspace.Workspace, userID int64, period string) (map[string]entity.RiskTrend, error)
}

type biService struct {
	gateway BIGateway
}

func NewBIService(gw BIGateway) IBIService {
	return &biService{gateway: gw}
}

func (s *biService) org(ctx context.Context, ws *workspace.Workspace) (context.Context, string, error) {
	org, err := ws.CurrentOrganization()
	if err != nil {
		return nil, "", err
	}
	return ws.Context(ctx), org.Id, nil
}

func (s *biService) KpisByUser(ctx context.Context, ws *workspace.Workspace) (*entity.Kpis, error) {
	ctx, orgID, err := s.org(ctx, ws)
	if err != nil {
		return nil, err
	}
	return s.gateway.KpisByUser(ctx, orgID)
}

func (s *biService) HistoryByUser(ctx context.Context, ws *workspace.Workspace) ([]entity.HistoryItem, error) {
	ctx, orgID, err := s.org(ctx, ws)
	if err != nil {
		return nil, err
	}
	return s.gateway.HistoryByUser(ctx, orgID)
}

func (s *biService) TopRiskByUser(ctx context.Context, ws *workspace.Workspace) ([]entity.HistoryItem, error) {
	ctx, orgID, err := s.org(ctx, ws)
	if err != nil {
		return nil, err
	}
	return s.gateway.TopRiskByUser(ctx, orgID)
}

func (s *biService) GlobalKpis(ctx context.Context, ws *workspace.Workspace) (*entity.Kpis, error) {
	ctx, orgID, err := s.org(ctx, ws)
	if err != nil {
		return nil, err
	}
	return s.gateway.GlobalKpis(ctx, orgID)
}

func (s *biService) KpisByProject(ctx context.Context, ws *workspace.Workspace, projectID entity.ID) (*entity.ProjectBI, error) {
	ctx, orgID, err := s.org(ctx, ws)
	if err != nil {
		return nil, err
	}
	return s.gateway.KpisByProject(ctx, orgID, projectID)
}

func (s *biService) GlobalHistory(ctx context.Context, ws *workspace.Workspace) ([]entity.HistoryItem, error) {
	ctx, orgID, err := s.org(ctx, ws)
	if err != nil {
		return nil, err
	}
	return s.gateway.GlobalHistory(ctx, orgID)
}

func (s *biService) ProjectHistory(ctx context.Context, ws *workspace.Workspace, projectID entity.ID, start, end string) ([]entity.HistoryItem, error) {
	ctx, orgID, err := s.org(ctx, ws)
	if err != nil {
		return nil, err
	}
	return s.gateway.ProjectHistory(ctx, orgID, projectID, start, end)
}

// RiskTrends defaults to the signed-in user when userID is zero.
func (s *biService) RiskTrends(ctx context.Context, ws *workspace.Workspace, userID int64, period string) (map[string]entity.RiskTrend, error) {
	if userID == 0 {
		identity, err := ws.Identity()
		if err != nil {
			return nil, err
		}
		userID = identity.UserID
	}
	ctx, orgID, err := s.org(ctx, ws)
	if err != nil {
		return nil, err
	}
	return s.gateway.RiskTrendsByUser(ctx, orgID, userID, period)
}
