package service

import (
	"context"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/events"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
)

type OrganizationGateway interface {
	ListOrganizations(ctx context.Context) ([]entity.Organization, error)
	GetOrganization(ctx context.Context, id string) (*entity.Organization, error)
	CreateOrganization(ctx context.Context, req gateway.CreateOrganizationRequest) (*entity.Organization, error)
	UpdateOrganization(ctx context.Context, id string, req gateway.UpdateOrganizationRequest) (*entity.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error
	ListMembers(ctx context.Context, organizationID string, q gateway.MemberQuery) ([]entity.OrganizationMember, error)
	CountMembers(ctx context.Context, organizationID, status string) (int64, error)
	AddMember(ctx context.Context, organizationID string, req gateway.AddMemberRequest) (*entity.OrganizationMember, error)
	CreateSubscription(ctx context.Context, organizationID string, req gateway.SubscriptionRequest) (*entity.Subscription, error)
}

type IOrganizationService interface {
	List(ctx context.Context, ws *workspace.Workspace) ([]entity.Organization, error)
	Show(ctx context.Context, ws *workspace.Workspace, id string) (*entity.Organization, error)
	Create(ctx context.Context, ws *workspace.Workspace, req *dto.CreateOrganizationRequest) (*entity.Organization, error)
	Update(ctx context.Context, ws *workspace.Workspace, id string, req *dto.UpdateOrganizationRequest) (*entity.Organization, error)
	Delete(ctx context.Context, ws *workspace.Workspace, id string) error

	Members(ctx context.Context, ws *workspace.Workspace, id string, q *dto.MemberListQuery) ([]entity.OrganizationMember, error)
	CountMembers(ctx context.Context, ws *workspace.Workspace, id, status string) (*dto.MemberCountResponse, error)
	AddMember(ctx context.Context, ws *workspace.Workspace, id string, req *dto.AddMemberRequest) (*entity.OrganizationMember, error)
	Subscribe(ctx context.Context, ws *workspace.Workspace, id string, req *dto.CreateSubscriptionRequest) (*entity.Subscription, error)

	Current(ws *workspace.Workspace) *entity.Organization
	Select(ctx context.Context, ws *workspace.Workspace, req *dto.SelectOrganizationRequest) (*entity.Organization, error)
	ClearCurrent(ctx context.Context, ws *workspace.Workspace) error
}

type organizationService struct {
	gateway OrganizationGateway
	emitter *events.Emitter
	logger  logger.ILogger
}

func NewOrganizationService(gw OrganizationGateway, emitter *events.Emitter, log logger.ILogger) IOrganizationService {
	return &organizationService{gateway: gw, emitter: emitter, logger: log}
}

func (s *organizationService) List(ctx context.Context, ws *workspace.Workspace) ([]entity.Organization, error) {
	return s.gateway.ListOrganizations(ws.Context(ctx))
}

func (s *organizationService) Show(ctx context.Context, ws *workspace.Workspace, id string) (*entity.Organization, error) {
	return s.gateway.GetOrganization(ws.Context(ctx), id)
}

// Create defaults the owner to the signed-in user.
func (s *organizationService) Create(ctx context.Context, ws *workspace.Workspace, req *dto.CreateOrganizationRequest) (*entity.Organization, error) {
	owner := req.OwnerUserId
	if owner == 0 {
		identity, err := ws.Identity()
		if err != nil {
			return nil, err
		}
		owner = identity.UserID
	}
	return s.gateway.CreateOrganization(ws.Context(ctx), gateway.CreateOrganizationRequest{
		Name:        req.Name,
		Slug:        req.Slug,
		OwnerUserId: owner,
	})
}

// Update refreshes the active snapshot when the active organization changed.
func (s *organizationService) Update(ctx context.Context, ws *workspace.Workspace, id string, req *dto.UpdateOrganizationRequest) (*entity.Organization, error) {
	org, err := s.gateway.UpdateOrganization(ws.Context(ctx), id, gateway.UpdateOrganizationRequest{Name: req.Name, Slug: req.Slug})
	if err != nil {
		return nil, err
	}
	if current := ws.Organization.Current(); current != nil && current.Id == org.Id {
		if err := ws.Organization.SetCurrent(ctx, org); err != nil {
			s.logger.Warn("OrganizationService", "Failed to refresh active organization", map[string]interface{}{"error": err.Error()})
		}
	}
	return org, nil
}

func (s *organizationService) Delete(ctx context.Context, ws *workspace.Workspace, id string) error {
	if err := s.gateway.DeleteOrganization(ws.Context(ctx), id); err != nil {
		return err
	}
	if current := ws.Organization.Current(); current != nil && current.Id == id {
		return ws.Organization.SetCurrent(ctx, nil)
	}
	return nil
}

func (s *organizationService) Members(ctx context.Context, ws *workspace.Workspace, id string, q *dto.MemberListQuery) ([]entity.OrganizationMember, error) {
	return s.gateway.ListMembers(ws.Context(ctx), id, gateway.MemberQuery{Size: q.Size, Page: q.Page, Sort: q.Sort})
}

func (s *organizationService) CountMembers(ctx context.Context, ws *workspace.Workspace, id, status string) (*dto.MemberCountResponse, error) {
	count, err := s.gateway.CountMembers(ws.Context(ctx), id, status)
	if err != nil {
		return nil, err
	}
	return &dto.MemberCountResponse{Count: count}, nil
}

func (s *organizationService) AddMember(ctx context.Context, ws *workspace.Workspace, id string, req *dto.AddMemberRequest) (*entity.OrganizationMember, error) {
	return s.gateway.AddMember(ws.Context(ctx), id, gateway.AddMemberRequest{UserId: req.UserId, Role: req.Role})
}

func (s *organizationService) Subscribe(ctx context.Context, ws *workspace.Workspace, id string, req *dto.CreateSubscriptionRequest) (*entity.Subscription, error) {
	return s.gateway.CreateSubscription(ws.Context(ctx), id, gateway.SubscriptionRequest{
		PlanId:    req.PlanId,
		StartDate: req.StartDate,
		RenewsAt:  req.RenewsAt,
		SeatCount: req.SeatCount,
	})
}

func (s *organizationService) Current(ws *workspace.Workspace) *entity.Organization {
	return ws.Organization.Current()
}

// Select fetches the organization and makes it the tab's active one.
func (s *organizationService) Select(ctx context.Context, ws *workspace.Workspace, req *dto.SelectOrganizationRequest) (*entity.Organization, error) {
	org, err := s.gateway.GetOrganization(ws.Context(ctx), req.OrganizationId)
	if err != nil {
		return nil, err
	}
	if err := ws.Organization.SetCurrent(ctx, org); err != nil {
		return nil, err
	}
	s.emitter.OrganizationSelected(ctx, ws.ID, org.Id, org.Name)
	return ws.Organization.Current(), nil
}

func (s *organizationService) ClearCurrent(ctx context.Context, ws *workspace.Workspace) error {
	return ws.Organization.SetCurrent(ctx, nil)
}
