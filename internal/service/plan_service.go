// FILE: internal/service/plan_service.go
// Service for the subscription plan catalogue
package service

import (
	"context"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
)

type PlanGateway interface {
	ListPlans(ctx context.Context) ([]entity.Plan, error)
	GetPlan(ctx context.Context, id string) (*entity.Plan, error)
	CreatePlan(ctx context.Context, req gateway.PlanRequest) (*entity.Plan, error)
	UpdatePlan(ctx context.Context, id string, req gateway.PlanRequest) (*entity.Plan, error)
	SetPlanActive(ctx context.Context, id string, active bool) (*entity.Plan, error)
	DeletePlan(ctx context.Context, id string) error
}

type PlanService interface {
	List(ctx context.Context, ws *workspace.Workspace) ([]entity.Plan, error)
	Show(ctx context.Context, ws *workspace.Workspace, id string) (*entity.Plan, error)
	Create(ctx context.Context, ws *workspace.Workspace, req *dto.CreatePlanRequest) (*entity.Plan, error)
	Update(ctx context.Context, ws *workspace.Workspace, id string, req *dto.PlanRequest) (*entity.Plan, error)
	SetActive(ctx context.Context, ws *workspace.Workspace, id string, active bool) (*entity.Plan, error)
	Delete(ctx context.Context, ws *workspace.Workspace, id string) error
}

type planService struct {
	gateway PlanGateway
}

func NewPlanService(gw PlanGateway) PlanService {
	return &planService{gateway: gw}
}

func (s *planService) List(ctx context.Context, ws *workspace.Workspace) ([]entity.Plan, error) {
	return s.gateway.ListPlans(ws.Context(ctx))
}

func (s *planService) Show(ctx context.Context, ws *workspace.Workspace, id string) (*entity.Plan, error) {
	return s.gateway.GetPlan(ws.Context(ctx), id)
}

func (s *planService) Create(ctx context.Context, ws *workspace.Workspace, req *dto.CreatePlanRequest) (*entity.Plan, error) {
	return s.gateway.CreatePlan(ws.Context(ctx), gateway.PlanRequest{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		BillingInterval: req.BillingInterval,
		PriceCents:      req.PriceCents,
		Currency:        req.Currency,
		LimitMembers:    req.LimitMembers,
		LimitChecks:     req.LimitChecks,
		Active:          req.Active,
	})
}

// Update is a partial update; zero fields are left out of the PATCH body.
func (s *planService) Update(ctx context.Context, ws *workspace.Workspace, id string, req *dto.PlanRequest) (*entity.Plan, error) {
	return s.gateway.UpdatePlan(ws.Context(ctx), id, gateway.PlanRequest{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		BillingInterval: req.BillingInterval,
		PriceCents:      req.PriceCents,
		Currency:        req.Currency,
		LimitMembers:    req.LimitMembers,
		LimitChecks:     req.LimitChecks,
		Active:          req.Active,
	})
}

func (s *planService) SetActive(ctx context.Context, ws *workspace.Workspace, id string, active bool) (*entity.Plan, error) {
	return s.gateway.SetPlanActive(ws.Context(ctx), id, active)
}

func (s *planService) Delete(ctx context.Context, ws *workspace.Workspace, id string) error {
	return s.gateway.DeletePlan(ws.Context(ctx), id)
}
