// FILE: internal/service/user_service.go
package service

import (
	"context"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
)

type UserGateway interface {
	ListUsers(ctx context.Context) ([]entity.User, error)
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, req gateway.UserRequest) (*entity.User, error)
	UpdateUser(ctx context.Context, id int64, req gateway.UserRequest) (*entity.User, error)
	DeleteUserByEmail(ctx context.Context, email string) error
}

type IUserService interface {
	List(ctx context.Context, ws *workspace.Workspace) ([]entity.User, error)
	Show(ctx context.Context, ws *workspace.Workspace, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, ws *workspace.Workspace, email string) (*entity.User, error)
	Create(ctx context.Context, ws *workspace.Workspace, req *dto.CreateUserRequest) (*entity.User, error)
	Update(ctx context.Context, ws *workspace.Workspace, id int64, req *dto.UpdateUserRequest) (*entity.User, error)
	DeleteByEmail(ctx context.Context, ws *workspace.Workspace, email string) error
}

type userService struct {
	gateway UserGateway
}

func NewUserService(gw UserGateway) IUserService {
	return &userService{gateway: gw}
}

func (s *userService) List(ctx context.Context, ws *workspace.Workspace) ([]entity.User, error) {
	return s.gateway.ListUsers(ws.Context(ctx))
}

func (s *userService) Show(ctx context.Context, ws *workspace.Workspace, id int64) (*entity.User, error) {
	return s.gateway.GetUser(ws.Context(ctx), id)
}

func (s *userService) FindByEmail(ctx context.Context, ws *workspace.Workspace, email string) (*entity.User, error) {
	return s.gateway.GetUserByEmail(ws.Context(ctx), email)
}

func (s *userService) Create(ctx context.Context, ws *workspace.Workspace, req *dto.CreateUserRequest) (*entity.User, error) {
	return s.gateway.CreateUser(ws.Context(ctx), gateway.UserRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Enabled:  req.Enabled,
	})
}

func (s *userService) Update(ctx context.Context, ws *workspace.Workspace, id int64, req *dto.UpdateUserRequest) (*entity.User, error) {
	return s.gateway.UpdateUser(ws.Context(ctx), id, gateway.UserRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Enabled:  req.Enabled,
	})
}

func (s *userService) DeleteByEmail(ctx context.Context, ws *workspace.Workspace, email string) error {
	return s.gateway.DeleteUserByEmail(ws.Context(ctx), email)
}
