package service

import (
	"context"
	"fmt"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/events"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
)

type ProjectGateway interface {
	CreateProject(ctx context.Context, in gateway.CreateProjectInput) (*entity.Project, error)
	UpdateProject(ctx context.Context, id entity.ID, name string) (*entity.Project, error)
	DeleteProject(ctx context.Context, id entity.ID) (bool, error)
}

type IProjectService interface {
	List(ctx context.Context, ws *workspace.Workspace) ([]entity.Project, error)
	Show(ctx context.Context, ws *workspace.Workspace, id entity.ID) (*entity.Project, error)
	Create(ctx context.Context, ws *workspace.Workspace, req *dto.CreateProjectRequest) (*entity.Project, error)
	Update(ctx context.Context, ws *workspace.Workspace, id entity.ID, req *dto.UpdateProjectRequest) (*entity.Project, error)
	Delete(ctx context.Context, ws *workspace.Workspace, id entity.ID) error
}

type projectService struct {
	gateway ProjectGateway
	emitter *events.Emitter
	logger  logger.ILogger
}

func NewProjectService(gw ProjectGateway, emitter *events.Emitter, log logger.ILogger) IProjectService {
	return &projectService{gateway: gw, emitter: emitter, logger: log}
}

// List refreshes the listing for the tab's user and active organization.
func (s *projectService) List(ctx context.Context, ws *workspace.Workspace) ([]entity.Project, error) {
	return ws.Projects.RefreshProjects(ws.Context(ctx), ws.Scope())
}

func (s *projectService) Show(ctx context.Context, ws *workspace.Workspace, id entity.ID) (*entity.Project, error) {
	return ws.Projects.RefreshProject(ws.Context(ctx), id)
}

func (s *projectService) Create(ctx context.Context, ws *workspace.Workspace, req *dto.CreateProjectRequest) (*entity.Project, error) {
	identity, err := ws.Identity()
	if err != nil {
		return nil, err
	}

	scope := ws.Scope()
	project, err := s.gateway.CreateProject(ws.Context(ctx), gateway.CreateProjectInput{
		Name:           req.Name,
		UserID:         identity.UserID,
		OrganizationID: scope.OrganizationID,
	})
	if err != nil {
		return nil, err
	}

	s.emitter.ProjectCreated(ctx, project.Id.String(), project.Name, identity.UserID, scope.OrganizationID)
	s.refreshList(ctx, ws)
	return project, nil
}

func (s *projectService) Update(ctx context.Context, ws *workspace.Workspace, id entity.ID, req *dto.UpdateProjectRequest) (*entity.Project, error) {
	if _, err := s.gateway.UpdateProject(ws.Context(ctx), id, req.Name); err != nil {
		return nil, err
	}
	return ws.Projects.RefreshProject(ws.Context(ctx), id)
}

func (s *projectService) Delete(ctx context.Context, ws *workspace.Workspace, id entity.ID) error {
	deleted, err := s.gateway.DeleteProject(ws.Context(ctx), id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("eliminarProyecto %s: %w", id, gateway.ErrNotFound)
	}

	if ws.Lifecycle.Status().ProjectID == id {
		ws.Lifecycle.StopTracking()
	}
	ws.Projects.Forget(id)
	s.emitter.ProjectDeleted(ctx, id.String(), ws.Session.Current().UserID)
	s.refreshList(ctx, ws)
	return nil
}

func (s *projectService) refreshList(ctx context.Context, ws *workspace.Workspace) {
	if _, err := ws.Projects.RefreshProjects(ws.Context(ctx), ws.Scope()); err != nil {
		s.logger.Warn("ProjectService", "Project list refresh failed", map[string]interface{}{
			"tab_id": ws.ID,
			"error":  gateway.Message(err),
		})
	}
}
