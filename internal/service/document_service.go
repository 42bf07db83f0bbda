package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/lifecycle"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/events"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
)

type DocumentGateway interface {
	GetDocument(ctx context.Context, id entity.ID) (*entity.Document, error)
	DeleteDocument(ctx context.Context, id entity.ID) (bool, error)
}

type UploadObserver interface {
	Upload(ok bool)
}

type IDocumentService interface {
	Upload(ctx context.Context, ws *workspace.Workspace, projectID entity.ID, file gateway.UploadFile) (*dto.UploadResponse, error)
	Track(ctx context.Context, ws *workspace.Workspace, documentID entity.ID, req *dto.TrackDocumentRequest) *dto.TrackingResponse
	StopTracking(ws *workspace.Workspace) *dto.TrackingResponse
	Tracking(ws *workspace.Workspace) *dto.TrackingResponse
	Show(ctx context.Context, ws *workspace.Workspace, id entity.ID) (*entity.Document, error)
	Delete(ctx context.Context, ws *workspace.Workspace, projectID, id entity.ID) (*entity.Project, error)
}

type documentService struct {
	gateway   DocumentGateway
	publisher IPublisherService
	observer  UploadObserver
	emitter   *events.Emitter
	logger    logger.ILogger
}

func NewDocumentService(
	gw DocumentGateway,
	publisher IPublisherService,
	observer UploadObserver,
	emitter *events.Emitter,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		gateway:   gw,
		publisher: publisher,
		observer:  observer,
		emitter:   emitter,
		logger:    log,
	}
}

// Upload sends the file and starts tracking the new document. Progress goes
// to the tab as upload_progress messages.
func (s *documentService) Upload(ctx context.Context, ws *workspace.Workspace, projectID entity.ID, file gateway.UploadFile) (*dto.UploadResponse, error) {
	onProgress := func(percent int) {
		if err := s.publisher.PublishProgress(ctx, ws.ID, projectID, file.Name, percent); err != nil {
			s.logger.Warn("DocumentService", "Failed to publish upload progress", map[string]interface{}{"error": err.Error()})
		}
	}

	upload, err := ws.Lifecycle.UploadAndTrack(ws.Context(ctx), projectID, file, onProgress)
	if err != nil {
		// Files rejected before the network never count as uploads.
		if !errors.Is(err, lifecycle.ErrInvalidFile) && !errors.Is(err, lifecycle.ErrMissingProject) {
			s.observer.Upload(false)
		}
		return nil, err
	}
	s.observer.Upload(true)
	s.emitter.DocumentUploaded(ctx, projectID.String(), upload.Result.DocumentID.String(), file.Name)

	res := &dto.UploadResponse{
		ProjectId:  projectID,
		DocumentId: upload.Result.DocumentID,
		Tracking:   upload.Tracking,
	}
	if project, ok := ws.Projects.Project(projectID); ok {
		res.Project = &project
	}
	switch {
	case len(upload.Result.Raw) > 0:
		res.Gateway = upload.Result.Raw
	case upload.Result.Text != "":
		res.Gateway = upload.Result.Text
	}
	return res, nil
}

// Track re-polls a document that was uploaded earlier ("check status").
func (s *documentService) Track(ctx context.Context, ws *workspace.Workspace, documentID entity.ID, req *dto.TrackDocumentRequest) *dto.TrackingResponse {
	ws.Lifecycle.Track(ws.Context(ctx), req.ProjectId, documentID)
	return s.Tracking(ws)
}

func (s *documentService) StopTracking(ws *workspace.Workspace) *dto.TrackingResponse {
	ws.Lifecycle.StopTracking()
	return s.Tracking(ws)
}

func (s *documentService) Tracking(ws *workspace.Workspace) *dto.TrackingResponse {
	res := trackingResponse(ws.Lifecycle.Status())
	return &res
}

func (s *documentService) Show(ctx context.Context, ws *workspace.Workspace, id entity.ID) (*entity.Document, error) {
	return s.gateway.GetDocument(ws.Context(ctx), id)
}

// Delete removes the document and returns the refreshed project.
func (s *documentService) Delete(ctx context.Context, ws *workspace.Workspace, projectID, id entity.ID) (*entity.Project, error) {
	deleted, err := s.gateway.DeleteDocument(ws.Context(ctx), id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, fmt.Errorf("eliminarDocumento %s: %w", id, gateway.ErrNotFound)
	}

	if ws.Lifecycle.Status().DocumentID == id {
		ws.Lifecycle.StopTracking()
	}
	s.emitter.DocumentDeleted(ctx, projectID.String(), id.String())
	return ws.Projects.RefreshProject(ws.Context(ctx), projectID)
}
