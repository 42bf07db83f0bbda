package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/poller"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
)

const module = "Lifecycle"

var ErrMissingProject = errors.New("a project id is required")

type Uploader interface {
	UploadDocument(ctx context.Context, projectID entity.ID, file gateway.UploadFile, onProgress gateway.ProgressFunc) (*gateway.UploadResult, error)
}

type ProjectCache interface {
	RefreshProject(ctx context.Context, id entity.ID) (*entity.Project, error)
	ApplyDocument(projectID entity.ID, doc entity.Document) bool
}

// Event is a poller update tagged with the project that owns the document.
type Event struct {
	ProjectID entity.ID
	poller.Update
}

// WatcherFactory builds the status watcher. The default is a fixed-cadence
// poller.
type WatcherFactory func(onUpdate poller.Listener, onComplete poller.CompletionHandler) poller.Watcher

type Options struct {
	Poller     poller.Options
	NewWatcher WatcherFactory
	OnEvent    func(Event)
	Logger     logger.ILogger
}

// Upload is the outcome of a successful upload.
type Upload struct {
	ProjectID entity.ID
	Result    *gateway.UploadResult
	// Tracking is false when the gateway did not return a document id.
	Tracking bool
}

// Controller drives upload, status tracking and the project refresh that
// follows a completed analysis. One controller serves one tab.
type Controller struct {
	uploader Uploader
	projects ProjectCache
	watcher  poller.Watcher
	onEvent  func(Event)
	logger   logger.ILogger

	// trackMu serializes Track so the owner map and the watcher always agree
	// on the document being polled.
	trackMu sync.Mutex
	mu      sync.Mutex
	owners  map[entity.ID]entity.ID // document -> project
}

func New(uploader Uploader, fetcher poller.StatusFetcher, projects ProjectCache, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	c := &Controller{
		uploader: uploader,
		projects: projects,
		onEvent:  opts.OnEvent,
		logger:   opts.Logger,
		owners:   make(map[entity.ID]entity.ID),
	}

	if opts.NewWatcher != nil {
		c.watcher = opts.NewWatcher(c.handleUpdate, c.handleCompletion)
	} else {
		popts := opts.Poller
		popts.OnUpdate = c.handleUpdate
		popts.OnComplete = c.handleCompletion
		if popts.Logger == nil {
			popts.Logger = opts.Logger
		}
		c.watcher = poller.New(fetcher, popts)
	}
	return c
}

// UploadAndTrack validates and uploads file, then tracks the new document.
// Invalid files and failed uploads leave the project cache untouched and
// start no polling.
func (c *Controller) UploadAndTrack(ctx context.Context, projectID entity.ID, file gateway.UploadFile, onProgress gateway.ProgressFunc) (*Upload, error) {
	if projectID.IsZero() {
		return nil, ErrMissingProject
	}
	file, err := ValidatePDF(file)
	if err != nil {
		return nil, err
	}

	result, err := c.uploader.UploadDocument(ctx, projectID, file, onProgress)
	if err != nil {
		c.logger.Warn(module, "Upload failed", map[string]interface{}{
			"project_id": projectID,
			"file":       file.Name,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("upload %s: %w", file.Name, err)
	}

	upload := &Upload{ProjectID: projectID, Result: result}
	if result.DocumentID.IsZero() {
		// Nothing to poll; show whatever the gateway stored.
		c.logger.Warn(module, "Upload response carried no document id", map[string]interface{}{"project_id": projectID})
		if _, err := c.projects.RefreshProject(ctx, projectID); err != nil {
			c.logger.Warn(module, "Project refresh after upload failed", map[string]interface{}{"project_id": projectID, "error": err.Error()})
		}
		return upload, nil
	}

	c.projects.ApplyDocument(projectID, entity.Document{
		Id:       result.DocumentID,
		FileName: file.Name,
		Status:   entity.DocumentStatusPending,
	})
	c.logger.Info(module, "Document uploaded", map[string]interface{}{
		"project_id":  projectID,
		"document_id": result.DocumentID,
		"file":        file.Name,
	})

	c.Track(ctx, projectID, result.DocumentID)
	upload.Tracking = true
	return upload, nil
}

// Track polls an existing document until it completes or the ceiling is
// reached. Any previous tracking is replaced. The loop outlives ctx's
// cancellation but keeps its values.
func (c *Controller) Track(ctx context.Context, projectID, documentID entity.ID) {
	c.trackMu.Lock()
	defer c.trackMu.Unlock()

	c.mu.Lock()
	prev := c.watcher.Snapshot()
	if prev.DocumentID != documentID {
		delete(c.owners, prev.DocumentID)
	}
	c.owners[documentID] = projectID
	c.mu.Unlock()

	c.watcher.Start(context.WithoutCancel(ctx), documentID)
}

func (c *Controller) StopTracking() {
	c.watcher.Stop()
}

func (c *Controller) Status() Event {
	snap := c.watcher.Snapshot()
	c.mu.Lock()
	defer c.mu.Unlock()
	return Event{ProjectID: c.owners[snap.DocumentID], Update: snap}
}

func (c *Controller) Close() {
	c.watcher.Stop()
}

func (c *Controller) owner(documentID entity.ID) (entity.ID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.owners[documentID]
	return id, ok
}

func (c *Controller) handleUpdate(u poller.Update) {
	projectID, _ := c.owner(u.DocumentID)

	if u.Document != nil && !projectID.IsZero() && !u.State.Terminal() {
		c.projects.ApplyDocument(projectID, observed(u.DocumentID, u.Document))
	}

	if c.onEvent != nil {
		c.onEvent(Event{ProjectID: projectID, Update: u})
	}
}

func (c *Controller) handleCompletion(ctx context.Context, documentID entity.ID, doc *entity.Document) {
	projectID, ok := c.owner(documentID)
	if !ok {
		c.logger.Debug(module, "Completed document has no tracked project", map[string]interface{}{"document_id": documentID})
		return
	}

	c.projects.ApplyDocument(projectID, observed(documentID, doc))
	if _, err := c.projects.RefreshProject(ctx, projectID); err != nil {
		c.logger.Warn(module, "Project refresh after analysis failed", map[string]interface{}{
			"project_id":  projectID,
			"document_id": documentID,
			"error":       gateway.Message(err),
		})
	}
}

func observed(id entity.ID, doc *entity.Document) entity.Document {
	d := *doc
	if d.Id.IsZero() {
		d.Id = id
	}
	return d
}
