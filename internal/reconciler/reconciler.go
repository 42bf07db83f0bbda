package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/patrickmn/go-cache"
)

const module = "Reconciler"

var (
	// ErrSuperseded is returned when a newer refresh for the same key won and
	// nothing is cached yet.
	ErrSuperseded = errors.New("reconciler: refresh superseded")
	ErrEmptyScope = errors.New("reconciler: scope needs a user or an organization")
)

type ProjectSource interface {
	GetProject(ctx context.Context, id entity.ID) (*entity.Project, error)
	ListProjectsByUser(ctx context.Context, userID int64) ([]entity.Project, error)
	ListProjectsByUserAndOrganization(ctx context.Context, userID int64, organizationID string) ([]entity.Project, error)
	ListProjectsByOrganization(ctx context.Context, organizationID string) ([]entity.Project, error)
}

// Scope selects a project listing. With both fields set the listing is the
// user's projects inside the organization.
type Scope struct {
	UserID         int64
	OrganizationID string
}

func (s Scope) key() string {
	return "projects:" + strconv.FormatInt(s.UserID, 10) + ":" + s.OrganizationID
}

func projectKey(id entity.ID) string { return "project:" + id.String() }

// Reconciler caches gateway projections and replaces them wholesale on every
// refresh. Concurrent refreshes of one key are cancel-and-replace: only the
// latest request may write.
type Reconciler struct {
	source ProjectSource
	cache  *cache.Cache
	logger logger.ILogger

	mu      sync.Mutex
	seq     map[string]uint64
	cancels map[string]context.CancelFunc
}

func New(source ProjectSource, ttl time.Duration, log logger.ILogger) *Reconciler {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Reconciler{
		source:  source,
		cache:   cache.New(ttl, 10*time.Minute),
		logger:  log,
		seq:     make(map[string]uint64),
		cancels: make(map[string]context.CancelFunc),
	}
}

func (r *Reconciler) begin(ctx context.Context, key string) (context.Context, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[key]; ok {
		cancel()
	}
	r.seq[key]++
	reqCtx, cancel := context.WithCancel(ctx)
	r.cancels[key] = cancel
	return reqCtx, r.seq[key]
}

func (r *Reconciler) end(key string, seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq[key] == seq {
		if cancel, ok := r.cancels[key]; ok {
			cancel()
			delete(r.cancels, key)
		}
	}
}

// commit stores value if seq is still the latest request for key.
func (r *Reconciler) commit(key string, seq uint64, value interface{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq[key] != seq {
		return false
	}
	r.cache.Set(key, value, cache.DefaultExpiration)
	return true
}

// RefreshProject re-fetches one project with its documents.
func (r *Reconciler) RefreshProject(ctx context.Context, id entity.ID) (*entity.Project, error) {
	key := projectKey(id)
	reqCtx, seq := r.begin(ctx, key)
	defer r.end(key, seq)

	project, err := r.source.GetProject(reqCtx, id)
	if err == nil && r.commit(key, seq, project.Clone()) {
		r.logger.Debug(module, "Project refreshed", map[string]interface{}{"project_id": id, "documents": len(project.Documents)})
		c := project.Clone()
		return &c, nil
	}

	if r.superseded(key, seq) {
		if cached, ok := r.Project(id); ok {
			return &cached, nil
		}
		return nil, ErrSuperseded
	}
	return nil, fmt.Errorf("refresh project %s: %w", id, err)
}

// RefreshProjects re-fetches a project listing, picking the query from scope.
func (r *Reconciler) RefreshProjects(ctx context.Context, scope Scope) ([]entity.Project, error) {
	if scope.UserID == 0 && scope.OrganizationID == "" {
		return nil, ErrEmptyScope
	}
	key := scope.key()
	reqCtx, seq := r.begin(ctx, key)
	defer r.end(key, seq)

	projects, err := r.list(reqCtx, scope)
	if err == nil && r.commit(key, seq, cloneAll(projects)) {
		r.logger.Debug(module, "Project list refreshed", map[string]interface{}{
			"user_id":         scope.UserID,
			"organization_id": scope.OrganizationID,
			"count":           len(projects),
		})
		return cloneAll(projects), nil
	}

	if r.superseded(key, seq) {
		if cached, ok := r.Projects(scope); ok {
			return cached, nil
		}
		return nil, ErrSuperseded
	}
	return nil, fmt.Errorf("refresh projects: %w", err)
}

func (r *Reconciler) list(ctx context.Context, scope Scope) ([]entity.Project, error) {
	switch {
	case scope.UserID != 0 && scope.OrganizationID != "":
		return r.source.ListProjectsByUserAndOrganization(ctx, scope.UserID, scope.OrganizationID)
	case scope.UserID != 0:
		return r.source.ListProjectsByUser(ctx, scope.UserID)
	default:
		return r.source.ListProjectsByOrganization(ctx, scope.OrganizationID)
	}
}

func (r *Reconciler) superseded(key string, seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq[key] != seq
}

// Project returns the cached project, if any.
func (r *Reconciler) Project(id entity.ID) (entity.Project, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.cache.Get(projectKey(id))
	if !ok {
		return entity.Project{}, false
	}
	return x.(entity.Project).Clone(), true
}

func (r *Reconciler) Projects(scope Scope) ([]entity.Project, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.cache.Get(scope.key())
	if !ok {
		return nil, false
	}
	return cloneAll(x.([]entity.Project)), true
}

// ApplyDocument merges a single observed document into the cached project.
// A COMPLETADO document is never replaced by a non-completed observation.
// It reports whether the cache changed.
func (r *Reconciler) ApplyDocument(projectID entity.ID, doc entity.Document) bool {
	key := projectKey(projectID)

	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.cache.Get(key)
	if !ok {
		return false
	}
	project := x.(entity.Project).Clone()

	i := project.FindDocument(doc.Id)
	switch {
	case i < 0:
		project.Documents = append(project.Documents, doc)
	case project.Documents[i].Status.IsCompleted() && !doc.Status.IsCompleted():
		return false
	default:
		project.Documents[i] = doc
	}
	r.cache.Set(key, project, cache.DefaultExpiration)
	return true
}

// Forget drops a cached project, used after it was deleted.
func (r *Reconciler) Forget(id entity.ID) {
	key := projectKey(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[key]; ok {
		cancel()
		delete(r.cancels, key)
	}
	r.seq[key]++
	r.cache.Delete(key)
}

func cloneAll(projects []entity.Project) []entity.Project {
	if projects == nil {
		return []entity.Project{}
	}
	out := make([]entity.Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}
