package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/lifecycle"
	"github.com/Gatu-1548/plagio-ia/internal/organization"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/poller"
	"github.com/Gatu-1548/plagio-ia/internal/reconciler"
	"github.com/Gatu-1548/plagio-ia/internal/session"
	"github.com/Gatu-1548/plagio-ia/internal/storage"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
	"github.com/patrickmn/go-cache"
)

const module = "Workspace"

const maxTabIDLength = 128

var (
	ErrInvalidTab     = errors.New("workspace: invalid tab id")
	ErrSignedOut      = errors.New("sign in first")
	ErrNoOrganization = errors.New("select an organization first")
)

// Gateway is everything a workspace needs from the API gateway.
type Gateway interface {
	lifecycle.Uploader
	poller.StatusFetcher
	reconciler.ProjectSource
}

// Workspace is the state of one console tab: its session, the active
// organization, the project cache and the upload/analysis controller.
type Workspace struct {
	ID           string
	Session      *session.Store
	Organization *organization.Store
	Projects     *reconciler.Reconciler
	Lifecycle    *lifecycle.Controller

	closeOnce sync.Once
}

// Context returns ctx carrying the tab's bearer token, if any.
func (w *Workspace) Context(ctx context.Context) context.Context {
	if token := w.Session.Current().Token; token != "" {
		return gateway.ContextWithToken(ctx, token)
	}
	return ctx
}

// Scope is the project listing for the signed-in user inside the active
// organization.
func (w *Workspace) Scope() reconciler.Scope {
	scope := reconciler.Scope{UserID: w.Session.Current().UserID}
	if org := w.Organization.Current(); org != nil {
		scope.OrganizationID = org.Id
	}
	return scope
}

// Identity returns the signed-in user, or ErrSignedOut when the tab has no
// token or the token carried no usable identity.
func (w *Workspace) Identity() (session.Identity, error) {
	sess := w.Session.Current()
	if !sess.Authenticated() {
		return session.Identity{}, ErrSignedOut
	}
	id, ok := sess.Identity()
	if !ok {
		return session.Identity{}, ErrSignedOut
	}
	return id, nil
}

// CurrentOrganization returns the active organization or ErrNoOrganization.
func (w *Workspace) CurrentOrganization() (*entity.Organization, error) {
	org := w.Organization.Current()
	if org == nil {
		return nil, ErrNoOrganization
	}
	return org, nil
}

// Close stops any tracking. Safe to call more than once.
func (w *Workspace) Close() {
	w.closeOnce.Do(w.Lifecycle.Close)
}

type Dependencies struct {
	Storage storage.Store
	Gateway Gateway
	Poller  poller.Options
	// CacheTTL bounds how long a project projection is served without a refresh.
	CacheTTL time.Duration
	// IdleTTL evicts a tab nobody has touched for this long.
	IdleTTL time.Duration
	OnEvent func(tabID string, ev lifecycle.Event)
	// OnOpen and OnClose bracket the life of each workspace.
	OnOpen  func(tabID string)
	OnClose func(tabID string)
	Logger  logger.ILogger
}

// Registry owns every live workspace, keyed by tab id. Idle workspaces are
// evicted and closed.
type Registry struct {
	deps  Dependencies
	mu    sync.Mutex
	items *cache.Cache
}

func NewRegistry(deps Dependencies) *Registry {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	ttl := deps.IdleTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	items := cache.New(ttl, time.Minute)
	items.OnEvicted(func(tabID string, v interface{}) {
		if ws, ok := v.(*Workspace); ok {
			ws.Close()
			if deps.OnClose != nil {
				deps.OnClose(tabID)
			}
			deps.Logger.Info(module, "Workspace closed", map[string]interface{}{"tab_id": tabID})
		}
	})
	return &Registry{deps: deps, items: items}
}

// Get returns the workspace for tabID, building and hydrating it on first
// use. Every call renews the idle deadline.
func (r *Registry) Get(ctx context.Context, tabID string) (*Workspace, error) {
	if tabID == "" || len(tabID) > maxTabIDLength {
		return nil, ErrInvalidTab
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Get hides expired entries the janitor has not swept yet. Evict them
	// first so a replaced workspace is always closed.
	r.items.DeleteExpired()

	if v, ok := r.items.Get(tabID); ok {
		r.items.SetDefault(tabID, v)
		return v.(*Workspace), nil
	}

	ws := r.build(ctx, tabID)
	r.items.SetDefault(tabID, ws)
	if r.deps.OnOpen != nil {
		r.deps.OnOpen(tabID)
	}
	r.deps.Logger.Info(module, "Workspace created", map[string]interface{}{
		"tab_id":        tabID,
		"authenticated": ws.Session.Current().Authenticated(),
	})
	return ws, nil
}

// Lookup returns an existing workspace without creating one.
func (r *Registry) Lookup(tabID string) (*Workspace, bool) {
	v, ok := r.items.Get(tabID)
	if !ok {
		return nil, false
	}
	return v.(*Workspace), true
}

// Close closes and forgets every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tabID := range r.items.Items() {
		r.items.Delete(tabID)
	}
}

func (r *Registry) build(ctx context.Context, tabID string) *Workspace {
	scoped := storage.NewScoped(r.deps.Storage, tabID)
	projects := reconciler.New(r.deps.Gateway, r.deps.CacheTTL, r.deps.Logger)

	var onEvent func(lifecycle.Event)
	if r.deps.OnEvent != nil {
		onEvent = func(ev lifecycle.Event) { r.deps.OnEvent(tabID, ev) }
	}

	return &Workspace{
		ID:           tabID,
		Session:      session.NewStore(ctx, scoped, r.deps.Logger),
		Organization: organization.NewStore(ctx, scoped, r.deps.Logger),
		Projects:     projects,
		Lifecycle: lifecycle.New(r.deps.Gateway, r.deps.Gateway, projects, lifecycle.Options{
			Poller:  r.deps.Poller,
			OnEvent: onEvent,
			Logger:  r.deps.Logger,
		}),
	}
}
