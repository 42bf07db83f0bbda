package workspace

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/lifecycle"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/poller"
	"github.com/Gatu-1548/plagio-ia/internal/session"
	"github.com/Gatu-1548/plagio-ia/internal/storage"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	mu     sync.Mutex
	tokens []string
}

func (g *stubGateway) record(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tokens = append(g.tokens, gateway.TokenFromContext(ctx))
}

func (g *stubGateway) UploadDocument(ctx context.Context, _ entity.ID, _ gateway.UploadFile, _ gateway.ProgressFunc) (*gateway.UploadResult, error) {
	g.record(ctx)
	return &gateway.UploadResult{}, nil
}

func (g *stubGateway) GetDocument(ctx context.Context, id entity.ID) (*entity.Document, error) {
	g.record(ctx)
	return &entity.Document{Id: id, Status: entity.DocumentStatusProcessing}, nil
}

func (g *stubGateway) GetProject(ctx context.Context, id entity.ID) (*entity.Project, error) {
	g.record(ctx)
	return &entity.Project{Id: id, Name: "Tesis"}, nil
}

func (g *stubGateway) ListProjectsByUser(ctx context.Context, _ int64) ([]entity.Project, error) {
	g.record(ctx)
	return []entity.Project{}, nil
}

func (g *stubGateway) ListProjectsByUserAndOrganization(ctx context.Context, _ int64, _ string) ([]entity.Project, error) {
	g.record(ctx)
	return []entity.Project{}, nil
}

func (g *stubGateway) ListProjectsByOrganization(ctx context.Context, _ string) ([]entity.Project, error) {
	g.record(ctx)
	return []entity.Project{}, nil
}

func newRegistry(st storage.Store) *Registry {
	return NewRegistry(Dependencies{
		Storage: st,
		Gateway: &stubGateway{},
		Logger:  logger.NewNop(),
	})
}

func TestGetReturnsSameWorkspacePerTab(t *testing.T) {
	reg := newRegistry(storage.NewMemoryStore(0))
	defer reg.Close()
	ctx := context.Background()

	a1, err := reg.Get(ctx, "tab-a")
	require.NoError(t, err)
	a2, err := reg.Get(ctx, "tab-a")
	require.NoError(t, err)
	b, err := reg.Get(ctx, "tab-b")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
}

func TestGetRejectsInvalidTabID(t *testing.T) {
	reg := newRegistry(storage.NewMemoryStore(0))
	defer reg.Close()

	_, err := reg.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidTab)

	long := make([]byte, maxTabIDLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = reg.Get(context.Background(), string(long))
	assert.ErrorIs(t, err, ErrInvalidTab)
}

func TestWorkspaceHydratesFromTabStorage(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemoryStore(0)

	seed := session.NewStore(ctx, storage.NewScoped(backing, "tab-a"), logger.NewNop())
	require.NoError(t, seed.Login(ctx, "tok-a", session.Identity{UserID: 7, Subject: "a@b.com", Role: entity.UserRoleAdmin}))

	reg := newRegistry(backing)
	defer reg.Close()

	a, err := reg.Get(ctx, "tab-a")
	require.NoError(t, err)
	assert.Equal(t, "tok-a", a.Session.Current().Token)
	assert.Equal(t, int64(7), a.Scope().UserID)

	b, err := reg.Get(ctx, "tab-b")
	require.NoError(t, err)
	assert.False(t, b.Session.Current().Authenticated())
}

func TestScopeIncludesActiveOrganization(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(storage.NewMemoryStore(0))
	defer reg.Close()

	ws, err := reg.Get(ctx, "tab-a")
	require.NoError(t, err)
	require.NoError(t, ws.Session.Login(ctx, "tok", session.Identity{UserID: 3}))
	require.NoError(t, ws.Organization.SetCurrent(ctx, &entity.Organization{Id: "org-9", Name: "Lab"}))

	assert.Equal(t, int64(3), ws.Scope().UserID)
	assert.Equal(t, "org-9", ws.Scope().OrganizationID)
}

func TestContextCarriesToken(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{}
	reg := NewRegistry(Dependencies{Storage: storage.NewMemoryStore(0), Gateway: gw})
	defer reg.Close()

	ws, err := reg.Get(ctx, "tab-a")
	require.NoError(t, err)
	assert.Empty(t, gateway.TokenFromContext(ws.Context(ctx)))

	require.NoError(t, ws.Session.Login(ctx, "tok-1", session.Identity{}))
	_, err = ws.Projects.RefreshProject(ws.Context(ctx), "5")
	require.NoError(t, err)

	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Equal(t, []string{"tok-1"}, gw.tokens)
}

func TestEventsAreTaggedWithTab(t *testing.T) {
	ctx := context.Background()
	events := make(chan string, 16)
	reg := NewRegistry(Dependencies{
		Storage: storage.NewMemoryStore(0),
		Gateway: &stubGateway{},
		OnEvent: func(tabID string, ev lifecycle.Event) {
			if ev.DocumentID == "900" {
				events <- tabID
			}
		},
	})
	defer reg.Close()

	ws, err := reg.Get(ctx, "tab-z")
	require.NoError(t, err)
	ws.Lifecycle.Track(ctx, "42", "900")

	assert.Equal(t, "tab-z", <-events)
}

func TestCloseForgetsWorkspaces(t *testing.T) {
	reg := newRegistry(storage.NewMemoryStore(0))
	_, err := reg.Get(context.Background(), "tab-a")
	require.NoError(t, err)

	reg.Close()

	_, ok := reg.Lookup("tab-a")
	assert.False(t, ok)
}

func TestIdentityRequiresCompleteSession(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(storage.NewMemoryStore(0))
	defer reg.Close()
	ws, err := reg.Get(ctx, "tab-a")
	require.NoError(t, err)

	_, err = ws.Identity()
	assert.ErrorIs(t, err, ErrSignedOut)

	require.NoError(t, ws.Session.Login(ctx, "tok", session.Identity{}))
	_, err = ws.Identity()
	assert.ErrorIs(t, err, ErrSignedOut)

	require.NoError(t, ws.Session.Login(ctx, "tok", session.Identity{UserID: 7, Subject: "a@b.com", Role: entity.UserRoleUser}))
	id, err := ws.Identity()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.UserID)

	_, err = ws.CurrentOrganization()
	assert.ErrorIs(t, err, ErrNoOrganization)
}

func TestExpiredWorkspaceIsClosedBeforeReplacement(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	closed := map[string]int{}
	reg := NewRegistry(Dependencies{
		Storage: storage.NewMemoryStore(0),
		Gateway: &stubGateway{},
		Poller:  poller.Options{Interval: time.Hour, Ceiling: 2 * time.Hour},
		IdleTTL: 50 * time.Millisecond,
		OnClose: func(tabID string) {
			mu.Lock()
			defer mu.Unlock()
			closed[tabID]++
		},
	})
	defer reg.Close()

	first, err := reg.Get(ctx, "tab-a")
	require.NoError(t, err)
	first.Lifecycle.Track(ctx, "42", "900")
	require.Equal(t, poller.StatePolling, first.Lifecycle.Status().State)

	time.Sleep(120 * time.Millisecond)

	second, err := reg.Get(ctx, "tab-a")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, poller.StateIdle, first.Lifecycle.Status().State)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, closed["tab-a"])
}
