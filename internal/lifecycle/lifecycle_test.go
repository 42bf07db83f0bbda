package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/poller"
	"github.com/Gatu-1548/plagio-ia/internal/reconciler"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway serves the upload endpoint and the two GraphQL queries the
// lifecycle depends on.
type fakeGateway struct {
	uploadStatus int
	statuses     []string

	uploads      atomic.Int32
	statusCalls  atomic.Int32
	projectCalls atomic.Int32
	polled       chan struct{}
}

func newFakeGateway(statuses ...string) *fakeGateway {
	return &fakeGateway{uploadStatus: http.StatusOK, statuses: statuses, polled: make(chan struct{}, 64)}
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/upload-documento":
		g.uploads.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(g.uploadStatus)
		if g.uploadStatus == http.StatusOK {
			_, _ = w.Write([]byte(`{"documento_id":"900"}`))
		} else {
			_, _ = w.Write([]byte(`{"message":"storage unavailable"}`))
		}
	case "/graphql":
		var req struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if strings.Contains(req.Query, "getDocumento(") {
			n := int(g.statusCalls.Add(1))
			status := g.statuses[min(n, len(g.statuses))-1]
			_, _ = w.Write([]byte(`{"data":{"getDocumento":{"documento_id":900,"nombre_archivo":"thesis.pdf","estado":"` + status + `","score_plagio":12.5}}}`))
			g.polled <- struct{}{}
			return
		}
		g.projectCalls.Add(1)
		_, _ = w.Write([]byte(`{"data":{"getProyecto":{"proyecto_id":42,"nombre":"Tesis","usuario_id":7,"documentos":[{"documento_id":900,"nombre_archivo":"thesis.pdf","estado":"COMPLETADO","score_plagio":12.5}]}}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (g *fakeGateway) waitPoll(t *testing.T) {
	t.Helper()
	select {
	case <-g.polled:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a status query")
	}
}

type harness struct {
	gateway  *fakeGateway
	clock    *clockwork.FakeClock
	projects *reconciler.Reconciler
	ctrl     *Controller

	mu     sync.Mutex
	events []Event
	done   chan Event
}

func newHarness(t *testing.T, gw *fakeGateway) *harness {
	t.Helper()
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)

	client := gateway.New(gateway.Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	h := &harness{
		gateway:  gw,
		clock:    clockwork.NewFakeClock(),
		projects: reconciler.New(client, 0, logger.NewNop()),
		done:     make(chan Event, 1),
	}
	h.ctrl = New(client, client, h.projects, Options{
		Poller: poller.Options{Clock: h.clock},
		OnEvent: func(e Event) {
			h.mu.Lock()
			h.events = append(h.events, e)
			h.mu.Unlock()
			if e.State.Terminal() {
				h.done <- e
			}
		},
	})
	t.Cleanup(h.ctrl.Close)
	return h
}

func (h *harness) waitTerminal(t *testing.T) Event {
	t.Helper()
	select {
	case e := <-h.done:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("tracking never reached a terminal state")
		return Event{}
	}
}

func thesis() gateway.UploadFile {
	content := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("0"), 8192)...)
	return gateway.UploadFile{
		Name:   "thesis.pdf",
		Size:   int64(len(content)),
		Reader: bytes.NewReader(content),
	}
}

func TestUploadPollRefreshEndToEnd(t *testing.T) {
	gw := newFakeGateway("PROCESANDO", "PROCESANDO", "COMPLETADO")
	h := newHarness(t, gw)

	var (
		progressMu sync.Mutex
		progress   []int
	)
	upload, err := h.ctrl.UploadAndTrack(context.Background(), "42", thesis(), func(p int) {
		progressMu.Lock()
		progress = append(progress, p)
		progressMu.Unlock()
	})
	require.NoError(t, err)
	assert.True(t, upload.Tracking)
	assert.Equal(t, entity.ID("900"), upload.Result.DocumentID)
	progressMu.Lock()
	require.NotEmpty(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])
	progressMu.Unlock()

	gw.waitPoll(t) // t=0
	h.clock.Advance(3 * time.Second)
	gw.waitPoll(t) // t=3
	assert.Equal(t, int32(0), gw.projectCalls.Load())
	h.clock.Advance(3 * time.Second)
	gw.waitPoll(t) // t=6

	final := h.waitTerminal(t)
	assert.Equal(t, poller.StateCompleted, final.State)
	assert.Equal(t, entity.ID("42"), final.ProjectID)
	assert.Equal(t, 6*time.Second, final.Elapsed)

	assert.Equal(t, int32(3), gw.statusCalls.Load())
	assert.Equal(t, int32(1), gw.projectCalls.Load())

	project, ok := h.projects.Project("42")
	require.True(t, ok)
	require.Len(t, project.Documents, 1)
	doc := project.Documents[0]
	assert.Equal(t, entity.DocumentStatusCompleted, doc.Status)
	require.NotNil(t, doc.PlagiarismScore)
	assert.Equal(t, 12.5, *doc.PlagiarismScore)

	h.clock.Advance(time.Minute)
	assert.Never(t, func() bool { return gw.statusCalls.Load() > 3 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestFailedUploadLeavesStateUntouched(t *testing.T) {
	gw := newFakeGateway("COMPLETADO")
	gw.uploadStatus = http.StatusInternalServerError
	h := newHarness(t, gw)

	_, err := h.projects.RefreshProject(context.Background(), "42")
	require.NoError(t, err)
	before, _ := h.projects.Project("42")

	_, err = h.ctrl.UploadAndTrack(context.Background(), "42", thesis(), nil)
	require.Error(t, err)
	assert.Equal(t, "storage unavailable", gateway.Message(err))

	h.clock.Advance(10 * time.Second)
	assert.Never(t, func() bool { return gw.statusCalls.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, int32(1), gw.projectCalls.Load())

	after, _ := h.projects.Project("42")
	assert.Equal(t, before, after)
	assert.Equal(t, poller.StateIdle, h.ctrl.Status().State)
}

func TestInvalidFileNeverReachesGateway(t *testing.T) {
	gw := newFakeGateway("COMPLETADO")
	h := newHarness(t, gw)

	file := gateway.UploadFile{Name: "notes.txt", Size: 5, Reader: strings.NewReader("hello")}
	_, err := h.ctrl.UploadAndTrack(context.Background(), "42", file, nil)

	assert.ErrorIs(t, err, ErrInvalidFile)
	assert.Equal(t, int32(0), gw.uploads.Load())
}

func TestTrackExistingDocument(t *testing.T) {
	gw := newFakeGateway("COMPLETADO")
	h := newHarness(t, gw)

	h.ctrl.Track(context.Background(), "42", "900")
	gw.waitPoll(t)

	final := h.waitTerminal(t)
	assert.Equal(t, poller.StateCompleted, final.State)
	assert.Equal(t, int32(1), gw.projectCalls.Load())

	status := h.ctrl.Status()
	assert.Equal(t, poller.StateIdle, status.State)
	assert.Equal(t, poller.StateCompleted, status.Outcome)
	assert.Equal(t, entity.ID("42"), status.ProjectID)
}

func TestValidatePDF(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n")
	tests := []struct {
		name    string
		file    gateway.UploadFile
		wantErr bool
	}{
		{"valid pdf", gateway.UploadFile{Name: "a.PDF", Size: int64(len(pdf)), Reader: bytes.NewReader(pdf)}, false},
		{"wrong extension", gateway.UploadFile{Name: "a.docx", Size: int64(len(pdf)), Reader: bytes.NewReader(pdf)}, true},
		{"declared type mismatch", gateway.UploadFile{Name: "a.pdf", ContentType: "image/png", Size: int64(len(pdf)), Reader: bytes.NewReader(pdf)}, true},
		{"renamed text file", gateway.UploadFile{Name: "a.pdf", Size: 11, Reader: strings.NewReader("plain words")}, true},
		{"empty", gateway.UploadFile{Name: "a.pdf", Size: 0, Reader: strings.NewReader("")}, true},
		{"no reader", gateway.UploadFile{Name: "a.pdf", Size: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePDF(tt.file)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFile)
				return
			}
			require.NoError(t, err)
			replayed, err := io.ReadAll(got.Reader)
			require.NoError(t, err)
			assert.Equal(t, pdf, replayed)
			assert.Equal(t, "application/pdf", got.ContentType)
		})
	}
}

// stubWatcher records the document it was last started on.
type stubWatcher struct {
	mu       sync.Mutex
	snapshot poller.Update
}

func (w *stubWatcher) Start(_ context.Context, documentID entity.ID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snapshot = poller.Update{DocumentID: documentID, State: poller.StatePolling}
}

func (w *stubWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snapshot.State = poller.StateIdle
}

func (w *stubWatcher) Snapshot() poller.Update {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot
}

func TestConcurrentTrackKeepsOwnerOfPolledDocument(t *testing.T) {
	watcher := &stubWatcher{}
	ctrl := New(nil, nil, reconciler.New(nil, 0, logger.NewNop()), Options{
		NewWatcher: func(poller.Listener, poller.CompletionHandler) poller.Watcher { return watcher },
	})
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		ctrl.Track(ctx, "42", "900")

		var wg sync.WaitGroup
		start := make(chan struct{})
		for _, doc := range []entity.ID{"901", "900"} {
			wg.Add(1)
			go func(doc entity.ID) {
				defer wg.Done()
				<-start
				ctrl.Track(ctx, "42", doc)
			}(doc)
		}
		close(start)
		wg.Wait()

		status := ctrl.Status()
		require.Equal(t, entity.ID("42"), status.ProjectID, "document %s lost its project", status.DocumentID)
	}
}
