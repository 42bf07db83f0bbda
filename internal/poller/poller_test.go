package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchFunc func(ctx context.Context, id entity.ID) (*entity.Document, error)

type fakeFetcher struct {
	fn    fetchFunc
	calls chan entity.ID
	count atomic.Int32
}

func newFakeFetcher(fn fetchFunc) *fakeFetcher {
	return &fakeFetcher{fn: fn, calls: make(chan entity.ID, 64)}
}

// scripted returns the statuses in order and repeats the last one.
func scripted(statuses ...entity.DocumentStatus) *fakeFetcher {
	var mu sync.Mutex
	i := 0
	return newFakeFetcher(func(_ context.Context, id entity.ID) (*entity.Document, error) {
		mu.Lock()
		defer mu.Unlock()
		status := statuses[i]
		if i < len(statuses)-1 {
			i++
		}
		doc := &entity.Document{Id: id, FileName: "thesis.pdf", Status: status}
		if status.IsCompleted() {
			score := 12.5
			doc.PlagiarismScore = &score
		}
		return doc, nil
	})
}

func (f *fakeFetcher) GetDocument(ctx context.Context, id entity.ID) (*entity.Document, error) {
	f.count.Add(1)
	f.calls <- id
	return f.fn(ctx, id)
}

func (f *fakeFetcher) waitCall(t *testing.T) entity.ID {
	t.Helper()
	select {
	case id := <-f.calls:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("expected a status query")
		return ""
	}
}

type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) listen(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) all() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

func (r *recorder) last() Update {
	all := r.all()
	if len(all) == 0 {
		return Update{}
	}
	return all[len(all)-1]
}

func TestPollerStopsAfterCompletion(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := scripted(entity.DocumentStatusProcessing, entity.DocumentStatusProcessing, entity.DocumentStatusCompleted)
	rec := &recorder{}
	var completions atomic.Int32

	p := New(fetcher, Options{
		Clock:    clock,
		OnUpdate: rec.listen,
		OnComplete: func(_ context.Context, _ entity.ID, doc *entity.Document) {
			assert.Equal(t, entity.DocumentStatusCompleted, doc.Status)
			// The terminal update is emitted after the handler returns.
			assert.NotEqual(t, StateCompleted, rec.last().State)
			completions.Add(1)
		},
	})

	p.Start(context.Background(), "900")
	fetcher.waitCall(t)
	clock.Advance(3 * time.Second)
	fetcher.waitCall(t)
	clock.Advance(3 * time.Second)
	fetcher.waitCall(t)
	p.Wait()

	clock.Advance(30 * time.Second)
	assert.Never(t, func() bool { return fetcher.count.Load() > 3 }, 50*time.Millisecond, 5*time.Millisecond)

	assert.Equal(t, int32(3), fetcher.count.Load())
	assert.Equal(t, int32(1), completions.Load())

	last := rec.last()
	assert.Equal(t, StateCompleted, last.State)
	assert.Equal(t, 3, last.Attempt)
	assert.Equal(t, 6*time.Second, last.Elapsed)
	require.NotNil(t, last.Document.PlagiarismScore)
	assert.Equal(t, 12.5, *last.Document.PlagiarismScore)

	snap := p.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, StateCompleted, snap.Outcome)
	assert.Equal(t, entity.ID("900"), snap.DocumentID)
}

func TestPollerTimesOutWithoutError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := scripted(entity.DocumentStatusQueued)
	rec := &recorder{}
	completed := false

	p := New(fetcher, Options{
		Clock:      clock,
		OnUpdate:   rec.listen,
		OnComplete: func(context.Context, entity.ID, *entity.Document) { completed = true },
	})

	p.Start(context.Background(), "901")
	fetcher.waitCall(t)
	for i := 0; i < 20; i++ {
		clock.Advance(3 * time.Second)
		fetcher.waitCall(t)
	}
	p.Wait()

	clock.Advance(time.Minute)
	assert.Never(t, func() bool { return fetcher.count.Load() > 21 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, int32(21), fetcher.count.Load())
	assert.False(t, completed)

	last := rec.last()
	assert.Equal(t, StateTimedOut, last.State)
	assert.NoError(t, last.Err)
	assert.Equal(t, 60*time.Second, last.Elapsed)
	assert.Equal(t, StateTimedOut, p.Snapshot().Outcome)
}

func TestPollerSilentTimeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := scripted(entity.DocumentStatusProcessing)
	rec := &recorder{}

	p := New(fetcher, Options{
		Clock:         clock,
		Interval:      time.Second,
		Ceiling:       2 * time.Second,
		SilentTimeout: true,
		OnUpdate:      rec.listen,
	})

	p.Start(context.Background(), "902")
	fetcher.waitCall(t)
	clock.Advance(time.Second)
	fetcher.waitCall(t)
	clock.Advance(time.Second)
	fetcher.waitCall(t)
	p.Wait()

	for _, u := range rec.all() {
		assert.NotEqual(t, StateTimedOut, u.State)
	}
	assert.Len(t, rec.all(), 3)
	assert.Equal(t, StateTimedOut, p.Snapshot().Outcome)
}

func TestPollerDropsStaleRunResponse(t *testing.T) {
	clock := clockwork.NewFakeClock()
	releaseA := make(chan struct{})
	var completions atomic.Int32

	fetcher := newFakeFetcher(func(_ context.Context, id entity.ID) (*entity.Document, error) {
		if id == "A" {
			<-releaseA
			return &entity.Document{Id: "A", Status: entity.DocumentStatusCompleted}, nil
		}
		return &entity.Document{Id: "B", Status: entity.DocumentStatusProcessing}, nil
	})
	rec := &recorder{}
	p := New(fetcher, Options{
		Clock:      clock,
		OnUpdate:   rec.listen,
		OnComplete: func(context.Context, entity.ID, *entity.Document) { completions.Add(1) },
	})

	p.Start(context.Background(), "A")
	assert.Equal(t, entity.ID("A"), fetcher.waitCall(t))

	p.Start(context.Background(), "B")
	assert.Equal(t, entity.ID("B"), fetcher.waitCall(t))
	close(releaseA)

	assert.Never(t, func() bool { return completions.Load() > 0 }, 100*time.Millisecond, 5*time.Millisecond)

	snap := p.Snapshot()
	assert.Equal(t, entity.ID("B"), snap.DocumentID)
	assert.Equal(t, StatePolling, snap.State)
	require.NotNil(t, snap.Document)
	assert.Equal(t, entity.DocumentStatusProcessing, snap.Document.Status)
	for _, u := range rec.all() {
		assert.Equal(t, entity.ID("B"), u.DocumentID)
	}

	p.Stop()
	p.Wait()
}

func TestPollerIgnoresResponseForAnotherDocument(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := newFakeFetcher(func(context.Context, entity.ID) (*entity.Document, error) {
		return &entity.Document{Id: "other", Status: entity.DocumentStatusCompleted}, nil
	})
	rec := &recorder{}
	p := New(fetcher, Options{Clock: clock, OnUpdate: rec.listen})

	p.Start(context.Background(), "903")
	fetcher.waitCall(t)
	clock.Advance(3 * time.Second)
	fetcher.waitCall(t)

	assert.Empty(t, rec.all())
	assert.Equal(t, StatePolling, p.Snapshot().State)
	assert.Nil(t, p.Snapshot().Document)

	p.Stop()
	p.Wait()
}

func TestPollerStopPreventsFurtherQueries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := scripted(entity.DocumentStatusProcessing)
	p := New(fetcher, Options{Clock: clock})

	p.Start(context.Background(), "904")
	fetcher.waitCall(t)
	p.Stop()
	clock.Advance(3 * time.Second)
	p.Wait()

	assert.Never(t, func() bool { return fetcher.count.Load() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, StateIdle, p.Snapshot().State)
	assert.Empty(t, p.Snapshot().Outcome)
}

func TestPollerKeepsPollingAfterQueryError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	calls := 0
	fetcher := newFakeFetcher(func(_ context.Context, id entity.ID) (*entity.Document, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("gateway unavailable")
		}
		return &entity.Document{Id: id, Status: entity.DocumentStatusCompleted}, nil
	})
	rec := &recorder{}
	p := New(fetcher, Options{Clock: clock, OnUpdate: rec.listen})

	p.Start(context.Background(), "905")
	fetcher.waitCall(t)
	clock.Advance(3 * time.Second)
	fetcher.waitCall(t)
	p.Wait()

	updates := rec.all()
	require.Len(t, updates, 2)
	assert.Error(t, updates[0].Err)
	assert.Equal(t, StatePolling, updates[0].State)
	assert.NoError(t, updates[1].Err)
	assert.Equal(t, StateCompleted, updates[1].State)
}

func TestPollerTreatsMissingDocumentAsQueryError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	calls := 0
	fetcher := newFakeFetcher(func(_ context.Context, id entity.ID) (*entity.Document, error) {
		calls++
		if calls == 1 {
			return nil, nil
		}
		return &entity.Document{Id: id, Status: entity.DocumentStatusCompleted}, nil
	})
	rec := &recorder{}
	p := New(fetcher, Options{Clock: clock, OnUpdate: rec.listen})

	p.Start(context.Background(), "906")
	fetcher.waitCall(t)
	clock.Advance(3 * time.Second)
	fetcher.waitCall(t)
	p.Wait()

	updates := rec.all()
	require.Len(t, updates, 2)
	assert.ErrorIs(t, updates[0].Err, ErrNoDocument)
	assert.Nil(t, updates[0].Document)
	assert.Equal(t, StatePolling, updates[0].State)
	assert.Equal(t, StateCompleted, updates[1].State)
}

func TestPollerReleasesOnParentCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := scripted(entity.DocumentStatusProcessing)
	p := New(fetcher, Options{Clock: clock})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx, "906")
	fetcher.waitCall(t)
	cancel()
	p.Wait()

	assert.Equal(t, StateIdle, p.Snapshot().State)
}
