package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/jonboulle/clockwork"
)

const module = "Poller"

// ErrNoDocument marks a status query that returned neither a document nor an
// error. It is treated like any other failed query.
var ErrNoDocument = errors.New("poller: status query returned no document")

const (
	DefaultInterval = 3 * time.Second
	DefaultCeiling  = 60 * time.Second
)

type State string

const (
	StateIdle      State = "IDLE"
	StatePolling   State = "POLLING"
	StateCompleted State = "TERMINAL_COMPLETED"
	StateTimedOut  State = "TERMINAL_TIMEOUT"
)

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateTimedOut
}

// StatusFetcher reads the current state of one document.
type StatusFetcher interface {
	GetDocument(ctx context.Context, id entity.ID) (*entity.Document, error)
}

// Update describes the poller after a query or a transition. Document is the
// latest accepted observation; Err is the latest query failure, which never
// ends the loop on its own.
type Update struct {
	DocumentID entity.ID
	State      State
	Document   *entity.Document
	Err        error
	Attempt    int
	Elapsed    time.Duration

	// Outcome is set on idle snapshots and names how the last run ended.
	Outcome State
}

type Listener func(Update)

// CompletionHandler runs exactly once per completed run, before the
// TERMINAL_COMPLETED update is emitted.
type CompletionHandler func(ctx context.Context, documentID entity.ID, doc *entity.Document)

// Watcher tracks one document at a time until it completes or times out.
type Watcher interface {
	Start(ctx context.Context, documentID entity.ID)
	Stop()
	Snapshot() Update
}

type Options struct {
	Interval      time.Duration
	Ceiling       time.Duration
	SilentTimeout bool
	Clock         clockwork.Clock
	Logger        logger.ILogger
	OnUpdate      Listener
	OnComplete    CompletionHandler
}

// Poller is a fixed-cadence Watcher: one immediate query, then one per
// interval until COMPLETADO or until the ceiling is reached.
type Poller struct {
	fetcher StatusFetcher
	opts    Options

	mu       sync.Mutex
	run      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	snapshot Update
}

var _ Watcher = (*Poller)(nil)

func New(fetcher StatusFetcher, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Ceiling <= 0 {
		opts.Ceiling = DefaultCeiling
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Poller{
		fetcher:  fetcher,
		opts:     opts,
		snapshot: Update{State: StateIdle},
	}
}

// Start cancels any running loop and begins tracking documentID. The loop
// lives until completion, timeout, Stop or cancellation of ctx.
func (p *Poller) Start(ctx context.Context, documentID entity.ID) {
	p.mu.Lock()
	p.cancelLocked()
	p.run++
	run := p.run

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.snapshot = Update{DocumentID: documentID, State: StatePolling}

	// Both are taken before the goroutine starts so elapsed time and the first
	// tick are anchored to the call.
	start := p.opts.Clock.Now()
	ticker := p.opts.Clock.NewTicker(p.opts.Interval)
	p.mu.Unlock()

	p.opts.Logger.Info(module, "Polling started", map[string]interface{}{
		"document_id": documentID,
		"interval":    p.opts.Interval.String(),
		"ceiling":     p.opts.Ceiling.String(),
	})

	go p.loop(loopCtx, run, documentID, start, ticker, done)
}

// Stop cancels the running loop, if any. A query already in flight is not
// aborted but its result is discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot.State != StatePolling {
		return
	}
	p.cancelLocked()
	p.run++
	p.snapshot.State = StateIdle
	p.snapshot.Outcome = ""
	p.opts.Logger.Info(module, "Polling stopped", map[string]interface{}{"document_id": p.snapshot.DocumentID})
}

func (p *Poller) Snapshot() Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Wait blocks until the current loop has exited.
func (p *Poller) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (p *Poller) cancelLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Poller) loop(ctx context.Context, run uint64, id entity.ID, start time.Time, ticker clockwork.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	defer p.release(run)

	attempt := 0
	if p.poll(ctx, run, id, &attempt, 0) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
		// select picks randomly when both are ready.
		if ctx.Err() != nil {
			return
		}

		elapsed := p.opts.Clock.Since(start)
		if p.poll(ctx, run, id, &attempt, elapsed) {
			return
		}
		if elapsed >= p.opts.Ceiling {
			p.timeout(run, id, attempt, elapsed)
			return
		}
	}
}

// release parks a loop that ended through its parent context.
func (p *Poller) release(run uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run == run && p.snapshot.State == StatePolling {
		p.cancelLocked()
		p.snapshot.State = StateIdle
	}
}

// poll issues one query and reports whether the loop must end.
func (p *Poller) poll(ctx context.Context, run uint64, id entity.ID, attempt *int, elapsed time.Duration) bool {
	*attempt++
	doc, err := p.fetcher.GetDocument(context.WithoutCancel(ctx), id)
	if err == nil && doc == nil {
		err = ErrNoDocument
	}

	p.mu.Lock()
	if p.run != run || ctx.Err() != nil {
		p.mu.Unlock()
		p.opts.Logger.Debug(module, "Dropping response for superseded run", map[string]interface{}{"document_id": id})
		return true
	}
	if err == nil && doc != nil && !doc.Id.IsZero() && doc.Id != id {
		p.mu.Unlock()
		p.opts.Logger.Warn(module, "Dropping response for another document", map[string]interface{}{
			"document_id": id,
			"received_id": doc.Id,
		})
		return false
	}

	update := p.snapshot
	update.Attempt = *attempt
	update.Elapsed = elapsed
	update.Err = err
	if err == nil {
		update.Document = doc
	}

	if err != nil || !doc.Status.IsCompleted() {
		p.snapshot = update
		p.mu.Unlock()
		if err != nil {
			p.opts.Logger.Warn(module, "Status query failed", map[string]interface{}{
				"document_id": id,
				"attempt":     *attempt,
				"error":       err.Error(),
			})
		}
		p.emit(update)
		return false
	}

	// Completed: no further queries for this run.
	p.cancelLocked()
	p.mu.Unlock()

	if p.opts.OnComplete != nil {
		p.opts.OnComplete(context.WithoutCancel(ctx), id, doc)
	}

	update.State = StateCompleted
	p.finish(run, update)
	p.opts.Logger.Info(module, "Document analysis completed", map[string]interface{}{
		"document_id": id,
		"attempts":    *attempt,
	})
	return true
}

func (p *Poller) timeout(run uint64, id entity.ID, attempt int, elapsed time.Duration) {
	p.mu.Lock()
	if p.run != run {
		p.mu.Unlock()
		return
	}
	p.cancelLocked()
	update := p.snapshot
	update.State = StateTimedOut
	update.Attempt = attempt
	update.Elapsed = elapsed
	p.mu.Unlock()

	p.opts.Logger.Info(module, "Polling ceiling reached", map[string]interface{}{
		"document_id": id,
		"attempts":    attempt,
		"elapsed":     elapsed.String(),
	})
	p.finish(run, update)
}

// finish emits the terminal update and parks the machine in IDLE, keeping the
// last observation.
func (p *Poller) finish(run uint64, update Update) {
	p.mu.Lock()
	current := p.run == run
	if current {
		p.snapshot = update
	}
	p.mu.Unlock()
	if !current {
		return
	}

	if update.State != StateTimedOut || !p.opts.SilentTimeout {
		p.emit(update)
	}

	p.mu.Lock()
	if p.run == run {
		p.snapshot.State = StateIdle
		p.snapshot.Outcome = update.State
	}
	p.mu.Unlock()
}

func (p *Poller) emit(u Update) {
	if p.opts.OnUpdate != nil {
		p.opts.OnUpdate(u)
	}
}
