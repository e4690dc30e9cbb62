package services

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dukex/flowcanvas/pkg/eventbus"
	"github.com/dukex/flowcanvas/pkg/events"
	"github.com/dukex/flowcanvas/pkg/forms"
	"github.com/dukex/flowcanvas/pkg/graph"
	"github.com/dukex/flowcanvas/pkg/log"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/otelhelper"
	"github.com/dukex/flowcanvas/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Locker serialises work on a single workflow. Services that edit the same workflows should
// share one Locker. An entry lives only while some caller holds or waits on it.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sync.Mutex

	refs int
}

// NewLocker creates an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// Lock acquires the lock of a workflow and returns its release function.
func (l *Locker) Lock(workflowID string) func() {
	l.mu.Lock()

	entry, ok := l.locks[workflowID]
	if !ok {
		entry = &lockEntry{}
		l.locks[workflowID] = entry
	}

	entry.refs++

	l.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()

		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, workflowID)
		}
	}
}

// Len reports how many workflows currently have a lock entry.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.locks)
}

// Option configures a service.
type Option func(*base)

// WithTracer sets the tracer used for service spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *base) {
		b.tracer = tracer
	}
}

// WithClock sets the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		b.store = graph.NewStore(graph.WithClock(now))
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// WithLocker shares a workflow Locker between services.
func WithLocker(locker *Locker) Option {
	return func(b *base) {
		b.locker = locker
	}
}

// WithRand sets the source of new node positions.
func WithRand(rnd forms.Rand) Option {
	return func(b *base) {
		b.rand = rnd
	}
}

// base holds what every service needs.
type base struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	store       *graph.Store
	logger      *slog.Logger
	locker      *Locker
	rand        forms.Rand
}

func newBase(module string, p persistence.Persistence, publisher eventbus.EventPublisher, opts []Option) base {
	b := base{
		persistence: p,
		publisher:   publisher,
		tracer:      otelhelper.NoopTracer(),
		store:       graph.NewStore(),
		logger:      log.WithModule(module),
		locker:      NewLocker(),
		rand:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(&b)
	}

	return b
}

// nolint:spancheck // callers end the span
func (b *base) span(ctx context.Context, name, workflowID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if workflowID != "" {
		attrs = append(attrs, attribute.String(otelhelper.WorkflowIDKey, workflowID))
	}

	return otelhelper.StartSpan(ctx, b.tracer, name, attrs...)
}

// fail records err on span and returns it classified for op.
func (b *base) fail(span trace.Span, op string, err error) error {
	err = wrap(op, err)
	otelhelper.SetError(span, err)

	return err
}

// load fetches a workflow.
func (b *base) load(ctx context.Context, id string) (*models.Workflow, error) {
	return b.persistence.WorkflowRepository().GetByID(ctx, id)
}

// mutate loads a workflow under its lock, applies fn and saves the result when fn reports a
// change.
func (b *base) mutate(ctx context.Context, id string, fn func(w *models.Workflow) (bool, error)) (*models.Workflow, error) {
	unlock := b.locker.Lock(id)
	defer unlock()

	workflow, err := b.load(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := fn(workflow)
	if err != nil {
		return nil, err
	}

	if !changed {
		return workflow, nil
	}

	if err := b.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, err
	}

	return workflow, nil
}

// graphEdit adapts a graph store edit for mutate. The workflow is saved whenever the edit
// succeeds; the store leaves it untouched for no-op edits.
func graphEdit(fn func(w *models.Workflow) error) func(*models.Workflow) (bool, error) {
	return func(w *models.Workflow) (bool, error) {
		if err := fn(w); err != nil {
			return false, err
		}

		return true, nil
	}
}

// event stamps the base of a new event.
func (b *base) event(eventType events.EventType, workflow *models.Workflow) events.BaseEvent {
	return events.NewBaseEvent(b.publisher.GenerateID(), eventType, b.store.Now(), workflow)
}

// publish sends an event. The change it reports is already saved, so failures are only logged.
func (b *base) publish(ctx context.Context, key string, event eventbus.Event) {
	if err := b.publisher.Publish(ctx, key, event); err != nil {
		b.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
