package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theatreops/internal/auditlog"
	"theatreops/internal/changefeed"
	"theatreops/internal/classifier"
	"theatreops/internal/domain"
	"theatreops/internal/notify"
	"theatreops/internal/priority"
)

type pipeline struct {
	feed       *changefeed.MemoryFeed
	store      *auditlog.MemoryStore
	sink       *notify.MemorySink
	controller *Controller
}

func newPipeline(t *testing.T, opts ...Option) *pipeline {
	t.Helper()

	feed := changefeed.NewMemoryFeed()
	store := auditlog.NewMemoryStore()
	sink := notify.NewMemorySink()

	cls := classifier.New(classifier.DefaultConfig())
	engine := priority.New(classifier.DefaultConfig().TargetWindowDays)
	publisher := auditlog.NewPublisher(store)
	dispatcher := notify.NewDispatcher(notify.NewMemorySuppressions(), sink)

	return &pipeline{
		feed:       feed,
		store:      store,
		sink:       sink,
		controller: NewController(feed, cls, engine, publisher, dispatcher, opts...),
	}
}

func procedureChange(t *testing.T, kind domain.ChangeKind, oldRec, newRec *domain.Procedure) changefeed.Change {
	t.Helper()
	change := changefeed.Change{Entity: domain.EntityProcedure, Kind: kind}
	if oldRec != nil {
		raw, err := json.Marshal(oldRec)
		require.NoError(t, err)
		change.Old = raw
	}
	if newRec != nil {
		raw, err := json.Marshal(newRec)
		require.NoError(t, err)
		change.New = raw
	}
	return change
}

func TestController_ProcessesChangesEndToEnd(t *testing.T) {
	p := newPipeline(t)

	require.NoError(t, p.controller.Start(context.Background()))
	defer p.controller.Stop()

	p.feed.Publish(procedureChange(t, domain.ChangeCreated, nil, &domain.Procedure{
		ID: "proc-1", PatientRef: "MRN-1", Specialty: "orthopaedics",
		PriorityTier: "P2", Breached: true, ConsultantID: "cons-1",
	}))

	require.Eventually(t, func() bool {
		return len(p.store.All()) == 2
	}, time.Second, 10*time.Millisecond, "created and breached events reach the audit trail")

	events := p.store.All()
	assert.Equal(t, domain.EventProcedureCreated, events[0].Kind)
	assert.Equal(t, domain.EventProcedureBreached, events[1].Kind)
	assert.Equal(t, domain.SeverityUrgent, events[1].Severity, "severity is scored before recording")

	recipients := make([]string, 0)
	for _, n := range p.sink.Written() {
		recipients = append(recipients, n.Recipient)
	}
	assert.Contains(t, recipients, "cons-1", "the named consultant is notified of the breach")
	assert.Contains(t, recipients, domain.BroadcastManagers, "the managers broadcast goes out alongside")
}

func TestController_StartIsIdempotent(t *testing.T) {
	feed := &countingFeed{inner: changefeed.NewMemoryFeed()}
	p := newPipeline(t)
	p.controller.feed = feed

	require.NoError(t, p.controller.Start(context.Background()))
	defer p.controller.Stop()
	first := feed.count()

	require.NoError(t, p.controller.Start(context.Background()))
	assert.Equal(t, first, feed.count(), "a second Start opens no new subscriptions")
	assert.True(t, p.controller.Running())
}

func TestController_SubscribeFailureAbortsStart(t *testing.T) {
	feed := &countingFeed{
		inner:  changefeed.NewMemoryFeed(),
		failOn: domain.EntityStaffing,
	}
	p := newPipeline(t)
	p.controller.feed = feed

	err := p.controller.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staffing")
	assert.False(t, p.controller.Running())
}

func TestController_StopHaltsProcessing(t *testing.T) {
	p := newPipeline(t)

	require.NoError(t, p.controller.Start(context.Background()))
	p.controller.Stop()
	p.controller.Stop() // safe to repeat
	assert.False(t, p.controller.Running())

	p.feed.Publish(procedureChange(t, domain.ChangeCreated, nil, &domain.Procedure{
		ID: "proc-2", PatientRef: "MRN-2", Breached: true,
	}))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, p.store.All(), "changes after Stop are not processed")
}

func TestController_RestartAfterStop(t *testing.T) {
	p := newPipeline(t)

	require.NoError(t, p.controller.Start(context.Background()))
	p.controller.Stop()

	require.NoError(t, p.controller.Start(context.Background()))
	defer p.controller.Stop()
	assert.True(t, p.controller.Running())
}

func TestController_StreamTerminationInvokesCallback(t *testing.T) {
	var (
		mu   sync.Mutex
		down []domain.EntityType
	)
	p := newPipeline(t,
		WithEntities(domain.EntityProcedure),
		WithStreamStatusFunc(func(entity domain.EntityType, err error) {
			mu.Lock()
			defer mu.Unlock()
			down = append(down, entity)
		}),
	)

	require.NoError(t, p.controller.Start(context.Background()))
	defer p.controller.Stop()

	// The source going away closes the stream while the run context is
	// still alive.
	p.feed.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(down) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, domain.EntityProcedure, down[0])
	mu.Unlock()
}

func TestController_StopDoesNotInvokeCallback(t *testing.T) {
	var calls int32
	p := newPipeline(t,
		WithEntities(domain.EntityProcedure),
		WithStreamStatusFunc(func(domain.EntityType, error) {
			calls++
		}),
	)

	require.NoError(t, p.controller.Start(context.Background()))
	p.controller.Stop()

	assert.Zero(t, calls, "an orderly Stop is not a stream failure")
}

func TestController_ClassificationErrorIsIsolated(t *testing.T) {
	p := newPipeline(t, WithEntities(domain.EntityProcedure))

	require.NoError(t, p.controller.Start(context.Background()))
	defer p.controller.Stop()

	p.feed.Publish(changefeed.Change{
		Entity: domain.EntityProcedure,
		Kind:   domain.ChangeCreated,
		New:    json.RawMessage(`{"daysToTarget":"not a number"}`),
	})
	p.feed.Publish(procedureChange(t, domain.ChangeCreated, nil, &domain.Procedure{
		ID: "proc-3", PatientRef: "MRN-3", DaysToTarget: 90,
	}))

	require.Eventually(t, func() bool {
		return len(p.store.All()) == 1
	}, time.Second, 10*time.Millisecond, "the bad change is skipped, the stream keeps flowing")
	assert.Equal(t, "proc-3", p.store.All()[0].EntityID)
}

// countingFeed wraps a real feed to observe and fail subscriptions.
type countingFeed struct {
	inner  *changefeed.MemoryFeed
	failOn domain.EntityType

	mu sync.Mutex
	n  int
}

func (f *countingFeed) Subscribe(ctx context.Context, entity domain.EntityType) (<-chan changefeed.Change, error) {
	if f.failOn != "" && entity == f.failOn {
		return nil, errors.New("broker unreachable")
	}
	f.mu.Lock()
	f.n++
	f.mu.Unlock()
	return f.inner.Subscribe(ctx, entity)
}

func (f *countingFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

var _ changefeed.Feed = (*countingFeed)(nil)
