package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu        sync.Mutex
	reversed  map[string]int
	notified  []error
	fail      error
	deadlines bool
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{reversed: map[string]int{}}
}

func (h *recordingHandler) Reverse(ctx context.Context, a models.DeferredAction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reversed[a.ID]++
	if _, ok := ctx.Deadline(); ok {
		h.deadlines = true
	}
	return h.fail
}

func (h *recordingHandler) Notify(_ context.Context, a models.DeferredAction, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notified = append(h.notified, err)
}

func (h *recordingHandler) count(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reversed[id]
}

func (h *recordingHandler) total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.reversed {
		n += c
	}
	return n
}

func newBackend(t *testing.T) storage.Backend {
	t.Helper()
	backend, err := storage.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return backend
}

func action(kind models.ActionKind, due time.Time) models.DeferredAction {
	return models.DeferredAction{GuildID: "g1", TargetID: "u1", ChannelID: "c1", Kind: kind, DueAt: due}
}

func TestSchedulePersistsBeforeReturning(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	s := New(backend, Options{})

	a, err := s.Schedule(ctx, action(models.ActionUnmute, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, models.StatusPending, a.Status)

	// a second instance over the same storage sees it
	pending, err := New(backend, Options{}).Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a.ID, pending[0].ID)
}

func TestScheduleRejectsInvalid(t *testing.T) {
	s := New(newBackend(t), Options{})

	_, err := s.Schedule(context.Background(), action("ban", time.Now()))
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = s.Schedule(context.Background(), models.DeferredAction{Kind: models.ActionUnban, DueAt: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestFiresAtDueTime(t *testing.T) {
	ctx := context.Background()
	s := New(newBackend(t), Options{})
	h := newRecordingHandler()
	require.NoError(t, s.Start(ctx, h))
	defer s.Stop()

	a, err := s.Schedule(ctx, action(models.ActionUnmute, time.Now().Add(30*time.Millisecond)))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, ok, _ := s.Get(ctx, a.ID)
		return ok && got.Status == models.StatusFired
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, h.count(a.ID))
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.notified) == 1
	}, 2*time.Second, 5*time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.True(t, h.deadlines, "reverse must run with a deadline")
	assert.NoError(t, h.notified[0])
}

func TestRestartFiresOverdueExactlyOnce(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	first := New(backend, Options{})
	var ids []string
	for i := 0; i < 3; i++ {
		a, err := first.Schedule(ctx, action(models.ActionUnban, time.Now().Add(-time.Minute)))
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	future, err := first.Schedule(ctx, action(models.ActionUnmute, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	// the process "restarts": a fresh instance recovers from storage
	h := newRecordingHandler()
	second := New(backend, Options{})
	require.NoError(t, second.Start(ctx, h))

	for _, id := range ids {
		assert.Equal(t, 1, h.count(id))
		got, ok, err := second.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.StatusFired, got.Status)
		assert.NotNil(t, got.ClosedAt)
	}
	assert.Zero(t, h.count(future.ID))
	second.Stop()

	// and a third start does not fire them again
	h2 := newRecordingHandler()
	third := New(backend, Options{})
	require.NoError(t, third.Start(ctx, h2))
	defer third.Stop()
	assert.Zero(t, h2.total())

	pending, err := third.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, future.ID, pending[0].ID)
}

func TestCancelBeforeFire(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	s := New(backend, Options{})
	h := newRecordingHandler()
	require.NoError(t, s.Start(ctx, h))

	a, err := s.Schedule(ctx, action(models.ActionUnban, time.Now().Add(50*time.Millisecond)))
	require.NoError(t, err)

	ok, err := s.Cancel(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// cancelling twice is a no-op
	ok, err = s.Cancel(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(100 * time.Millisecond)
	s.Stop()
	assert.Zero(t, h.count(a.ID))

	got, _, _ := s.Get(ctx, a.ID)
	assert.Equal(t, models.StatusCancelled, got.Status)

	// recovery after cancellation does not fire it
	restarted := New(backend, Options{Now: func() time.Time { return time.Now().Add(time.Hour) }})
	h2 := newRecordingHandler()
	require.NoError(t, restarted.Start(ctx, h2))
	restarted.Stop()
	assert.Zero(t, h2.total())
}

func TestCancelBeforeStart(t *testing.T) {
	ctx := context.Background()
	s := New(newBackend(t), Options{})

	a, err := s.Schedule(ctx, action(models.ActionUnmute, time.Now().Add(-time.Second)))
	require.NoError(t, err)

	ok, err := s.Cancel(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	h := newRecordingHandler()
	require.NoError(t, s.Start(ctx, h))
	s.Stop()
	assert.Zero(t, h.total())
}

func TestCancelAfterFireIsNoop(t *testing.T) {
	ctx := context.Background()
	s := New(newBackend(t), Options{})
	h := newRecordingHandler()
	require.NoError(t, s.Start(ctx, h))
	defer s.Stop()

	a, err := s.Schedule(ctx, action(models.ActionUnmute, time.Now()))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.count(a.ID) == 1 }, 2*time.Second, 5*time.Millisecond)

	ok, err := s.Cancel(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCancelRaceNeverDoubleFires(t *testing.T) {
	ctx := context.Background()
	s := New(newBackend(t), Options{})
	h := newRecordingHandler()
	require.NoError(t, s.Start(ctx, h))

	const n = 40
	var cancelled atomic.Int32
	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		a, err := s.Schedule(ctx, action(models.ActionUnmute, time.Now().Add(time.Millisecond)))
		require.NoError(t, err)
		ids[i] = a.ID

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			ok, err := s.Cancel(ctx, id)
			assert.NoError(t, err)
			if ok {
				cancelled.Add(1)
			}
		}(a.ID)
	}
	wg.Wait()
	// let any armed timer that beat its cancel finish
	require.Eventually(t, func() bool {
		return h.total()+int(cancelled.Load()) == n
	}, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	for _, id := range ids {
		assert.LessOrEqual(t, h.count(id), 1)
		got, ok, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotEqual(t, models.StatusPending, got.Status, "action %s left pending", id)
		if got.Status == models.StatusCancelled {
			assert.Zero(t, h.count(id))
		} else {
			assert.Equal(t, 1, h.count(id))
		}
	}
}

func TestFailedReversalIsNotRetried(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	s := New(backend, Options{})
	h := newRecordingHandler()
	h.fail = errors.New("missing permissions")

	a, err := s.Schedule(ctx, action(models.ActionUnban, time.Now().Add(-time.Second)))
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx, h))
	s.Stop()

	got, _, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFired, got.Status)
	assert.Equal(t, "missing permissions", got.Error)

	h.mu.Lock()
	require.Len(t, h.notified, 1)
	assert.ErrorIs(t, h.notified[0], ErrReversalFailed)
	h.mu.Unlock()

	again := newRecordingHandler()
	restarted := New(backend, Options{})
	require.NoError(t, restarted.Start(ctx, again))
	restarted.Stop()
	assert.Zero(t, again.total())
}

func TestRetentionPrunesTerminalActions(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	now := time.Now()

	s := New(backend, Options{})
	old, err := s.Schedule(ctx, action(models.ActionUnmute, now.Add(time.Hour)))
	require.NoError(t, err)
	_, err = s.Cancel(ctx, old.ID)
	require.NoError(t, err)
	kept, err := s.Schedule(ctx, action(models.ActionUnmute, now.Add(48*time.Hour)))
	require.NoError(t, err)

	later := New(backend, Options{
		Retention: time.Hour,
		Now:       func() time.Time { return now.Add(2 * time.Hour) },
	})
	require.NoError(t, later.Start(ctx, newRecordingHandler()))
	defer later.Stop()

	_, ok, err := later.Get(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, ok, "cancelled action past retention should be pruned")

	_, ok, err = later.Get(ctx, kept.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCancelMatching(t *testing.T) {
	ctx := context.Background()
	s := New(newBackend(t), Options{})
	require.NoError(t, s.Start(ctx, newRecordingHandler()))
	defer s.Stop()

	_, _ = s.Schedule(ctx, action(models.ActionUnmute, time.Now().Add(time.Hour)))
	_, _ = s.Schedule(ctx, action(models.ActionUnmute, time.Now().Add(2*time.Hour)))
	ban, _ := s.Schedule(ctx, action(models.ActionUnban, time.Now().Add(time.Hour)))

	n, err := s.CancelMatching(ctx, "g1", "u1", models.ActionUnmute)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ban.ID, pending[0].ID)
}

func TestStartTwice(t *testing.T) {
	s := New(newBackend(t), Options{})
	require.NoError(t, s.Start(context.Background(), newRecordingHandler()))
	defer s.Stop()
	assert.ErrorIs(t, s.Start(context.Background(), newRecordingHandler()), ErrAlreadyStarted)
}
