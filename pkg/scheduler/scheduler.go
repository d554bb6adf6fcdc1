// Package scheduler runs deferred unmute/unban reversals. Every action is
// persisted before it is armed, so pending reversals survive a restart, and
// an action fires at most once: whichever of fire or Cancel claims it first wins.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/anticrash"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/metrics"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
	"github.com/google/uuid"
)

// DocumentName is the stored document holding every deferred action.
const DocumentName = "actions"

var (
	// ErrReversalFailed is passed to Handler.Notify when Reverse returned an error.
	ErrReversalFailed = errors.New("automatic reversal failed")
	// ErrInvalidAction rejects actions missing a guild, target or known kind.
	ErrInvalidAction = errors.New("invalid deferred action")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("scheduler already started")
)

// Handler performs and reports reversals.
type Handler interface {
	// Reverse undoes the punishment. A target already in the desired state must return nil.
	Reverse(ctx context.Context, a models.DeferredAction) error
	// Notify receives the fired action and a nil or ErrReversalFailed error.
	Notify(ctx context.Context, a models.DeferredAction, err error)
}

// Options tunes a Scheduler. Zero values fall back to the defaults.
type Options struct {
	// Timeout bounds each Reverse and Notify call.
	Timeout time.Duration
	// Retention is how long fired/cancelled actions are kept; 0 keeps them forever.
	Retention time.Duration
	Now       func() time.Time
}

type armed struct {
	action models.DeferredAction
	// nil while an overdue action waits for the recovery pass
	timer *time.Timer
}

// Scheduler owns the actions document.
type Scheduler struct {
	doc  *storage.Document[models.ActionsData]
	opts Options

	mu      sync.Mutex
	armed   map[string]*armed
	handler Handler
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// New binds a scheduler to backend. Nothing fires until Start.
func New(backend storage.Backend, opts Options) *Scheduler {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		doc: storage.NewDocument(backend, DocumentName, func() models.ActionsData {
			return models.ActionsData{}
		}),
		opts:  opts,
		armed: make(map[string]*armed),
	}
}

// Schedule persists a new pending action and arms it when the scheduler is running.
// ID, Status and CreatedAt are assigned here.
func (s *Scheduler) Schedule(ctx context.Context, a models.DeferredAction) (models.DeferredAction, error) {
	if a.GuildID == "" || a.TargetID == "" || a.DueAt.IsZero() {
		return a, fmt.Errorf("%w: guild, target and due time are required", ErrInvalidAction)
	}
	if a.Kind != models.ActionUnmute && a.Kind != models.ActionUnban {
		return a, fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, a.Kind)
	}

	a.ID = uuid.NewString()
	a.Status = models.StatusPending
	a.CreatedAt = s.opts.Now().UTC()
	a.DueAt = a.DueAt.UTC()
	a.ClosedAt = nil
	a.Error = ""

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.doc.Update(ctx, func(d *models.ActionsData) error {
		if *d == nil {
			*d = models.ActionsData{}
		}
		(*d)[a.ID] = a
		return nil
	})
	if err != nil {
		return a, err
	}

	metrics.ActionsScheduled.WithLabelValues(string(a.Kind)).Inc()
	if s.started && !s.stopped {
		s.arm(a)
	}
	logger.Debug(fmt.Sprintf("Acción %s (%s) programada para %s", a.ID, a.Kind, a.DueAt.Format(time.RFC3339)), "Scheduler")
	return a, nil
}

// Cancel marks a pending action cancelled. It returns false when the action
// already fired, was already cancelled, or does not exist.
func (s *Scheduler) Cancel(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		return s.markCancelled(ctx, id)
	}

	entry, ok := s.armed[id]
	if !ok {
		// already claimed by fire, or not pending at all
		return false, nil
	}
	if entry.timer != nil {
		// If the timer already expired, its fire call is blocked on s.mu and
		// will find the entry gone.
		entry.timer.Stop()
	}
	delete(s.armed, id)

	cancelled, err := s.markCancelled(ctx, id)
	if err != nil {
		// keep it pending and armed so it is not lost
		s.arm(entry.action)
		return false, err
	}
	metrics.ActionsPending.Set(float64(len(s.armed)))
	return cancelled, nil
}

// CancelMatching cancels every pending action for target of the given kind.
func (s *Scheduler) CancelMatching(ctx context.Context, guildID, targetID string, kind models.ActionKind) (int, error) {
	pending, err := s.FindPending(ctx, guildID, targetID, kind)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range pending {
		ok, err := s.Cancel(ctx, a.ID)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Start recovers persisted state: terminal actions past retention are pruned,
// future actions are armed and overdue ones fire before Start returns.
func (s *Scheduler) Start(ctx context.Context, h Handler) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}

	data, err := s.doc.Read(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.handler = h
	s.started = true
	now := s.opts.Now()

	var overdue []models.DeferredAction
	var expired []string
	for id, a := range data {
		switch {
		case a.Terminal():
			if s.opts.Retention > 0 && a.ClosedAt != nil && now.Sub(*a.ClosedAt) > s.opts.Retention {
				expired = append(expired, id)
			}
		case a.Status == models.StatusPending:
			if a.DueAt.After(now) {
				s.arm(a)
			} else {
				s.armed[a.ID] = &armed{action: a}
				overdue = append(overdue, a)
			}
		}
	}
	metrics.ActionsPending.Set(float64(len(s.armed)))

	if len(expired) > 0 {
		err := s.doc.Update(ctx, func(d *models.ActionsData) error {
			for _, id := range expired {
				if cur, ok := (*d)[id]; ok && cur.Terminal() {
					delete(*d, id)
				}
			}
			return nil
		})
		if err != nil {
			logger.Warn(fmt.Sprintf("No se pudieron purgar %d acciones antiguas: %v", len(expired), err), "Scheduler")
		} else {
			logger.Info(fmt.Sprintf("Purgadas %d acciones antiguas", len(expired)), "Scheduler")
		}
	}
	pending := len(s.armed)
	s.mu.Unlock()

	logger.System(fmt.Sprintf("Scheduler iniciado: %d acciones pendientes, %d vencidas", pending, len(overdue)), "Scheduler")

	sort.Slice(overdue, func(i, j int) bool { return overdue[i].DueAt.Before(overdue[j].DueAt) })
	for _, a := range overdue {
		s.fire(a.ID)
	}
	return nil
}

// Stop disarms every timer and waits for in-flight reversals. Pending actions
// stay persisted for the next Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, entry := range s.armed {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		delete(s.armed, id)
	}
	metrics.ActionsPending.Set(0)
	s.mu.Unlock()

	s.wg.Wait()
}

// Get returns the stored action with id.
func (s *Scheduler) Get(ctx context.Context, id string) (models.DeferredAction, bool, error) {
	data, err := s.doc.Read(ctx)
	if err != nil {
		return models.DeferredAction{}, false, err
	}
	a, ok := data[id]
	return a, ok, nil
}

// Pending lists every pending action ordered by due time.
func (s *Scheduler) Pending(ctx context.Context) ([]models.DeferredAction, error) {
	return s.filter(ctx, func(a models.DeferredAction) bool { return true })
}

// FindPending lists pending actions for a target. An empty kind matches both kinds.
func (s *Scheduler) FindPending(ctx context.Context, guildID, targetID string, kind models.ActionKind) ([]models.DeferredAction, error) {
	return s.filter(ctx, func(a models.DeferredAction) bool {
		return a.GuildID == guildID && a.TargetID == targetID && (kind == "" || a.Kind == kind)
	})
}

func (s *Scheduler) filter(ctx context.Context, match func(models.DeferredAction) bool) ([]models.DeferredAction, error) {
	data, err := s.doc.Read(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.DeferredAction
	for _, a := range data {
		if a.Status == models.StatusPending && match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

// arm must be called with s.mu held.
func (s *Scheduler) arm(a models.DeferredAction) {
	delay := a.DueAt.Sub(s.opts.Now())
	if delay < 0 {
		delay = 0
	}
	id := a.ID
	s.armed[id] = &armed{action: a, timer: time.AfterFunc(delay, func() { s.fire(id) })}
	metrics.ActionsPending.Set(float64(len(s.armed)))
}

// fire claims the action and runs it. Losing the claim to Cancel or Stop is a no-op.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	entry, ok := s.armed[id]
	if !ok || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.armed, id)
	metrics.ActionsPending.Set(float64(len(s.armed)))
	s.wg.Add(1)
	handler := s.handler
	s.mu.Unlock()

	defer s.wg.Done()
	defer anticrash.Recover()

	s.execute(handler, entry.action)
}

func (s *Scheduler) execute(h Handler, a models.DeferredAction) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	reverseErr := h.Reverse(ctx, a)
	cancel()

	closed := s.opts.Now().UTC()
	a.Status = models.StatusFired
	a.ClosedAt = &closed
	outcome := "ok"
	if reverseErr != nil {
		a.Error = reverseErr.Error()
		outcome = "failed"
	}

	// Fired is recorded even on failure: reversals are never retried.
	persistCtx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	err := s.doc.Update(persistCtx, func(d *models.ActionsData) error {
		if *d == nil {
			*d = models.ActionsData{}
		}
		if cur, ok := (*d)[a.ID]; ok && cur.Terminal() {
			return nil
		}
		(*d)[a.ID] = a
		return nil
	})
	cancel()
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo guardar el estado de la acción %s: %v", a.ID, err), "Scheduler")
	}

	metrics.ActionsFired.WithLabelValues(string(a.Kind), outcome).Inc()

	var notifyErr error
	if reverseErr != nil {
		notifyErr = fmt.Errorf("%w: %v", ErrReversalFailed, reverseErr)
		logger.Error(fmt.Sprintf("Falló la reversión automática %s (%s) de %s: %v", a.ID, a.Kind, a.TargetID, reverseErr), "Scheduler")
	} else {
		logger.Info(fmt.Sprintf("Reversión automática %s (%s) de %s completada", a.ID, a.Kind, a.TargetID), "Scheduler")
	}

	notifyCtx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()
	h.Notify(notifyCtx, a, notifyErr)
}

// markCancelled must be called with s.mu held.
func (s *Scheduler) markCancelled(ctx context.Context, id string) (bool, error) {
	var cancelled models.DeferredAction
	changed := false
	err := s.doc.Update(ctx, func(d *models.ActionsData) error {
		cur, ok := (*d)[id]
		if !ok || cur.Status != models.StatusPending {
			return nil
		}
		closed := s.opts.Now().UTC()
		cur.Status = models.StatusCancelled
		cur.ClosedAt = &closed
		(*d)[id] = cur
		cancelled = cur
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		metrics.ActionsCancelled.WithLabelValues(string(cancelled.Kind)).Inc()
		logger.Debug(fmt.Sprintf("Acción %s cancelada", id), "Scheduler")
	}
	return changed, nil
}
