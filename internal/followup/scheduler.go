// Package followup runs deferred, cancellable follow-up actions. Each
// scheduled follow-up fires exactly once after its delay unless it is
// cancelled first; shutdown never silently abandons pending work.
package followup

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartsales/lead-pipeline/internal/store"
)

// State is a follow-up's lifecycle position.
type State int

const (
	StatePending State = iota
	StateFired
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFired:
		return "fired"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Handle identifies one scheduled follow-up.
type Handle struct {
	id uuid.UUID
}

type followUp struct {
	leadID string
	note   string
	state  State
	timer  *time.Timer
}

// Scheduler owns the deferred-task registry. Schedule never blocks the
// caller; firing happens on the timer's goroutine and mutates the run's
// stores. Close cancels whatever is still pending and waits for
// in-flight fires, so no background work outlives the scheduler.
type Scheduler struct {
	records *store.RecordStore
	ledger  *store.EventLedger
	logger  *log.Logger

	mu      sync.Mutex
	tasks   map[uuid.UUID]*followUp
	closed  bool
	pending sync.WaitGroup
}

func NewScheduler(records *store.RecordStore, ledger *store.EventLedger, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Scheduler{
		records: records,
		ledger:  ledger,
		logger:  logger,
		tasks:   make(map[uuid.UUID]*followUp),
	}
}

// Schedule registers a deferred follow-up for the lead and returns
// immediately. When the delay elapses uncancelled, the action upserts
// {followup_due: true} and appends a followup event. Scheduling on a
// closed scheduler yields an already-cancelled handle.
func (s *Scheduler) Schedule(leadID string, delay time.Duration, note string) Handle {
	id := uuid.New()
	f := &followUp{leadID: leadID, note: note, state: StatePending}

	s.mu.Lock()
	if s.closed {
		f.state = StateCancelled
		s.tasks[id] = f
		s.mu.Unlock()
		return Handle{id: id}
	}
	s.tasks[id] = f
	s.pending.Add(1)
	f.timer = time.AfterFunc(delay, func() { s.fire(id) })
	s.mu.Unlock()

	s.logger.Printf("follow-up scheduled lead=%s delay=%s", leadID, delay)
	return Handle{id: id}
}

// Cancel transitions a pending follow-up to cancelled and suppresses its
// action. Returns false when the follow-up already fired (or the handle
// is unknown); a cancelled follow-up never mutates the stores.
func (s *Scheduler) Cancel(h Handle) bool {
	s.mu.Lock()
	f, ok := s.tasks[h.id]
	if !ok || f.state != StatePending {
		s.mu.Unlock()
		return false
	}
	f.state = StateCancelled
	stopped := f.timer.Stop()
	s.mu.Unlock()

	if stopped {
		// The timer callback will never run; settle its pending slot.
		s.pending.Done()
	}
	s.logger.Printf("follow-up cancelled lead=%s", f.leadID)
	return true
}

// State reports the lifecycle state for a handle.
func (s *Scheduler) State(h Handle) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.tasks[h.id]
	if !ok {
		return StateCancelled
	}
	return f.state
}

// Wait blocks until every scheduled follow-up has either fired or been
// cancelled.
func (s *Scheduler) Wait() {
	s.pending.Wait()
}

// Close cancels all still-pending follow-ups, waits for any in-flight
// fires to finish, and rejects further scheduling.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	ids := make([]uuid.UUID, 0, len(s.tasks))
	for id, f := range s.tasks {
		if f.state == StatePending {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Cancel(Handle{id: id})
	}
	s.pending.Wait()
}

func (s *Scheduler) fire(id uuid.UUID) {
	defer s.pending.Done()

	s.mu.Lock()
	f, ok := s.tasks[id]
	if !ok || f.state != StatePending {
		// Lost the race against Cancel; the action stays suppressed.
		s.mu.Unlock()
		return
	}
	f.state = StateFired
	s.mu.Unlock()

	s.records.Upsert(f.leadID, store.Record{"followup_due": true})
	s.ledger.Append(f.leadID, store.EventFollowUp, map[string]any{"note": f.note})
	s.logger.Printf("follow-up due lead=%s", f.leadID)
}
