package followup_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartsales/lead-pipeline/internal/followup"
	"github.com/smartsales/lead-pipeline/internal/store"
)

func newScheduler(t *testing.T) (*followup.Scheduler, *store.RecordStore, *store.EventLedger) {
	t.Helper()
	records := store.NewRecordStore()
	ledger := store.NewEventLedger()
	s := followup.NewScheduler(records, ledger, nil)
	t.Cleanup(s.Close)
	return s, records, ledger
}

func TestSchedule_FiresExactlyOnce(t *testing.T) {
	t.Parallel()

	s, records, ledger := newScheduler(t)

	h := s.Schedule("L1", 5*time.Millisecond, "1st follow up")
	s.Wait()

	assert.Equal(t, followup.StateFired, s.State(h))
	assert.Equal(t, true, records.Get("L1")["followup_due"])

	evs := ledger.Read("L1")
	if assert.Len(t, evs, 1, "a fired follow-up mutates exactly once") {
		assert.Equal(t, store.EventFollowUp, evs[0].Kind)
		assert.Equal(t, "1st follow up", evs[0].Data["note"])
	}
}

func TestSchedule_DoesNotBlockCaller(t *testing.T) {
	t.Parallel()

	s, _, _ := newScheduler(t)

	start := time.Now()
	s.Schedule("L1", 200*time.Millisecond, "later")
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("Schedule blocked for %s", elapsed)
	}
}

func TestCancel_PendingFollowUpNeverMutates(t *testing.T) {
	t.Parallel()

	s, records, ledger := newScheduler(t)

	h := s.Schedule("L1", time.Hour, "never")
	assert.True(t, s.Cancel(h))
	assert.Equal(t, followup.StateCancelled, s.State(h))

	// Wait must return immediately: the only task is settled.
	s.Wait()
	assert.Empty(t, records.Get("L1"))
	assert.Empty(t, ledger.Read("L1"))
}

func TestCancel_AfterFireReturnsFalse(t *testing.T) {
	t.Parallel()

	s, _, _ := newScheduler(t)

	h := s.Schedule("L1", time.Millisecond, "quick")
	s.Wait()
	assert.False(t, s.Cancel(h))
	assert.Equal(t, followup.StateFired, s.State(h))
}

func TestCancel_Twice(t *testing.T) {
	t.Parallel()

	s, _, _ := newScheduler(t)

	h := s.Schedule("L1", time.Hour, "never")
	assert.True(t, s.Cancel(h))
	assert.False(t, s.Cancel(h))
}

func TestClose_DrainsPendingWork(t *testing.T) {
	t.Parallel()

	records := store.NewRecordStore()
	ledger := store.NewEventLedger()
	s := followup.NewScheduler(records, ledger, nil)

	s.Schedule("L1", time.Hour, "pending at shutdown")
	s.Close()

	assert.Empty(t, records.Get("L1"), "cancelled work must not mutate")

	h := s.Schedule("L2", time.Millisecond, "after close")
	assert.Equal(t, followup.StateCancelled, s.State(h))
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, records.Get("L2"))
}
