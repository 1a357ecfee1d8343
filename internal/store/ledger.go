package store

import (
	"slices"
	"sync"
	"time"
)

// Event kinds appended over a lead's lifetime.
const (
	EventEnriched      = "enriched"
	EventEnrichError   = "enrich_error"
	EventQualification = "qualification"
	EventFollowUp      = "followup"
)

// Event is one immutable entry in a lead's audit trail.
type Event struct {
	At   time.Time      `json:"at"`
	Kind string         `json:"kind"`
	Data map[string]any `json:"data,omitempty"`
}

// EventLedger keeps an append-only ordered sequence of events per lead.
// Appends are atomic and the per-lead order is the arrival order at the
// ledger, not wall-clock order of the producing operations.
type EventLedger struct {
	mu  sync.Mutex
	mem map[string][]Event
}

func NewEventLedger() *EventLedger {
	return &EventLedger{mem: make(map[string][]Event)}
}

// Append stamps the event with the current time and adds it to id's
// sequence. Events are never reordered or deleted.
func (l *EventLedger) Append(id, kind string, data map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mem[id] = append(l.mem[id], Event{At: time.Now(), Kind: kind, Data: data})
}

// Read returns a copy of id's event sequence in append order, empty if
// none.
func (l *EventLedger) Read(id string) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.mem[id])
}

// All returns a point-in-time snapshot of every lead's sequence.
func (l *EventLedger) All() map[string][]Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string][]Event, len(l.mem))
	for id, evs := range l.mem {
		out[id] = slices.Clone(evs)
	}
	return out
}
