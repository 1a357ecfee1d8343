// Package store holds the two shared in-memory stores of a pipeline run:
// the mergeable per-lead record store (the "CRM") and the append-only
// event ledger. Both are safe for concurrent use; a single mutex per
// store is enough at the contention levels a batch run produces.
package store

import (
	"maps"
	"sync"
)

// Record is the mergeable key-value state kept per lead. Keys in use:
// score, status, outreach, followup_due.
type Record map[string]any

// RecordStore maps lead IDs to records. Upserts merge field-by-field and
// never delete keys; each Upsert call is atomic as a whole, so concurrent
// upserts to different keys of the same record both land.
type RecordStore struct {
	mu sync.Mutex
	db map[string]Record
}

func NewRecordStore() *RecordStore {
	return &RecordStore{db: make(map[string]Record)}
}

// Upsert merges partial into the record for id, creating it if absent.
// Overlapping fields resolve by Upsert call order: last full call wins.
func (s *RecordStore) Upsert(id string, partial Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.db[id]
	if !ok {
		rec = make(Record, len(partial))
		s.db[id] = rec
	}
	maps.Copy(rec, partial)
}

// Get returns a copy of the record for id, empty if absent. Absence is
// not an error.
func (s *RecordStore) Get(id string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.db[id]
	if !ok {
		return Record{}
	}
	return maps.Clone(rec)
}

// All returns a point-in-time snapshot of every record.
func (s *RecordStore) All() map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Record, len(s.db))
	for id, rec := range s.db {
		out[id] = maps.Clone(rec)
	}
	return out
}
