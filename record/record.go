// Package record manages the in-memory view of persisted records and
// synthesizes live records from running stopwatches.
package record

import (
	"context"
	"sync"

	"github.com/kirokuapp/kiroku/internal/models"
)

// Backend is the remote owner of all records.
type Backend interface {
	ListRecords(ctx context.Context) ([]models.Record, error)
	CreateRecord(ctx context.Context, draft models.RecordDraft) (models.Record, error)
	UpdateRecord(ctx context.Context, id string, patch models.RecordPatch) (models.Record, error)
	DeleteRecord(ctx context.Context, id string) error
}

// Store holds the authoritative list of records. Every mutation goes to the
// backend first and is followed by a full refresh, so the snapshot reflects
// server state once the call returns; there is no optimistic local insert
// and therefore nothing to roll back on failure.
type Store struct {
	backend Backend

	mu      sync.RWMutex
	records []models.Record
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Records returns a copy of the current snapshot. No ordering is
// guaranteed; callers sort as needed.
func (s *Store) Records() []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Record, len(s.records))
	copy(out, s.records)

	return out
}

// WithLive returns the snapshot concatenated with the given live records.
func (s *Store) WithLive(live []models.Record) []models.Record {
	records := s.Records()

	return append(records, live...)
}

// Refresh replaces the snapshot with the backend's current state.
func (s *Store) Refresh(ctx context.Context) error {
	records, err := s.backend.ListRecords(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	return nil
}

// Create persists a new record, then refreshes.
func (s *Store) Create(ctx context.Context, draft models.RecordDraft) error {
	_, err := s.backend.CreateRecord(ctx, draft)
	if err != nil {
		return err
	}

	return s.Refresh(ctx)
}

// Update patches an existing record, then refreshes.
func (s *Store) Update(
	ctx context.Context,
	id string,
	patch models.RecordPatch,
) error {
	_, err := s.backend.UpdateRecord(ctx, id, patch)
	if err != nil {
		return err
	}

	return s.Refresh(ctx)
}

// Delete removes a record, then refreshes.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.backend.DeleteRecord(ctx, id)
	if err != nil {
		return err
	}

	return s.Refresh(ctx)
}
