package record_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kirokuapp/kiroku/internal/models"
	"github.com/kirokuapp/kiroku/record"
)

// fakeBackend owns records the way the real API does: mutations only become
// visible through a subsequent list.
type fakeBackend struct {
	records   []models.Record
	nextID    int
	failList  error
	listCalls int
}

func (f *fakeBackend) ListRecords(context.Context) ([]models.Record, error) {
	f.listCalls++

	if f.failList != nil {
		return nil, f.failList
	}

	out := make([]models.Record, len(f.records))
	copy(out, f.records)

	return out, nil
}

func (f *fakeBackend) CreateRecord(
	_ context.Context,
	draft models.RecordDraft,
) (models.Record, error) {
	f.nextID++

	created := time.Now().UTC()
	if draft.CreatedAt != nil {
		created = *draft.CreatedAt
	}

	rec := models.Record{
		ID:         strconv.Itoa(f.nextID),
		ActivityID: draft.ActivityID,
		Value:      draft.Value,
		Unit:       models.UnitMinutes,
		CreatedAt:  created,
		Memo:       draft.Memo,
	}

	f.records = append(f.records, rec)

	return rec, nil
}

func (f *fakeBackend) UpdateRecord(
	_ context.Context,
	id string,
	patch models.RecordPatch,
) (models.Record, error) {
	for i := range f.records {
		if f.records[i].ID == id {
			if patch.Value != nil {
				f.records[i].Value = *patch.Value
			}

			if patch.Memo != nil {
				f.records[i].Memo = *patch.Memo
			}

			return f.records[i], nil
		}
	}

	return models.Record{}, errors.New("record not found")
}

func (f *fakeBackend) DeleteRecord(_ context.Context, id string) error {
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}

	return errors.New("record not found")
}

func TestCreateRefreshesFromBackend(t *testing.T) {
	backend := &fakeBackend{}
	s := record.NewStore(backend)

	err := s.Create(context.Background(), models.RecordDraft{
		ActivityID: 3,
		Value:      25,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	records := s.Records()
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	if backend.listCalls != 1 {
		t.Errorf("expected one refresh after create, got %d", backend.listCalls)
	}
}

func TestMutationErrorPropagatesWithoutLocalChange(t *testing.T) {
	backend := &fakeBackend{}
	s := record.NewStore(backend)

	err := s.Delete(context.Background(), "404")
	if err == nil {
		t.Fatal("expected error from backend")
	}

	// no optimistic mutation, so no refresh happened either
	if backend.listCalls != 0 {
		t.Errorf("refresh after failed mutation: %d calls", backend.listCalls)
	}
}

func TestUpdateThenSnapshotReflectsServerState(t *testing.T) {
	backend := &fakeBackend{}
	s := record.NewStore(backend)

	_ = s.Create(context.Background(), models.RecordDraft{ActivityID: 1, Value: 10})

	newValue := 45.0

	err := s.Update(context.Background(), "1", models.RecordPatch{Value: &newValue})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	records := s.Records()
	if len(records) != 1 || records[0].Value != 45 {
		t.Errorf("unexpected snapshot: %+v", records)
	}
}

func TestWithLiveConcatenates(t *testing.T) {
	backend := &fakeBackend{}
	s := record.NewStore(backend)

	_ = s.Create(context.Background(), models.RecordDraft{ActivityID: 1, Value: 10})

	live := []models.Record{{ID: "live-main-1", Value: 3, Unit: models.UnitMinutes}}

	got := s.WithLive(live)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}

	if diff := cmp.Diff(live[0], got[1]); diff != "" {
		t.Errorf("live record mismatch (-want +got):\n%s", diff)
	}
}
