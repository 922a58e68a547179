package record_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/kirokuapp/kiroku/internal/models"
	"github.com/kirokuapp/kiroku/record"
	"github.com/kirokuapp/kiroku/store"
	"github.com/kirokuapp/kiroku/timer"
)

func putState(t *testing.T, kv store.KV, slot string, state models.StopwatchState) {
	t.Helper()

	b, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}

	if err := kv.Set(timer.StateKey(slot), string(b)); err != nil {
		t.Fatalf("set state: %v", err)
	}
}

func TestSnapshotEmitsLiveRecordForRunningTimer(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 10, 0, 0, time.UTC)
	kv := store.NewMemory()

	putState(t, kv, timer.SlotMain, models.StopwatchState{
		StartTime: now.Add(-10 * time.Minute),
		Running:   true,
		Memo:      "drills",
		Activity: models.ActivityRef{
			ID:    7,
			Name:  "Piano",
			Group: "Music",
			Unit:  models.UnitMinutes,
		},
	})

	synth := record.NewSynthesizer(kv, nil, record.WithClock(func() time.Time {
		return now
	}))

	live := synth.Snapshot()
	if len(live) != 1 {
		t.Fatalf("got %d live records, want 1", len(live))
	}

	rec := live[0]

	if !strings.HasPrefix(rec.ID, "live-main-") {
		t.Errorf("id: got %q, want live-main- prefix", rec.ID)
	}

	if math.Abs(rec.Value-10) > 1e-9 {
		t.Errorf("value: got %v, want 10 minutes", rec.Value)
	}

	if rec.Memo != "drills" || rec.ActivityName != "Piano" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestSnapshotSkipsCountUnitAndIdleSlots(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	kv := store.NewMemory()

	// count-unit activity: a stopwatch on it never yields a live record
	putState(t, kv, timer.SlotMain, models.StopwatchState{
		StartTime: now.Add(-time.Minute),
		Running:   true,
		Activity:  models.ActivityRef{ID: 1, Name: "Pushups", Unit: models.UnitCount},
	})

	// idle sub slot
	putState(t, kv, timer.SlotSub, models.StopwatchState{
		Activity: models.ActivityRef{ID: 2, Name: "Reading", Unit: models.UnitMinutes},
	})

	synth := record.NewSynthesizer(kv, nil, record.WithClock(func() time.Time {
		return now
	}))

	if live := synth.Snapshot(); len(live) != 0 {
		t.Errorf("got %d live records, want 0", len(live))
	}
}

func TestSnapshotIncludesPausedTimer(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	kv := store.NewMemory()

	putState(t, kv, timer.SlotSub, models.StopwatchState{
		Offset:   20 * time.Minute,
		Paused:   true,
		Activity: models.ActivityRef{ID: 4, Name: "Running", Unit: models.UnitMinutes},
	})

	synth := record.NewSynthesizer(kv, nil, record.WithClock(func() time.Time {
		return now
	}))

	live := synth.Snapshot()
	if len(live) != 1 {
		t.Fatalf("got %d live records, want 1", len(live))
	}

	if live[0].ID != "live-sub-4" {
		t.Errorf("id: got %q, want live-sub-4", live[0].ID)
	}

	if math.Abs(live[0].Value-20) > 1e-9 {
		t.Errorf("value: got %v, want 20", live[0].Value)
	}
}

func TestResyncPublishesOnlyOnChange(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	kv := store.NewMemory()

	// paused timer: elapsed is frozen, so repeated resyncs are identical
	putState(t, kv, timer.SlotMain, models.StopwatchState{
		Offset:   5 * time.Minute,
		Paused:   true,
		Activity: models.ActivityRef{ID: 7, Name: "Piano", Unit: models.UnitMinutes},
	})

	var publishes int

	synth := record.NewSynthesizer(kv, func([]models.Record) {
		publishes++
	}, record.WithClock(func() time.Time {
		return now
	}))

	// initial publish on construction
	if publishes != 1 {
		t.Fatalf("publishes after construction: got %d, want 1", publishes)
	}

	// unchanged state must not publish
	synth.Resync()
	synth.Resync()

	if publishes != 1 {
		t.Errorf("publishes after identical resyncs: got %d, want 1", publishes)
	}

	// resuming the timer changes the value, which must publish
	putState(t, kv, timer.SlotMain, models.StopwatchState{
		StartTime: now.Add(-time.Minute),
		Offset:    5 * time.Minute,
		Running:   true,
		Activity:  models.ActivityRef{ID: 7, Name: "Piano", Unit: models.UnitMinutes},
	})

	synth.Resync()

	if publishes != 2 {
		t.Errorf("publishes after change: got %d, want 2", publishes)
	}
}
