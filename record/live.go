package record

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/kirokuapp/kiroku/internal/models"
	"github.com/kirokuapp/kiroku/store"
	"github.com/kirokuapp/kiroku/timer"
)

const defaultSynthInterval = 5 * time.Second

// Synthesizer derives ephemeral records from persisted stopwatch slots so
// in-flight activity shows up in aggregates before being committed. It
// never writes to the backend; a live record becomes real only when the
// stopwatch completes.
type Synthesizer struct {
	kv       store.KV
	slots    []string
	interval time.Duration
	clock    timer.Clock
	onChange func([]models.Record)

	mu      sync.Mutex
	current []models.Record
}

// SynthesizerOption adjusts a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithInterval overrides the 5-second resynthesis tick.
func WithInterval(d time.Duration) SynthesizerOption {
	return func(s *Synthesizer) { s.interval = d }
}

// WithClock replaces the time source.
func WithClock(clock timer.Clock) SynthesizerOption {
	return func(s *Synthesizer) { s.clock = clock }
}

// NewSynthesizer reads the main and sub stopwatch slots from kv. onChange
// receives the synthesized set whenever it differs from the previous one;
// it is invoked once immediately with the initial set.
func NewSynthesizer(
	kv store.KV,
	onChange func([]models.Record),
	opts ...SynthesizerOption,
) *Synthesizer {
	s := &Synthesizer{
		kv:       kv,
		slots:    []string{timer.SlotMain, timer.SlotSub},
		interval: defaultSynthInterval,
		clock:    time.Now,
		onChange: onChange,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.current = s.Snapshot()

	if s.onChange != nil {
		s.onChange(s.current)
	}

	return s
}

// Snapshot synthesizes the live records for all active duration-unit
// stopwatch slots as of now.
func (s *Synthesizer) Snapshot() []models.Record {
	now := s.clock()

	var live []models.Record

	for _, slot := range s.slots {
		raw, err := s.kv.Get(timer.StateKey(slot))
		if err != nil {
			continue
		}

		var state models.StopwatchState

		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			slog.Warn(
				"skipping corrupt stopwatch state",
				slog.String("slot", slot),
				slog.Any("error", err),
			)

			continue
		}

		if !state.Active() || state.Activity.Unit != models.UnitMinutes {
			continue
		}

		live = append(live, models.Record{
			ID:            models.LiveRecordID(slot, state.Activity.ID),
			ActivityID:    state.Activity.ID,
			Value:         state.Elapsed(now).Minutes(),
			Unit:          models.UnitMinutes,
			CreatedAt:     now.UTC(),
			ActivityName:  state.Activity.Name,
			ActivityGroup: state.Activity.Group,
			Tags:          state.Activity.Tags,
			Memo:          state.Memo,
		})
	}

	return live
}

// Current returns the most recently published set.
func (s *Synthesizer) Current() []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Record, len(s.current))
	copy(out, s.current)

	return out
}

// Run resynthesizes on a fixed tick until ctx is cancelled. The ticker is
// released deterministically on return.
func (s *Synthesizer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Resync()
		}
	}
}

// Resync publishes a fresh snapshot unless it equals the previous one on
// the (id, value, memo) tuples, avoiding needless downstream updates.
func (s *Synthesizer) Resync() {
	next := s.Snapshot()

	s.mu.Lock()
	changed := !equalLive(s.current, next)

	if changed {
		s.current = next
	}
	s.mu.Unlock()

	if changed && s.onChange != nil {
		s.onChange(next)
	}
}

func equalLive(a, b []models.Record) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].ID != b[i].ID ||
			a[i].Value != b[i].Value ||
			a[i].Memo != b[i].Memo {
			return false
		}
	}

	return true
}
