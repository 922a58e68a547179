// Package timer operates the kiroku stopwatch and handles the recovery of
// interrupted measurements across process restarts.
package timer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirokuapp/kiroku/internal/models"
	"github.com/kirokuapp/kiroku/notify"
	"github.com/kirokuapp/kiroku/store"
)

const (
	// SlotMain is the primary stopwatch slot; it auto-starts when no
	// saved state exists.
	SlotMain = "main"
	// SlotSub is the secondary, independently tracked slot.
	SlotSub = "sub"

	defaultTickInterval = time.Second
	notifyTimeout       = 5 * time.Second
)

// StateKey returns the storage key for a stopwatch slot.
func StateKey(slot string) string {
	return "stopwatch." + slot
}

// Clock supplies the current instant; replaced in tests.
type Clock func() time.Time

// Callbacks receive the outcome of a measurement. OnComplete gets the total
// elapsed minutes and the memo; creating a record from them is the caller's
// business.
type Callbacks struct {
	OnComplete func(minutes float64, memo string)
	OnCancel   func()
}

// Options configures a stopwatch instance.
type Options struct {
	Slot      string
	Activity  models.ActivityRef
	KV        store.KV
	Notifier  notify.Notifier
	Callbacks Callbacks
	// AutoStart starts a measurement when no saved state is found.
	AutoStart bool
	// OnTick is the cosmetic display refresh; elapsed time is always
	// derived from instants, never accumulated per tick.
	OnTick       func(elapsed time.Duration)
	TickInterval time.Duration
	Clock        Clock
}

// Stopwatch tracks elapsed time for one slot with pause/resume, persisting
// its full state after every transition so a restart resumes seamlessly.
// Instances for different slots share no mutable state.
type Stopwatch struct {
	opts Options

	mu         sync.Mutex
	startTime  time.Time
	offset     time.Duration
	running    bool
	paused     bool
	memo       string
	activity   models.ActivityRef
	sessionKey string
	stopTick   chan struct{}
}

// New restores the slot's saved state if present; otherwise the stopwatch
// begins idle, or auto-starts when the options say so. A missing or corrupt
// saved entry is treated as no saved state.
func New(opts Options) *Stopwatch {
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}

	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}

	s := &Stopwatch{
		opts:     opts,
		activity: opts.Activity,
	}

	if s.restore() {
		return s
	}

	if opts.AutoStart {
		s.Start()
	}

	return s
}

// restore loads persisted state, reporting whether an active measurement
// was recovered.
func (s *Stopwatch) restore() bool {
	raw, err := s.opts.KV.Get(StateKey(s.opts.Slot))
	if err != nil {
		return false
	}

	var state models.StopwatchState

	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		slog.Warn(
			"discarding corrupt stopwatch state",
			slog.String("slot", s.opts.Slot),
			slog.Any("error", err),
		)

		return false
	}

	if !state.Active() {
		return false
	}

	s.mu.Lock()
	s.startTime = state.StartTime
	s.offset = state.Offset
	s.running = state.Running
	s.paused = state.Paused
	s.memo = state.Memo

	if state.Activity.ID != 0 {
		s.activity = state.Activity
	}

	running := s.running
	s.mu.Unlock()

	if running {
		s.startTicking()
	}

	return true
}

// Start begins a measurement from idle. It is a no-op when a measurement is
// already running or paused.
func (s *Stopwatch) Start() {
	s.mu.Lock()

	if s.running || s.paused {
		s.mu.Unlock()
		return
	}

	s.startTime = s.opts.Clock()
	s.offset = 0
	s.running = true
	s.sessionKey = uuid.NewString()

	s.mu.Unlock()

	s.persist()
	s.notifyStart()
	s.startTicking()
}

// TogglePause folds the running delta into the offset when pausing, and
// resets the start instant when resuming. Elapsed time accumulates without
// drift because it is always now − start + offset.
func (s *Stopwatch) TogglePause() {
	s.mu.Lock()

	switch {
	case s.running:
		s.offset += s.opts.Clock().Sub(s.startTime)
		s.startTime = time.Time{}
		s.running = false
		s.paused = true

		s.mu.Unlock()
		s.stopTicking()
	case s.paused:
		s.startTime = s.opts.Clock()
		s.running = true
		s.paused = false

		s.mu.Unlock()
		s.startTicking()
	default:
		s.mu.Unlock()
		return
	}

	s.persist()
}

// UpdateStartTime corrects the start instant of the running measurement,
// typically for retroactive edits. The edit is rejected when no measurement
// is running or when it would produce a negative elapsed duration.
func (s *Stopwatch) UpdateStartTime(newStart time.Time) error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		return errNoActiveMeasurement
	}

	if newStart.After(s.opts.Clock()) {
		s.mu.Unlock()
		return errStartTimeInFuture
	}

	s.startTime = newStart
	s.mu.Unlock()

	s.persist()

	if s.opts.OnTick != nil {
		s.opts.OnTick(s.Elapsed())
	}

	return nil
}

// Elapsed returns the measured time as of now.
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.elapsedLocked()
}

func (s *Stopwatch) elapsedLocked() time.Duration {
	elapsed := s.offset

	if s.running {
		elapsed += s.opts.Clock().Sub(s.startTime)
	}

	return elapsed
}

// Complete finishes the measurement: it stops ticking, clears the persisted
// slot, and reports the total elapsed minutes through the completion
// callback. This is the sole path by which a live record becomes a
// persisted one.
func (s *Stopwatch) Complete(memo string) float64 {
	s.mu.Lock()

	minutes := s.elapsedLocked().Minutes()

	s.startTime = time.Time{}
	s.offset = 0
	s.running = false
	s.paused = false
	s.memo = ""

	s.mu.Unlock()

	s.stopTicking()
	s.notifyStop()
	s.clearState()

	if s.opts.Callbacks.OnComplete != nil {
		s.opts.Callbacks.OnComplete(minutes, memo)
	}

	return minutes
}

// Cancel discards the measurement without creating a record.
func (s *Stopwatch) Cancel() {
	s.mu.Lock()
	s.startTime = time.Time{}
	s.offset = 0
	s.running = false
	s.paused = false
	s.memo = ""
	s.mu.Unlock()

	s.stopTicking()
	s.notifyStop()
	s.clearState()

	if s.opts.Callbacks.OnCancel != nil {
		s.opts.Callbacks.OnCancel()
	}
}

// FinishAndReset completes the current measurement and immediately begins
// the next one against a new activity, returning the elapsed minutes of the
// finished measurement. Used when switching activities without a gap.
func (s *Stopwatch) FinishAndReset(next models.ActivityRef) float64 {
	s.mu.Lock()

	minutes := s.elapsedLocked().Minutes()

	s.startTime = s.opts.Clock()
	s.offset = 0
	s.running = true
	s.paused = false
	s.memo = ""

	prev := s.activity
	s.activity = next
	prevKey := s.sessionKey
	s.sessionKey = uuid.NewString()

	s.mu.Unlock()

	s.notifyStopFor(prev, prevKey)
	s.persist()
	s.notifyStart()
	s.startTicking()

	return minutes
}

// SetMemo updates the measurement memo and persists it.
func (s *Stopwatch) SetMemo(memo string) {
	s.mu.Lock()
	s.memo = memo
	s.mu.Unlock()

	s.persist()
}

func (s *Stopwatch) Memo() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.memo
}

func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

func (s *Stopwatch) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.paused
}

func (s *Stopwatch) Activity() models.ActivityRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activity
}

func (s *Stopwatch) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.startTime
}

func (s *Stopwatch) Slot() string {
	return s.opts.Slot
}

// State snapshots the current stopwatch state.
func (s *Stopwatch) State() models.StopwatchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.StopwatchState{
		StartTime: s.startTime,
		Offset:    s.offset,
		Running:   s.running,
		Paused:    s.paused,
		Memo:      s.memo,
		Activity:  s.activity,
	}
}

// Shutdown stops the display tick without touching persisted state, so the
// measurement resumes after the next start-up. Leaked tickers would keep
// writing to storage indefinitely; stopping here is mandatory on unmount.
func (s *Stopwatch) Shutdown() {
	s.persist()
	s.stopTicking()
}

// persist serializes the full state to durable storage. Storage failures
// are logged and swallowed; the in-memory state remains authoritative.
func (s *Stopwatch) persist() {
	state := s.State()

	b, err := json.Marshal(state)
	if err != nil {
		slog.Warn("marshaling stopwatch state", slog.Any("error", err))
		return
	}

	err = s.opts.KV.Set(StateKey(s.opts.Slot), string(b))
	if err != nil {
		slog.Warn(
			"persisting stopwatch state",
			slog.String("slot", s.opts.Slot),
			slog.Any("error", err),
		)
	}
}

func (s *Stopwatch) clearState() {
	err := s.opts.KV.Remove(StateKey(s.opts.Slot))
	if err != nil {
		slog.Warn(
			"clearing stopwatch state",
			slog.String("slot", s.opts.Slot),
			slog.Any("error", err),
		)
	}
}

// notifyStart fires the presence-start notification. Best-effort: runs in
// its own goroutine, failures are logged and never block the transition.
func (s *Stopwatch) notifyStart() {
	s.mu.Lock()
	sess := notify.Session{
		Key:      s.sessionKey,
		Activity: s.activity,
		Details:  s.memo,
	}
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.opts.Notifier.Start(ctx, sess); err != nil {
			slog.Warn(
				"presence start failed",
				slog.String("activity", sess.Activity.Name),
				slog.Any("error", err),
			)
		}
	}()
}

func (s *Stopwatch) notifyStop() {
	s.mu.Lock()
	activity := s.activity
	key := s.sessionKey
	s.mu.Unlock()

	s.notifyStopFor(activity, key)
}

func (s *Stopwatch) notifyStopFor(activity models.ActivityRef, key string) {
	sess := notify.Session{Key: key, Activity: activity}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.opts.Notifier.Stop(ctx, sess); err != nil {
			slog.Warn(
				"presence stop failed",
				slog.String("activity", sess.Activity.Name),
				slog.Any("error", err),
			)
		}
	}()
}

// startTicking begins the display-refresh tick. The tick carries no timing
// state of its own.
func (s *Stopwatch) startTicking() {
	if s.opts.OnTick == nil {
		return
	}

	s.mu.Lock()

	if s.stopTick != nil {
		s.mu.Unlock()
		return
	}

	stop := make(chan struct{})
	s.stopTick = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.opts.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.opts.OnTick(s.Elapsed())
			}
		}
	}()
}

func (s *Stopwatch) stopTicking() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}
