// Package appstate holds the cross-command application state: view filters,
// grouping selections, and UI toggles. State is hydrated from durable
// storage once at construction and written back on every dispatch, so the
// storage boundary lives here instead of at scattered call sites.
package appstate

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/kirokuapp/kiroku/internal/timeutil"
	"github.com/kirokuapp/kiroku/stats"
	"github.com/kirokuapp/kiroku/store"
)

const stateKey = "appstate"

// State is the persisted selection set. The zero value is not used
// directly; Defaults fills in the initial selections.
type State struct {
	Interval     timeutil.Interval `json:"interval"`
	GroupBy      stats.GroupBy     `json:"group_by"`
	Mode         stats.ValueMode   `json:"mode"`
	Cumulative   bool              `json:"cumulative"`
	Period       timeutil.Period   `json:"period"`
	ShowSubTimer bool              `json:"show_sub_timer"`
}

func Defaults() State {
	return State{
		Interval: timeutil.IntervalDay,
		GroupBy:  stats.GroupByActivity,
		Mode:     stats.ModeTime,
		Period:   timeutil.Period30Days,
	}
}

// Action is a typed state transition. Actions are pure; persistence and
// notification happen in Dispatch.
type Action interface {
	apply(State) State
}

type SetInterval struct{ Interval timeutil.Interval }

func (a SetInterval) apply(s State) State {
	s.Interval = a.Interval
	return s
}

type SetGroupBy struct{ GroupBy stats.GroupBy }

func (a SetGroupBy) apply(s State) State {
	s.GroupBy = a.GroupBy
	return s
}

type SetMode struct{ Mode stats.ValueMode }

func (a SetMode) apply(s State) State {
	s.Mode = a.Mode
	return s
}

type SetPeriod struct{ Period timeutil.Period }

func (a SetPeriod) apply(s State) State {
	s.Period = a.Period
	return s
}

type ToggleCumulative struct{}

func (ToggleCumulative) apply(s State) State {
	s.Cumulative = !s.Cumulative
	return s
}

type ToggleSubTimer struct{}

func (ToggleSubTimer) apply(s State) State {
	s.ShowSubTimer = !s.ShowSubTimer
	return s
}

// Store owns the current State. All access goes through State() and
// Dispatch(); subscribers observe every applied action.
type Store struct {
	kv store.KV

	mu    sync.Mutex
	state State
	subs  []func(State)
}

// New hydrates the state from kv. A missing or unreadable snapshot falls
// back to defaults.
func New(kv store.KV) *Store {
	s := &Store{kv: kv, state: Defaults()}

	raw, err := kv.Get(stateKey)
	if err != nil {
		return s
	}

	var saved State

	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		slog.Warn("discarding unreadable app state", slog.Any("error", err))
		return s
	}

	s.state = saved

	return s
}

// State returns the current selections.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Subscribe registers fn to run after every dispatched action. Subscribers
// are invoked outside the state lock.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = append(s.subs, fn)
}

// Dispatch applies the action, persists the result, and notifies
// subscribers. Persistence failures are logged and swallowed; the in-memory
// state is still advanced so the session keeps working.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()

	s.state = action.apply(s.state)
	next := s.state
	subs := make([]func(State), len(s.subs))
	copy(subs, s.subs)

	s.mu.Unlock()

	s.persist(next)

	for _, fn := range subs {
		fn(next)
	}

	return next
}

func (s *Store) persist(state State) {
	b, err := json.Marshal(state)
	if err != nil {
		slog.Warn("marshaling app state", slog.Any("error", err))
		return
	}

	if err := s.kv.Set(stateKey, string(b)); err != nil {
		slog.Warn("persisting app state", slog.Any("error", err))
	}
}
