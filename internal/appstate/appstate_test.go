package appstate_test

import (
	"testing"

	"github.com/kirokuapp/kiroku/internal/appstate"
	"github.com/kirokuapp/kiroku/internal/timeutil"
	"github.com/kirokuapp/kiroku/stats"
	"github.com/kirokuapp/kiroku/store"
)

func TestDispatchPersistsAndNotifies(t *testing.T) {
	kv := store.NewMemory()
	s := appstate.New(kv)

	var seen []appstate.State

	s.Subscribe(func(state appstate.State) {
		seen = append(seen, state)
	})

	s.Dispatch(appstate.SetGroupBy{GroupBy: stats.GroupByTag})
	s.Dispatch(appstate.ToggleCumulative{})

	if got := s.State(); got.GroupBy != stats.GroupByTag || !got.Cumulative {
		t.Errorf("unexpected state: %+v", got)
	}

	if len(seen) != 2 {
		t.Fatalf("got %d notifications, want 2", len(seen))
	}

	// a fresh store over the same kv picks up the persisted selections
	reloaded := appstate.New(kv)
	if got := reloaded.State(); got.GroupBy != stats.GroupByTag || !got.Cumulative {
		t.Errorf("reloaded state: %+v", got)
	}
}

func TestNewFallsBackToDefaults(t *testing.T) {
	kv := store.NewMemory()

	if err := kv.Set("appstate", "{not json"); err != nil {
		t.Fatal(err)
	}

	s := appstate.New(kv)

	want := appstate.Defaults()
	if got := s.State(); got != want {
		t.Errorf("got %+v, want defaults %+v", got, want)
	}

	if s.State().Interval != timeutil.IntervalDay {
		t.Error("default interval should be day")
	}
}

func TestToggleSubTimerRoundTrips(t *testing.T) {
	s := appstate.New(store.NewMemory())

	s.Dispatch(appstate.ToggleSubTimer{})
	if !s.State().ShowSubTimer {
		t.Error("sub timer should be shown after toggle")
	}

	s.Dispatch(appstate.ToggleSubTimer{})
	if s.State().ShowSubTimer {
		t.Error("sub timer should be hidden after second toggle")
	}
}
