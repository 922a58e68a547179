package store_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/kirokuapp/kiroku/store"
)

func openTestClient(t *testing.T) *store.Client {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kiroku.db")

	client, err := store.NewClient(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestClientRoundTrip(t *testing.T) {
	client := openTestClient(t)

	if err := client.Set("stopwatch.main", `{"running":true}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := client.Get("stopwatch.main")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got != `{"running":true}` {
		t.Errorf("got %q", got)
	}

	if err := client.Remove("stopwatch.main"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := client.Get("stopwatch.main"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestClientGetMissingKey(t *testing.T) {
	client := openTestClient(t)

	if _, err := client.Get("nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	m := store.NewMemory()

	if err := m.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := m.Get("k")
	if err != nil || got != "v" {
		t.Errorf("got %q, %v", got, err)
	}

	_ = m.Remove("k")

	if _, err := m.Get("k"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
