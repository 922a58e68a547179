package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirokuapp/kiroku/api"
	"github.com/kirokuapp/kiroku/internal/models"
)

func TestListRecords(t *testing.T) {
	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/records" || r.Method != http.MethodGet {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}

			_, _ = w.Write([]byte(`[
				{
					"id": 12,
					"activity_id": 3,
					"value": 45,
					"unit": "minutes",
					"created_at": "2024-03-04T10:00:00Z",
					"activity_name": "Reading",
					"activity_group": "Study",
					"tags": [{"id": 1, "name": "books"}]
				}
			]`))
		}),
	)
	defer srv.Close()

	client := api.NewClient(srv.URL)

	records, err := client.ListRecords(context.Background())
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]

	if rec.ID != "12" {
		t.Errorf("id: got %q, want 12", rec.ID)
	}

	if rec.Unit != models.UnitMinutes || rec.Value != 45 {
		t.Errorf("unexpected record: %+v", rec)
	}

	want := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	if !rec.CreatedAt.Equal(want) {
		t.Errorf("created_at: got %v, want %v", rec.CreatedAt, want)
	}
}

func TestCreateRecordPayload(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Fatalf("decoding payload: %v", err)
			}

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 7, "activity_id": 3, "value": 30, "unit": "minutes", "created_at": "2024-03-04T10:00:00Z"}`))
		}),
	)
	defer srv.Close()

	client := api.NewClient(srv.URL)

	createdAt := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

	rec, err := client.CreateRecord(context.Background(), models.RecordDraft{
		ActivityID: 3,
		Value:      30,
		CreatedAt:  &createdAt,
		Memo:       "morning pages",
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	if rec.ID != "7" {
		t.Errorf("id: got %q, want 7", rec.ID)
	}

	if got["activity_id"] != float64(3) || got["value"] != float64(30) {
		t.Errorf("unexpected payload: %v", got)
	}

	if got["created_at"] != "2024-03-04T10:00:00Z" {
		t.Errorf("created_at not serialized as UTC RFC3339: %v", got["created_at"])
	}

	if got["memo"] != "morning pages" {
		t.Errorf("memo: got %v", got["memo"])
	}
}

func TestErrorResponseSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "activity_id and value are required"}`))
		}),
	)
	defer srv.Close()

	client := api.NewClient(srv.URL)

	_, err := client.CreateRecord(context.Background(), models.RecordDraft{})
	if err == nil {
		t.Fatal("expected error")
	}

	want := "activity_id and value are required"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error %q does not contain %q", got, want)
	}
}
