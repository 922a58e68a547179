package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *SQLiteStore) {
	t.Helper()

	store := openTestStore(t)

	srv := httptest.NewServer(NewHandler(store).Router())
	t.Cleanup(srv.Close)

	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	defer resp.Body.Close()

	var out T

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func TestRecordLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/activities", ActivityDraft{
		Name: "Piano", Group: "Music", Unit: "minutes",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	activity := decode[Activity](t, resp)

	resp = postJSON(t, srv.URL+"/api/records", map[string]any{
		"activity_id": activity.ID,
		"value":       25,
		"memo":        "scales",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	rec := decode[Record](t, resp)
	assert.Equal(t, "Piano", rec.ActivityName)
	assert.Equal(t, "Music", rec.ActivityGroup)
	assert.Equal(t, 25.0, rec.Value)
	assert.Equal(t, "minutes", rec.Unit)

	listResp, err := http.Get(srv.URL + "/api/records")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	records := decode[[]Record](t, listResp)
	require.Len(t, records, 1)

	req, err := http.NewRequest(
		http.MethodDelete,
		srv.URL+"/api/records/"+itoa(rec.ID),
		nil,
	)
	require.NoError(t, err)

	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
}

func TestUpdateRecordOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/activities", ActivityDraft{
		Name: "Reading", Unit: "minutes",
	})
	activity := decode[Activity](t, resp)

	resp = postJSON(t, srv.URL+"/api/records", map[string]any{
		"activity_id": activity.ID,
		"value":       10,
	})
	rec := decode[Record](t, resp)

	b, _ := json.Marshal(map[string]any{"value": 45})
	req, err := http.NewRequest(
		http.MethodPut,
		srv.URL+"/api/records/"+itoa(rec.ID),
		bytes.NewReader(b),
	)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	putResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	updated := decode[Record](t, putResp)
	assert.Equal(t, 45.0, updated.Value)
}

func TestUpdateMissingRecordReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	b, _ := json.Marshal(map[string]any{"value": 45})
	req, err := http.NewRequest(
		http.MethodPut,
		srv.URL+"/api/records/999",
		bytes.NewReader(b),
	)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var payload struct {
		Error string `json:"error"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotEmpty(t, payload.Error)
}

func TestPresenceEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/discord_presence/start", map[string]any{
		"session_id":    "abc-123",
		"group":         "Music",
		"activity_name": "Piano",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/discord_presence/stop", map[string]any{
		"group": "Music",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// missing group is a client error
	resp = postJSON(t, srv.URL+"/api/discord_presence/start", map[string]any{
		"session_id": "abc-123",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
