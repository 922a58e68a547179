// Package api implements the HTTP client for the record backend. It covers
// the records and activities resources plus the presence endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kirokuapp/kiroku/internal/models"
)

const defaultTimeout = 10 * time.Second

// Client talks to the kiroku backend over REST. All timestamps on the wire
// are UTC instants in RFC 3339 format.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// recordPayload is the wire shape of a record as served by the backend.
type recordPayload struct {
	ID            int          `json:"id"`
	ActivityID    int          `json:"activity_id"`
	Value         float64      `json:"value"`
	Unit          models.Unit  `json:"unit"`
	CreatedAt     time.Time    `json:"created_at"`
	ActivityName  string       `json:"activity_name"`
	ActivityGroup string       `json:"activity_group"`
	Tags          []models.Tag `json:"tags"`
	Memo          string       `json:"memo"`
}

func (p recordPayload) toModel() models.Record {
	return models.Record{
		ID:            strconv.Itoa(p.ID),
		ActivityID:    p.ActivityID,
		Value:         p.Value,
		Unit:          p.Unit,
		CreatedAt:     p.CreatedAt.UTC(),
		ActivityName:  p.ActivityName,
		ActivityGroup: p.ActivityGroup,
		Tags:          p.Tags,
		Memo:          p.Memo,
	}
}

type recordDraftPayload struct {
	ActivityID int     `json:"activity_id"`
	Value      float64 `json:"value"`
	CreatedAt  string  `json:"created_at,omitempty"`
	Memo       string  `json:"memo,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	body, out any,
) error {
	var reader io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}

		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ep errorPayload

		b, _ := io.ReadAll(resp.Body)

		if err := json.Unmarshal(b, &ep); err == nil && ep.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, ep.Error)
		}

		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// ListRecords retrieves all records.
func (c *Client) ListRecords(ctx context.Context) ([]models.Record, error) {
	var payload []recordPayload

	err := c.do(ctx, http.MethodGet, "/api/records", nil, &payload)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(payload))
	for _, p := range payload {
		records = append(records, p.toModel())
	}

	return records, nil
}

// CreateRecord persists a new record.
func (c *Client) CreateRecord(
	ctx context.Context,
	draft models.RecordDraft,
) (models.Record, error) {
	body := recordDraftPayload{
		ActivityID: draft.ActivityID,
		Value:      draft.Value,
		Memo:       draft.Memo,
	}

	if draft.CreatedAt != nil {
		body.CreatedAt = draft.CreatedAt.UTC().Format(time.RFC3339)
	}

	var payload recordPayload

	err := c.do(ctx, http.MethodPost, "/api/records", body, &payload)
	if err != nil {
		return models.Record{}, err
	}

	return payload.toModel(), nil
}

// UpdateRecord applies a patch to an existing record.
func (c *Client) UpdateRecord(
	ctx context.Context,
	id string,
	patch models.RecordPatch,
) (models.Record, error) {
	body := make(map[string]any)

	if patch.Value != nil {
		body["value"] = *patch.Value
	}

	if patch.Memo != nil {
		body["memo"] = *patch.Memo
	}

	var payload recordPayload

	err := c.do(ctx, http.MethodPut, "/api/records/"+id, body, &payload)
	if err != nil {
		return models.Record{}, err
	}

	return payload.toModel(), nil
}

// DeleteRecord removes a record.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/records/"+id, nil, nil)
}

// ListActivities retrieves all activities with their group and tags.
func (c *Client) ListActivities(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity

	err := c.do(ctx, http.MethodGet, "/api/activities", nil, &activities)
	if err != nil {
		return nil, err
	}

	return activities, nil
}

// PresenceStart is the payload for starting a presence session.
type PresenceStart struct {
	SessionID    string `json:"session_id"`
	Group        string `json:"group"`
	ActivityName string `json:"activity_name"`
	Details      string `json:"details,omitempty"`
	AssetKey     string `json:"asset_key,omitempty"`
}

// StartPresence broadcasts a "currently doing X" status.
func (c *Client) StartPresence(ctx context.Context, info PresenceStart) error {
	return c.do(ctx, http.MethodPost, "/api/discord_presence/start", info, nil)
}

// StopPresence clears the presence status for a group.
func (c *Client) StopPresence(ctx context.Context, group string) error {
	body := map[string]string{"group": group}

	return c.do(ctx, http.MethodPost, "/api/discord_presence/stop", body, nil)
}
