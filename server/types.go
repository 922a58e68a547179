// Package server implements the bundled local backend: a REST API over a
// SQLite database, serving the same endpoints and JSON shapes as a hosted
// backend so the rest of the application cannot tell them apart.
package server

import "time"

// Tag is a label attached to an activity.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Activity is a trackable thing with its group and tags resolved.
type Activity struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Group    string `json:"group"`
	Unit     string `json:"unit"`
	Tags     []Tag  `json:"tags,omitempty"`
	AssetKey string `json:"asset_key,omitempty"`
}

// Record is the joined view of one logged record, the shape every record
// endpoint serves.
type Record struct {
	ID            int       `json:"id"`
	ActivityID    int       `json:"activity_id"`
	Value         float64   `json:"value"`
	Unit          string    `json:"unit"`
	CreatedAt     time.Time `json:"created_at"`
	ActivityName  string    `json:"activity_name"`
	ActivityGroup string    `json:"activity_group"`
	Tags          []Tag     `json:"tags"`
	Memo          string    `json:"memo"`
}

// RecordDraft is the create payload. CreatedAt defaults to the current UTC
// instant when absent.
type RecordDraft struct {
	ActivityID int        `json:"activity_id" binding:"required"`
	Value      float64    `json:"value" binding:"required"`
	CreatedAt  *time.Time `json:"created_at"`
	Memo       string     `json:"memo"`
}

// RecordPatch holds the updatable fields; nil means leave unchanged.
type RecordPatch struct {
	Value *float64 `json:"value"`
	Memo  *string  `json:"memo"`
}

// ActivityDraft is the create payload for an activity.
type ActivityDraft struct {
	Name     string `json:"name" binding:"required"`
	Group    string `json:"group"`
	Unit     string `json:"unit" binding:"required"`
	AssetKey string `json:"asset_key"`
	Tags     []string `json:"tags"`
}
