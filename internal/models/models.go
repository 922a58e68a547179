// Package models defines the value types shared across kiroku packages.
package models

import (
	"fmt"
	"time"
)

// Unit is the measurement unit of an activity and its records.
type Unit string

const (
	UnitCount   Unit = "count"
	UnitMinutes Unit = "minutes"
)

// Tag is a free-form label attached to an activity.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Record is one logged occurrence or duration of an activity. Records are
// owned by the backend; the in-memory copy is immutable except through an
// explicit update.
type Record struct {
	ID            string    `json:"id"`
	ActivityID    int       `json:"activity_id"`
	Value         float64   `json:"value"`
	Unit          Unit      `json:"unit"`
	CreatedAt     time.Time `json:"created_at"`
	ActivityName  string    `json:"activity_name"`
	ActivityGroup string    `json:"activity_group"`
	Tags          []Tag     `json:"tags,omitempty"`
	Memo          string    `json:"memo,omitempty"`
}

// RecordDraft is the payload for creating a record. CreatedAt is optional;
// the backend defaults it to the current UTC instant.
type RecordDraft struct {
	ActivityID int
	Value      float64
	CreatedAt  *time.Time
	Memo       string
}

// RecordPatch holds the updatable fields of a record.
type RecordPatch struct {
	Value *float64
	Memo  *string
}

// Activity is a user-defined trackable thing.
type Activity struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
	Unit  Unit   `json:"unit"`
	Tags  []Tag  `json:"tags,omitempty"`
	Asset string `json:"asset_key,omitempty"`
}

// ActivityRef is the subset of an activity a stopwatch slot carries around
// so that live records and presence updates can be derived without a
// backend round trip.
type ActivityRef struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
	Unit  Unit   `json:"unit"`
	Tags  []Tag  `json:"tags,omitempty"`
	Asset string `json:"asset_key,omitempty"`
}

// Ref returns the activity descriptor for a.
func (a Activity) Ref() ActivityRef {
	return ActivityRef{
		ID:    a.ID,
		Name:  a.Name,
		Group: a.Group,
		Unit:  a.Unit,
		Tags:  a.Tags,
		Asset: a.Asset,
	}
}

// StopwatchState is the durable snapshot of one stopwatch slot. Exactly one
// of the following holds: no timer (zero value), running (StartTime set,
// Offset frozen), or paused (StartTime zero, Offset holds the accumulated
// elapsed time).
type StopwatchState struct {
	StartTime time.Time     `json:"start_time"`
	Offset    time.Duration `json:"offset"`
	Running   bool          `json:"running"`
	Paused    bool          `json:"paused"`
	Memo      string        `json:"memo"`
	Activity  ActivityRef   `json:"activity"`
}

// Active reports whether the slot holds a running or paused measurement.
func (s StopwatchState) Active() bool {
	return s.Running || s.Paused
}

// Elapsed computes the measured time as of now. The value is derived from
// instants, never accumulated by ticks.
func (s StopwatchState) Elapsed(now time.Time) time.Duration {
	elapsed := s.Offset

	if s.Running && !s.StartTime.IsZero() {
		elapsed += now.Sub(s.StartTime)
	}

	return elapsed
}

// LiveRecordID is the synthetic identifier of an in-progress record. It is
// disjoint from persisted record ids, which are numeric strings.
func LiveRecordID(slot string, activityID int) string {
	return fmt.Sprintf("live-%s-%d", slot, activityID)
}
