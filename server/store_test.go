package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func seedActivity(t *testing.T, store *SQLiteStore, draft ActivityDraft) Activity {
	t.Helper()

	activity, err := store.CreateActivity(context.Background(), draft)
	require.NoError(t, err)

	return activity
}

func TestCreateRecordRoundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	activity := seedActivity(t, store, ActivityDraft{
		Name:  "Piano",
		Group: "Music",
		Unit:  "minutes",
		Tags:  []string{"practice"},
	})

	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	rec, err := store.CreateRecord(ctx, RecordDraft{
		ActivityID: activity.ID,
		Value:      25,
		CreatedAt:  &created,
		Memo:       "scales",
	})
	require.NoError(t, err)

	assert.Equal(t, activity.ID, rec.ActivityID)
	assert.Equal(t, 25.0, rec.Value)
	assert.Equal(t, "minutes", rec.Unit)
	assert.Equal(t, "Piano", rec.ActivityName)
	assert.Equal(t, "Music", rec.ActivityGroup)
	assert.Equal(t, "scales", rec.Memo)
	assert.True(t, rec.CreatedAt.Equal(created))

	require.Len(t, rec.Tags, 1)
	assert.Equal(t, "practice", rec.Tags[0].Name)
}

func TestCreateRecordDefaultsCreatedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	activity := seedActivity(t, store, ActivityDraft{Name: "Reading", Unit: "minutes"})

	before := time.Now().UTC().Add(-time.Second)

	rec, err := store.CreateRecord(ctx, RecordDraft{ActivityID: activity.ID, Value: 10})
	require.NoError(t, err)

	assert.False(t, rec.CreatedAt.Before(before), "created_at should default to now")
}

func TestListRecordsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	activity := seedActivity(t, store, ActivityDraft{Name: "Reading", Unit: "minutes"})

	older := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	newer := older.Add(2 * time.Hour)

	_, err := store.CreateRecord(ctx, RecordDraft{
		ActivityID: activity.ID, Value: 10, CreatedAt: &older,
	})
	require.NoError(t, err)

	_, err = store.CreateRecord(ctx, RecordDraft{
		ActivityID: activity.ID, Value: 20, CreatedAt: &newer,
	})
	require.NoError(t, err)

	records, err := store.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 20.0, records[0].Value)
	assert.Equal(t, 10.0, records[1].Value)
}

func TestUpdateRecordPatchesValueAndMemo(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	activity := seedActivity(t, store, ActivityDraft{Name: "Reading", Unit: "minutes"})

	rec, err := store.CreateRecord(ctx, RecordDraft{ActivityID: activity.ID, Value: 10})
	require.NoError(t, err)

	newValue := 45.0

	updated, err := store.UpdateRecord(ctx, rec.ID, RecordPatch{Value: &newValue})
	require.NoError(t, err)
	assert.Equal(t, 45.0, updated.Value)
	assert.Empty(t, updated.Memo)

	memo := "chapter 3"

	updated, err = store.UpdateRecord(ctx, rec.ID, RecordPatch{Memo: &memo})
	require.NoError(t, err)
	assert.Equal(t, 45.0, updated.Value, "value untouched by memo patch")
	assert.Equal(t, "chapter 3", updated.Memo)
}

func TestUpdateMissingRecordReturnsNotFound(t *testing.T) {
	store := openTestStore(t)

	v := 1.0

	_, err := store.UpdateRecord(context.Background(), 999, RecordPatch{Value: &v})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	activity := seedActivity(t, store, ActivityDraft{Name: "Reading", Unit: "minutes"})

	rec, err := store.CreateRecord(ctx, RecordDraft{ActivityID: activity.ID, Value: 10})
	require.NoError(t, err)

	require.NoError(t, store.DeleteRecord(ctx, rec.ID))

	assert.ErrorIs(t, store.DeleteRecord(ctx, rec.ID), ErrNotFound)

	records, err := store.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteActivityCascadesRecords(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	activity := seedActivity(t, store, ActivityDraft{Name: "Reading", Unit: "minutes"})

	_, err := store.CreateRecord(ctx, RecordDraft{ActivityID: activity.ID, Value: 10})
	require.NoError(t, err)

	require.NoError(t, store.DeleteActivity(ctx, activity.ID))

	records, err := store.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateActivityReusesGroupAndTags(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := seedActivity(t, store, ActivityDraft{
		Name: "Piano", Group: "Music", Unit: "minutes", Tags: []string{"practice"},
	})
	second := seedActivity(t, store, ActivityDraft{
		Name: "Guitar", Group: "Music", Unit: "minutes", Tags: []string{"practice"},
	})

	assert.Equal(t, first.Group, second.Group)

	require.Len(t, first.Tags, 1)
	require.Len(t, second.Tags, 1)
	assert.Equal(t, first.Tags[0].ID, second.Tags[0].ID, "tag row should be shared")

	activities, err := store.ListActivities(ctx)
	require.NoError(t, err)
	assert.Len(t, activities, 2)
}
