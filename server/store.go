package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a record or activity id does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence surface of the bundled backend.
type Store interface {
	ListRecords(ctx context.Context) ([]Record, error)
	GetRecord(ctx context.Context, id int) (Record, error)
	CreateRecord(ctx context.Context, draft RecordDraft) (Record, error)
	UpdateRecord(ctx context.Context, id int, patch RecordPatch) (Record, error)
	DeleteRecord(ctx context.Context, id int) error
	ListActivities(ctx context.Context) ([]Activity, error)
	CreateActivity(ctx context.Context, draft ActivityDraft) (Activity, error)
	DeleteActivity(ctx context.Context, id int) error
	Close() error
}

// SQLiteStore implements Store over a local SQLite database.
type SQLiteStore struct {
	db *sql.DB

	insertRecord *sql.Stmt
	deleteRecord *sql.Stmt
}

// Open opens (creating if necessary) the database at path, runs migrations,
// and returns a ready store. Use ":memory:" for an ephemeral database.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := NewMigrationRunner(db).Run(); err != nil {
		db.Close()
		return nil, err
	}

	s, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// NewSQLiteStore wraps an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertRecord, err = s.db.Prepare(`
		INSERT INTO records (activity_id, value, created_at, memo)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.deleteRecord, err = s.db.Prepare(`DELETE FROM records WHERE id = ?`)
	if err != nil {
		return err
	}

	return nil
}

const recordColumns = `
	r.id, r.activity_id, r.value, a.unit, r.created_at, r.memo,
	a.name, COALESCE(g.name, '')
`

const recordJoins = `
	FROM records r
	JOIN activities a ON a.id = r.activity_id
	LEFT JOIN groups g ON g.id = a.group_id
`

// ListRecords returns every record with its activity, group, and tags
// resolved, newest first.
func (s *SQLiteStore) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+recordJoins+` ORDER BY r.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []Record{}

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		tags, err := s.activityTags(ctx, records[i].ActivityID)
		if err != nil {
			return nil, err
		}

		records[i].Tags = tags
	}

	return records, nil
}

// GetRecord retrieves a single record by id.
func (s *SQLiteStore) GetRecord(ctx context.Context, id int) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+recordJoins+` WHERE r.id = ?`, id,
	)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}

		return Record{}, err
	}

	rec.Tags, err = s.activityTags(ctx, rec.ActivityID)
	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

// CreateRecord inserts a record and returns the stored row.
func (s *SQLiteStore) CreateRecord(
	ctx context.Context,
	draft RecordDraft,
) (Record, error) {
	created := time.Now().UTC()
	if draft.CreatedAt != nil {
		created = draft.CreatedAt.UTC()
	}

	res, err := s.insertRecord.ExecContext(ctx,
		draft.ActivityID,
		draft.Value,
		created.Format(time.RFC3339),
		draft.Memo,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, err
	}

	return s.GetRecord(ctx, int(id))
}

// UpdateRecord applies the non-nil patch fields and returns the updated row.
func (s *SQLiteStore) UpdateRecord(
	ctx context.Context,
	id int,
	patch RecordPatch,
) (Record, error) {
	if _, err := s.GetRecord(ctx, id); err != nil {
		return Record{}, err
	}

	if patch.Value != nil {
		_, err := s.db.ExecContext(ctx,
			`UPDATE records SET value = ? WHERE id = ?`, *patch.Value, id,
		)
		if err != nil {
			return Record{}, fmt.Errorf("update value: %w", err)
		}
	}

	if patch.Memo != nil {
		_, err := s.db.ExecContext(ctx,
			`UPDATE records SET memo = ? WHERE id = ?`, *patch.Memo, id,
		)
		if err != nil {
			return Record{}, fmt.Errorf("update memo: %w", err)
		}
	}

	return s.GetRecord(ctx, id)
}

// DeleteRecord removes a record by id.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, id int) error {
	res, err := s.deleteRecord.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// ListActivities returns every activity with its group and tags resolved.
func (s *SQLiteStore) ListActivities(ctx context.Context) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, COALESCE(g.name, ''), a.unit, COALESCE(a.asset_key, '')
		FROM activities a
		LEFT JOIN groups g ON g.id = a.group_id
		ORDER BY a.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	activities := []Activity{}

	for rows.Next() {
		var a Activity

		err := rows.Scan(&a.ID, &a.Name, &a.Group, &a.Unit, &a.AssetKey)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}

		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range activities {
		tags, err := s.activityTags(ctx, activities[i].ID)
		if err != nil {
			return nil, err
		}

		if len(tags) > 0 {
			activities[i].Tags = tags
		}
	}

	return activities, nil
}

// CreateActivity inserts an activity, creating its group and tags as needed.
func (s *SQLiteStore) CreateActivity(
	ctx context.Context,
	draft ActivityDraft,
) (Activity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Activity{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var groupID any

	if draft.Group != "" {
		id, err := upsertName(ctx, tx, "groups", draft.Group)
		if err != nil {
			return Activity{}, err
		}

		groupID = id
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO activities (name, group_id, unit, asset_key)
		 VALUES (?, ?, ?, ?)`,
		draft.Name, groupID, draft.Unit, draft.AssetKey,
	)
	if err != nil {
		return Activity{}, fmt.Errorf("insert activity: %w", err)
	}

	activityID, err := res.LastInsertId()
	if err != nil {
		return Activity{}, err
	}

	for _, tag := range draft.Tags {
		tagID, err := upsertName(ctx, tx, "tags", tag)
		if err != nil {
			return Activity{}, err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO activity_tags (activity_id, tag_id) VALUES (?, ?)`,
			activityID, tagID,
		)
		if err != nil {
			return Activity{}, fmt.Errorf("link tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Activity{}, err
	}

	return s.getActivity(ctx, int(activityID))
}

// DeleteActivity removes an activity; its records cascade.
func (s *SQLiteStore) DeleteActivity(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *SQLiteStore) getActivity(ctx context.Context, id int) (Activity, error) {
	var a Activity

	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.name, COALESCE(g.name, ''), a.unit, COALESCE(a.asset_key, '')
		FROM activities a
		LEFT JOIN groups g ON g.id = a.group_id
		WHERE a.id = ?
	`, id).Scan(&a.ID, &a.Name, &a.Group, &a.Unit, &a.AssetKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Activity{}, ErrNotFound
		}

		return Activity{}, err
	}

	tags, err := s.activityTags(ctx, id)
	if err != nil {
		return Activity{}, err
	}

	if len(tags) > 0 {
		a.Tags = tags
	}

	return a, nil
}

func (s *SQLiteStore) activityTags(ctx context.Context, activityID int) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM tags t
		JOIN activity_tags at ON at.tag_id = t.id
		WHERE at.activity_id = ?
		ORDER BY t.id
	`, activityID)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	tags := []Tag{}

	for rows.Next() {
		var t Tag

		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}

		tags = append(tags, t)
	}

	return tags, rows.Err()
}

// upsertName inserts a row into a single-name lookup table if absent and
// returns its id. Table name is always a compile-time constant here.
func upsertName(
	ctx context.Context,
	tx *sql.Tx,
	table, name string,
) (int64, error) {
	var id int64

	err := tx.QueryRowContext(ctx,
		`SELECT id FROM `+table+` WHERE name = ?`, name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup %s: %w", table, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO `+table+` (name) VALUES (?)`, name,
	)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}

	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec  Record
		ts   string
		memo sql.NullString
	)

	err := row.Scan(
		&rec.ID, &rec.ActivityID, &rec.Value, &rec.Unit,
		&ts, &memo, &rec.ActivityName, &rec.ActivityGroup,
	)
	if err != nil {
		return Record{}, err
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339, ts)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}

	if memo.Valid {
		rec.Memo = memo.String
	}

	rec.Tags = []Tag{}

	return rec, nil
}

// Close releases prepared statements and the underlying database.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertRecord, s.deleteRecord} {
		if stmt != nil {
			stmt.Close()
		}
	}

	return s.db.Close()
}
