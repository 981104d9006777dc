package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLiteRepository implements Repository with the local cache file.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a SQLite snapshot repository. Migrations must already be applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Save(ctx context.Context, accountID string, date time.Time, data json.RawMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO report_snapshots (account_id, snapshot_date, data, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (account_id, snapshot_date)
		 DO UPDATE SET data = excluded.data, created_at = excluded.created_at`,
		accountID, date.Format(time.DateOnly), string(data), r.now().Unix())
	if err != nil {
		return fmt.Errorf("saving snapshot of %s: %w", accountID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetLatest(ctx context.Context, accountID string) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM report_snapshots
		 WHERE account_id = ? ORDER BY snapshot_date DESC LIMIT 1`, accountID)
	s, err := scanSQLite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return &s, nil
}

func (r *SQLiteRepository) GetByDate(ctx context.Context, accountID string, date time.Time) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM report_snapshots
		 WHERE account_id = ? AND snapshot_date = ?`, accountID, date.Format(time.DateOnly))
	s, err := scanSQLite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting snapshot by date: %w", err)
	}
	return &s, nil
}

func (r *SQLiteRepository) List(ctx context.Context, accountID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM report_snapshots
		 WHERE account_id = ? ORDER BY snapshot_date DESC LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return snapshots, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row scanner) (Snapshot, error) {
	var (
		s       Snapshot
		date    string
		data    string
		created int64
	)
	if err := row.Scan(&s.ID, &s.AccountID, &date, &data, &created); err != nil {
		return Snapshot{}, err
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing snapshot date %q: %w", date, err)
	}
	s.SnapshotDate = d
	s.Data = json.RawMessage(data)
	s.CreatedAt = time.Unix(created, 0).UTC()
	return s, nil
}
