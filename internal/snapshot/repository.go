package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested snapshot was not found.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one stored report summary of an account on a calendar day.
type Snapshot struct {
	ID           int64           `json:"id"`
	AccountID    string          `json:"accountId"`
	SnapshotDate time.Time       `json:"snapshotDate"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Repository defines persistent storage for snapshots. Dates are calendar days at midnight UTC.
type Repository interface {
	Save(ctx context.Context, accountID string, date time.Time, data json.RawMessage) error
	GetLatest(ctx context.Context, accountID string) (*Snapshot, error)
	GetByDate(ctx context.Context, accountID string, date time.Time) (*Snapshot, error)
	List(ctx context.Context, accountID string, limit int) ([]Snapshot, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL snapshot repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, accountID string, date time.Time, data json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO report_snapshots (account_id, snapshot_date, data)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (account_id, snapshot_date)
		 DO UPDATE SET data = $3::jsonb, created_at = NOW()`,
		accountID, date, data)
	if err != nil {
		return fmt.Errorf("saving snapshot of %s: %w", accountID, err)
	}
	return nil
}

// snapshotColumns is the select list shared by both repositories.
const snapshotColumns = `id, account_id, snapshot_date, data, created_at`

func (r *PgRepository) GetLatest(ctx context.Context, accountID string) (*Snapshot, error) {
	return r.one(ctx, "latest snapshot of "+accountID,
		`SELECT `+snapshotColumns+` FROM report_snapshots
		 WHERE account_id = $1 ORDER BY snapshot_date DESC LIMIT 1`, accountID)
}

func (r *PgRepository) GetByDate(ctx context.Context, accountID string, date time.Time) (*Snapshot, error) {
	return r.one(ctx, "snapshot of "+accountID+" on "+date.Format(time.DateOnly),
		`SELECT `+snapshotColumns+` FROM report_snapshots
		 WHERE account_id = $1 AND snapshot_date = $2`, accountID, date)
}

func (r *PgRepository) List(ctx context.Context, accountID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+snapshotColumns+` FROM report_snapshots
		 WHERE account_id = $1 ORDER BY snapshot_date DESC LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots of %s: %w", accountID, err)
	}
	snapshots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Snapshot, error) {
		return scanPg(row)
	})
	if err != nil {
		return nil, fmt.Errorf("reading snapshots of %s: %w", accountID, err)
	}
	return snapshots, nil
}

func (r *PgRepository) one(ctx context.Context, what, query string, args ...any) (*Snapshot, error) {
	s, err := scanPg(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", what, err)
	}
	return &s, nil
}

func scanPg(row pgx.Row) (Snapshot, error) {
	var s Snapshot
	err := row.Scan(&s.ID, &s.AccountID, &s.SnapshotDate, &s.Data, &s.CreatedAt)
	return s, err
}
