package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// CartSnapshotRepository is the PostgreSQL cart storage. Each cart session
// has one row holding its serialized line list.
type CartSnapshotRepository struct {
	db *sqlx.DB
}

// NewCartSnapshotRepository creates a new CartSnapshotRepository.
func NewCartSnapshotRepository(db *sqlx.DB) *CartSnapshotRepository {
	return &CartSnapshotRepository{db: db}
}

// Load returns the stored record of session, or nil when there is none.
func (r *CartSnapshotRepository) Load(ctx context.Context, session string) ([]byte, error) {
	var data []byte
	err := r.db.GetContext(ctx, &data, `SELECT items FROM cart_snapshots WHERE session_id = $1`, session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Save upserts the record of session.
func (r *CartSnapshotRepository) Save(ctx context.Context, session string, data []byte) error {
	const q = `
		INSERT INTO cart_snapshots (session_id, items, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_id) DO UPDATE
		SET items = EXCLUDED.items, updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, q, session, string(data))
	return err
}

// DeleteOlderThan removes carts not written since cutoff and reports how
// many were removed.
func (r *CartSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_snapshots WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
