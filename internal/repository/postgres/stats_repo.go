package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/fourtogenic/photoshare/internal/model"
)

// StatsRepo implements StatsRepository using PostgreSQL.
type StatsRepo struct{ db *DB }

// NewStatsRepo constructs a stats repository.
func NewStatsRepo(db *DB) *StatsRepo { return &StatsRepo{db: db} }

var snapshotTx = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// UserStats reads both counters inside one repeatable-read transaction.
func (r *StatsRepo) UserStats(ctx context.Context, userID uuid.UUID) (model.Stats, error) {
	var s model.Stats
	err := r.db.inTx(ctx, snapshotTx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM photos WHERE owner_id = $1`, userID).
			Scan(&s.PhotoCount); err != nil {
			return err
		}
		const q = `
SELECT COUNT(*)
FROM likes l
JOIN photos p ON p.id = l.photo_id
WHERE l.target_type = 'PHOTO' AND p.owner_id = $1`
		return tx.QueryRow(ctx, q, userID).Scan(&s.ReceivedLikeCount)
	})
	if err != nil {
		return model.Stats{}, err
	}
	return s, nil
}
