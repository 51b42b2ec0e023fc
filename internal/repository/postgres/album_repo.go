package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
)

// AlbumRepo implements AlbumRepository using PostgreSQL.
type AlbumRepo struct{ db *DB }

// NewAlbumRepo constructs an album repository.
func NewAlbumRepo(db *DB) *AlbumRepo { return &AlbumRepo{db: db} }

const albumCols = `id, owner_id, title, description, visibility, created_at`

func scanAlbum(row pgx.Row) (*model.Album, error) {
	var (
		a   model.Album
		vis string
	)
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Description, &vis, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Visibility = model.Visibility(vis)
	return &a, nil
}

// Create inserts an album row.
func (r *AlbumRepo) Create(ctx context.Context, a *model.Album) error {
	id, err := newID(a.ID)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO albums (id, owner_id, title, description, visibility)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`
	if err := r.db.Pool.QueryRow(ctx, q, id, a.OwnerID, a.Title, a.Description, string(a.Visibility)).
		Scan(&a.CreatedAt); err != nil {
		return err
	}
	a.ID = id
	return nil
}

// GetByID selects an album by ID.
func (r *AlbumRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Album, error) {
	const q = `SELECT ` + albumCols + ` FROM albums WHERE id=$1`
	a, err := scanAlbum(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// ListByOwner returns one keyset page of the owner's albums, newest first.
func (r *AlbumRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, vis *model.Visibility, q pager.Query) ([]model.Album, error) {
	ks := keyset{keyCol: "created_at", idCol: "id", dir: pager.Desc}
	where := []string{"owner_id = $1"}
	args := []any{ownerID}
	if vis != nil {
		args = append(args, string(*vis))
		where = append(where, fmt.Sprintf("visibility = $%d", len(args)))
	}
	sql, args := ks.listSQL(`SELECT `+albumCols+` FROM albums`, where, args, q.After, false, q.Limit)

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Album, 0, q.Limit)
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Delete removes memberships and likes of the album, then the album, in one transaction.
// Member photos are left untouched.
func (r *AlbumRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM album_photos WHERE album_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM likes WHERE target_type = 'ALBUM' AND album_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM albums WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}
