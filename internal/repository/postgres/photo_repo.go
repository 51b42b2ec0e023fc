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

// PhotoRepo implements PhotoRepository using PostgreSQL.
type PhotoRepo struct{ db *DB }

// NewPhotoRepo constructs a photo repository.
func NewPhotoRepo(db *DB) *PhotoRepo { return &PhotoRepo{db: db} }

const photoCols = `id, owner_id, file_url, file_key, title, description, visibility, created_at`

func scanPhoto(row pgx.Row) (*model.Photo, error) {
	var (
		p   model.Photo
		vis string
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.FileURL, &p.FileKey, &p.Title, &p.Description, &vis, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Visibility = model.Visibility(vis)
	return &p, nil
}

// Create inserts a photo row.
func (r *PhotoRepo) Create(ctx context.Context, p *model.Photo) error {
	id, err := newID(p.ID)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO photos (id, owner_id, file_url, file_key, title, description, visibility)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at`
	if err := r.db.Pool.QueryRow(ctx, q, id, p.OwnerID, p.FileURL, p.FileKey, p.Title, p.Description, string(p.Visibility)).
		Scan(&p.CreatedAt); err != nil {
		return err
	}
	p.ID = id
	return nil
}

// GetByID selects a photo by ID.
func (r *PhotoRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Photo, error) {
	const q = `SELECT ` + photoCols + ` FROM photos WHERE id=$1`
	p, err := scanPhoto(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// ListByOwner returns one keyset page of the owner's photos, newest first.
func (r *PhotoRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, vis *model.Visibility, q pager.Query) ([]model.Photo, error) {
	ks := keyset{keyCol: "created_at", idCol: "id", dir: pager.Desc}
	where := []string{"owner_id = $1"}
	args := []any{ownerID}
	if vis != nil {
		args = append(args, string(*vis))
		where = append(where, fmt.Sprintf("visibility = $%d", len(args)))
	}
	sql, args := ks.listSQL(`SELECT `+photoCols+` FROM photos`, where, args, q.After, false, q.Limit)

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Photo, 0, q.Limit)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

const feedSelect = `
SELECT p.id, p.owner_id, p.file_url, p.title, p.created_at,
       (SELECT COUNT(*) FROM likes l WHERE l.target_type = 'PHOTO' AND l.photo_id = p.id) AS like_count
FROM photos p
WHERE p.visibility = 'PUBLIC'`

// ListPublic returns one keyset page of the public feed.
// Likes sort compares the computed count, so the page is cut from a derived table.
func (r *PhotoRepo) ListPublic(ctx context.Context, sort model.FeedSort, q pager.Query) ([]model.FeedItem, error) {
	ks := keyset{idCol: "id", dir: pager.Desc}
	byCount := false
	switch sort {
	case model.FeedSortLikes:
		ks.keyCol, byCount = "like_count", true
	case model.FeedSortLatest, "":
		ks.keyCol = "created_at"
	default:
		return nil, fmt.Errorf("%w: unknown feed sort %q", errs.ErrValidation, sort)
	}
	sql, args := ks.listSQL(
		`SELECT id, owner_id, file_url, title, created_at, like_count FROM (`+feedSelect+`) f`,
		nil, nil, q.After, byCount, q.Limit)

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.FeedItem, 0, q.Limit)
	for rows.Next() {
		var it model.FeedItem
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.FileURL, &it.Title, &it.CreatedAt, &it.LikeCount); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SetVisibility updates the visibility of a photo.
func (r *PhotoRepo) SetVisibility(ctx context.Context, id uuid.UUID, vis model.Visibility) (*model.Photo, error) {
	const q = `UPDATE photos SET visibility = $2 WHERE id = $1 RETURNING ` + photoCols
	p, err := scanPhoto(r.db.Pool.QueryRow(ctx, q, id, string(vis)))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// Delete removes memberships and likes of the photo, then the photo, in one transaction.
func (r *PhotoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM album_photos WHERE photo_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM likes WHERE target_type = 'PHOTO' AND photo_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}
