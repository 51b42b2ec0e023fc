package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
)

// MembershipRepo implements MembershipRepository using PostgreSQL.
type MembershipRepo struct{ db *DB }

// NewMembershipRepo constructs a membership repository.
func NewMembershipRepo(db *DB) *MembershipRepo { return &MembershipRepo{db: db} }

// Create inserts a membership row. The (photo_id, album_id) unique key turns a
// concurrent duplicate into errs.ErrConflict.
func (r *MembershipRepo) Create(ctx context.Context, m *model.Membership) error {
	id, err := newID(m.ID)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO album_photos (id, photo_id, album_id)
VALUES ($1, $2, $3)
RETURNING added_at`
	err = r.db.Pool.QueryRow(ctx, q, id, m.PhotoID, m.AlbumID).Scan(&m.AddedAt)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// Find selects the membership of a photo in an album.
func (r *MembershipRepo) Find(ctx context.Context, photoID, albumID uuid.UUID) (*model.Membership, error) {
	const q = `SELECT id, photo_id, album_id, added_at FROM album_photos WHERE photo_id=$1 AND album_id=$2`
	var m model.Membership
	if err := r.db.Pool.QueryRow(ctx, q, photoID, albumID).Scan(&m.ID, &m.PhotoID, &m.AlbumID, &m.AddedAt); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// Delete removes a membership by ID.
func (r *MembershipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM album_photos WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListPhotos returns one keyset page of an album's photos ordered by membership time.
func (r *MembershipRepo) ListPhotos(ctx context.Context, albumID uuid.UUID, publicOnly bool, dir pager.Direction, q pager.Query) ([]model.AlbumPhoto, error) {
	ks := keyset{keyCol: "m.added_at", idCol: "m.id", dir: dir}
	where := []string{"m.album_id = $1"}
	if publicOnly {
		where = append(where, "p.visibility = 'PUBLIC'")
	}
	sql, args := ks.listSQL(`
SELECT m.id, m.added_at,
       p.id, p.owner_id, p.file_url, p.file_key, p.title, p.description, p.visibility, p.created_at
FROM album_photos m
JOIN photos p ON p.id = m.photo_id`, where, []any{albumID}, q.After, false, q.Limit)

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AlbumPhoto, 0, q.Limit)
	for rows.Next() {
		var (
			ap  model.AlbumPhoto
			vis string
		)
		p := &ap.Photo
		if err := rows.Scan(&ap.MembershipID, &ap.AddedAt,
			&p.ID, &p.OwnerID, &p.FileURL, &p.FileKey, &p.Title, &p.Description, &vis, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Visibility = model.Visibility(vis)
		out = append(out, ap)
	}
	return out, rows.Err()
}
