package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
)

// LikeRepo implements LikeRepository using PostgreSQL.
type LikeRepo struct{ db *DB }

// NewLikeRepo constructs a like repository.
func NewLikeRepo(db *DB) *LikeRepo { return &LikeRepo{db: db} }

// targetColumn names the id column matching the target kind.
func targetColumn(t model.LikeTarget) (string, error) {
	switch t.Type() {
	case model.TargetPhoto:
		return "photo_id", nil
	case model.TargetAlbum:
		return "album_id", nil
	default:
		return "", fmt.Errorf("%w: unknown target type %q", errs.ErrValidation, t.Type())
	}
}

// Create inserts a like row. The partial unique indexes on (user_id, photo_id) and
// (user_id, album_id) turn a concurrent duplicate into errs.ErrConflict.
func (r *LikeRepo) Create(ctx context.Context, l *model.Like) error {
	var photoID, albumID any
	if id, ok := l.Target.PhotoID(); ok {
		photoID = id
	} else if id, ok := l.Target.AlbumID(); ok {
		albumID = id
	} else {
		return fmt.Errorf("%w: empty like target", errs.ErrValidation)
	}
	id, err := newID(l.ID)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO likes (id, user_id, target_type, photo_id, album_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`
	err = r.db.Pool.QueryRow(ctx, q, id, l.UserID, string(l.Target.Type()), photoID, albumID).Scan(&l.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

// Find selects the user's like on a target.
func (r *LikeRepo) Find(ctx context.Context, userID uuid.UUID, target model.LikeTarget) (*model.Like, error) {
	col, err := targetColumn(target)
	if err != nil {
		return nil, err
	}
	q := `SELECT id, user_id, created_at FROM likes WHERE user_id=$1 AND target_type=$2 AND ` + col + `=$3`
	l := model.Like{Target: target}
	if err := r.db.Pool.QueryRow(ctx, q, userID, string(target.Type()), target.ID()).
		Scan(&l.ID, &l.UserID, &l.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// DeleteByTarget removes the user's likes on a target.
func (r *LikeRepo) DeleteByTarget(ctx context.Context, userID uuid.UUID, target model.LikeTarget) (int64, error) {
	col, err := targetColumn(target)
	if err != nil {
		return 0, err
	}
	q := `DELETE FROM likes WHERE user_id=$1 AND target_type=$2 AND ` + col + `=$3`
	tag, err := r.db.Pool.Exec(ctx, q, userID, string(target.Type()), target.ID())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListByUser returns one keyset page of the user's likes, newest first, with a
// summary of each liked photo or album.
func (r *LikeRepo) ListByUser(ctx context.Context, userID uuid.UUID, typ *model.TargetType, q pager.Query) ([]model.LikedItem, error) {
	ks := keyset{keyCol: "l.created_at", idCol: "l.id", dir: pager.Desc}
	where := []string{"l.user_id = $1"}
	args := []any{userID}
	if typ != nil {
		args = append(args, string(*typ))
		where = append(where, fmt.Sprintf("l.target_type = $%d", len(args)))
	}
	sql, args := ks.listSQL(`
SELECT l.id, l.user_id, l.target_type, COALESCE(l.photo_id, l.album_id), l.created_at,
       COALESCE(p.owner_id, a.owner_id), COALESCE(p.visibility, a.visibility),
       COALESCE(p.file_url, ''), COALESCE(p.title, a.title, '')
FROM likes l
LEFT JOIN photos p ON l.target_type = 'PHOTO' AND p.id = l.photo_id
LEFT JOIN albums a ON l.target_type = 'ALBUM' AND a.id = l.album_id`, where, args, q.After, false, q.Limit)

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.LikedItem, 0, q.Limit)
	for rows.Next() {
		var (
			it             model.LikedItem
			kind           string
			targetID       uuid.UUID
			ownerID        uuid.UUID
			vis            string
			fileURL, title string
		)
		if err := rows.Scan(&it.Like.ID, &it.Like.UserID, &kind, &targetID, &it.Like.CreatedAt,
			&ownerID, &vis, &fileURL, &title); err != nil {
			return nil, err
		}
		target, err := model.NewLikeTarget(model.TargetType(kind), targetID)
		if err != nil {
			return nil, err
		}
		it.Like.Target = target
		if target.Type() == model.TargetPhoto {
			it.Photo = &model.PhotoSummary{ID: targetID, OwnerID: ownerID, Visibility: model.Visibility(vis), FileURL: fileURL, Title: title}
		} else {
			it.Album = &model.AlbumSummary{ID: targetID, OwnerID: ownerID, Visibility: model.Visibility(vis), Title: title}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
