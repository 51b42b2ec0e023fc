package model

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/errs"
)

// TargetType discriminates what a like points at.
type TargetType string

const (
	TargetPhoto TargetType = "PHOTO"
	TargetAlbum TargetType = "ALBUM"
)

// ParseTargetType validates a target type literal.
func ParseTargetType(s string) (TargetType, error) {
	switch t := TargetType(s); t {
	case TargetPhoto, TargetAlbum:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown target type %q", errs.ErrValidation, s)
	}
}

// LikeTarget is either a photo or an album. The zero value is invalid;
// values are only produced by NewLikeTarget, PhotoTarget and AlbumTarget.
type LikeTarget struct {
	kind TargetType
	id   uuid.UUID
}

// NewLikeTarget builds a target, rejecting unknown kinds and nil ids.
func NewLikeTarget(kind TargetType, id uuid.UUID) (LikeTarget, error) {
	if kind != TargetPhoto && kind != TargetAlbum {
		return LikeTarget{}, fmt.Errorf("%w: unknown target type %q", errs.ErrValidation, kind)
	}
	if id == uuid.Nil {
		return LikeTarget{}, fmt.Errorf("%w: empty target id", errs.ErrValidation)
	}
	return LikeTarget{kind: kind, id: id}, nil
}

// PhotoTarget targets a photo. It panics on uuid.Nil, like uuid.Must.
func PhotoTarget(id uuid.UUID) LikeTarget { return mustTarget(NewLikeTarget(TargetPhoto, id)) }

// AlbumTarget targets an album. It panics on uuid.Nil, like uuid.Must.
func AlbumTarget(id uuid.UUID) LikeTarget { return mustTarget(NewLikeTarget(TargetAlbum, id)) }

func mustTarget(t LikeTarget, err error) LikeTarget {
	if err != nil {
		panic(err)
	}
	return t
}

func (t LikeTarget) Type() TargetType { return t.kind }
func (t LikeTarget) ID() uuid.UUID    { return t.id }

// PhotoID returns the photo id when the target is a photo.
func (t LikeTarget) PhotoID() (uuid.UUID, bool) {
	if t.kind != TargetPhoto {
		return uuid.Nil, false
	}
	return t.id, true
}

// AlbumID returns the album id when the target is an album.
func (t LikeTarget) AlbumID() (uuid.UUID, bool) {
	if t.kind != TargetAlbum {
		return uuid.Nil, false
	}
	return t.id, true
}

// Like is one user's engagement with one target.
type Like struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Target    LikeTarget
	CreatedAt time.Time
}

// PhotoSummary is the denormalized photo side of a liked item.
// OwnerID and Visibility feed the view rule and are not shown to clients.
type PhotoSummary struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Visibility Visibility
	FileURL    string
	Title      string
}

// AlbumSummary is the denormalized album side of a liked item.
type AlbumSummary struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Visibility Visibility
	Title      string
}

// LikedItem pairs a like with exactly one of Photo or Album, matching Like.Target.
type LikedItem struct {
	Like  Like
	Photo *PhotoSummary
	Album *AlbumSummary
}
