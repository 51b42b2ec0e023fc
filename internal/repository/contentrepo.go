package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
)

// PhotoRepository stores photo metadata.
type PhotoRepository interface {
	// Create inserts a photo; ID and CreatedAt are filled in.
	Create(ctx context.Context, p *model.Photo) error
	// GetByID loads a photo by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Photo, error)
	// ListByOwner lists the owner's photos by created_at DESC, id ASC; vis==nil means any visibility.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, vis *model.Visibility, q pager.Query) ([]model.Photo, error)
	// ListPublic lists PUBLIC photos with like counts in feed order.
	ListPublic(ctx context.Context, sort model.FeedSort, q pager.Query) ([]model.FeedItem, error)
	// SetVisibility changes visibility and returns the updated photo.
	SetVisibility(ctx context.Context, id uuid.UUID, vis model.Visibility) (*model.Photo, error)
	// Delete removes the photo together with its memberships and likes.
	Delete(ctx context.Context, id uuid.UUID) error
}

// AlbumRepository stores albums.
type AlbumRepository interface {
	// Create inserts an album; ID and CreatedAt are filled in.
	Create(ctx context.Context, a *model.Album) error
	// GetByID loads an album by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Album, error)
	// ListByOwner lists the owner's albums by created_at DESC, id ASC; vis==nil means any visibility.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, vis *model.Visibility, q pager.Query) ([]model.Album, error)
	// Delete removes the album's memberships and likes, then the album.
	Delete(ctx context.Context, id uuid.UUID) error
}

// MembershipRepository stores photo-in-album edges.
type MembershipRepository interface {
	// Create inserts an edge. A duplicate (photo, album) pair yields errs.ErrConflict.
	Create(ctx context.Context, m *model.Membership) error
	// Find returns the edge for a pair.
	Find(ctx context.Context, photoID, albumID uuid.UUID) (*model.Membership, error)
	// Delete removes an edge by its ID.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListPhotos lists photos of an album by added_at in dir, then membership id ASC.
	// publicOnly restricts the listing to PUBLIC photos.
	ListPhotos(ctx context.Context, albumID uuid.UUID, publicOnly bool, dir pager.Direction, q pager.Query) ([]model.AlbumPhoto, error)
}

// LikeRepository stores likes.
type LikeRepository interface {
	// Create inserts a like. An existing (user, target) like yields errs.ErrConflict.
	Create(ctx context.Context, l *model.Like) error
	// Find returns the user's like on a target.
	Find(ctx context.Context, userID uuid.UUID, target model.LikeTarget) (*model.Like, error)
	// DeleteByTarget removes every like of the user on the target and reports how many rows went.
	DeleteByTarget(ctx context.Context, userID uuid.UUID, target model.LikeTarget) (int64, error)
	// ListByUser lists the user's likes by created_at DESC, id ASC; typ==nil means both kinds.
	ListByUser(ctx context.Context, userID uuid.UUID, typ *model.TargetType, q pager.Query) ([]model.LikedItem, error)
}
