package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/access"
	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
	"github.com/fourtogenic/photoshare/internal/repository"
)

// MembershipService manages photo-in-album edges.
type MembershipService interface {
	// Add puts a photo into an album. The actor must own both.
	Add(ctx context.Context, actor, photoID, albumID uuid.UUID) (model.Membership, error)
	// Remove takes a photo out of an album. The actor must own both.
	Remove(ctx context.Context, actor, photoID, albumID uuid.UUID) error
	// ListPhotosInAlbum lists an already loaded album's photos; non-owners only see PUBLIC photos.
	ListPhotosInAlbum(ctx context.Context, requester uuid.UUID, album model.Album, sort model.AlbumSort, req pager.Request) (pager.Page[model.AlbumPhoto], error)
}

type MembershipServiceImpl struct {
	photos  repository.PhotoRepository
	albums  repository.AlbumRepository
	members repository.MembershipRepository
}

// NewMembershipService constructs MembershipService.
func NewMembershipService(photos repository.PhotoRepository, albums repository.AlbumRepository, members repository.MembershipRepository) *MembershipServiceImpl {
	return &MembershipServiceImpl{photos: photos, albums: albums, members: members}
}

// ownBoth loads the pair and checks the actor owns both sides.
func (s *MembershipServiceImpl) ownBoth(ctx context.Context, actor, photoID, albumID uuid.UUID) error {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return fmt.Errorf("photo: %w", err)
	}
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return fmt.Errorf("album: %w", err)
	}
	if err := access.CheckMutate(actor, photo.OwnerID); err != nil {
		return err
	}
	return access.CheckMutate(actor, album.OwnerID)
}

// Add creates the edge. A second add of the same pair fails with errs.ErrConflict.
func (s *MembershipServiceImpl) Add(ctx context.Context, actor, photoID, albumID uuid.UUID) (model.Membership, error) {
	if err := s.ownBoth(ctx, actor, photoID, albumID); err != nil {
		return model.Membership{}, err
	}
	m := &model.Membership{PhotoID: photoID, AlbumID: albumID}
	if err := s.members.Create(ctx, m); err != nil {
		return model.Membership{}, err
	}
	return *m, nil
}

// Remove deletes the edge, or fails with errs.ErrNotFound when there is none.
func (s *MembershipServiceImpl) Remove(ctx context.Context, actor, photoID, albumID uuid.UUID) error {
	if err := s.ownBoth(ctx, actor, photoID, albumID); err != nil {
		return err
	}
	m, err := s.members.Find(ctx, photoID, albumID)
	if err != nil {
		return fmt.Errorf("membership: %w", err)
	}
	return s.members.Delete(ctx, m.ID)
}

// ListPhotosInAlbum pages through the album by membership time.
func (s *MembershipServiceImpl) ListPhotosInAlbum(ctx context.Context, requester uuid.UUID, album model.Album, sort model.AlbumSort, req pager.Request) (pager.Page[model.AlbumPhoto], error) {
	if err := access.CheckView(requester, album.OwnerID, album.Visibility); err != nil {
		return pager.Page[model.AlbumPhoto]{}, err
	}
	dir, err := albumDirection(sort)
	if err != nil {
		return pager.Page[model.AlbumPhoto]{}, err
	}
	publicOnly := !access.IsOwner(requester, album.OwnerID)
	return pager.Paginate(ctx, req, albumPhotoKey, func(ctx context.Context, q pager.Query) ([]model.AlbumPhoto, error) {
		return s.members.ListPhotos(ctx, album.ID, publicOnly, dir, q)
	})
}

func albumDirection(sort model.AlbumSort) (pager.Direction, error) {
	switch sort {
	case model.AlbumSortRecent, "":
		return pager.Desc, nil
	case model.AlbumSortOldest:
		return pager.Asc, nil
	default:
		return 0, fmt.Errorf("%w: unknown album sort %q", errs.ErrValidation, sort)
	}
}

func albumPhotoKey(ap model.AlbumPhoto) pager.Key {
	return pager.Key{ID: ap.MembershipID, At: ap.AddedAt}
}
