package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/access"
	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
	"github.com/fourtogenic/photoshare/internal/repository"
)

// AlbumService covers album creation, viewing and deletion.
type AlbumService interface {
	Create(ctx context.Context, owner uuid.UUID, in model.NewAlbum) (model.Album, error)
	ListMine(ctx context.Context, owner uuid.UUID, vis *model.Visibility, req pager.Request) (pager.Page[model.Album], error)
	Get(ctx context.Context, requester, id uuid.UUID) (model.Album, error)
	Delete(ctx context.Context, requester, id uuid.UUID) error
	// GetWithPhotos returns the album and one page of the photos the requester may see in it.
	GetWithPhotos(ctx context.Context, requester, id uuid.UUID, sort model.AlbumSort, req pager.Request) (model.Album, pager.Page[model.AlbumPhoto], error)
}

type AlbumServiceImpl struct {
	albums  repository.AlbumRepository
	members MembershipService
}

// NewAlbumService constructs AlbumService.
func NewAlbumService(albums repository.AlbumRepository, members MembershipService) *AlbumServiceImpl {
	return &AlbumServiceImpl{albums: albums, members: members}
}

// Create inserts an album; visibility defaults to PRIVATE.
func (s *AlbumServiceImpl) Create(ctx context.Context, owner uuid.UUID, in model.NewAlbum) (model.Album, error) {
	if strings.TrimSpace(in.Title) == "" {
		return model.Album{}, fmt.Errorf("%w: empty title", errs.ErrValidation)
	}
	vis := in.Visibility
	if vis == "" {
		vis = model.VisibilityPrivate
	}
	a := &model.Album{OwnerID: owner, Title: in.Title, Description: in.Description, Visibility: vis}
	if err := s.albums.Create(ctx, a); err != nil {
		return model.Album{}, err
	}
	return *a, nil
}

// ListMine pages through the owner's albums, newest first.
func (s *AlbumServiceImpl) ListMine(ctx context.Context, owner uuid.UUID, vis *model.Visibility, req pager.Request) (pager.Page[model.Album], error) {
	return pager.Paginate(ctx, req, albumKey, func(ctx context.Context, q pager.Query) ([]model.Album, error) {
		return s.albums.ListByOwner(ctx, owner, vis, q)
	})
}

// Get loads an album and applies the view rule.
func (s *AlbumServiceImpl) Get(ctx context.Context, requester, id uuid.UUID) (model.Album, error) {
	a, err := s.albums.GetByID(ctx, id)
	if err != nil {
		return model.Album{}, fmt.Errorf("album: %w", err)
	}
	if err := access.CheckView(requester, a.OwnerID, a.Visibility); err != nil {
		return model.Album{}, err
	}
	return *a, nil
}

// Delete removes the album after its memberships; member photos stay.
func (s *AlbumServiceImpl) Delete(ctx context.Context, requester, id uuid.UUID) error {
	a, err := s.albums.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("album: %w", err)
	}
	if err := access.CheckMutate(requester, a.OwnerID); err != nil {
		return err
	}
	return s.albums.Delete(ctx, id)
}

// GetWithPhotos resolves the album, checks it is visible, then lists its photos.
func (s *AlbumServiceImpl) GetWithPhotos(ctx context.Context, requester, id uuid.UUID, sort model.AlbumSort, req pager.Request) (model.Album, pager.Page[model.AlbumPhoto], error) {
	a, err := s.Get(ctx, requester, id)
	if err != nil {
		return model.Album{}, pager.Page[model.AlbumPhoto]{}, err
	}
	page, err := s.members.ListPhotosInAlbum(ctx, requester, a, sort, req)
	if err != nil {
		return model.Album{}, pager.Page[model.AlbumPhoto]{}, err
	}
	return a, page, nil
}

func albumKey(a model.Album) pager.Key { return pager.Key{ID: a.ID, At: a.CreatedAt} }
