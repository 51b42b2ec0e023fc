package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/fourtogenic/photoshare/internal/access"
	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
	"github.com/fourtogenic/photoshare/internal/repository"
	"github.com/fourtogenic/photoshare/internal/storage"
)

// PhotoService covers photo upload, viewing and owner-side management.
type PhotoService interface {
	Upload(ctx context.Context, owner uuid.UUID, meta model.NewPhoto, file model.Upload) (model.Photo, error)
	ListMine(ctx context.Context, owner uuid.UUID, vis *model.Visibility, req pager.Request) (pager.Page[model.Photo], error)
	// Get returns a photo the requester may view; requester is uuid.Nil for anonymous callers.
	Get(ctx context.Context, requester, id uuid.UUID) (model.Photo, error)
	Delete(ctx context.Context, requester, id uuid.UUID) error
	ChangeVisibility(ctx context.Context, requester, id uuid.UUID, vis model.Visibility) (model.Photo, error)
	AddToAlbum(ctx context.Context, requester, photoID, albumID uuid.UUID) (model.Membership, error)
	RemoveFromAlbum(ctx context.Context, requester, photoID, albumID uuid.UUID) error
}

type PhotoServiceImpl struct {
	photos  repository.PhotoRepository
	members MembershipService
	blobs   storage.ObjectStore
	log     *zap.Logger
	now     func() time.Time
}

// NewPhotoService constructs PhotoService.
func NewPhotoService(photos repository.PhotoRepository, members MembershipService, blobs storage.ObjectStore, log *zap.Logger) *PhotoServiceImpl {
	return &PhotoServiceImpl{photos: photos, members: members, blobs: blobs, log: log, now: time.Now}
}

// Upload stores the file, then the metadata. The blob is removed again if the metadata insert fails.
func (s *PhotoServiceImpl) Upload(ctx context.Context, owner uuid.UUID, meta model.NewPhoto, file model.Upload) (model.Photo, error) {
	if len(file.Data) == 0 {
		return model.Photo{}, fmt.Errorf("%w: empty file", errs.ErrValidation)
	}
	vis := meta.Visibility
	if vis == "" {
		vis = model.VisibilityPrivate
	}
	key := storage.Key("photos", owner, file.Filename, s.now())
	url, err := s.blobs.Put(ctx, key, file.Data, file.ContentType)
	if err != nil {
		return model.Photo{}, fmt.Errorf("upload photo: %w", err)
	}
	p := &model.Photo{
		OwnerID:     owner,
		FileURL:     url,
		FileKey:     key,
		Title:       meta.Title,
		Description: meta.Description,
		Visibility:  vis,
	}
	if err := s.photos.Create(ctx, p); err != nil {
		s.dropBlob(ctx, key)
		return model.Photo{}, err
	}
	return *p, nil
}

// ListMine pages through the owner's photos, newest first.
func (s *PhotoServiceImpl) ListMine(ctx context.Context, owner uuid.UUID, vis *model.Visibility, req pager.Request) (pager.Page[model.Photo], error) {
	return pager.Paginate(ctx, req, photoKey, func(ctx context.Context, q pager.Query) ([]model.Photo, error) {
		return s.photos.ListByOwner(ctx, owner, vis, q)
	})
}

// Get loads a photo and applies the view rule.
func (s *PhotoServiceImpl) Get(ctx context.Context, requester, id uuid.UUID) (model.Photo, error) {
	p, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return model.Photo{}, fmt.Errorf("photo: %w", err)
	}
	if err := access.CheckView(requester, p.OwnerID, p.Visibility); err != nil {
		return model.Photo{}, err
	}
	return *p, nil
}

// Delete removes the photo record with its memberships and likes, then tries to remove the blob.
func (s *PhotoServiceImpl) Delete(ctx context.Context, requester, id uuid.UUID) error {
	p, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("photo: %w", err)
	}
	if err := access.CheckMutate(requester, p.OwnerID); err != nil {
		return err
	}
	if err := s.photos.Delete(ctx, id); err != nil {
		return err
	}
	if p.FileKey != "" {
		s.dropBlob(ctx, p.FileKey)
	}
	return nil
}

func (s *PhotoServiceImpl) dropBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn("blob delete failed", zap.String("key", key), zap.Error(err))
	}
}

// ChangeVisibility lets the owner flip a photo between PUBLIC and PRIVATE.
func (s *PhotoServiceImpl) ChangeVisibility(ctx context.Context, requester, id uuid.UUID, vis model.Visibility) (model.Photo, error) {
	if _, err := model.ParseVisibility(string(vis)); err != nil {
		return model.Photo{}, err
	}
	p, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return model.Photo{}, fmt.Errorf("photo: %w", err)
	}
	if err := access.CheckMutate(requester, p.OwnerID); err != nil {
		return model.Photo{}, err
	}
	updated, err := s.photos.SetVisibility(ctx, id, vis)
	if err != nil {
		return model.Photo{}, err
	}
	return *updated, nil
}

// AddToAlbum delegates to MembershipService.
func (s *PhotoServiceImpl) AddToAlbum(ctx context.Context, requester, photoID, albumID uuid.UUID) (model.Membership, error) {
	return s.members.Add(ctx, requester, photoID, albumID)
}

// RemoveFromAlbum delegates to MembershipService.
func (s *PhotoServiceImpl) RemoveFromAlbum(ctx context.Context, requester, photoID, albumID uuid.UUID) error {
	return s.members.Remove(ctx, requester, photoID, albumID)
}

func photoKey(p model.Photo) pager.Key { return pager.Key{ID: p.ID, At: p.CreatedAt} }
