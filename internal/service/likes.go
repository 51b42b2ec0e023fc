package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/access"
	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
	"github.com/fourtogenic/photoshare/internal/repository"
)

// LikeService records likes on photos and albums.
type LikeService interface {
	// AddLike likes a visible target. Repeating it returns the existing like.
	AddLike(ctx context.Context, userID uuid.UUID, target model.LikeTarget) (model.Like, error)
	// RemoveLike drops the user's likes on the target; it succeeds when there are none.
	RemoveLike(ctx context.Context, userID uuid.UUID, target model.LikeTarget) error
	// ListMyLikes pages through the user's likes, newest first.
	ListMyLikes(ctx context.Context, userID uuid.UUID, typ *model.TargetType, req pager.Request) (pager.Page[model.LikedItem], error)
}

type LikeServiceImpl struct {
	photos repository.PhotoRepository
	albums repository.AlbumRepository
	likes  repository.LikeRepository
}

// NewLikeService constructs LikeService.
func NewLikeService(photos repository.PhotoRepository, albums repository.AlbumRepository, likes repository.LikeRepository) *LikeServiceImpl {
	return &LikeServiceImpl{photos: photos, albums: albums, likes: likes}
}

// checkTarget resolves the target and applies the view rule to it.
func (s *LikeServiceImpl) checkTarget(ctx context.Context, userID uuid.UUID, target model.LikeTarget) error {
	if id, ok := target.PhotoID(); ok {
		p, err := s.photos.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("photo: %w", err)
		}
		return access.CheckView(userID, p.OwnerID, p.Visibility)
	}
	if id, ok := target.AlbumID(); ok {
		a, err := s.albums.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("album: %w", err)
		}
		return access.CheckView(userID, a.OwnerID, a.Visibility)
	}
	return fmt.Errorf("%w: empty like target", errs.ErrValidation)
}

// AddLike inserts the like and relies on the store's uniqueness to detect a
// duplicate, in which case the stored row is returned.
func (s *LikeServiceImpl) AddLike(ctx context.Context, userID uuid.UUID, target model.LikeTarget) (model.Like, error) {
	if err := s.checkTarget(ctx, userID, target); err != nil {
		return model.Like{}, err
	}
	l := &model.Like{UserID: userID, Target: target}
	err := s.likes.Create(ctx, l)
	if errors.Is(err, errs.ErrConflict) {
		existing, ferr := s.likes.Find(ctx, userID, target)
		if ferr != nil {
			return model.Like{}, ferr
		}
		return *existing, nil
	}
	if err != nil {
		return model.Like{}, err
	}
	return *l, nil
}

// RemoveLike deletes every matching like.
func (s *LikeServiceImpl) RemoveLike(ctx context.Context, userID uuid.UUID, target model.LikeTarget) error {
	_, err := s.likes.DeleteByTarget(ctx, userID, target)
	return err
}

// ListMyLikes pages through the user's likes. Targets the user can no longer
// view keep their id but lose their details.
func (s *LikeServiceImpl) ListMyLikes(ctx context.Context, userID uuid.UUID, typ *model.TargetType, req pager.Request) (pager.Page[model.LikedItem], error) {
	page, err := pager.Paginate(ctx, req, likedItemKey, func(ctx context.Context, q pager.Query) ([]model.LikedItem, error) {
		return s.likes.ListByUser(ctx, userID, typ, q)
	})
	if err != nil {
		return page, err
	}
	for i := range page.Items {
		hideUnviewable(userID, &page.Items[i])
	}
	return page, nil
}

func hideUnviewable(userID uuid.UUID, it *model.LikedItem) {
	if p := it.Photo; p != nil && !access.CanView(userID, p.OwnerID, p.Visibility) {
		it.Photo = &model.PhotoSummary{ID: p.ID, OwnerID: p.OwnerID, Visibility: p.Visibility}
	}
	if a := it.Album; a != nil && !access.CanView(userID, a.OwnerID, a.Visibility) {
		it.Album = &model.AlbumSummary{ID: a.ID, OwnerID: a.OwnerID, Visibility: a.Visibility}
	}
}

func likedItemKey(it model.LikedItem) pager.Key {
	return pager.Key{ID: it.Like.ID, At: it.Like.CreatedAt}
}
