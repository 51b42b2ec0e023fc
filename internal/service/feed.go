package service

import (
	"context"

	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
	"github.com/fourtogenic/photoshare/internal/repository"
)

// FeedService serves the public photo feed.
type FeedService interface {
	// Public lists PUBLIC photos by recency or like count, ties broken by id.
	Public(ctx context.Context, sort model.FeedSort, req pager.Request) (pager.Page[model.FeedItem], error)
}

type FeedServiceImpl struct {
	photos repository.PhotoRepository
}

// NewFeedService constructs FeedService.
func NewFeedService(photos repository.PhotoRepository) *FeedServiceImpl {
	return &FeedServiceImpl{photos: photos}
}

// Public pages through the feed. Ownership plays no part here.
func (s *FeedServiceImpl) Public(ctx context.Context, sort model.FeedSort, req pager.Request) (pager.Page[model.FeedItem], error) {
	return pager.Paginate(ctx, req, feedKey, func(ctx context.Context, q pager.Query) ([]model.FeedItem, error) {
		return s.photos.ListPublic(ctx, sort, q)
	})
}

// feedKey carries both sort keys so a cursor is valid under either sort.
func feedKey(it model.FeedItem) pager.Key {
	return pager.Key{ID: it.ID, At: it.CreatedAt, Count: it.LikeCount}
}
