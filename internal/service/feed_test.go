package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
)

func walkFeed(t *testing.T, f *fixture, sort model.FeedSort, limit int) []model.FeedItem {
	t.Helper()
	var out []model.FeedItem
	req := pager.Request{Limit: limit}
	for guard := 0; ; guard++ {
		require.Less(t, guard, 100)
		page, err := f.feedSvc.Public(context.Background(), sort, req)
		require.NoError(t, err)
		out = append(out, page.Items...)
		if page.NextCursor == nil {
			return out
		}
		req.Cursor = *page.NextCursor
	}
}

func TestFeed_OnlyPublicNewestFirst(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	owner := newUUID()
	older := f.upload(t, owner, model.VisibilityPublic)
	f.upload(t, owner, model.VisibilityPrivate)
	newer := f.upload(t, newUUID(), model.VisibilityPublic)

	items := walkFeed(t, f, model.FeedSortLatest, 1)
	require.Len(t, items, 2)
	require.Equal(t, newer.ID, items[0].ID)
	require.Equal(t, older.ID, items[1].ID)
}

func TestFeed_LikeSortTiesBreakByID(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := newUUID()
	var photos []model.Photo
	for i := 0; i < 6; i++ {
		photos = append(photos, f.upload(t, owner, model.VisibilityPublic))
	}
	// photos[0] gets two likes, photos[1] one, the rest tie at zero
	fans := []uuid.UUID{newUUID(), newUUID()}
	for _, fan := range fans {
		_, err := f.likeSvc.AddLike(ctx, fan, model.PhotoTarget(photos[0].ID))
		require.NoError(t, err)
	}
	_, err := f.likeSvc.AddLike(ctx, fans[0], model.PhotoTarget(photos[1].ID))
	require.NoError(t, err)

	items := walkFeed(t, f, model.FeedSortLikes, 2)
	require.Len(t, items, 6)
	require.Equal(t, photos[0].ID, items[0].ID)
	require.Equal(t, int64(2), items[0].LikeCount)
	require.Equal(t, photos[1].ID, items[1].ID)

	seen := map[uuid.UUID]bool{}
	for i, it := range items {
		require.False(t, seen[it.ID], "item repeated")
		seen[it.ID] = true
		if i > 0 && items[i-1].LikeCount == it.LikeCount {
			require.Negative(t, bytes.Compare(items[i-1].ID[:], it.ID[:]), "ties ordered by id")
		}
	}
}

func TestFeed_UnknownSort(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	_, err := f.feedSvc.Public(context.Background(), "random", pager.Request{})
	require.ErrorIs(t, err, errs.ErrValidation)
}
