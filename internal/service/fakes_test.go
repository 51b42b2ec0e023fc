package service

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/limiter"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
	"github.com/fourtogenic/photoshare/internal/repository"
	"github.com/fourtogenic/photoshare/internal/storage"
)

// memStore is one in-memory database shared by the fake repositories, so that
// cascades and cross-entity counts behave like the Postgres implementation.
type memStore struct {
	mu      sync.Mutex
	clock   time.Time
	users   map[uuid.UUID]*model.User
	photos  map[uuid.UUID]*model.Photo
	albums  map[uuid.UUID]*model.Album
	members map[uuid.UUID]*model.Membership
	likes   map[uuid.UUID]*model.Like
}

func newMemStore() *memStore {
	return &memStore{
		clock:   time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC),
		users:   map[uuid.UUID]*model.User{},
		photos:  map[uuid.UUID]*model.Photo{},
		albums:  map[uuid.UUID]*model.Album{},
		members: map[uuid.UUID]*model.Membership{},
		likes:   map[uuid.UUID]*model.Like{},
	}
}

// tick returns a strictly increasing timestamp.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func newUUID() uuid.UUID { return uuid.Must(uuid.NewV4()) }

// keysetPage orders items by (key dir, id asc) and returns up to q.Limit of them after q.After.
func keysetPage[T any](items []T, keyOf func(T) pager.Key, byCount bool, dir pager.Direction, q pager.Query) []T {
	cmp := func(a, b pager.Key) int {
		var c int
		if byCount {
			switch {
			case a.Count < b.Count:
				c = -1
			case a.Count > b.Count:
				c = 1
			}
		} else {
			c = a.At.Compare(b.At)
		}
		if dir == pager.Desc {
			c = -c
		}
		if c == 0 {
			c = bytes.Compare(a.ID[:], b.ID[:])
		}
		return c
	}
	sort.Slice(items, func(i, j int) bool { return cmp(keyOf(items[i]), keyOf(items[j])) < 0 })
	out := make([]T, 0, q.Limit)
	for _, it := range items {
		if q.After != nil && cmp(keyOf(it), *q.After) <= 0 {
			continue
		}
		out = append(out, it)
		if len(out) == q.Limit {
			break
		}
	}
	return out
}

/************ users ************/

type fakeUsers struct {
	*memStore
	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, x := range f.users {
		if x.Email == u.Email || x.Username == u.Username {
			return errs.ErrConflict
		}
	}
	if u.ID == uuid.Nil {
		u.ID = newUUID()
	}
	u.CreatedAt = f.tick()
	u.UpdatedAt = u.CreatedAt
	cpy := *u
	f.users[u.ID] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uuid.UUID, upd model.ProfileUpdate) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = *upd.AvatarURL
	}
	u.UpdatedAt = f.tick()
	c := *u
	return &c, nil
}

/************ stats ************/

type fakeStats struct {
	*memStore
	calls int
}

var _ repository.StatsRepository = (*fakeStats)(nil)

func (f *fakeStats) UserStats(_ context.Context, userID uuid.UUID) (model.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var s model.Stats
	for _, p := range f.photos {
		if p.OwnerID == userID {
			s.PhotoCount++
		}
	}
	for _, l := range f.likes {
		if id, ok := l.Target.PhotoID(); ok {
			if p, ok := f.photos[id]; ok && p.OwnerID == userID {
				s.ReceivedLikeCount++
			}
		}
	}
	return s, nil
}

/************ photos ************/

type fakePhotos struct {
	*memStore
	createErr error
}

var _ repository.PhotoRepository = (*fakePhotos)(nil)

func (f *fakePhotos) Create(_ context.Context, p *model.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if p.ID == uuid.Nil {
		p.ID = newUUID()
	}
	p.CreatedAt = f.tick()
	c := *p
	f.photos[p.ID] = &c
	return nil
}

func (f *fakePhotos) GetByID(_ context.Context, id uuid.UUID) (*model.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.photos[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePhotos) ListByOwner(_ context.Context, ownerID uuid.UUID, vis *model.Visibility, q pager.Query) ([]model.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.Photo
	for _, p := range f.photos {
		if p.OwnerID == ownerID && (vis == nil || p.Visibility == *vis) {
			all = append(all, *p)
		}
	}
	return keysetPage(all, photoKey, false, pager.Desc, q), nil
}

func (f *fakePhotos) ListPublic(_ context.Context, s model.FeedSort, q pager.Query) ([]model.FeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.FeedItem
	for _, p := range f.photos {
		if p.Visibility != model.VisibilityPublic {
			continue
		}
		it := model.FeedItem{ID: p.ID, OwnerID: p.OwnerID, FileURL: p.FileURL, Title: p.Title, CreatedAt: p.CreatedAt}
		for _, l := range f.likes {
			if id, ok := l.Target.PhotoID(); ok && id == p.ID {
				it.LikeCount++
			}
		}
		all = append(all, it)
	}
	switch s {
	case model.FeedSortLikes:
		return keysetPage(all, feedKey, true, pager.Desc, q), nil
	case model.FeedSortLatest, "":
		return keysetPage(all, feedKey, false, pager.Desc, q), nil
	default:
		return nil, errs.ErrValidation
	}
}

func (f *fakePhotos) SetVisibility(_ context.Context, id uuid.UUID, vis model.Visibility) (*model.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.photos[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	p.Visibility = vis
	c := *p
	return &c, nil
}

func (f *fakePhotos) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.photos[id]; !ok {
		return errs.ErrNotFound
	}
	for mid, m := range f.members {
		if m.PhotoID == id {
			delete(f.members, mid)
		}
	}
	for lid, l := range f.likes {
		if pid, ok := l.Target.PhotoID(); ok && pid == id {
			delete(f.likes, lid)
		}
	}
	delete(f.photos, id)
	return nil
}

/************ albums ************/

type fakeAlbums struct{ *memStore }

var _ repository.AlbumRepository = (*fakeAlbums)(nil)

func (f *fakeAlbums) Create(_ context.Context, a *model.Album) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = newUUID()
	}
	a.CreatedAt = f.tick()
	c := *a
	f.albums[a.ID] = &c
	return nil
}

func (f *fakeAlbums) GetByID(_ context.Context, id uuid.UUID) (*model.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.albums[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeAlbums) ListByOwner(_ context.Context, ownerID uuid.UUID, vis *model.Visibility, q pager.Query) ([]model.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.Album
	for _, a := range f.albums {
		if a.OwnerID == ownerID && (vis == nil || a.Visibility == *vis) {
			all = append(all, *a)
		}
	}
	return keysetPage(all, albumKey, false, pager.Desc, q), nil
}

func (f *fakeAlbums) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.albums[id]; !ok {
		return errs.ErrNotFound
	}
	for mid, m := range f.members {
		if m.AlbumID == id {
			delete(f.members, mid)
		}
	}
	for lid, l := range f.likes {
		if aid, ok := l.Target.AlbumID(); ok && aid == id {
			delete(f.likes, lid)
		}
	}
	delete(f.albums, id)
	return nil
}

/************ memberships ************/

type fakeMembers struct{ *memStore }

var _ repository.MembershipRepository = (*fakeMembers)(nil)

func (f *fakeMembers) Create(_ context.Context, m *model.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.members {
		if x.PhotoID == m.PhotoID && x.AlbumID == m.AlbumID {
			return errs.ErrConflict
		}
	}
	if m.ID == uuid.Nil {
		m.ID = newUUID()
	}
	m.AddedAt = f.tick()
	c := *m
	f.members[m.ID] = &c
	return nil
}

func (f *fakeMembers) Find(_ context.Context, photoID, albumID uuid.UUID) (*model.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.members {
		if x.PhotoID == photoID && x.AlbumID == albumID {
			c := *x
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeMembers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.members[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.members, id)
	return nil
}

func (f *fakeMembers) ListPhotos(_ context.Context, albumID uuid.UUID, publicOnly bool, dir pager.Direction, q pager.Query) ([]model.AlbumPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.AlbumPhoto
	for _, m := range f.members {
		if m.AlbumID != albumID {
			continue
		}
		p := f.photos[m.PhotoID]
		if publicOnly && p.Visibility != model.VisibilityPublic {
			continue
		}
		all = append(all, model.AlbumPhoto{MembershipID: m.ID, AddedAt: m.AddedAt, Photo: *p})
	}
	return keysetPage(all, albumPhotoKey, false, dir, q), nil
}

func (f *fakeMembers) countForAlbum(albumID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.members {
		if m.AlbumID == albumID {
			n++
		}
	}
	return n
}

/************ likes ************/

type fakeLikes struct {
	*memStore
	// raceOnce simulates a concurrent insert winning the race: the first Create
	// stores the row and still reports a conflict.
	raceOnce bool
}

var _ repository.LikeRepository = (*fakeLikes)(nil)

func (f *fakeLikes) Create(_ context.Context, l *model.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.likes {
		if x.UserID == l.UserID && x.Target == l.Target {
			return errs.ErrConflict
		}
	}
	if l.ID == uuid.Nil {
		l.ID = newUUID()
	}
	l.CreatedAt = f.tick()
	c := *l
	f.likes[l.ID] = &c
	if f.raceOnce {
		f.raceOnce = false
		return errs.ErrConflict
	}
	return nil
}

func (f *fakeLikes) Find(_ context.Context, userID uuid.UUID, target model.LikeTarget) (*model.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.likes {
		if x.UserID == userID && x.Target == target {
			c := *x
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeLikes) DeleteByTarget(_ context.Context, userID uuid.UUID, target model.LikeTarget) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, x := range f.likes {
		if x.UserID == userID && x.Target == target {
			delete(f.likes, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeLikes) ListByUser(_ context.Context, userID uuid.UUID, typ *model.TargetType, q pager.Query) ([]model.LikedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.LikedItem
	for _, l := range f.likes {
		if l.UserID != userID || (typ != nil && l.Target.Type() != *typ) {
			continue
		}
		it := model.LikedItem{Like: *l}
		if id, ok := l.Target.PhotoID(); ok {
			p := f.photos[id]
			it.Photo = &model.PhotoSummary{ID: p.ID, OwnerID: p.OwnerID, Visibility: p.Visibility, FileURL: p.FileURL, Title: p.Title}
		} else {
			id, _ := l.Target.AlbumID()
			a := f.albums[id]
			it.Album = &model.AlbumSummary{ID: a.ID, OwnerID: a.OwnerID, Visibility: a.Visibility, Title: a.Title}
		}
		all = append(all, it)
	}
	return keysetPage(all, likedItemKey, false, pager.Desc, q), nil
}

func (f *fakeLikes) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.likes)
}

/************ blobs ************/

type fakeBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr error
	deletes   []string
}

var _ storage.ObjectStore = (*fakeBlobs)(nil)

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{objects: map[string][]byte{}} }

func (b *fakeBlobs) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return "", b.putErr
	}
	b.objects[key] = data
	return "http://blobs.test/" + key, nil
}

func (b *fakeBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, key)
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.objects, key)
	return nil
}

/************ limiter ************/

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return nil
}

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

/************ wiring ************/

type fixture struct {
	store   *memStore
	users   *fakeUsers
	stats   *fakeStats
	photos  *fakePhotos
	albums  *fakeAlbums
	members *fakeMembers
	likes   *fakeLikes
	blobs   *fakeBlobs

	membership *MembershipServiceImpl
	likeSvc    *LikeServiceImpl
	photoSvc   *PhotoServiceImpl
	albumSvc   *AlbumServiceImpl
	feedSvc    *FeedServiceImpl
}

var errBoom = errors.New("boom")

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newMemStore()
	f := &fixture{
		store:   st,
		users:   &fakeUsers{memStore: st},
		stats:   &fakeStats{memStore: st},
		photos:  &fakePhotos{memStore: st},
		albums:  &fakeAlbums{memStore: st},
		members: &fakeMembers{memStore: st},
		likes:   &fakeLikes{memStore: st},
		blobs:   newFakeBlobs(),
	}
	f.membership = NewMembershipService(f.photos, f.albums, f.members)
	f.likeSvc = NewLikeService(f.photos, f.albums, f.likes)
	f.photoSvc = NewPhotoService(f.photos, f.membership, f.blobs, zaptest.NewLogger(t))
	f.albumSvc = NewAlbumService(f.albums, f.membership)
	f.feedSvc = NewFeedService(f.photos)
	return f
}

func (f *fixture) upload(t *testing.T, owner uuid.UUID, vis model.Visibility) model.Photo {
	t.Helper()
	p, err := f.photoSvc.Upload(context.Background(), owner,
		model.NewPhoto{Title: "t", Visibility: vis},
		model.Upload{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")})
	require.NoError(t, err)
	return p
}

func (f *fixture) album(t *testing.T, owner uuid.UUID, vis model.Visibility) model.Album {
	t.Helper()
	a, err := f.albumSvc.Create(context.Background(), owner, model.NewAlbum{Title: "album", Visibility: vis})
	require.NoError(t, err)
	return a
}
