package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
	"github.com/fourtogenic/photoshare/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

var errNotStubbed = errors.New("not stubbed")

// fakeAuth accepts "tok-<uuid>" bearer tokens.
type fakeAuth struct {
	registered []string
	loginIP    string
	loginErr   error
}

var _ service.AuthService = (*fakeAuth)(nil)

func tokenFor(id uuid.UUID) string { return "tok-" + id.String() }

func (f *fakeAuth) Register(_ context.Context, email, username, _, displayName string) (model.User, model.Tokens, error) {
	f.registered = append(f.registered, email)
	u := model.User{ID: uuid.Must(uuid.NewV4()), Email: email, Username: username, DisplayName: displayName}
	return u, model.Tokens{AccessToken: tokenFor(u.ID)}, nil
}

func (f *fakeAuth) Login(_ context.Context, email, _, ip string) (model.Tokens, model.User, error) {
	f.loginIP = ip
	if f.loginErr != nil {
		return model.Tokens{}, model.User{}, f.loginErr
	}
	u := model.User{ID: uuid.Must(uuid.NewV4()), Email: email}
	return model.Tokens{AccessToken: tokenFor(u.ID)}, u, nil
}

func (f *fakeAuth) Verify(token string) (uuid.UUID, error) {
	if len(token) < 4 || token[:4] != "tok-" {
		return uuid.Nil, errs.ErrUnauthorized
	}
	return uuid.FromString(token[4:])
}

type fakeProfiles struct {
	lastUpdate model.ProfileUpdate
	lastAvatar *model.Upload
}

var _ service.ProfileService = (*fakeProfiles)(nil)

func (f *fakeProfiles) Stats(context.Context, uuid.UUID) (model.Stats, error) {
	return model.Stats{PhotoCount: 2, ReceivedLikeCount: 5}, nil
}

func (f *fakeProfiles) GetMe(_ context.Context, id uuid.UUID) (model.Profile, error) {
	return model.Profile{User: model.User{ID: id, Email: "me@example.com", Username: "me"}, Stats: model.Stats{PhotoCount: 2, ReceivedLikeCount: 5}}, nil
}

func (f *fakeProfiles) GetPublic(_ context.Context, id uuid.UUID) (model.Profile, error) {
	return model.Profile{User: model.User{ID: id, Email: "hidden@example.com", Username: "other"}}, nil
}

func (f *fakeProfiles) UpdateMe(_ context.Context, id uuid.UUID, upd model.ProfileUpdate, avatar *model.Upload) (model.Profile, error) {
	f.lastUpdate, f.lastAvatar = upd, avatar
	u := model.User{ID: id, Username: "me"}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if avatar != nil {
		u.AvatarURL = "http://blobs/avatars/" + avatar.Filename
	}
	return model.Profile{User: u}, nil
}

type fakePhotos struct {
	photos   map[uuid.UUID]model.Photo
	uploaded []model.Upload
	listVis  *model.Visibility
	listReq  pager.Request
	removed  [][2]uuid.UUID
}

var _ service.PhotoService = (*fakePhotos)(nil)

func (f *fakePhotos) Upload(_ context.Context, owner uuid.UUID, meta model.NewPhoto, file model.Upload) (model.Photo, error) {
	f.uploaded = append(f.uploaded, file)
	vis := meta.Visibility
	if vis == "" {
		vis = model.VisibilityPrivate
	}
	p := model.Photo{ID: uuid.Must(uuid.NewV4()), OwnerID: owner, Title: meta.Title, Visibility: vis, FileURL: "http://blobs/" + file.Filename}
	f.photos[p.ID] = p
	return p, nil
}

func (f *fakePhotos) ListMine(_ context.Context, owner uuid.UUID, vis *model.Visibility, req pager.Request) (pager.Page[model.Photo], error) {
	f.listVis, f.listReq = vis, req
	var items []model.Photo
	for _, p := range f.photos {
		if p.OwnerID == owner {
			items = append(items, p)
		}
	}
	next := "next"
	return pager.Page[model.Photo]{Items: items, NextCursor: &next}, nil
}

func (f *fakePhotos) Get(_ context.Context, requester, id uuid.UUID) (model.Photo, error) {
	p, ok := f.photos[id]
	if !ok {
		return model.Photo{}, errs.ErrNotFound
	}
	if p.Visibility != model.VisibilityPublic && p.OwnerID != requester {
		return model.Photo{}, errs.ErrForbidden
	}
	return p, nil
}

func (f *fakePhotos) Delete(_ context.Context, requester, id uuid.UUID) error {
	p, ok := f.photos[id]
	if !ok {
		return errs.ErrNotFound
	}
	if p.OwnerID != requester {
		return errs.ErrForbidden
	}
	delete(f.photos, id)
	return nil
}

func (f *fakePhotos) ChangeVisibility(_ context.Context, requester, id uuid.UUID, vis model.Visibility) (model.Photo, error) {
	p, ok := f.photos[id]
	if !ok {
		return model.Photo{}, errs.ErrNotFound
	}
	if p.OwnerID != requester {
		return model.Photo{}, errs.ErrForbidden
	}
	p.Visibility = vis
	f.photos[id] = p
	return p, nil
}

func (f *fakePhotos) AddToAlbum(_ context.Context, _, photoID, albumID uuid.UUID) (model.Membership, error) {
	return model.Membership{ID: uuid.Must(uuid.NewV4()), PhotoID: photoID, AlbumID: albumID, AddedAt: time.Now()}, nil
}

func (f *fakePhotos) RemoveFromAlbum(_ context.Context, _, photoID, albumID uuid.UUID) error {
	for _, r := range f.removed {
		if r == [2]uuid.UUID{photoID, albumID} {
			return errs.ErrNotFound
		}
	}
	f.removed = append(f.removed, [2]uuid.UUID{photoID, albumID})
	return nil
}

type fakeAlbums struct {
	album    model.Album
	lastSort model.AlbumSort
}

var _ service.AlbumService = (*fakeAlbums)(nil)

func (f *fakeAlbums) Create(_ context.Context, owner uuid.UUID, in model.NewAlbum) (model.Album, error) {
	return model.Album{ID: uuid.Must(uuid.NewV4()), OwnerID: owner, Title: in.Title, Visibility: model.VisibilityPrivate}, nil
}

func (f *fakeAlbums) ListMine(context.Context, uuid.UUID, *model.Visibility, pager.Request) (pager.Page[model.Album], error) {
	return pager.Page[model.Album]{Items: []model.Album{f.album}}, nil
}

func (f *fakeAlbums) Get(_ context.Context, _, id uuid.UUID) (model.Album, error) {
	if id != f.album.ID {
		return model.Album{}, errs.ErrNotFound
	}
	return f.album, nil
}

func (f *fakeAlbums) Delete(context.Context, uuid.UUID, uuid.UUID) error { return errNotStubbed }

func (f *fakeAlbums) GetWithPhotos(_ context.Context, _, id uuid.UUID, sort model.AlbumSort, _ pager.Request) (model.Album, pager.Page[model.AlbumPhoto], error) {
	f.lastSort = sort
	if id != f.album.ID {
		return model.Album{}, pager.Page[model.AlbumPhoto]{}, errs.ErrNotFound
	}
	p := model.Photo{ID: uuid.Must(uuid.NewV4()), OwnerID: f.album.OwnerID, Visibility: model.VisibilityPublic}
	return f.album, pager.Page[model.AlbumPhoto]{Items: []model.AlbumPhoto{{MembershipID: uuid.Must(uuid.NewV4()), Photo: p}}}, nil
}

type fakeLikes struct {
	likes map[string]model.Like
	items []model.LikedItem
	typ   *model.TargetType
}

var _ service.LikeService = (*fakeLikes)(nil)

func likeKey(user uuid.UUID, t model.LikeTarget) string {
	return user.String() + string(t.Type()) + t.ID().String()
}

func (f *fakeLikes) AddLike(_ context.Context, user uuid.UUID, t model.LikeTarget) (model.Like, error) {
	if l, ok := f.likes[likeKey(user, t)]; ok {
		return l, nil
	}
	l := model.Like{ID: uuid.Must(uuid.NewV4()), UserID: user, Target: t, CreatedAt: time.Now()}
	f.likes[likeKey(user, t)] = l
	return l, nil
}

func (f *fakeLikes) RemoveLike(_ context.Context, user uuid.UUID, t model.LikeTarget) error {
	delete(f.likes, likeKey(user, t))
	return nil
}

func (f *fakeLikes) ListMyLikes(_ context.Context, _ uuid.UUID, typ *model.TargetType, _ pager.Request) (pager.Page[model.LikedItem], error) {
	f.typ = typ
	return pager.Page[model.LikedItem]{Items: f.items}, nil
}

type fakeFeed struct {
	lastSort model.FeedSort
}

var _ service.FeedService = (*fakeFeed)(nil)

func (f *fakeFeed) Public(_ context.Context, sort model.FeedSort, _ pager.Request) (pager.Page[model.FeedItem], error) {
	if sort != "" && sort != model.FeedSortLatest && sort != model.FeedSortLikes {
		return pager.Page[model.FeedItem]{}, errs.ErrValidation
	}
	f.lastSort = sort
	return pager.Page[model.FeedItem]{Items: []model.FeedItem{{ID: uuid.Must(uuid.NewV4()), LikeCount: 7}}}, nil
}

type harness struct {
	t        *testing.T
	srv      *Server
	auth     *fakeAuth
	profiles *fakeProfiles
	photos   *fakePhotos
	albums   *fakeAlbums
	likes    *fakeLikes
	feed     *fakeFeed
	reg      *prometheus.Registry
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		auth:     &fakeAuth{},
		profiles: &fakeProfiles{},
		photos:   &fakePhotos{photos: map[uuid.UUID]model.Photo{}},
		albums:   &fakeAlbums{album: model.Album{ID: uuid.Must(uuid.NewV4()), Title: "trip", Visibility: model.VisibilityPublic}},
		likes:    &fakeLikes{likes: map[string]model.Like{}},
		feed:     &fakeFeed{},
		reg:      prometheus.NewRegistry(),
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(h.reg)
		opts.Gatherer = h.reg
	}
	h.srv = New(Services{
		Auth:     h.auth,
		Profiles: h.profiles,
		Photos:   h.photos,
		Albums:   h.albums,
		Likes:    h.likes,
		Feed:     h.feed,
	}, opts, zaptest.NewLogger(t))
	return h
}

// do sends a request; user may be uuid.Nil for anonymous calls. A non-nil body is sent as JSON.
func (h *harness) do(method, path string, user uuid.UUID, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(user))
	}
	return h.serve(req)
}

func (h *harness) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(w, req)
	return w
}

type filePart struct {
	field, name, contentType string
	data                     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		hdr.Set("Content-Type", f.contentType)
		w, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// pngBytes is enough of a PNG header for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
