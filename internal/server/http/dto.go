package httpserver

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/pager"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

var visibilityRule = validation.In(string(model.VisibilityPublic), string(model.VisibilityPrivate)).
	Error("must be PUBLIC or PRIVATE")

var targetTypeRule = validation.In(string(model.TargetPhoto), string(model.TargetAlbum)).
	Error("must be PHOTO or ALBUM")

// --- requests ---

type registerRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat, validation.Length(3, 255)),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 32),
			validation.Match(usernameRe).Error("letters, digits, underscore and dot only")),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&r.DisplayName, validation.Length(0, 64)),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// profileRequest is read from JSON or from multipart form fields.
type profileRequest struct {
	DisplayName *string `json:"displayName" form:"displayName"`
	Bio         *string `json:"bio" form:"bio"`
	AvatarURL   *string `json:"avatarUrl" form:"avatarUrl"`
}

func (r profileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.NilOrNotEmpty, validation.Length(1, 64)),
		validation.Field(&r.Bio, validation.Length(0, 500)),
		validation.Field(&r.AvatarURL, validation.Length(0, 2048), is.URL),
	)
}

func (r profileRequest) update() model.ProfileUpdate {
	return model.ProfileUpdate{DisplayName: r.DisplayName, Bio: r.Bio, AvatarURL: r.AvatarURL}
}

type photoForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Visibility  string `form:"visibility"`
}

func (r photoForm) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Visibility, visibilityRule),
	)
}

type albumRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

func (r albumRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Visibility, visibilityRule),
	)
}

type addToAlbumRequest struct {
	AlbumID string `json:"albumId"`
}

func (r addToAlbumRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AlbumID, validation.Required, is.UUID),
	)
}

type visibilityRequest struct {
	Visibility string `json:"visibility"`
}

func (r visibilityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Visibility, validation.Required, visibilityRule),
	)
}

type likeRequest struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
}

func (r likeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TargetType, validation.Required, targetTypeRule),
		validation.Field(&r.TargetID, validation.Required, is.UUID),
	)
}

// unlikeQuery uses the snake_case names clients already send on DELETE /likes.
type unlikeQuery struct {
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
}

func (r unlikeQuery) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TargetType, validation.Required, targetTypeRule),
		validation.Field(&r.TargetID, validation.Required, is.UUID),
	)
}

func (r unlikeQuery) target() (model.LikeTarget, error) {
	return model.NewLikeTarget(model.TargetType(r.TargetType), uuid.FromStringOrNil(r.TargetID))
}

// listQuery carries the paging and filter parameters shared by every listing.
type listQuery struct {
	Limit      int    `form:"limit"`
	Cursor     string `form:"cursor"`
	Visibility string `form:"visibility"`
	Sort       string `form:"sort"`
	Type       string `form:"type"`
	AlbumID    string `form:"album_id"`
}

func (q listQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Limit, validation.Min(0)),
		validation.Field(&q.Cursor, validation.Length(0, 512)),
		validation.Field(&q.Visibility, visibilityRule),
		validation.Field(&q.Type, targetTypeRule),
		validation.Field(&q.AlbumID, is.UUID),
	)
}

func (q listQuery) page() pager.Request { return pager.Request{Limit: q.Limit, Cursor: q.Cursor} }

func (q listQuery) visibility() *model.Visibility {
	if q.Visibility == "" {
		return nil
	}
	v := model.Visibility(q.Visibility)
	return &v
}

func (q listQuery) targetType() *model.TargetType {
	if q.Type == "" {
		return nil
	}
	t := model.TargetType(q.Type)
	return &t
}

// --- responses ---

type pageJSON[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"nextCursor"`
}

func toPage[T, U any](p pager.Page[T], f func(T) U) pageJSON[U] {
	out := pageJSON[U]{Items: make([]U, 0, len(p.Items)), NextCursor: p.NextCursor}
	for _, it := range p.Items {
		out.Items = append(out.Items, f(it))
	}
	return out
}

type userJSON struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email,omitempty"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatarUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toUser(u model.User, withEmail bool) userJSON {
	out := userJSON{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if withEmail {
		out.Email = u.Email
	}
	return out
}

type profileJSON struct {
	userJSON
	PhotoCount        int64 `json:"photoCount"`
	ReceivedLikeCount int64 `json:"receivedLikeCount"`
}

func toProfile(p model.Profile, withEmail bool) profileJSON {
	return profileJSON{
		userJSON:          toUser(p.User, withEmail),
		PhotoCount:        p.PhotoCount,
		ReceivedLikeCount: p.ReceivedLikeCount,
	}
}

type authJSON struct {
	User        userJSON `json:"user"`
	AccessToken string   `json:"accessToken"`
}

type photoJSON struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	FileURL     string    `json:"fileUrl"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toPhoto(p model.Photo) photoJSON {
	return photoJSON{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		FileURL:     p.FileURL,
		Title:       p.Title,
		Description: p.Description,
		Visibility:  string(p.Visibility),
		CreatedAt:   p.CreatedAt,
	}
}

func toAlbumPhoto(ap model.AlbumPhoto) photoJSON { return toPhoto(ap.Photo) }

type albumJSON struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toAlbum(a model.Album) albumJSON {
	return albumJSON{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		Title:       a.Title,
		Description: a.Description,
		Visibility:  string(a.Visibility),
		CreatedAt:   a.CreatedAt,
	}
}

type albumWithPhotosJSON struct {
	Album      albumJSON   `json:"album"`
	Photos     []photoJSON `json:"photos"`
	NextCursor *string     `json:"nextCursor"`
}

type membershipJSON struct {
	ID      uuid.UUID `json:"id"`
	PhotoID uuid.UUID `json:"photoId"`
	AlbumID uuid.UUID `json:"albumId"`
	AddedAt time.Time `json:"addedAt"`
}

func toMembership(m model.Membership) membershipJSON {
	return membershipJSON{ID: m.ID, PhotoID: m.PhotoID, AlbumID: m.AlbumID, AddedAt: m.AddedAt}
}

type feedItemJSON struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"ownerId"`
	FileURL    string    `json:"fileUrl"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
	LikesCount int64     `json:"likesCount"`
}

func toFeedItem(it model.FeedItem) feedItemJSON {
	return feedItemJSON{
		ID:         it.ID,
		OwnerID:    it.OwnerID,
		FileURL:    it.FileURL,
		Title:      it.Title,
		CreatedAt:  it.CreatedAt,
		LikesCount: it.LikeCount,
	}
}

type likeJSON struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	TargetType string    `json:"targetType"`
	TargetID   uuid.UUID `json:"targetId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toLike(l model.Like) likeJSON {
	return likeJSON{
		ID:         l.ID,
		UserID:     l.UserID,
		TargetType: string(l.Target.Type()),
		TargetID:   l.Target.ID(),
		CreatedAt:  l.CreatedAt,
	}
}

type photoSummaryJSON struct {
	ID      uuid.UUID `json:"id"`
	FileURL string    `json:"fileUrl"`
	Title   string    `json:"title"`
}

type albumSummaryJSON struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type likedItemJSON struct {
	LikeID     uuid.UUID         `json:"like_id"`
	TargetType string            `json:"targetType"`
	CreatedAt  time.Time         `json:"createdAt"`
	Photo      *photoSummaryJSON `json:"photo"`
	Album      *albumSummaryJSON `json:"album"`
}

func toLikedItem(it model.LikedItem) likedItemJSON {
	out := likedItemJSON{
		LikeID:     it.Like.ID,
		TargetType: string(it.Like.Target.Type()),
		CreatedAt:  it.Like.CreatedAt,
	}
	if it.Photo != nil {
		out.Photo = &photoSummaryJSON{ID: it.Photo.ID, FileURL: it.Photo.FileURL, Title: it.Photo.Title}
	}
	if it.Album != nil {
		out.Album = &albumSummaryJSON{ID: it.Album.ID, Title: it.Album.Title}
	}
	return out
}

type successJSON struct {
	Success bool `json:"success"`
}

var successResp = successJSON{Success: true}
