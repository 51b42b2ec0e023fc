// Package model defines domain entities used by services and repositories.
package model

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/errs"
)

// Visibility controls third-party read access to a photo or album.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// ParseVisibility validates a visibility literal. Empty input is rejected.
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(s); v {
	case VisibilityPublic, VisibilityPrivate:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown visibility %q", errs.ErrValidation, s)
	}
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User is an account. Password material is never returned to clients.
type User struct {
	ID          uuid.UUID
	Email       string // unique
	Username    string // unique
	PwdHash     []byte // Argon2id(password, PwdSalt)
	PwdSalt     []byte
	DisplayName string
	Bio         string
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfileUpdate carries optional profile changes; nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

// Stats are per-user engagement counters read from one consistent snapshot.
type Stats struct {
	PhotoCount        int64
	ReceivedLikeCount int64
}

// Profile is a user together with their stats.
type Profile struct {
	User
	Stats
}

// Photo is an uploaded image and its metadata.
type Photo struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID // immutable
	FileURL     string
	FileKey     string // object store key behind FileURL
	Title       string
	Description string
	Visibility  Visibility
	CreatedAt   time.Time
}

// Album groups photos of a single owner.
type Album struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID // immutable
	Title       string
	Description string
	Visibility  Visibility
	CreatedAt   time.Time
}

// Membership is the photo-in-album edge. Its ID doubles as the album listing cursor.
type Membership struct {
	ID      uuid.UUID
	PhotoID uuid.UUID
	AlbumID uuid.UUID
	AddedAt time.Time
}

// AlbumPhoto is a photo listed through its membership in an album.
type AlbumPhoto struct {
	MembershipID uuid.UUID
	AddedAt      time.Time
	Photo        Photo
}

// FeedItem is a public photo with its like count.
type FeedItem struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	FileURL   string
	Title     string
	CreatedAt time.Time
	LikeCount int64
}

// FeedSort selects the public feed ordering.
type FeedSort string

const (
	FeedSortLatest FeedSort = "latest"
	FeedSortLikes  FeedSort = "likes"
)

// AlbumSort selects the album photo ordering by membership time.
type AlbumSort string

const (
	AlbumSortRecent AlbumSort = "recent"
	AlbumSortOldest AlbumSort = "oldest"
)

// Upload is raw file content received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewPhoto is the client-provided metadata for an upload.
type NewPhoto struct {
	Title       string
	Description string
	Visibility  Visibility // empty means PRIVATE
}

// NewAlbum is the client-provided metadata for album creation.
type NewAlbum struct {
	Title       string
	Description string
	Visibility  Visibility // empty means PRIVATE
}
