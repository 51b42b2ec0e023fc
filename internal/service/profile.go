package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/repository"
	"github.com/fourtogenic/photoshare/internal/storage"
)

// StatsCache is an optional read-through cache for public stats.
type StatsCache interface {
	Get(ctx context.Context, userID uuid.UUID) (model.Stats, bool, error)
	Set(ctx context.Context, userID uuid.UUID, s model.Stats) error
}

// ProfileService exposes user profiles together with their stats.
type ProfileService interface {
	// Stats returns photo and received-like counts from one snapshot.
	Stats(ctx context.Context, userID uuid.UUID) (model.Stats, error)
	// GetMe returns the caller's own profile with fresh stats.
	GetMe(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	// GetPublic returns anyone's profile; stats may come from the cache.
	GetPublic(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	// UpdateMe applies profile changes; a non-nil avatar is uploaded and wins over upd.AvatarURL.
	UpdateMe(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate, avatar *model.Upload) (model.Profile, error)
}

type ProfileServiceImpl struct {
	users repository.UserRepository
	stats repository.StatsRepository
	blobs storage.ObjectStore
	cache StatsCache // nil disables caching
	log   *zap.Logger
	now   func() time.Time
}

// NewProfileService constructs ProfileService. cache may be nil.
func NewProfileService(users repository.UserRepository, stats repository.StatsRepository, blobs storage.ObjectStore, cache StatsCache, log *zap.Logger) *ProfileServiceImpl {
	return &ProfileServiceImpl{users: users, stats: stats, blobs: blobs, cache: cache, log: log, now: time.Now}
}

// Stats reads the counters.
func (s *ProfileServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (model.Stats, error) {
	return s.stats.UserStats(ctx, userID)
}

// GetMe loads the caller's profile.
func (s *ProfileServiceImpl) GetMe(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("user: %w", err)
	}
	st, err := s.stats.UserStats(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{User: *u, Stats: st}, nil
}

// GetPublic loads a profile for any caller. Cache failures fall back to the database.
func (s *ProfileServiceImpl) GetPublic(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("user: %w", err)
	}
	st, err := s.cachedStats(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{User: *u, Stats: st}, nil
}

func (s *ProfileServiceImpl) cachedStats(ctx context.Context, userID uuid.UUID) (model.Stats, error) {
	if s.cache == nil {
		return s.stats.UserStats(ctx, userID)
	}
	st, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.log.Warn("stats cache get", zap.String("user_id", userID.String()), zap.Error(err))
	}
	if ok {
		return st, nil
	}
	st, err = s.stats.UserStats(ctx, userID)
	if err != nil {
		return model.Stats{}, err
	}
	if err := s.cache.Set(ctx, userID, st); err != nil {
		s.log.Warn("stats cache set", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return st, nil
}

// UpdateMe uploads the avatar first, then writes the profile.
func (s *ProfileServiceImpl) UpdateMe(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate, avatar *model.Upload) (model.Profile, error) {
	if avatar != nil {
		key := storage.Key("avatars", userID, avatar.Filename, s.now())
		url, err := s.blobs.Put(ctx, key, avatar.Data, avatar.ContentType)
		if err != nil {
			return model.Profile{}, fmt.Errorf("upload avatar: %w", err)
		}
		upd.AvatarURL = &url
	}
	u, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return model.Profile{}, fmt.Errorf("user: %w", err)
	}
	st, err := s.stats.UserStats(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{User: *u, Stats: st}, nil
}
