// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to accounts and profiles.
type UserRepository interface {
	// Create inserts a new user. A taken email or username yields errs.ErrConflict.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateProfile applies the non-nil fields of upd and returns the updated user.
	UpdateProfile(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) (*model.User, error)
}

// StatsRepository computes per-user counters.
type StatsRepository interface {
	// UserStats returns photo and received-like counts read from one snapshot.
	UserStats(ctx context.Context, userID uuid.UUID) (model.Stats, error)
}
