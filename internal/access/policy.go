// Package access decides who may see or mutate a piece of content.
//
// The rules are the same for photos and albums: the owner may do anything,
// everyone else (including anonymous callers, represented by uuid.Nil) may only
// read PUBLIC content.
package access

import (
	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
)

// CanView reports whether requester may read content owned by owner with visibility v.
func CanView(requester, owner uuid.UUID, v model.Visibility) bool {
	return IsOwner(requester, owner) || v == model.VisibilityPublic
}

// CanMutate reports whether requester may change content owned by owner.
func CanMutate(requester, owner uuid.UUID) bool {
	return IsOwner(requester, owner)
}

// IsOwner reports whether requester is the (non-anonymous) owner.
func IsOwner(requester, owner uuid.UUID) bool {
	return requester != uuid.Nil && requester == owner
}

// CheckView returns errs.ErrForbidden when CanView is false.
func CheckView(requester, owner uuid.UUID, v model.Visibility) error {
	if !CanView(requester, owner, v) {
		return errs.ErrForbidden
	}
	return nil
}

// CheckMutate returns errs.ErrForbidden when CanMutate is false.
func CheckMutate(requester, owner uuid.UUID) error {
	if !CanMutate(requester, owner) {
		return errs.ErrForbidden
	}
	return nil
}
