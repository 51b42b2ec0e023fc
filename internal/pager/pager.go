// Package pager implements keyset (cursor) pagination shared by every listing.
//
// A source returns items ordered by (sort key in the requested direction, id ascending)
// strictly after a Key. The pager asks for one item more than the page size to learn
// whether another page exists, and hands out the last retained item's Key as an
// opaque cursor.
package pager

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/errs"
)

// Page size bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Direction is the order of the primary sort key. The id tiebreak is always ascending.
type Direction int

const (
	Desc Direction = iota
	Asc
)

// Key is the position of an item under a sort: its sort key value plus its id.
// Time-sorted listings use At, the like-count feed uses Count.
type Key struct {
	ID    uuid.UUID
	At    time.Time
	Count int64
}

// Request is what a caller asks for.
type Request struct {
	Limit  int
	Cursor string
}

// Query is what a source is asked to fetch: up to Limit items strictly after After (nil = from start).
type Query struct {
	Limit int
	After *Key
}

// Page is one page of results. NextCursor is nil on the last page.
type Page[T any] struct {
	Items      []T
	NextCursor *string
}

// Source fetches items for a query in final order.
type Source[T any] func(ctx context.Context, q Query) ([]T, error)

// NormalizeLimit clamps a requested page size into [1, MaxLimit], defaulting to DefaultLimit.
func NormalizeLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// Paginate runs one page fetch against src.
func Paginate[T any](ctx context.Context, req Request, keyOf func(T) Key, src Source[T]) (Page[T], error) {
	limit := NormalizeLimit(req.Limit)
	after, err := Decode(req.Cursor)
	if err != nil {
		return Page[T]{}, err
	}

	items, err := src(ctx, Query{Limit: limit + 1, After: after})
	if err != nil {
		return Page[T]{}, err
	}

	page := Page[T]{Items: items}
	if page.Items == nil {
		page.Items = []T{}
	}
	if len(page.Items) > limit {
		page.Items = page.Items[:limit]
		next := Encode(keyOf(page.Items[limit-1]))
		page.NextCursor = &next
	}
	return page, nil
}

type wireKey struct {
	ID    uuid.UUID `json:"i"`
	At    string    `json:"t,omitempty"`
	Count int64     `json:"n,omitempty"`
}

// Encode turns a key into an opaque URL-safe cursor.
func Encode(k Key) string {
	w := wireKey{ID: k.ID, Count: k.Count}
	if !k.At.IsZero() {
		w.At = k.At.UTC().Format(time.RFC3339Nano)
	}
	b, _ := json.Marshal(w)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses a cursor produced by Encode. An empty cursor decodes to nil.
func Decode(cursor string) (*Key, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", errs.ErrValidation)
	}
	var w wireKey
	if err := json.Unmarshal(raw, &w); err != nil || w.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: malformed cursor", errs.ErrValidation)
	}
	k := &Key{ID: w.ID, Count: w.Count}
	if w.At != "" {
		at, err := time.Parse(time.RFC3339Nano, w.At)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed cursor", errs.ErrValidation)
		}
		k.At = at
	}
	return k, nil
}
