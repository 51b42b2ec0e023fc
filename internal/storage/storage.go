// Package storage keeps uploaded image bytes in an object store.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// ObjectStore stores blobs under keys and hands out their public URLs.
type ObjectStore interface {
	// Put uploads data under key and returns the URL it is served from.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Key builds an object key of the form {prefix}/{owner}/{unixnano}-{name}.
func Key(prefix string, owner uuid.UUID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d-%s", prefix, owner, now.UnixNano(), SafeName(filename))
}

// SafeName reduces a client file name to [A-Za-z0-9._-], keeping the extension.
func SafeName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		return "file"
	}
	return name
}
