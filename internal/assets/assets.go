// Package assets stores identity document binaries. Records reference assets
// by opaque storage ID; the asset write always happens before the record
// write, so a record never points at an asset that was not durably stored.
package assets

import (
	"context"
)

// Object describes a stored asset.
type Object struct {
	URL          string
	ThumbnailURL string
	StorageID    string
}

// Store is the binary asset storage boundary.
//
// Delete is at-least-once: callers retry or log failures but never let a
// failed delete block creation of a superseding record.
type Store interface {
	Put(ctx context.Context, storageID string, data []byte, contentType string) (Object, error)
	Delete(ctx context.Context, storageID string) error
}
