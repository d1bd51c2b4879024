// Package blob persists encrypted file content. A Store maps a node to a
// durable byte location namespaced by owner; callers only ever hand it
// ciphertext. Two backends exist: local filesystem and S3-compatible
// object storage.
package blob

import "context"

// Store writes, reads and erases ciphertext blobs.
//
// Write creates the owner's namespace lazily and places the bytes under a
// collision-resistant location (owner + timestamp + declared name), so
// concurrent uploads by the same owner never clobber each other. Read
// fails with common.ErrorNotFound when the location has no bytes. Erase is
// best-effort: the target's absence is not an error.
type Store interface {
	Write(ctx context.Context, ownerID, name string, content []byte) (string, error)
	Read(ctx context.Context, location string) ([]byte, error)
	Erase(ctx context.Context, location string) error
}
