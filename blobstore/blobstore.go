// Package blobstore stores the binary payloads of ingested assets, keyed
// by asset id. The catalog only ever calls it outside its index lock.
package blobstore

import "errors"

// ErrBlobNotFound is returned when no payload is stored under an id.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the payload storage contract every backend must provide.
type BlobStore interface {
	Put(id string, content []byte) error
	Get(id string) ([]byte, error)
	Delete(id string) error
}
