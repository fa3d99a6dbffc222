package storage

import "io"

// BlobStore keeps uploaded source documents (scanned PDFs, images).
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
