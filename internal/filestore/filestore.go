package filestore

import (
	"io"
)

// FileStore keeps uploaded files addressed by the SHA-256 of their content.
type FileStore interface {
	// Save stores the content read from r and returns its hex-encoded hash
	// and size. Saving identical content twice keeps a single copy.
	Save(r io.Reader) (hash string, size int64, err error)

	// Get retrieves the file content for the given hash.
	Get(hash string) (io.ReadCloser, error)
}
