package filestorage

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
)

// ErrInvalidPath is returned for paths that escape the storage root
var ErrInvalidPath = errors.New("invalid storage path")

// StoredFile represents information about a stored file
type StoredFile struct {
	Path     string // Path relative to the storage root
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string // MIME type reported by the client
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save stores an uploaded file under subPath with a generated name
	Save(ctx context.Context, fileHeader *multipart.FileHeader, subPath string) (*StoredFile, error)

	// Open returns the content of a stored file
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file from storage
	Delete(ctx context.Context, path string) error
}
