// Package storage keeps uploaded poster images on local disk or in an S3
// compatible bucket and serves them back under /uploads.
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// Object is an opened stored file. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store is implemented by LocalStore and S3Store.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// NewKey returns a collision-free object name with the given extension.
func NewKey(ext string) string {
	return uuid.NewString() + strings.ToLower(ext)
}

// ValidKey reports whether key has the shape NewKey produces. Anything else,
// including path traversal attempts, is rejected before touching a store.
func ValidKey(key string) bool {
	ext := path.Ext(key)
	if !allowedExtensions[strings.ToLower(ext)] {
		return false
	}
	_, err := uuid.Parse(strings.TrimSuffix(key, ext))
	return err == nil && len(key) == 36+len(ext)
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
