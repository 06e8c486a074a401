// Package storage is the file-storage port for inspection attachments and
// nonconformity evidence. Services record only the returned reference.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when an object key does not exist.
var ErrNotFound = errors.New("object not found")

// MaxFileSize caps every upload at 50MB.
const MaxFileSize int64 = 50 << 20

// Object is the stored reference handed back to callers.
type Object struct {
	Path string
	Hash string
	Size int64
}

// FileStorage accepts a byte stream plus metadata and returns where it landed.
type FileStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// UploadState tracks an attachment between metadata registration and upload confirmation.
type UploadState string

const (
	UploadPendiente UploadState = "pendiente"
	UploadSubido    UploadState = "subido"
	UploadError     UploadState = "error"
)

// Confirmed maps a confirmation outcome to the resulting state.
func Confirmed(ok bool) UploadState {
	if ok {
		return UploadSubido
	}
	return UploadError
}

// ObjectKey joins key parts. Separators and leading dots are stripped from each
// part so a caller-supplied file name can neither climb out of its prefix nor
// hide itself.
func ObjectKey(parts ...string) string {
	clean := make([]string, len(parts))
	for i, p := range parts {
		p = strings.ReplaceAll(strings.TrimSpace(p), "/", "_")
		p = strings.TrimLeft(p, ".")
		if p == "" {
			p = "_"
		}
		clean[i] = p
	}
	return path.Join(clean...)
}
