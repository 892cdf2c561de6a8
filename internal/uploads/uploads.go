// Package uploads decides whether an incoming file is acceptable and
// stores it under a collision-free generated name.
package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/REGINA562/new-project/internal/storage"
	"github.com/google/uuid"
)

// MaxFileBytes is the upload size ceiling.
const MaxFileBytes = 16 << 20

// Validation failures surfaced to the originating form. Neither leaves
// any stored file behind.
var (
	ErrDisallowedType = errors.New("file type is not allowed")
	ErrTooLarge       = errors.New("file is too large")
)

// allowedExts is the extension allow-list: images, documents, and
// audio/video. Everything else is rejected.
var allowedExts = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"mp4":  {},
	"m4a":  {},
	"wav":  {},
}

// Allowed reports whether the filename's extension is on the
// allow-list. The check is case-insensitive; a missing extension or an
// empty filename fails it.
func Allowed(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	_, ok := allowedExts[ext]
	return ok
}

// StorageName generates the on-disk name for an upload: a random UUID
// plus the original extension. The original base name is discarded
// entirely, which rules out both collisions and path traversal.
func StorageName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return uuid.NewString() + ext
}

// Saver validates uploads and writes them to the configured backend.
type Saver struct {
	store storage.ObjectStorage
}

func NewSaver(store storage.ObjectStorage) *Saver {
	return &Saver{store: store}
}

// Save checks the file against the allow-list and size ceiling, then
// stores it under a generated name and returns that name. On any error
// nothing referenceable is left in storage.
func (s *Saver) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil || strings.TrimSpace(fh.Filename) == "" {
		return "", ErrDisallowedType
	}
	if !Allowed(fh.Filename) {
		return "", ErrDisallowedType
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	data, err := readLimited(f, MaxFileBytes)
	_ = f.Close()
	if err != nil {
		return "", err
	}

	name := StorageName(fh.Filename)
	if err := s.store.Put(ctx, name, bytes.NewReader(data), int64(len(data)), ContentType(name)); err != nil {
		return "", err
	}
	return name, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(r, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

// ContentType guesses a MIME type from the storage name's extension.
func ContentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
