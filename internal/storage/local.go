package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores upload files in a directory on disk.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload directory is required")
	}
	return &Local{dir: dir}, nil
}

// Ensure creates the upload directory if it does not exist yet.
func (l *Local) Ensure(_ context.Context) error {
	return os.MkdirAll(l.dir, 0o755)
}

// Put writes the file under a temporary name and renames it into place,
// so a crash or a failed copy never leaves a valid-looking file that a
// database row could reference.
func (l *Local) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return err
	}
	tmpPath := filepath.Join(l.dir, fmt.Sprintf("%s.tmp-%s", name, hex.EncodeToString(suffix)))

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, filepath.Join(l.dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Get opens a stored file. The name is a generated storage name, never
// a user-supplied path; Base strips any separators regardless.
func (l *Local) Get(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(l.dir, filepath.Base(name)))
}

// Delete removes a stored file.
func (l *Local) Delete(_ context.Context, name string) error {
	return os.Remove(filepath.Join(l.dir, filepath.Base(name)))
}
