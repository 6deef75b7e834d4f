// internal/storage/storage.go
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage keeps rendered preview snapshots and returns a public URL for
// each. The handler depends only on this interface.
type Storage interface {
	// Save stores r under a fresh random name with extension ext.
	Save(r io.Reader, ext string) (string, error)
	// SaveAs stores r under name, replacing any earlier file of that name.
	SaveAs(name string, r io.Reader) (string, error)
}

// PublicPrefix is the URL path local files are served under.
const PublicPrefix = "/previews/"

// ── Local Storage ─────────────────────────────────────────────────────────────

type LocalStorage struct {
	Dir     string
	BaseURL string // e.g. "http://localhost:8080"
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &LocalStorage{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes r under a random name with extension ext. Names never come
// from the caller.
func (s *LocalStorage) Save(r io.Reader, ext string) (string, error) {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" || strings.ContainsAny(ext, `/\.`) {
		return "", fmt.Errorf("invalid extension %q", ext)
	}
	return s.SaveAs(uuid.New().String()+"."+ext, r)
}

// SaveAs writes r to a temporary file and renames it into place, so a
// failed write leaves neither a partial file nor a changed old one.
func (s *LocalStorage) SaveAs(name string, r io.Reader) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	tmp, err := os.CreateTemp(s.Dir, ".partial-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return s.BaseURL + PublicPrefix + name, nil
}
