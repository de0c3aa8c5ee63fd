// Package files provides content-addressed media file storage.
//
// Files are keyed by the upload's content fingerprint, written once and
// never mutated in place. Putting identical bytes under the same key is
// idempotent by construction.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pictorapp/pictor-server/internal/errors"
)

// Storage manages the media file area on the local filesystem.
// Safe for concurrent use; every write goes through a unique temp file
// followed by an atomic rename.
type Storage struct {
	basePath    string
	stagingPath string
}

// New creates a Storage rooted at basePath, creating the directory layout
// if needed. Staged uploads live under {basePath}/staging until promoted.
func New(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	stagingPath := filepath.Join(basePath, "staging")
	if err := os.MkdirAll(stagingPath, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}

	return &Storage{
		basePath:    basePath,
		stagingPath: stagingPath,
	}, nil
}

// Put stores data under name and returns the absolute path.
// The write is atomic: readers never observe a partial file, and a
// concurrent Put of identical bytes under the same name converges on the
// same final path.
func (s *Storage) Put(name string, data []byte) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file name cannot be empty")
	}

	dst := s.Path(name)
	tmp, err := os.CreateTemp(s.stagingPath, "put-*")
	if err != nil {
		return "", errors.StorageFailure(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", errors.StorageFailure(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", errors.StorageFailure(err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", errors.StorageFailure(err)
	}

	return dst, nil
}

// Get retrieves the contents of a stored file.
func (s *Storage) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("media file %s not found", name)
		}
		return nil, errors.StorageFailure(err)
	}
	return data, nil
}

// Exists reports whether a file is stored under name.
func (s *Storage) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (s *Storage) Delete(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return errors.StorageFailure(err)
	}
	return nil
}

// Path returns the absolute path for a stored file name.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.basePath, filepath.Base(name))
}

// NewStagingFile creates an empty file with an opaque unique name in the
// staging area. The caller owns the handle and must either Promote the
// file or DiscardStaging it.
func (s *Storage) NewStagingFile() (*os.File, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate staging name: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.stagingPath, id), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, errors.StorageFailure(err)
	}
	return f, nil
}

// Promote moves a staged file into the main area under its final name and
// returns the new absolute path. If the destination already exists the
// staged copy is discarded; the bytes are identical by fingerprint.
func (s *Storage) Promote(stagingPath, name string) (string, error) {
	dst := s.Path(name)
	if _, err := os.Stat(dst); err == nil {
		os.Remove(stagingPath)
		return dst, nil
	}
	if err := os.Rename(stagingPath, dst); err != nil {
		return "", errors.StorageFailure(err)
	}
	return dst, nil
}

// DiscardStaging removes a staged file, ignoring missing files.
func (s *Storage) DiscardStaging(stagingPath string) {
	_ = os.Remove(stagingPath)
}

// Open opens a stored file for reading.
func (s *Storage) Open(name string) (io.ReadSeekCloser, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("media file %s not found", name)
		}
		return nil, errors.StorageFailure(err)
	}
	return f, nil
}
