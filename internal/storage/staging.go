package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrTooLarge = errors.New("file exceeds the size limit")

// Staging holds uploaded files on local disk until they are pushed to the
// object store. Stored names are random; only the extension is kept.
type Staging struct {
	validator *PathValidator
}

func NewStaging(root string) (*Staging, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o700); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}

	return &Staging{validator: validator}, nil
}

func (s *Staging) Root() string {
	return s.validator.RootAbs()
}

// Save copies src into a new staged file, failing with ErrTooLarge once more
// than limit bytes have been read. A limit <= 0 disables the check.
func (s *Staging) Save(originalName string, src io.Reader, limit int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 10 {
		ext = ""
	}

	path, err := s.validator.Confine(uuid.NewString() + ext)
	if err != nil {
		return "", err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	reader := src
	if limit > 0 {
		reader = io.LimitReader(src, limit+1)
	}

	written, copyErr := io.Copy(file, reader)
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("write staged file: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("close staged file: %w", closeErr)
	case limit > 0 && written > limit:
		_ = os.Remove(path)
		return "", ErrTooLarge
	}

	return path, nil
}

func (s *Staging) Open(path string) (*os.File, error) {
	resolved, err := s.validator.Confine(path)
	if err != nil {
		return nil, err
	}
	return os.Open(resolved)
}

// Remove deletes a staged file. Missing files are not an error.
func (s *Staging) Remove(path string) error {
	if path == "" {
		return nil
	}

	resolved, err := s.validator.Confine(path)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}
