package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	ErrInvalidPath = errors.New("path contains invalid characters")
	ErrOutsideRoot = errors.New("path is outside the staging root")
)

// PathValidator confines file operations to a single directory tree.
type PathValidator struct {
	rootAbs string
}

func NewPathValidator(root string) (*PathValidator, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve staging root: %w", err)
	}

	return &PathValidator{rootAbs: rootAbs}, nil
}

func (v *PathValidator) RootAbs() string {
	return v.rootAbs
}

// Confine accepts an absolute path or one relative to the root and returns
// the cleaned absolute path, rejecting anything that escapes the root.
func (v *PathValidator) Confine(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || hasControlCharacters(trimmed) {
		return "", ErrInvalidPath
	}

	candidate := trimmed
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(v.rootAbs, candidate)
	}

	resolved, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	if resolved == v.rootAbs || !isWithinRoot(v.rootAbs, resolved) {
		return "", ErrOutsideRoot
	}

	return resolved, nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	rootWithSeparator := rootAbs + string(filepath.Separator)
	return strings.HasPrefix(candidateAbs, rootWithSeparator)
}
