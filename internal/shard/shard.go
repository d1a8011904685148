// Package shard maps object keys to filesystem paths. Keys are split
// into two 3-hex-character directory levels so per-directory entry
// counts stay bounded (16^3 x 16^3 buckets).
package shard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirMode   = 0o755
	level1Len = 3
	level2Len = 6
)

// Resolver derives on-disk paths for object keys under a root
// directory. It never inspects file contents.
type Resolver struct {
	root string
}

// NewResolver creates a resolver rooted at root, creating the root
// directory if absent.
func NewResolver(root string) (*Resolver, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("shard root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, dirMode); err != nil {
		return nil, err
	}
	return &Resolver{root: abs}, nil
}

// Root returns the absolute root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Path returns the file path for key without touching the filesystem.
func (r *Resolver) Path(key string) string {
	return filepath.Join(r.root, key[:level1Len], key[level1Len:level2Len], key)
}

// EnsurePath creates both shard directory levels if absent and returns
// the final file path. Concurrent creators are tolerated:
// already-exists is not an error.
func (r *Resolver) EnsurePath(key string) (string, error) {
	dir := filepath.Join(r.root, key[:level1Len], key[level1Len:level2Len])
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", fmt.Errorf("create shard dirs for %s: %w", key, err)
	}
	return filepath.Join(dir, key), nil
}

// Remove deletes the file for key. Missing files are ignored.
func (r *Resolver) Remove(key string) error {
	if err := os.Remove(r.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
