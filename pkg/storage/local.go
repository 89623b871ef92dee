package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// localStore keeps one file per key under root.
type localStore struct {
	root string
}

// NewLocal returns a store rooted at dir. Relative dirs resolve against the
// working directory; the directory is created on first write.
func NewLocal(dir string) Store {
	if !filepath.IsAbs(dir) {
		cwd, _ := os.Getwd()
		dir = filepath.Join(cwd, dir)
	}
	return &localStore{root: dir}
}

// abs maps a key to a file name. Keys are path-escaped so prefixed keys such
// as "visitor:abc:cart" stay inside root.
func (d *localStore) abs(key string) string {
	return filepath.Join(d.root, url.PathEscape(key)+".json")
}

func (d *localStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(d.abs(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage/local: get %s: %w", key, err)
	}
	return data, nil
}

// Set writes through a temp file and rename so a crash never leaves a
// half-written value behind.
func (d *localStore) Set(key string, value []byte) error {
	if err := os.MkdirAll(d.root, 0o700); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(d.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("storage/local: create %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("storage/local: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage/local: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), d.abs(key)); err != nil {
		return fmt.Errorf("storage/local: rename %s: %w", key, err)
	}
	return nil
}

func (d *localStore) Remove(key string) error {
	err := os.Remove(d.abs(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage/local: remove %s: %w", key, err)
	}
	return nil
}
