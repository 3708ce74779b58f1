package cache

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileCache stores each key as a file under Dir. Keys may contain slashes.
type FileCache struct {
	Dir string
}

var _ Cache = (*FileCache)(nil)

func NewFileCache(dir string) *FileCache {
	return &FileCache{Dir: dir}
}

func (fc *FileCache) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(fc.Dir, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (fc *FileCache) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(fc.Dir, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fc *FileCache) Put(_ context.Context, key, value string, opts PutOptions) error {
	path := filepath.Join(fc.Dir, filepath.FromSlash(key))
	if opts.Condition == PutIfNoneMatch {
		if _, err := os.Stat(path); err == nil {
			return ErrAlreadyExists
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(value), 0644)
}

func (fc *FileCache) List(_ context.Context, prefix string, _ string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(fc.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(fc.Dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, strings.TrimPrefix(key, prefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
