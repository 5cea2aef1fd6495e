package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalURLPrefix is the path segment uploads are served under.
const LocalURLPrefix = "uploads"

// LocalMediaStore writes uploads to a directory on disk. Keys look like
// "uploads/<name>" and resolve to baseURL + "/" + key.
type LocalMediaStore struct {
	dir     string
	baseURL string
}

func NewLocalMediaStore(dir, baseURL string) (*LocalMediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalMediaStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalMediaStore) Dir() string { return s.dir }

func (s *LocalMediaStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	name = filepath.Base(name)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return path.Join(LocalURLPrefix, name), nil
}

func (s *LocalMediaStore) Remove(_ context.Context, key string) error {
	name := path.Base(strings.TrimPrefix(key, LocalURLPrefix+"/"))
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalMediaStore) URL(key string) string {
	if isAbsoluteURL(key) {
		return key
	}
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
