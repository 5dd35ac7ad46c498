package blob

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FSStore serves objects from a directory. URLs point at the public
// /gallery/ route, which streams files through Open.
type FSStore struct {
	root    string
	urlBase string
}

// NewFSStore creates a store rooted at dir. urlBase prefixes generated URLs.
func NewFSStore(dir, urlBase string) (*FSStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{root: abs, urlBase: strings.TrimRight(urlBase, "/")}, nil
}

// List walks the directory under prefix. A missing prefix directory is empty.
func (s *FSStore) List(_ context.Context, prefix string) ([]Info, error) {
	var out []Info
	start := filepath.Join(s.root, filepath.FromSlash(prefix))
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		out = append(out, Info{Key: filepath.ToSlash(rel), Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return out, nil
}

// URL returns the public path of key.
func (s *FSStore) URL(_ context.Context, key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	parts := strings.Split(clean, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.urlBase + "/" + strings.Join(parts, "/"), nil
}

// Open opens key for reading.
func (s *FSStore) Open(key string) (*os.File, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.root, filepath.FromSlash(clean)))
}
