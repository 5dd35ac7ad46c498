// Package blob lists and addresses gallery images in a filesystem directory
// or an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"
	"time"
)

// Driver names accepted in configuration.
const (
	DriverFS = "fs"
	DriverS3 = "s3"
)

// GalleryPrefix is the key prefix of public gallery images.
const GalleryPrefix = "gallery/"

// Errors
var (
	ErrUnknownDriver = errors.New("unknown blob driver")
	ErrInvalidKey    = errors.New("invalid blob key")
)

// Info describes one stored object.
type Info struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store lists objects and produces URLs a browser can fetch.
type Store interface {
	List(ctx context.Context, prefix string) ([]Info, error)
	URL(ctx context.Context, key string) (string, error)
}

// Image is a gallery entry ready for rendering.
type Image struct {
	Key string
	URL string
}

var imageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".avif": true}

// IsImage reports whether key has an image extension.
func IsImage(key string) bool {
	return imageExt[strings.ToLower(path.Ext(key))]
}

// CleanKey rejects keys that escape the store root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean != key || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// Gallery returns the images under GalleryPrefix, newest first.
func Gallery(ctx context.Context, s Store) ([]Image, error) {
	infos, err := s.List(ctx, GalleryPrefix)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(infos)
	out := make([]Image, 0, len(infos))
	for _, info := range infos {
		if !IsImage(info.Key) {
			continue
		}
		u, err := s.URL(ctx, info.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, Image{Key: info.Key, URL: u})
	}
	return out, nil
}

func sortNewestFirst(infos []Info) {
	sort.SliceStable(infos, func(i, j int) bool {
		if !infos[i].LastModified.Equal(infos[j].LastModified) {
			return infos[i].LastModified.After(infos[j].LastModified)
		}
		return infos[i].Key < infos[j].Key
	})
}
