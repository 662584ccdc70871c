// Package store holds fetched image bytes, in memory and on disk.
package store

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/dmorenoc/cronograma/internal/findings"
)

// ImageStore maps image keys to base64-encoded payloads for one category.
// A key is present iff the corresponding download succeeded and validated
// as an image. It is populated either live by the acquisition scheduler or
// re-derived from a directory of previously persisted files; both paths use
// the same key format.
type ImageStore struct {
	cache *cache.Cache
}

// NewImageStore returns an empty store.
func NewImageStore() *ImageStore {
	return &ImageStore{cache: cache.New(cache.NoExpiration, 0)}
}

// FromDir re-derives a store from files named "{row}_{col}.{ext}". Files
// with other names are ignored.
func FromDir(dir string) (*ImageStore, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir %s: %w", dir, err)
	}
	s := NewImageStore()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		key, err := findings.ParseImageKey(name)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", entry.Name(), err)
		}
		s.Put(key, base64.StdEncoding.EncodeToString(data))
	}
	return s, nil
}

// Put stores the base64 payload under the key.
func (s *ImageStore) Put(key findings.ImageKey, b64 string) {
	s.cache.Set(key.String(), b64, cache.NoExpiration)
}

// Get returns the payload for the key, if present.
func (s *ImageStore) Get(key findings.ImageKey) (string, bool) {
	v, ok := s.cache.Get(key.String())
	if !ok {
		return "", false
	}
	b64, ok := v.(string)
	return b64, ok
}

// Len returns the number of stored images.
func (s *ImageStore) Len() int { return s.cache.ItemCount() }

// Flush drops all entries. Called between categories so a prior category's
// images cannot leak into the next.
func (s *ImageStore) Flush() { s.cache.Flush() }
