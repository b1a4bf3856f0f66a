// Package lru implements a blob store that acts as a least-recently-used cache for a nested blob store.
package lru

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/bobg/bed"
	"github.com/bobg/bed/store"
)

var _ bed.Store = &Store{}

// Store implements a memory-based least-recently-used cache for a blob store.
// Writes pass through to the underlying blob store.
// Content addressing makes the cache trivially coherent:
// a ref's bytes never change, so a cached entry can never go stale.
type Store struct {
	c *lru.Cache // Ref->Blob
	s bed.Store
}

// New produces a new Store backed by `s` and caching up to `size` blobs.
func New(s bed.Store, size int) (*Store, error) {
	c, err := lru.New(size)
	return &Store{s: s, c: c}, err
}

// Get gets the blob with hash `ref`.
func (s *Store) Get(ctx context.Context, ref bed.Ref) (bed.Blob, error) {
	if got, ok := s.c.Get(ref); ok {
		return clone(got.(bed.Blob)), nil
	}
	blob, err := s.s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	// Cache a private copy: the returned slice is the caller's to mutate.
	s.c.Add(ref, clone(blob))
	return blob, nil
}

// Exists tells whether the blob with hash `ref` is in the store.
func (s *Store) Exists(ctx context.Context, ref bed.Ref) (bool, error) {
	if s.c.Contains(ref) {
		return true, nil
	}
	return s.s.Exists(ctx, ref)
}

// Put adds a blob to the store if it wasn't already present.
func (s *Store) Put(ctx context.Context, b bed.Blob) (bed.Ref, bool, error) {
	ref, added, err := s.s.Put(ctx, b)
	if err != nil {
		return ref, added, err
	}
	s.c.Add(ref, clone(b))
	return ref, added, nil
}

func clone(b bed.Blob) bed.Blob {
	out := make(bed.Blob, len(b))
	copy(out, b)
	return out
}

// ListRefs produces all blob refs in the store, in lexicographic order.
func (s *Store) ListRefs(ctx context.Context, start bed.Ref, f func(bed.Ref) error) error {
	return s.s.ListRefs(ctx, start, f)
}

func init() {
	store.Register("lru", func(ctx context.Context, conf map[string]interface{}) (bed.Store, error) {
		size, ok := confInt(conf["size"])
		if !ok {
			return nil, errors.New(`missing "size" parameter`)
		}
		nested, ok := conf["nested"].(map[string]interface{})
		if !ok {
			return nil, errors.New(`missing "nested" parameter`)
		}
		nestedType, ok := nested["type"].(string)
		if !ok {
			return nil, errors.New(`"nested" parameter missing "type"`)
		}
		nestedStore, err := store.Create(ctx, nestedType, nested)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nestedStore, size)
	})
}

// JSON decoding produces float64 for numbers.
func confInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
