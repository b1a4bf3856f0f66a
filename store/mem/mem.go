// Package mem implements an in-memory blob store.
package mem

import (
	"context"
	"sort"
	"sync"

	"github.com/bobg/bed"
	"github.com/bobg/bed/store"
)

var _ bed.Store = &Store{}

// Store is a memory-based implementation of a blob store.
type Store struct {
	mu    sync.Mutex
	blobs map[bed.Ref]bed.Blob
}

// New produces a new Store.
func New() *Store {
	return &Store{blobs: make(map[bed.Ref]bed.Blob)}
}

// Get gets the blob with hash `ref`.
func (s *Store) Get(_ context.Context, ref bed.Ref) (bed.Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.blobs[ref]; ok {
		// Copy, so callers cannot mutate stored bytes.
		out := make(bed.Blob, len(b))
		copy(out, b)
		return out, nil
	}
	return nil, bed.ErrNotFound
}

// Exists tells whether the blob with hash `ref` is in the store.
func (s *Store) Exists(_ context.Context, ref bed.Ref) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.blobs[ref]
	return ok, nil
}

// Put adds a blob to the store if it wasn't already present.
func (s *Store) Put(_ context.Context, b bed.Blob) (bed.Ref, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := b.Ref()
	if _, ok := s.blobs[r]; ok {
		return r, false, nil
	}
	stored := make(bed.Blob, len(b))
	copy(stored, b)
	s.blobs[r] = stored
	return r, true, nil
}

// ListRefs produces all blob refs in the store, in lexicographic order.
func (s *Store) ListRefs(ctx context.Context, start bed.Ref, f func(bed.Ref) error) error {
	s.mu.Lock()
	refs := make([]bed.Ref, 0, len(s.blobs))
	for ref := range s.blobs {
		refs = append(refs, ref)
	}
	s.mu.Unlock()

	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	index := sort.Search(len(refs), func(n int) bool {
		return start.Less(refs[n])
	})

	for i := index; i < len(refs); i++ {
		err := f(refs[i])
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	store.Register("mem", func(context.Context, map[string]interface{}) (bed.Store, error) {
		return New(), nil
	})
}
