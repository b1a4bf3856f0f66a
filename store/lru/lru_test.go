package lru

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/bobg/bed"
	"github.com/bobg/bed/store/mem"
)

// countingStore counts Get calls reaching the nested store.
type countingStore struct {
	bed.Store
	mu   sync.Mutex
	gets int
}

func (c *countingStore) Get(ctx context.Context, ref bed.Ref) (bed.Blob, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.Store.Get(ctx, ref)
}

func TestReadThrough(t *testing.T) {
	nested := &countingStore{Store: mem.New()}
	s, err := New(nested, 10)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	data := bed.Blob("cache me")
	ref, _, err := s.Put(ctx, data)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		got, err := s.Get(ctx, ref)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("got %q, want %q", got, data)
		}
	}

	// The put warmed the cache, so no Get ever reaches the nested store.
	if nested.gets != 0 {
		t.Errorf("nested store saw %d gets, want 0", nested.gets)
	}
}

func TestEviction(t *testing.T) {
	nested := &countingStore{Store: mem.New()}
	s, err := New(nested, 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	ref1, _, err := s.Put(ctx, bed.Blob("first"))
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = s.Put(ctx, bed.Blob("second"))
	if err != nil {
		t.Fatal(err)
	}

	// first was evicted; this get must fall through.
	_, err = s.Get(ctx, ref1)
	if err != nil {
		t.Fatal(err)
	}
	if nested.gets != 1 {
		t.Errorf("nested store saw %d gets, want 1", nested.gets)
	}
}

// Mutating bytes a caller put or got must never reach the cache.
func TestIsolation(t *testing.T) {
	nested := &countingStore{Store: mem.New()}
	s, err := New(nested, 10)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	put := bed.Blob("pristine")
	ref, _, err := s.Put(ctx, put)
	if err != nil {
		t.Fatal(err)
	}
	put[0] = 'X'

	got, err := s.Get(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("pristine")) {
		t.Fatalf("cache poisoned by put-slice mutation: %q", got)
	}

	// Miss path: evict, refill from the nested store, mutate the result.
	s.c.Purge()
	got, err = s.Get(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	got[0] = 'Y'

	again, err := s.Get(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again, []byte("pristine")) {
		t.Errorf("cache poisoned by get-result mutation: %q", again)
	}
	if got := again.Ref(); got != ref {
		t.Errorf("cached bytes hash to %s, want %s", got, ref)
	}
}

func TestExists(t *testing.T) {
	nested := &countingStore{Store: mem.New()}
	s, err := New(nested, 10)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	ref, _, err := s.Put(ctx, bed.Blob("present"))
	if err != nil {
		t.Fatal(err)
	}

	ok, err := s.Exists(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("Exists reported false for stored blob")
	}

	ok, err = s.Exists(ctx, bed.Blob("absent").Ref())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Exists reported true for missing blob")
	}
}
