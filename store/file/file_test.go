package file

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/bobg/bed"
)

func TestRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	for _, data := range []bed.Blob{
		bed.Blob("hello"),
		bed.Blob(""),
		bed.Blob{0, 1, 2, 0xff},
	} {
		ref, added, err := s.Put(ctx, data)
		if err != nil {
			t.Fatal(err)
		}
		if !added {
			t.Errorf("first put of %q not added", data)
		}
		if want := data.Ref(); ref != want {
			t.Errorf("got ref %s, want %s", ref, want)
		}

		got, err := s.Get(ctx, ref)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("got %q, want %q", got, data)
		}
	}
}

func TestPutIdempotent(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	data := bed.Blob("same content")

	ref1, added1, err := s.Put(ctx, data)
	if err != nil {
		t.Fatal(err)
	}
	ref2, added2, err := s.Put(ctx, data)
	if err != nil {
		t.Fatal(err)
	}

	if ref1 != ref2 {
		t.Errorf("refs differ: %s vs %s", ref1, ref2)
	}
	if !added1 {
		t.Error("first put not added")
	}
	if added2 {
		t.Error("second put reported added")
	}

	// Exactly one entry in the store.
	var n int
	err = s.ListRefs(ctx, bed.Zero, func(bed.Ref) error {
		n++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("store holds %d blobs, want 1", n)
	}
}

func TestLayout(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	ctx := context.Background()

	ref, _, err := s.Put(ctx, bed.Blob("sharded"))
	if err != nil {
		t.Fatal(err)
	}

	h := ref.String()
	path := filepath.Join(root, "blobs", h[:2], h[2:])
	if _, err := os.Stat(path); err != nil {
		t.Errorf("blob not at sharded path %s: %s", path, err)
	}
}

func TestNotFound(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	ref := bed.Blob("never stored").Ref()

	_, err := s.Get(ctx, ref)
	if !errors.Is(err, bed.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	ok, err := s.Exists(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Exists reported true for missing blob")
	}
}

func TestExists(t *testing.T) {
	s := New(t.TempDir())
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
}

func TestCorrupt(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	ctx := context.Background()

	ref, _, err := s.Put(ctx, bed.Blob("pristine"))
	if err != nil {
		t.Fatal(err)
	}

	h := ref.String()
	path := filepath.Join(root, "blobs", h[:2], h[2:])
	err = os.WriteFile(path, []byte("tampered"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Get(ctx, ref)
	if !errors.Is(err, bed.ErrCorrupt) {
		t.Errorf("got %v, want ErrCorrupt", err)
	}
}

func TestListRefsOrder(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	blobs := []bed.Blob{
		bed.Blob("one"),
		bed.Blob("two"),
		bed.Blob("three"),
		bed.Blob("four"),
		bed.Blob("five"),
	}
	for _, b := range blobs {
		if _, _, err := s.Put(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	var got []bed.Ref
	err := s.ListRefs(ctx, bed.Zero, func(ref bed.Ref) error {
		got = append(got, ref)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != len(blobs) {
		t.Fatalf("got %d refs, want %d", len(got), len(blobs))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Less(got[i]) {
			t.Errorf("refs out of order at %d: %s, %s", i, got[i-1], got[i])
		}
	}

	// Resuming past the second ref yields the rest.
	var resumed []bed.Ref
	err = s.ListRefs(ctx, got[1], func(ref bed.Ref) error {
		resumed = append(resumed, ref)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resumed) != len(got)-2 {
		t.Errorf("resumed list has %d refs, want %d", len(resumed), len(got)-2)
	}
}

func TestConcurrentPut(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	data := bed.Blob("contended content")

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, _, err := s.Put(ctx, data)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, data.Ref())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("got %q, want %q", got, data)
	}
}
