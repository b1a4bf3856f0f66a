// Package file implements a blob store as a file hierarchy.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bobg/bed"
	"github.com/bobg/bed/store"
)

var _ bed.Store = &Store{}

// Store is a file-based implementation of a blob store.
// A blob with hex ref H lives at root/blobs/H[:2]/H[2:]:
// a short prefix names the shard directory,
// the remainder names the entry,
// bounding the number of entries per directory.
type Store struct {
	root string
}

// New produces a new Store storing data beneath `root`.
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) blobroot() string {
	return filepath.Join(s.root, "blobs")
}

func (s *Store) blobpath(ref bed.Ref) string {
	h := ref.String()
	return filepath.Join(s.blobroot(), h[:2], h[2:])
}

// Get gets the blob with hash `ref`.
// The bytes read are re-hashed and compared against `ref`;
// a mismatch reports bed.ErrCorrupt.
func (s *Store) Get(_ context.Context, ref bed.Ref) (bed.Blob, error) {
	path := s.blobpath(ref)
	blob, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, bed.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if got := bed.Blob(blob).Ref(); got != ref {
		return nil, errors.Wrapf(bed.ErrCorrupt, "got %s, want %s", got, ref)
	}
	return blob, nil
}

// Exists tells whether the blob with hash `ref` is in the store.
func (s *Store) Exists(_ context.Context, ref bed.Ref) (bool, error) {
	_, err := os.Lstat(s.blobpath(ref))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "statting %s", s.blobpath(ref))
	}
	return true, nil
}

// Put adds a blob to the store if it wasn't already present.
//
// The blob is first written to a temp file in the shard directory
// and then renamed into place,
// so concurrent processes putting the same content
// see either no entry or the complete entry, never a partial one.
func (s *Store) Put(ctx context.Context, b bed.Blob) (bed.Ref, bool, error) {
	var (
		ref  = b.Ref()
		path = s.blobpath(ref)
		dir  = filepath.Dir(path)
	)

	ok, err := s.Exists(ctx, ref)
	if err != nil {
		return ref, false, err
	}
	if ok {
		return ref, false, nil
	}

	// MkdirAll succeeds when the shard dir already exists,
	// including when another process creates it concurrently.
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return ref, false, errors.Wrapf(err, "ensuring path %s exists", dir)
	}

	tmp, err := os.CreateTemp(dir, "tmp*")
	if err != nil {
		return bed.Zero, false, errors.Wrapf(err, "creating temp file in %s", dir)
	}
	tmpname := tmp.Name()

	_, err = tmp.Write(b)
	if err != nil {
		tmp.Close()
		os.Remove(tmpname)
		return bed.Zero, false, errors.Wrapf(err, "writing data to %s", tmpname)
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmpname)
		return bed.Zero, false, errors.Wrapf(err, "closing %s", tmpname)
	}

	// Identical content renamed by a concurrent process is identical bytes,
	// so a lost race is harmless.
	err = os.Rename(tmpname, path)
	if err != nil {
		os.Remove(tmpname)
		return bed.Zero, false, errors.Wrapf(err, "committing %s", path)
	}

	return ref, true, nil
}

// ListRefs produces all blob refs in the store, in lexicographic order.
func (s *Store) ListRefs(ctx context.Context, start bed.Ref, f func(bed.Ref) error) error {
	topLevel, err := os.ReadDir(s.blobroot())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading dir %s", s.blobroot())
	}

	startHex := start.String()
	topIndex := sort.Search(len(topLevel), func(n int) bool {
		return topLevel[n].Name() >= startHex[:2]
	})
	for i := topIndex; i < len(topLevel); i++ {
		topInfo := topLevel[i]
		if !topInfo.IsDir() {
			continue
		}
		topName := topInfo.Name()
		if len(topName) != 2 {
			continue
		}
		if _, err = strconv.ParseInt(topName, 16, 64); err != nil {
			continue
		}

		entries, err := os.ReadDir(filepath.Join(s.blobroot(), topName))
		if err != nil {
			return errors.Wrapf(err, "reading dir %s/%s", s.blobroot(), topName)
		}

		index := sort.Search(len(entries), func(n int) bool {
			return topName+entries[n].Name() > startHex
		})
		for j := index; j < len(entries); j++ {
			entry := entries[j]
			if entry.IsDir() {
				continue
			}

			ref, err := bed.RefFromHex(topName + entry.Name())
			if err != nil {
				continue
			}

			err = f(ref)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	store.Register("file", func(_ context.Context, conf map[string]interface{}) (bed.Store, error) {
		root, ok := conf["root"].(string)
		if !ok {
			return nil, errors.New(`missing "root" parameter`)
		}
		return New(root), nil
	})
}
