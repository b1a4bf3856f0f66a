// Package edit composes text transformations over a blob store
// without ever mutating stored blobs.
package edit

import (
	"context"

	"github.com/pkg/errors"

	"github.com/bobg/bed"
)

// A Transform maps one text to another.
// Texts are UTF-8; a Transform must be pure.
type Transform func(string) (string, error)

// Edit reads the blob at ref,
// applies f to its text,
// and puts the result,
// returning the new blob's ref.
//
// The source blob is never modified or removed.
// If f fails, the store is left exactly as it was:
// the put happens only after f returns successfully.
// A missing source blob reports bed.ErrNotFound.
func Edit(ctx context.Context, s bed.Store, ref bed.Ref, f Transform) (bed.Ref, error) {
	blob, err := s.Get(ctx, ref)
	if err != nil {
		return bed.Zero, errors.Wrapf(err, "getting blob %s", ref)
	}

	transformed, err := f(string(blob))
	if err != nil {
		return bed.Zero, err
	}

	newRef, _, err := s.Put(ctx, bed.Blob(transformed))
	if err != nil {
		return bed.Zero, errors.Wrap(err, "storing transformed blob")
	}
	return newRef, nil
}
