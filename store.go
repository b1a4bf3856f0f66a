package bed

import (
	"context"
	"errors"
)

// Getter is a read-only Store (qv).
type Getter interface {
	// Get gets a blob by its ref.
	// The returned bytes are the caller's to keep:
	// they never alias storage held by the store.
	Get(context.Context, Ref) (Blob, error)

	// Exists tells whether a blob with the given ref is in the store.
	// Absence is (false, nil), not an error.
	Exists(context.Context, Ref) (bool, error)

	// ListRefs calls a function for each blob ref in the store in lexicographic order,
	// beginning with the first ref _after_ the specified one.
	//
	// The calls reflect at least the set of refs
	// known at the moment ListRefs was called.
	// It is unspecified whether later changes,
	// that happen concurrently with ListRefs,
	// are reflected.
	//
	// If the callback function returns an error,
	// ListRefs exits with that error.
	ListRefs(context.Context, Ref, func(r Ref) error) error
}

// Store is a blob store.
// It stores byte sequences - "blobs" - of arbitrary length.
// Each blob can be retrieved using its "ref" as a lookup key.
// A ref is simply the SHA2-256 hash of the blob's content.
// Blobs are immutable: once added they are never updated and never removed.
type Store interface {
	Getter

	// Put adds b to the store if it was not already present.
	// It returns b's ref and a boolean that is true iff the blob had to be added.
	// Putting content whose ref is already present costs one existence check
	// and touches nothing.
	Put(ctx context.Context, b Blob) (ref Ref, added bool, err error)
}

// ErrNotFound is the error returned
// when a Getter tries to access a non-existent ref.
var ErrNotFound = errors.New("not found")

// ErrCorrupt is the error returned
// when the bytes read for a ref no longer hash to that ref.
var ErrCorrupt = errors.New("blob does not match its ref")
