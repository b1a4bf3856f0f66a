// Package bed is a content-addressable blob store
// with derived-content editing.
//
// A blob store stores arbitrarily sized sequences of bytes,
// or _blobs_,
// and indexes them by their hash,
// which is used as a unique key.
// This key is called the blob’s reference, or _ref_.
//
// With a sufficiently good hash algorithm,
// the likelihood of any two distinct blobs “colliding” is vanishingly small.
// This module uses sha2-256,
// which is a sufficiently good hash algorithm.
//
// Blobs in a bed store are immutable.
// Editing never changes a stored blob:
// an edit reads a blob,
// applies a text transformation,
// and stores the result as a new blob under its own ref
// (see the edit subpackage).
// The original remains reachable at its original ref.
//
// Every top-level operation of the bed command,
// whether it succeeds or fails,
// is recorded in a durable append-only audit log
// (see the audit subpackage).
package bed
