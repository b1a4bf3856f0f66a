// Package pg implements a blob store in a PostgreSQL database.
package pg

import (
	"context"
	"database/sql"
	stderrs "errors"

	"github.com/bobg/sqlutil"
	_ "github.com/lib/pq" // register the postgres type for sql.Open
	"github.com/pkg/errors"

	"github.com/bobg/bed"
	"github.com/bobg/bed/store"
)

var _ bed.Store = &Store{}

// Store is a Postgresql-based blob store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `blobs` table if it does not exist.
// (If it does exist, it must have the columns, constraints, and indexing described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS blobs (
  ref BYTEA PRIMARY KEY NOT NULL,
  data BYTEA NOT NULL
);
`

// New produces a new Store using `db` for storage.
// It expects to create the table `blobs`,
// or for that table already to exist with the correct schema.
// (See variable Schema.)
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, err
}

// Get gets the blob with hash `ref`.
func (s *Store) Get(ctx context.Context, ref bed.Ref) (bed.Blob, error) {
	const q = `SELECT data FROM blobs WHERE ref = $1`

	var result []byte
	err := s.db.QueryRowContext(ctx, q, ref[:]).Scan(&result)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, bed.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying blob %s", ref)
	}
	if got := bed.Blob(result).Ref(); got != ref {
		return nil, errors.Wrapf(bed.ErrCorrupt, "got %s, want %s", got, ref)
	}
	return result, nil
}

// Exists tells whether the blob with hash `ref` is in the store.
func (s *Store) Exists(ctx context.Context, ref bed.Ref) (bool, error) {
	const q = `SELECT 1 FROM blobs WHERE ref = $1`

	var one int
	err := s.db.QueryRowContext(ctx, q, ref[:]).Scan(&one)
	if stderrs.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "checking for blob %s", ref)
	}
	return true, nil
}

// Put adds a blob to the store if it wasn't already present.
func (s *Store) Put(ctx context.Context, b bed.Blob) (bed.Ref, bool, error) {
	const q = `INSERT INTO blobs (ref, data) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	ref := b.Ref()
	res, err := s.db.ExecContext(ctx, q, ref[:], []byte(b))
	if err != nil {
		return bed.Ref{}, false, errors.Wrap(err, "inserting blob")
	}

	aff, err := res.RowsAffected()
	return ref, aff > 0, errors.Wrap(err, "counting affected rows")
}

// ListRefs produces all blob refs in the store, in lexicographic order.
func (s *Store) ListRefs(ctx context.Context, start bed.Ref, f func(bed.Ref) error) error {
	const q = `SELECT ref FROM blobs WHERE ref > $1 ORDER BY ref`

	return sqlutil.ForQueryRows(ctx, s.db, q, start[:], func(ref []byte) error {
		return f(bed.RefFromBytes(ref))
	})
}

func init() {
	store.Register("pg", func(ctx context.Context, conf map[string]interface{}) (bed.Store, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("postgres", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
