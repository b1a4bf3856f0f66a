// Package audit implements a durable append-only log of command invocations.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/bobg/flock"
	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/bobg/bed"
)

// Log is an append-only record of command invocations,
// stored in a sqlite3 database separate from blob content.
// Rows are never updated or deleted.
//
// A Log is safe for concurrent use by independent processes
// sharing the same database file:
// appends are serialized with a file lock.
//
// Open a Log once per process and Close it on every exit path;
// callers are expected to write the log strictly after
// the recorded operation's own effect has completed or definitively failed.
type Log struct {
	db       *sql.DB
	lockpath string
	flocker  flock.Locker
}

// Schema is the SQL that Open executes.
// It creates the `audit` table if it does not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS audit (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  at TEXT NOT NULL,
  command TEXT NOT NULL,
  args TEXT NOT NULL,
  success INTEGER NOT NULL,
  error_message TEXT,
  output_name TEXT
);
`

// Open opens (creating if necessary) the audit log stored at path.
func Open(ctx context.Context, path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensuring schema")
	}
	return &Log{db: db, lockpath: path + ".lock"}, nil
}

// Close closes the log.
func (l *Log) Close() error {
	return l.db.Close()
}

// An Outcome is the result of one invocation:
// either success, optionally naming an output blob,
// or failure with a message.
type Outcome struct {
	ok     bool
	errmsg string
	output *bed.Ref
}

// Success is the outcome of an operation that succeeded,
// producing the blob named by ref (nil when the operation produced none).
func Success(ref *bed.Ref) Outcome {
	return Outcome{ok: true, output: ref}
}

// Failure is the outcome of an operation that failed with err.
func Failure(err error) Outcome {
	return Outcome{errmsg: err.Error()}
}

// Record appends one row describing an invocation of command with args.
// It returns only after the row is durably committed.
func (l *Log) Record(ctx context.Context, command string, args []string, o Outcome) error {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return errors.Wrap(err, "marshaling args")
	}

	var (
		errmsg sql.NullString
		output sql.NullString
	)
	if !o.ok {
		errmsg = sql.NullString{String: o.errmsg, Valid: true}
	}
	// A failure row never names an output blob.
	if o.ok && o.output != nil {
		output = sql.NullString{String: o.output.String(), Valid: true}
	}

	// The file lock serializes appends across processes.
	err = l.flocker.Lock(l.lockpath)
	if err != nil {
		return errors.Wrap(err, "locking audit log")
	}
	defer l.flocker.Unlock(l.lockpath)

	const q = `INSERT INTO audit (at, command, args, success, error_message, output_name) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = l.db.ExecContext(ctx, q,
		time.Now().UTC().Format(time.RFC3339Nano),
		command,
		string(argsJSON),
		o.ok,
		errmsg,
		output,
	)
	return errors.Wrap(err, "inserting audit row")
}

// A Record is one row of the log.
type Record struct {
	ID      int64
	At      time.Time
	Command string
	Args    []string
	OK      bool
	Err     string
	Output  string // hex ref of the output blob, if any
}

// Each calls f for every row of the log in id order.
// If f returns an error, Each exits with that error.
func (l *Log) Each(ctx context.Context, f func(Record) error) error {
	const q = `SELECT id, at, command, args, success, error_message, output_name FROM audit ORDER BY id`

	return sqlutil.ForQueryRows(ctx, l.db, q, func(id int64, atstr, command, argsJSON string, success bool, errmsg, output sql.NullString) error {
		at, err := time.Parse(time.RFC3339Nano, atstr)
		if err != nil {
			return errors.Wrapf(err, "parsing time %s", atstr)
		}
		var args []string
		err = json.Unmarshal([]byte(argsJSON), &args)
		if err != nil {
			return errors.Wrap(err, "unmarshaling args")
		}
		return f(Record{
			ID:      id,
			At:      at,
			Command: command,
			Args:    args,
			OK:      success,
			Err:     errmsg.String,
			Output:  output.String,
		})
	})
}
