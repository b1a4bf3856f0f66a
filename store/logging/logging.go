// Package logging implements a store that delegates everything to a nested store,
// logging operations as they happen.
package logging

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/bobg/bed"
	"github.com/bobg/bed/store"
)

var _ bed.Store = &Store{}

// Store delegates to a nested store,
// writing a structured log line per operation.
type Store struct {
	s      bed.Store
	logger zerolog.Logger
}

// New produces a new Store delegating to `s` and logging to `logger`.
func New(s bed.Store, logger zerolog.Logger) *Store {
	return &Store{s: s, logger: logger}
}

func (s *Store) Get(ctx context.Context, ref bed.Ref) (bed.Blob, error) {
	b, err := s.s.Get(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Stringer("ref", ref).Msg("Get")
	} else {
		s.logger.Debug().Stringer("ref", ref).Int("size", len(b)).Msg("Get")
	}
	return b, err
}

func (s *Store) Exists(ctx context.Context, ref bed.Ref) (bool, error) {
	ok, err := s.s.Exists(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Stringer("ref", ref).Msg("Exists")
	} else {
		s.logger.Debug().Stringer("ref", ref).Bool("exists", ok).Msg("Exists")
	}
	return ok, err
}

func (s *Store) Put(ctx context.Context, b bed.Blob) (bed.Ref, bool, error) {
	ref, added, err := s.s.Put(ctx, b)
	if err != nil {
		s.logger.Error().Err(err).Msg("Put")
	} else {
		s.logger.Debug().Stringer("ref", ref).Bool("added", added).Int("size", len(b)).Msg("Put")
	}
	return ref, added, err
}

func (s *Store) ListRefs(ctx context.Context, start bed.Ref, f func(bed.Ref) error) error {
	s.logger.Debug().Stringer("start", start).Msg("ListRefs")
	return s.s.ListRefs(ctx, start, func(ref bed.Ref) error {
		err := f(ref)
		if err != nil {
			s.logger.Error().Err(err).Stringer("ref", ref).Msg("ListRefs callback")
		}
		return err
	})
}

func init() {
	store.Register("logging", func(ctx context.Context, conf map[string]interface{}) (bed.Store, error) {
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
		return New(nestedStore, zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()), nil
	})
}
