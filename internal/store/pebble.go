package store

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Pebble is a Store backed by pebble.
type Pebble struct {
	db *pebble.DB
}

// OpenPebble opens or creates a pebble database at path.
func OpenPebble(path string) (*Pebble, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble %s: %w", path, err)
	}
	return &Pebble{db: db}, nil
}

func (s *Pebble) Get(key string) ([]byte, error) {
	v, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

func (s *Pebble) Set(key string, value []byte) error {
	return s.db.Set([]byte(key), value, pebble.Sync)
}

func (s *Pebble) Close() error { return s.db.Close() }
