package store

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDB is a Store backed by goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens or creates a LevelDB database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb %s: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (s *LevelDB) Get(key string) ([]byte, error) {
	v, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *LevelDB) Set(key string, value []byte) error {
	return s.db.Put([]byte(key), value, nil)
}

func (s *LevelDB) Close() error { return s.db.Close() }
