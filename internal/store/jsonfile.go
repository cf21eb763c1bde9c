package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONFile keeps every key in a single JSON object on disk. JSON values are
// embedded as-is and returned compacted; anything else is stored as a JSON
// string.
type JSONFile struct {
	mu   sync.Mutex
	path string
}

// NewJSONFile returns a store backed by the file at path. The file is
// created on first Set.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the backing file path.
func (s *JSONFile) Path() string { return s.path }

func (s *JSONFile) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	v, ok := all[key]
	if !ok {
		return nil, ErrNotFound
	}
	var str string
	if err := json.Unmarshal(v, &str); err == nil {
		return []byte(str), nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *JSONFile) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return err
	}
	if json.Valid(value) && !isJSONString(value) {
		all[key] = json.RawMessage(append([]byte(nil), value...))
	} else {
		quoted, err := json.Marshal(string(value))
		if err != nil {
			return err
		}
		all[key] = quoted
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *JSONFile) Close() error { return nil }

func (s *JSONFile) load() (map[string]json.RawMessage, error) {
	all := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return all, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return all, nil
}

func isJSONString(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			return true
		default:
			return false
		}
	}
	return false
}
