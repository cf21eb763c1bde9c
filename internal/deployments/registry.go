// Package deployments keeps the local list of collections deployed from
// this machine.
package deployments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nftterminal/nftterm/internal/store"
)

// StorageKey is the fixed key the record list is persisted under.
const StorageKey = "nft_terminal_deployed_contracts"

// ErrNoDeployments is returned by Latest when the registry is empty.
var ErrNoDeployments = errors.New("no deployed collections registered")

// Record describes one deployed collection.
type Record struct {
	Address    string `json:"address"`
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	MaxSupply  string `json:"maxSupply"`
	MintPrice  string `json:"mintPrice"`
	DeployedAt int64  `json:"deployedAt"` // unix milliseconds
	TxHash     string `json:"txHash"`
}

// DeployedTime returns DeployedAt as a time.
func (r Record) DeployedTime() time.Time { return time.UnixMilli(r.DeployedAt) }

// Store is the key-value capability the registry needs. Get must return
// store.ErrNotFound for missing keys.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Registry is an append-only list of Records deduplicated by address.
type Registry struct {
	mu    sync.Mutex
	store Store
	log   *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry returns a Registry over s.
func NewRegistry(s Store, opts ...Option) *Registry {
	r := &Registry{store: s, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns all records in insertion order. A missing or unreadable list
// is treated as empty.
func (r *Registry) List() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list()
}

// Add appends rec unless a record with the same address (case-insensitive)
// exists, then persists the full list. It reports whether rec was added. A
// failed read aborts without writing.
func (r *Registry) Add(rec Record) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return false, fmt.Errorf("reading deployments: %w", err)
	}
	for _, existing := range records {
		if strings.EqualFold(existing.Address, rec.Address) {
			return false, nil
		}
	}
	records = append(records, rec)

	data, err := json.Marshal(records)
	if err != nil {
		return false, err
	}
	if err := r.store.Set(StorageKey, data); err != nil {
		return false, fmt.Errorf("saving deployments: %w", err)
	}
	return true, nil
}

// Find returns the record for address, case-insensitively.
func (r *Registry) Find(address string) (Record, bool) {
	for _, rec := range r.List() {
		if strings.EqualFold(rec.Address, address) {
			return rec, true
		}
	}
	return Record{}, false
}

// Latest returns the most recently added record.
func (r *Registry) Latest() (Record, error) {
	records := r.List()
	if len(records) == 0 {
		return Record{}, ErrNoDeployments
	}
	return records[len(records)-1], nil
}

func (r *Registry) list() []Record {
	records, err := r.load()
	if err != nil {
		r.log.Warn("reading deployments", zap.Error(err))
		return []Record{}
	}
	return records
}

// load reads the persisted list. A missing key or a corrupt value reads as
// empty; any other store error is returned.
func (r *Registry) load() ([]Record, error) {
	data, err := r.store.Get(StorageKey)
	if errors.Is(err, store.ErrNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		r.log.Warn("ignoring corrupt deployments list", zap.Error(err))
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
