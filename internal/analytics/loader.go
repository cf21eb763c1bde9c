package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/nftterminal/nftterm/internal/chain"
	"github.com/nftterminal/nftterm/internal/nft"
)

// ErrStaleLoad is returned by Load when a newer load started before it
// finished. Its results are discarded.
var ErrStaleLoad = errors.New("stale analytics load")

// CollectionReader reads a collection snapshot. *nft.Reader satisfies it.
type CollectionReader interface {
	ReadCollection(ctx context.Context, addr common.Address) (*nft.Collection, error)
}

// LoaderConfig tunes report building.
type LoaderConfig struct {
	BlocksPerDay    uint64
	TopHolders      int
	RecentTransfers int
	Clock           func() time.Time
}

// Loader builds Reports. Every call to Load takes a new generation number;
// only the latest generation may return a report.
type Loader struct {
	heads   chain.BlockNumberer
	reader  CollectionReader
	scanner *Scanner
	cfg     LoaderConfig
	log     *zap.Logger
	gen     atomic.Uint64
}

// NewLoader wires a Loader.
func NewLoader(heads chain.BlockNumberer, reader CollectionReader, scanner *Scanner, cfg LoaderConfig, log *zap.Logger) *Loader {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.BlocksPerDay == 0 {
		cfg.BlocksPerDay = 86_400
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{heads: heads, reader: reader, scanner: scanner, cfg: cfg, log: log}
}

// Latest returns the most recently issued generation.
func (l *Loader) Latest() uint64 { return l.gen.Load() }

// Load reads the collection, scans recent Transfer logs and aggregates them.
// Collection and head reads fail the load; dropped log ranges do not.
func (l *Loader) Load(ctx context.Context, addr common.Address) (*Report, error) {
	gen := l.gen.Add(1)
	log := l.log.With(zap.Uint64("generation", gen), zap.String("contract", addr.Hex()))

	col, err := l.reader.ReadCollection(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}
	head, err := l.heads.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading head block: %w", err)
	}
	scan, err := l.scanner.Scan(ctx, addr, head)
	if err != nil {
		return nil, fmt.Errorf("scanning transfers: %w", err)
	}

	top, unique := TopHolders(scan.Events, col.TotalSupply, l.cfg.TopHolders)
	r := &Report{
		Generation:      gen,
		LoadedAt:        l.cfg.Clock(),
		Contract:        addr,
		Collection:      col,
		Head:            head,
		StartBlock:      scan.Start,
		TotalMinted:     col.TotalSupply,
		UniqueHolders:   unique,
		MintVolume:      MintVolume(col),
		TopHolders:      top,
		MintDays:        MintBuckets(scan.Events, head, l.cfg.BlocksPerDay, l.cfg.Clock()),
		ActiveAddresses: ActiveAddresses(scan.Events),
		Transfers:       len(scan.Events),
		Recent:          RecentTransfers(scan.Events, l.cfg.RecentTransfers),
		Ranges:          scan.Ranges,
		DroppedRanges:   scan.Dropped,
	}

	if latest := l.gen.Load(); latest != gen {
		log.Debug("discarding stale load", zap.Uint64("latest", latest))
		return nil, ErrStaleLoad
	}
	log.Debug("analytics loaded",
		zap.Uint64("head", head),
		zap.Int("events", len(scan.Events)),
		zap.Int("holders", unique))
	return r, nil
}
