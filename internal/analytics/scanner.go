package analytics

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/nftterminal/nftterm/internal/chain"
	"github.com/nftterminal/nftterm/internal/nft"
)

// Scan defaults. Public RPC providers reject eth_getLogs spans of 100 blocks
// or more.
const (
	DefaultScanWindow = 2000
	DefaultRangeSpan  = 99
	DefaultBatchSize  = 10
)

// LogFetcher is the slice of EVMClient the scanner needs.
type LogFetcher interface {
	GetLogs(ctx context.Context, f chain.LogFilter) ([]chain.LogEntry, error)
}

// BlockRange is an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// Len returns the number of blocks in r.
func (r BlockRange) Len() uint64 { return r.To - r.From + 1 }

// SplitRange splits [start, end] into contiguous ranges of at most span
// blocks each.
func SplitRange(start, end, span uint64) []BlockRange {
	if span == 0 {
		span = DefaultRangeSpan
	}
	if start > end {
		return nil
	}
	var out []BlockRange
	for from := start; ; from += span {
		to := from + span - 1
		if to >= end || to < from {
			out = append(out, BlockRange{From: from, To: end})
			return out
		}
		out = append(out, BlockRange{From: from, To: to})
	}
}

// ScanResult is the outcome of one scan. Dropped ranges are not an error.
type ScanResult struct {
	Head    uint64
	Start   uint64
	Events  []TransferEvent
	Ranges  int
	Dropped []BlockRange
}

// Complete reports whether every sub-range was fetched.
func (r *ScanResult) Complete() bool { return len(r.Dropped) == 0 }

// Scanner fetches Transfer logs for the most recent blocks of a collection.
type Scanner struct {
	fetcher   LogFetcher
	window    uint64
	span      uint64
	batchSize int
	log       *zap.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithWindow sets how many recent blocks are scanned.
func WithWindow(blocks uint64) ScannerOption {
	return func(s *Scanner) {
		if blocks > 0 {
			s.window = blocks
		}
	}
}

// WithRangeSpan sets the maximum number of blocks per eth_getLogs request.
func WithRangeSpan(blocks uint64) ScannerOption {
	return func(s *Scanner) {
		if blocks > 0 {
			s.span = blocks
		}
	}
}

// WithBatchSize sets how many sub-range requests run at once.
func WithBatchSize(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithScanLogger attaches a logger.
func WithScanLogger(l *zap.Logger) ScannerOption {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

// NewScanner creates a Scanner over fetcher.
func NewScanner(fetcher LogFetcher, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		fetcher:   fetcher,
		window:    DefaultScanWindow,
		span:      DefaultRangeSpan,
		batchSize: DefaultBatchSize,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Window returns the start block of the scan window ending at head.
func (s *Scanner) Window(head uint64) uint64 {
	if head < s.window {
		return 0
	}
	return head - s.window
}

// Scan fetches Transfer events for addr in [head-window, head]. Each batch
// of sub-ranges runs concurrently and is waited on in full; failed ranges
// are dropped without retry. Events keep sub-range order within a batch.
func (s *Scanner) Scan(ctx context.Context, addr common.Address, head uint64) (*ScanResult, error) {
	start := s.Window(head)
	ranges := SplitRange(start, head, s.span)
	res := &ScanResult{Head: head, Start: start, Ranges: len(ranges)}

	for i := 0; i < len(ranges); i += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch := ranges[i:min(i+s.batchSize, len(ranges))]
		events := make([][]TransferEvent, len(batch))
		errs := make([]error, len(batch))

		var wg sync.WaitGroup
		for j, r := range batch {
			wg.Add(1)
			go func(idx int, r BlockRange) {
				defer wg.Done()
				events[idx], errs[idx] = s.fetch(ctx, addr, r)
			}(j, r)
		}
		wg.Wait()

		for j, r := range batch {
			if errs[j] != nil {
				s.log.Debug("log range dropped",
					zap.Uint64("from", r.From),
					zap.Uint64("to", r.To),
					zap.Error(errs[j]))
				res.Dropped = append(res.Dropped, r)
				continue
			}
			res.Events = append(res.Events, events[j]...)
		}
	}

	if len(res.Dropped) > 0 {
		s.log.Warn("scan incomplete",
			zap.String("contract", addr.Hex()),
			zap.Int("dropped", len(res.Dropped)),
			zap.Int("ranges", res.Ranges))
	}
	return res, nil
}

func (s *Scanner) fetch(ctx context.Context, addr common.Address, r BlockRange) ([]TransferEvent, error) {
	logs, err := s.fetcher.GetLogs(ctx, chain.LogFilter{
		Address:   addr,
		Topics:    []common.Hash{nft.TransferTopic},
		FromBlock: r.From,
		ToBlock:   r.To,
	})
	if err != nil {
		return nil, err
	}
	out := make([]TransferEvent, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}
		ev, err := DecodeTransfer(l)
		if err != nil {
			s.log.Debug("skipping log", zap.String("tx", l.TxHash), zap.Error(err))
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
