package analytics

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/nftterminal/nftterm/internal/chain"
	"github.com/nftterminal/nftterm/internal/nft"
)

var (
	zeroAddr = common.Address{}
	addrA    = common.HexToAddress("0x000000000000000000000000000000000000000a")
	addrB    = common.HexToAddress("0x000000000000000000000000000000000000000b")
	addrC    = common.HexToAddress("0x000000000000000000000000000000000000000c")
	contract = common.HexToAddress("0x00000000000000000000000000000000000000c0")
)

func transferLog(from, to common.Address, tokenID int64, block uint64) chain.LogEntry {
	return chain.LogEntry{
		Address: contract.Hex(),
		Topics: []string{
			nft.TransferTopic.Hex(),
			common.BytesToHash(from.Bytes()).Hex(),
			common.BytesToHash(to.Bytes()).Hex(),
			common.BigToHash(big.NewInt(tokenID)).Hex(),
		},
		Data:        "0x",
		BlockNumber: hexutil.EncodeUint64(block),
		TxHash:      common.BigToHash(big.NewInt(int64(block))).Hex(),
		LogIndex:    "0x0",
	}
}

func ev(from, to common.Address, block uint64) TransferEvent {
	return TransferEvent{From: from, To: to, TokenID: big.NewInt(1), BlockNumber: block}
}

// fakeFetcher serves logs from an in-memory list and records every
// requested range.
type fakeFetcher struct {
	mu       sync.Mutex
	logs     []chain.LogEntry
	failFrom map[uint64]bool
	requests []BlockRange
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (f *fakeFetcher) GetLogs(ctx context.Context, filter chain.LogFilter) ([]chain.LogEntry, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.requests = append(f.requests, BlockRange{From: filter.FromBlock, To: filter.ToBlock})
	f.mu.Unlock()

	if f.failFrom[filter.FromBlock] {
		return nil, errors.New("query returned more than 10000 results")
	}
	var out []chain.LogEntry
	for _, l := range f.logs {
		b, _ := hexutil.DecodeUint64(l.BlockNumber)
		if b >= filter.FromBlock && b <= filter.ToBlock {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeHead struct{ head uint64 }

func (h fakeHead) BlockNumber(context.Context) (uint64, error) { return h.head, nil }

type fakeReader struct {
	col   *nft.Collection
	err   error
	calls atomic.Int32
	// gate, when set, blocks the first call until it is closed.
	gate chan struct{}
}

func (r *fakeReader) ReadCollection(_ context.Context, addr common.Address) (*nft.Collection, error) {
	if r.calls.Add(1) == 1 && r.gate != nil {
		<-r.gate
	}
	if r.err != nil {
		return nil, r.err
	}
	c := *r.col
	c.Address = addr
	return &c, nil
}
