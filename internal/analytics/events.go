package analytics

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/nftterminal/nftterm/internal/chain"
	"github.com/nftterminal/nftterm/internal/nft"
)

// ErrNotTransfer is returned for logs that are not ERC-721 Transfer events.
var ErrNotTransfer = errors.New("not a Transfer log")

// TransferEvent is one decoded Transfer(from, to, tokenId) log.
type TransferEvent struct {
	From        common.Address `json:"from"`
	To          common.Address `json:"to"`
	TokenID     *big.Int       `json:"token_id"`
	BlockNumber uint64         `json:"block_number"`
	TxHash      string         `json:"tx_hash"`
	LogIndex    uint64         `json:"log_index"`
}

// IsMint reports whether the event was emitted by a mint.
func (e TransferEvent) IsMint() bool {
	return e.From == (common.Address{})
}

var transferIndexed = indexedInputs(nft.TerminalABI.Events["Transfer"].Inputs)

func indexedInputs(args abi.Arguments) abi.Arguments {
	var out abi.Arguments
	for _, a := range args {
		if a.Indexed {
			out = append(out, a)
		}
	}
	return out
}

// DecodeTransfer decodes a raw log into a TransferEvent. ERC-20 style
// transfers (tokenId in data, three topics) are rejected.
func DecodeTransfer(l chain.LogEntry) (TransferEvent, error) {
	if len(l.Topics) != 4 || common.HexToHash(l.Topics[0]) != nft.TransferTopic {
		return TransferEvent{}, ErrNotTransfer
	}
	topics := make([]common.Hash, 0, 3)
	for _, t := range l.Topics[1:] {
		topics = append(topics, common.HexToHash(t))
	}
	fields := make(map[string]interface{}, 3)
	if err := abi.ParseTopicsIntoMap(fields, transferIndexed, topics); err != nil {
		return TransferEvent{}, fmt.Errorf("decoding topics: %w", err)
	}

	block, err := hexutil.DecodeUint64(l.BlockNumber)
	if err != nil {
		return TransferEvent{}, fmt.Errorf("block number %q: %w", l.BlockNumber, err)
	}
	var index uint64
	if l.LogIndex != "" {
		if index, err = hexutil.DecodeUint64(l.LogIndex); err != nil {
			return TransferEvent{}, fmt.Errorf("log index %q: %w", l.LogIndex, err)
		}
	}

	from, _ := fields["from"].(common.Address)
	to, _ := fields["to"].(common.Address)
	tokenID, _ := fields["tokenId"].(*big.Int)
	return TransferEvent{
		From:        from,
		To:          to,
		TokenID:     tokenID,
		BlockNumber: block,
		TxHash:      l.TxHash,
		LogIndex:    index,
	}, nil
}
