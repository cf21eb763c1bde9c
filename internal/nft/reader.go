package nft

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Caller performs eth_call. *chain.EVMClient satisfies it.
type Caller interface {
	CallContract(ctx context.Context, to common.Address, calldata []byte) ([]byte, error)
}

// Collection is a snapshot of a deployed collection's on-chain state.
type Collection struct {
	Address             common.Address `json:"address"`
	Name                string         `json:"name"`
	Symbol              string         `json:"symbol"`
	TotalSupply         uint64         `json:"total_supply"`
	MaxSupply           uint64         `json:"max_supply"`
	MintPrice           *big.Int       `json:"mint_price"`
	MaxPerWallet        uint64         `json:"max_per_wallet"`
	PublicMintActive    bool           `json:"public_mint_active"`
	WhitelistMintActive bool           `json:"whitelist_mint_active"`
	Owner               common.Address `json:"owner"`
}

// Reader issues read-only calls against NFT Terminal contracts.
type Reader struct {
	caller Caller
	abi    abi.ABI
}

// NewReader creates a Reader over caller.
func NewReader(caller Caller) *Reader {
	return &Reader{caller: caller, abi: TerminalABI}
}

// ReadCollection reads every collection field. Reads are issued one after
// another and the first failure aborts the whole read.
func (r *Reader) ReadCollection(ctx context.Context, addr common.Address) (*Collection, error) {
	c := &Collection{Address: addr}
	var err error

	if c.Name, err = r.readString(ctx, addr, "name"); err != nil {
		return nil, err
	}
	if c.Symbol, err = r.readString(ctx, addr, "symbol"); err != nil {
		return nil, err
	}
	if c.TotalSupply, err = r.readUint64(ctx, addr, "totalSupply"); err != nil {
		return nil, err
	}
	if c.MaxSupply, err = r.readUint64(ctx, addr, "maxSupply"); err != nil {
		return nil, err
	}
	if c.MintPrice, err = r.readBig(ctx, addr, "mintPrice"); err != nil {
		return nil, err
	}
	if c.MaxPerWallet, err = r.readUint64(ctx, addr, "maxPerWallet"); err != nil {
		return nil, err
	}
	if c.PublicMintActive, err = r.readBool(ctx, addr, "publicMintActive"); err != nil {
		return nil, err
	}
	if c.WhitelistMintActive, err = r.readBool(ctx, addr, "whitelistMintActive"); err != nil {
		return nil, err
	}
	if c.Owner, err = r.readAddress(ctx, addr, "owner"); err != nil {
		return nil, err
	}
	return c, nil
}

// TotalSupply reads totalSupply().
func (r *Reader) TotalSupply(ctx context.Context, addr common.Address) (uint64, error) {
	return r.readUint64(ctx, addr, "totalSupply")
}

// MintPrice reads mintPrice() in wei.
func (r *Reader) MintPrice(ctx context.Context, addr common.Address) (*big.Int, error) {
	return r.readBig(ctx, addr, "mintPrice")
}

// MintedCount reads how many tokens wallet has minted from the collection.
func (r *Reader) MintedCount(ctx context.Context, addr, wallet common.Address) (uint64, error) {
	return r.readUint64(ctx, addr, "mintedCount", wallet)
}

// BalanceOf reads the number of tokens held by owner.
func (r *Reader) BalanceOf(ctx context.Context, addr, owner common.Address) (uint64, error) {
	return r.readUint64(ctx, addr, "balanceOf", owner)
}

// --- typed helpers ---

func (r *Reader) read(ctx context.Context, addr common.Address, method string, args ...interface{}) (interface{}, error) {
	calldata, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s(): %w", method, err)
	}
	raw, err := r.caller.CallContract(ctx, addr, calldata)
	if err != nil {
		return nil, fmt.Errorf("%s(): %w", method, err)
	}
	out, err := r.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s(): %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("decoding %s(): expected 1 value, got %d", method, len(out))
	}
	return out[0], nil
}

func (r *Reader) readBig(ctx context.Context, addr common.Address, method string, args ...interface{}) (*big.Int, error) {
	v, err := r.read(ctx, addr, method, args...)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("decoding %s(): unexpected type %T", method, v)
	}
	return n, nil
}

func (r *Reader) readUint64(ctx context.Context, addr common.Address, method string, args ...interface{}) (uint64, error) {
	n, err := r.readBig(ctx, addr, method, args...)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("%s(): value %s overflows uint64", method, n)
	}
	return n.Uint64(), nil
}

func (r *Reader) readString(ctx context.Context, addr common.Address, method string) (string, error) {
	v, err := r.read(ctx, addr, method)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("decoding %s(): unexpected type %T", method, v)
	}
	return s, nil
}

func (r *Reader) readBool(ctx context.Context, addr common.Address, method string) (bool, error) {
	v, err := r.read(ctx, addr, method)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("decoding %s(): unexpected type %T", method, v)
	}
	return b, nil
}

func (r *Reader) readAddress(ctx context.Context, addr common.Address, method string) (common.Address, error) {
	v, err := r.read(ctx, addr, method)
	if err != nil {
		return common.Address{}, err
	}
	a, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("decoding %s(): unexpected type %T", method, v)
	}
	return a, nil
}
