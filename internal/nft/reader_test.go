package nft

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaller answers eth_call by method selector with ABI-encoded values.
type fakeCaller struct {
	values map[string]interface{}
	fail   map[string]error
	calls  []string
}

func (f *fakeCaller) CallContract(_ context.Context, _ common.Address, data []byte) ([]byte, error) {
	for name, m := range TerminalABI.Methods {
		if !bytes.Equal(data[:4], m.ID) {
			continue
		}
		f.calls = append(f.calls, name)
		if err := f.fail[name]; err != nil {
			return nil, err
		}
		v, ok := f.values[name]
		if !ok {
			return []byte{}, nil
		}
		return m.Outputs.Pack(v)
	}
	return nil, errors.New("unknown selector")
}

var (
	collectionAddr = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	ownerAddr      = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

func fullCollection() *fakeCaller {
	return &fakeCaller{values: map[string]interface{}{
		"name":                "Terminal Punks",
		"symbol":              "TPNK",
		"totalSupply":         big.NewInt(3),
		"maxSupply":           big.NewInt(10000),
		"mintPrice":           big.NewInt(10_000_000_000_000_000),
		"maxPerWallet":        big.NewInt(5),
		"publicMintActive":    true,
		"whitelistMintActive": false,
		"owner":               ownerAddr,
		"mintedCount":         big.NewInt(2),
		"balanceOf":           big.NewInt(1),
	}}
}

func TestTransferTopicMatchesABI(t *testing.T) {
	assert.Equal(t, TerminalABI.Events["Transfer"].ID, TransferTopic)
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		TransferTopic.Hex())
}

func TestReadCollection(t *testing.T) {
	fc := fullCollection()
	c, err := NewReader(fc).ReadCollection(context.Background(), collectionAddr)
	require.NoError(t, err)

	assert.Equal(t, collectionAddr, c.Address)
	assert.Equal(t, "Terminal Punks", c.Name)
	assert.Equal(t, "TPNK", c.Symbol)
	assert.Equal(t, uint64(3), c.TotalSupply)
	assert.Equal(t, uint64(10000), c.MaxSupply)
	assert.Equal(t, "10000000000000000", c.MintPrice.String())
	assert.Equal(t, uint64(5), c.MaxPerWallet)
	assert.True(t, c.PublicMintActive)
	assert.False(t, c.WhitelistMintActive)
	assert.Equal(t, ownerAddr, c.Owner)
	assert.Len(t, fc.calls, 9)
}

func TestReadCollectionStopsAtFirstFailure(t *testing.T) {
	fc := fullCollection()
	fc.fail = map[string]error{"maxSupply": errors.New("execution reverted")}

	_, err := NewReader(fc).ReadCollection(context.Background(), collectionAddr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxSupply()")
	assert.Contains(t, err.Error(), "execution reverted")
	assert.Equal(t, []string{"name", "symbol", "totalSupply", "maxSupply"}, fc.calls)
}

func TestReadCollectionEmptyReturnData(t *testing.T) {
	fc := fullCollection()
	delete(fc.values, "name")

	_, err := NewReader(fc).ReadCollection(context.Background(), collectionAddr)
	assert.ErrorContains(t, err, "decoding name()")
}

func TestMintedCountAndBalance(t *testing.T) {
	r := NewReader(fullCollection())
	wallet := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	n, err := r.MintedCount(context.Background(), collectionAddr, wallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	b, err := r.BalanceOf(context.Background(), collectionAddr, wallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), b)
}

func TestTotalSupplyOverflow(t *testing.T) {
	fc := fullCollection()
	fc.values["totalSupply"] = new(big.Int).Lsh(big.NewInt(1), 70)

	_, err := NewReader(fc).TotalSupply(context.Background(), collectionAddr)
	assert.ErrorContains(t, err, "overflows uint64")
}
