package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// WeiToGwei
// ---------------------------------------------------------------------------

func TestWeiToGwei(t *testing.T) {
	tests := []struct {
		wei  *big.Int
		want float64
	}{
		{nil, 0},
		{big.NewInt(0), 0},
		{big.NewInt(1_000_000_000), 1},
		{big.NewInt(52_500_000_000), 52.5},
		{big.NewInt(1), 1e-9},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, WeiToGwei(tt.wei), 1e-12)
	}
}

// ---------------------------------------------------------------------------
// GetGasInfo
// ---------------------------------------------------------------------------

func TestGetGasInfoWithBaseFee(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_gasPrice":         "0xba43b7400", // 50 gwei
		"eth_getBlockByNumber": map[string]interface{}{"number": "0x10", "baseFeePerGas": "0x3b9aca00"},
	})

	info, err := NewEVMClient(srv.URL).GetGasInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "50000000000", info.GasPrice.String())
	require.NotNil(t, info.BaseFee)

	gwei, isBase := info.Display()
	assert.True(t, isBase)
	assert.InDelta(t, 1.0, gwei, 1e-9)
}

func TestGetGasInfoLegacyChain(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_gasPrice":         "0x3b9aca00",
		"eth_getBlockByNumber": map[string]interface{}{"number": "0x10"},
	})

	info, err := NewEVMClient(srv.URL).GetGasInfo(context.Background())
	require.NoError(t, err)
	assert.Nil(t, info.BaseFee)

	gwei, isBase := info.Display()
	assert.False(t, isBase)
	assert.InDelta(t, 1.0, gwei, 1e-9)
}

func TestGetGasInfoBlockLookupFailureIsTolerated(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_gasPrice": "0x1"})

	info, err := NewEVMClient(srv.URL).GetGasInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.GasPrice.Int64())
	assert.Nil(t, info.BaseFee)
}

func TestGetGasInfoGasPriceError(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{})
	_, err := NewEVMClient(srv.URL).GetGasInfo(context.Background())
	var rpcErr *RPCError
	assert.ErrorAs(t, err, &rpcErr)
}
