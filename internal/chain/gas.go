package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// GasInfo holds current gas pricing for a chain.
type GasInfo struct {
	GasPrice *big.Int // eth_gasPrice, wei
	BaseFee  *big.Int // latest block base fee, nil on legacy chains
}

// Display returns the price to show in gwei and whether it is the EIP-1559
// base fee.
func (g *GasInfo) Display() (gwei float64, isBaseFee bool) {
	if g.BaseFee != nil && g.BaseFee.Sign() > 0 {
		return WeiToGwei(g.BaseFee), true
	}
	return WeiToGwei(g.GasPrice), false
}

// GetGasInfo fetches eth_gasPrice and the base fee of the latest block. A
// failed block lookup leaves BaseFee nil.
func (c *EVMClient) GetGasInfo(ctx context.Context) (*GasInfo, error) {
	var gp hexutil.Big
	if err := c.call(ctx, &gp, "eth_gasPrice"); err != nil {
		return nil, err
	}
	info := &GasInfo{GasPrice: gp.ToInt()}

	var block struct {
		BaseFeePerGas *hexutil.Big `json:"baseFeePerGas"`
	}
	if err := c.call(ctx, &block, "eth_getBlockByNumber", "latest", false); err == nil && block.BaseFeePerGas != nil {
		info.BaseFee = block.BaseFeePerGas.ToInt()
	}
	return info, nil
}

// WeiToGwei converts wei to gwei.
func WeiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e9)).Float64()
	return f
}
