package nft

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MintStatus summarises whether a wallet can mint quantity tokens right now.
type MintStatus struct {
	Remaining uint64
	Minted    uint64
	Quantity  uint64
	Cost      *big.Int
	CanMint   bool
	Reason    string
}

// MintStatus evaluates a public mint of quantity tokens by a wallet that has
// already minted `minted` tokens.
func (c *Collection) MintStatus(minted, quantity uint64) MintStatus {
	st := MintStatus{
		Minted:   minted,
		Quantity: quantity,
		Cost:     new(big.Int),
	}
	if c.MaxSupply > c.TotalSupply {
		st.Remaining = c.MaxSupply - c.TotalSupply
	}
	if c.MintPrice != nil {
		st.Cost.Mul(c.MintPrice, new(big.Int).SetUint64(quantity))
	}

	switch {
	case !c.PublicMintActive:
		st.Reason = "public minting is not active"
	case st.Remaining == 0:
		st.Reason = "collection is sold out"
	case quantity == 0:
		st.Reason = "quantity must be at least 1"
	case quantity > st.Remaining:
		st.Reason = "quantity exceeds remaining supply"
	case quantity+minted > c.MaxPerWallet:
		st.Reason = "quantity exceeds max per wallet"
	default:
		st.CanMint = true
	}
	return st
}

// IsOwner reports whether wallet owns the collection contract.
func (c *Collection) IsOwner(wallet common.Address) bool {
	return strings.EqualFold(c.Owner.Hex(), wallet.Hex())
}

// MintProgress returns minted/max as a percentage in [0, 100].
func (c *Collection) MintProgress() float64 {
	if c.MaxSupply == 0 {
		return 0
	}
	p := float64(c.TotalSupply) / float64(c.MaxSupply) * 100
	if p > 100 {
		return 100
	}
	return p
}
