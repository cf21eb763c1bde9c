package nft

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func openCollection() *Collection {
	return &Collection{
		TotalSupply:      98,
		MaxSupply:        100,
		MintPrice:        big.NewInt(10),
		MaxPerWallet:     5,
		PublicMintActive: true,
		Owner:            ownerAddr,
	}
}

func TestMintStatusCanMint(t *testing.T) {
	st := openCollection().MintStatus(3, 2)
	assert.True(t, st.CanMint)
	assert.Empty(t, st.Reason)
	assert.Equal(t, uint64(2), st.Remaining)
	assert.Equal(t, "20", st.Cost.String())
}

func TestMintStatusReasons(t *testing.T) {
	inactive := openCollection()
	inactive.PublicMintActive = false
	assert.Equal(t, "public minting is not active", inactive.MintStatus(0, 1).Reason)

	soldOut := openCollection()
	soldOut.TotalSupply = 100
	assert.Equal(t, "collection is sold out", soldOut.MintStatus(0, 1).Reason)

	assert.Equal(t, "quantity must be at least 1", openCollection().MintStatus(0, 0).Reason)
	assert.Equal(t, "quantity exceeds remaining supply", openCollection().MintStatus(0, 3).Reason)
	assert.Equal(t, "quantity exceeds max per wallet", openCollection().MintStatus(4, 2).Reason)
}

func TestMintStatusNilPrice(t *testing.T) {
	c := openCollection()
	c.MintPrice = nil
	assert.Equal(t, "0", c.MintStatus(0, 1).Cost.String())
}

func TestIsOwner(t *testing.T) {
	c := openCollection()
	assert.True(t, c.IsOwner(ownerAddr))
	assert.False(t, c.IsOwner(collectionAddr))
}

func TestMintProgress(t *testing.T) {
	assert.InDelta(t, 98.0, openCollection().MintProgress(), 1e-9)
	assert.Equal(t, 0.0, (&Collection{}).MintProgress())
	assert.Equal(t, 100.0, (&Collection{TotalSupply: 5, MaxSupply: 4}).MintProgress())
}
