package nft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddressValid(t *testing.T) {
	a, err := ParseAddress(" 0x00000000000000000000000000000000000000Aa ")
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000AA", a.Hex())
}

func TestParseAddressRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"0x",
		"00000000000000000000000000000000000000aa",
		"0x00000000000000000000000000000000000000a",
		"0x00000000000000000000000000000000000000aaa",
		"0x00000000000000000000000000000000000000zz",
		"vitalik.eth",
	} {
		_, err := ParseAddress(in)
		assert.ErrorIs(t, err, ErrInvalidAddress, in)
	}
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0xABCdef0000000000000000000000000000000001", "0xabcdef0000000000000000000000000000000001"))
	assert.False(t, SameAddress("0x01", "0x02"))
}
