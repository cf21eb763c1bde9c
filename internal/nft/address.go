package nft

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidAddress is returned for input that is not a 20-byte hex address.
var ErrInvalidAddress = errors.New("invalid address")

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsAddress reports whether s is a 0x-prefixed 40 hex digit address.
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ParseAddress validates s and converts it. Validation happens before any
// network request is made.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !IsAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// SameAddress compares two address strings case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
