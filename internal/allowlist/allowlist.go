// Package allowlist manages mint allowlists: CSV import/export and Merkle
// roots and proofs compatible with OpenZeppelin's MerkleProof.
package allowlist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nftterminal/nftterm/internal/nft"
)

// List is an ordered, duplicate-free set of addresses.
type List struct {
	addrs []string
	seen  map[string]bool
}

// New returns a list holding addrs. Invalid entries are dropped.
func New(addrs ...string) *List {
	l := &List{seen: make(map[string]bool)}
	for _, a := range addrs {
		_ = l.Add(a)
	}
	return l
}

// Add appends addr if it is a valid address not already present. Adding a
// duplicate is not an error.
func (l *List) Add(addr string) error {
	addr = strings.TrimSpace(addr)
	if !nft.IsAddress(addr) {
		return fmt.Errorf("%w: %q", nft.ErrInvalidAddress, addr)
	}
	k := strings.ToLower(addr)
	if l.seen[k] {
		return nil
	}
	l.seen[k] = true
	l.addrs = append(l.addrs, addr)
	return nil
}

// Remove deletes addr from the list and reports whether it was present.
func (l *List) Remove(addr string) bool {
	k := strings.ToLower(strings.TrimSpace(addr))
	if !l.seen[k] {
		return false
	}
	delete(l.seen, k)
	for i, a := range l.addrs {
		if strings.ToLower(a) == k {
			l.addrs = append(l.addrs[:i], l.addrs[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of addresses.
func (l *List) Len() int { return len(l.addrs) }

// Addresses returns a copy of the addresses in insertion order.
func (l *List) Addresses() []string {
	return append([]string(nil), l.addrs...)
}

// ImportCSV reads comma- or newline-separated text and merges every valid
// address into the list, keeping first-seen order. It returns how many new
// addresses were added and how many entries were skipped as invalid.
func (l *List) ImportCSV(r io.Reader) (added, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.Comment = '#'

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return added, skipped, nil
		}
		if err != nil {
			return added, skipped, fmt.Errorf("reading csv: %w", err)
		}
		for _, field := range rec {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			before := l.Len()
			if err := l.Add(field); err != nil {
				skipped++
				continue
			}
			if l.Len() > before {
				added++
			}
		}
	}
}

// CSV renders the list one address per line.
func (l *List) CSV() string {
	return strings.Join(l.addrs, "\n")
}
