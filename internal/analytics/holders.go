package analytics

import (
	"bytes"
	"math"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultTopHolders is the number of holders reported.
const DefaultTopHolders = 10

// HolderBalance is an address's net token count over the scanned events.
type HolderBalance struct {
	Address    common.Address `json:"address"`
	Count      int64          `json:"count"`
	Percentage float64        `json:"percentage"`
}

// Balances folds events into net per-address counts. The zero address is
// never debited; the recipient is always credited.
func Balances(events []TransferEvent) map[common.Address]int64 {
	bal := make(map[common.Address]int64)
	for _, e := range events {
		if e.From != (common.Address{}) {
			bal[e.From]--
		}
		bal[e.To]++
	}
	return bal
}

// Holders returns every address with a positive balance, largest first.
// Ties are ordered by address.
func Holders(bal map[common.Address]int64) []HolderBalance {
	out := make([]HolderBalance, 0, len(bal))
	for addr, n := range bal {
		if n > 0 {
			out = append(out, HolderBalance{Address: addr, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return bytes.Compare(out[i].Address[:], out[j].Address[:]) < 0
	})
	return out
}

// TopHolders aggregates events and returns up to n holders with their share
// of totalSupply, along with the number of distinct positive holders.
func TopHolders(events []TransferEvent, totalSupply uint64, n int) ([]HolderBalance, int) {
	if n <= 0 {
		n = DefaultTopHolders
	}
	all := Holders(Balances(events))
	unique := len(all)
	if len(all) > n {
		all = all[:n]
	}
	for i := range all {
		all[i].Percentage = SharePercent(all[i].Count, totalSupply)
	}
	return all, unique
}

// SharePercent returns count/total*100 rounded to two decimals and clamped
// to [0, 100]. A zero total yields 0.
func SharePercent(count int64, total uint64) float64 {
	if total == 0 || count <= 0 {
		return 0
	}
	p := math.Round(float64(count)/float64(total)*100*100) / 100
	return math.Min(p, 100)
}
