package analytics

import (
	"math/big"
	"sort"
	"time"

	"github.com/axiomhq/hyperloglog"
	"github.com/ethereum/go-ethereum/common"

	"github.com/nftterminal/nftterm/internal/nft"
)

// DefaultRecentTransfers is the number of transfers listed in a report.
const DefaultRecentTransfers = 5

// Report is the result of one analytics load.
type Report struct {
	Generation      uint64          `json:"generation"`
	LoadedAt        time.Time       `json:"loaded_at"`
	Contract        common.Address  `json:"contract"`
	Collection      *nft.Collection `json:"collection"`
	Head            uint64          `json:"head"`
	StartBlock      uint64          `json:"start_block"`
	TotalMinted     uint64          `json:"total_minted"`
	UniqueHolders   int             `json:"unique_holders"`
	MintVolume      *big.Int        `json:"mint_volume"`
	TopHolders      []HolderBalance `json:"top_holders"`
	MintDays        []MintDayBucket `json:"mint_days"`
	ActiveAddresses uint64          `json:"active_addresses"`
	Transfers       int             `json:"transfers"`
	Recent          []TransferEvent `json:"recent"`
	Ranges          int             `json:"ranges"`
	DroppedRanges   []BlockRange    `json:"dropped_ranges,omitempty"`
}

// Complete reports whether no log range was dropped during the scan.
func (r *Report) Complete() bool { return len(r.DroppedRanges) == 0 }

// MintVolume returns totalSupply × mintPrice in wei.
func MintVolume(c *nft.Collection) *big.Int {
	if c == nil || c.MintPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(c.MintPrice, new(big.Int).SetUint64(c.TotalSupply))
}

// ActiveAddresses estimates how many distinct non-zero addresses sent or
// received a token in events.
func ActiveAddresses(events []TransferEvent) uint64 {
	sk := hyperloglog.New()
	zero := common.Address{}
	for _, e := range events {
		if e.From != zero {
			sk.Insert(e.From.Bytes())
		}
		if e.To != zero {
			sk.Insert(e.To.Bytes())
		}
	}
	return sk.Estimate()
}

// RecentTransfers returns the n newest events, newest first.
func RecentTransfers(events []TransferEvent, n int) []TransferEvent {
	if n <= 0 {
		n = DefaultRecentTransfers
	}
	sorted := make([]TransferEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BlockNumber != sorted[j].BlockNumber {
			return sorted[i].BlockNumber > sorted[j].BlockNumber
		}
		return sorted[i].LogIndex > sorted[j].LogIndex
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
