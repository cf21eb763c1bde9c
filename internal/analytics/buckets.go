package analytics

import "time"

// MintDays is the number of daily mint buckets.
const MintDays = 7

// MintDayBucket counts mints inside one approximate day of blocks.
type MintDayBucket struct {
	Label string `json:"label"`
	Start uint64 `json:"start_block"`
	End   uint64 `json:"end_block"`
	Count int    `json:"count"`
}

// MintBuckets counts mint events per day for the last MintDays days, oldest
// first. Day i (0 = today) covers blocks (head-(i+1)*bpd, head-i*bpd]. Days
// are derived from block height only and drift when real block times differ
// from blocksPerDay.
func MintBuckets(events []TransferEvent, head, blocksPerDay uint64, now time.Time) []MintDayBucket {
	out := make([]MintDayBucket, MintDays)
	for i := 0; i < MintDays; i++ {
		end := saturatingSub(head, uint64(i)*blocksPerDay)
		start := saturatingSub(head, uint64(i+1)*blocksPerDay)
		b := MintDayBucket{
			Label: now.AddDate(0, 0, -i).Format("Jan 2"),
			Start: start,
			End:   end,
		}
		for _, e := range events {
			if e.IsMint() && e.BlockNumber > start && e.BlockNumber <= end {
				b.Count++
			}
		}
		out[MintDays-1-i] = b
	}
	return out
}

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
