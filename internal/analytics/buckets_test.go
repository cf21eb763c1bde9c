package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.February, 28, 15, 0, 0, 0, time.UTC)

func TestMintBucketsAlwaysSeven(t *testing.T) {
	buckets := MintBuckets(nil, 10_000, 100, fixedNow)
	require.Len(t, buckets, MintDays)
	for _, b := range buckets {
		assert.Zero(t, b.Count)
	}
	assert.Equal(t, "Feb 22", buckets[0].Label)
	assert.Equal(t, "Feb 28", buckets[6].Label)
}

func TestMintBucketsBoundaries(t *testing.T) {
	const head, bpd = 1000, 100
	buckets := MintBuckets([]TransferEvent{
		ev(zeroAddr, addrA, 1000), // today, dayEnd inclusive
		ev(zeroAddr, addrA, 901),  // today
		ev(zeroAddr, addrA, 900),  // yesterday: today's dayStart is exclusive
		ev(zeroAddr, addrB, 301),  // six days ago
		ev(zeroAddr, addrB, 300),  // outside the seven days
		ev(addrA, addrB, 950),     // not a mint
	}, head, bpd, fixedNow)

	require.Len(t, buckets, 7)
	today, yesterday, oldest := buckets[6], buckets[5], buckets[0]
	assert.Equal(t, 2, today.Count)
	assert.Equal(t, uint64(900), today.Start)
	assert.Equal(t, uint64(1000), today.End)
	assert.Equal(t, 1, yesterday.Count)
	assert.Equal(t, 1, oldest.Count)
	assert.Equal(t, uint64(300), oldest.Start)
}

func TestMintBucketsSaturateNearGenesis(t *testing.T) {
	buckets := MintBuckets([]TransferEvent{ev(zeroAddr, addrA, 150)}, 250, 100, fixedNow)
	require.Len(t, buckets, 7)

	assert.Equal(t, uint64(150), buckets[6].Start)
	assert.Equal(t, uint64(50), buckets[5].Start)
	assert.Equal(t, 1, buckets[5].Count)
	for _, b := range buckets[:4] {
		assert.Zero(t, b.Start)
		assert.Zero(t, b.End)
		assert.Zero(t, b.Count)
	}
}
