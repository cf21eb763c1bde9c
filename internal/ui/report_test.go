package ui

import (
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftterminal/nftterm/internal/analytics"
	"github.com/nftterminal/nftterm/internal/nft"
)

var (
	contract = common.HexToAddress("0x1111111111111111111111111111111111111111")
	alice    = common.HexToAddress("0xaaaa00000000000000000000000000000000aaaa")
	bob      = common.HexToAddress("0xbbbb00000000000000000000000000000000bbbb")
)

func sampleCollection() *nft.Collection {
	return &nft.Collection{
		Address:          contract,
		Name:             "Purple Frogs",
		Symbol:           "FROG",
		TotalSupply:      3,
		MaxSupply:        100,
		MintPrice:        big.NewInt(10_000_000_000_000_000),
		MaxPerWallet:     5,
		PublicMintActive: true,
		Owner:            alice,
	}
}

func sampleReport(gen uint64) *analytics.Report {
	return &analytics.Report{
		Generation:    gen,
		LoadedAt:      time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC),
		Contract:      contract,
		Collection:    sampleCollection(),
		Head:          5000,
		StartBlock:    3000,
		TotalMinted:   3,
		UniqueHolders: 2,
		MintVolume:    big.NewInt(30_000_000_000_000_000),
		TopHolders: []analytics.HolderBalance{
			{Address: bob, Count: 2, Percentage: 66.67},
			{Address: alice, Count: 1, Percentage: 33.33},
		},
		MintDays: []analytics.MintDayBucket{
			{Label: "Mar 1"}, {Label: "Mar 2"}, {Label: "Mar 3"}, {Label: "Mar 4"},
			{Label: "Mar 5"}, {Label: "Mar 6"}, {Label: "Mar 7", Count: 3},
		},
		ActiveAddresses: 2,
		Transfers:       3,
		Recent: []analytics.TransferEvent{
			{To: bob, TokenID: big.NewInt(2), BlockNumber: 4990, TxHash: "0xdeadbeefdeadbeefdeadbeef"},
		},
		Ranges: 21,
	}
}

func TestCollectionBlock(t *testing.T) {
	out := CollectionBlock(sampleCollection(), "MON")
	assert.Contains(t, out, "Purple Frogs (FROG)")
	assert.Contains(t, out, "3 / 100 (3.0%)")
	assert.Contains(t, out, "0.0100 MON")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "inactive")
}

func TestMintStatusBlock(t *testing.T) {
	c := sampleCollection()
	ok := MintStatusBlock(alice, c.MintStatus(0, 2), "MON")
	assert.Contains(t, ok, "yes")
	assert.Contains(t, ok, "0.0200 MON")

	denied := MintStatusBlock(alice, c.MintStatus(5, 1), "MON")
	assert.Contains(t, denied, "no")
	assert.Contains(t, denied, "max per wallet")
}

func TestRenderReportSections(t *testing.T) {
	out := RenderReport(sampleReport(1), "MON")
	for _, want := range []string{
		"Purple Frogs (FROG)",
		"Total Minted", "Unique Holders", "Mint Volume", "0.0300 MON",
		"3000 → 5000",
		"Mints · last 7 days", "Mar 7",
		"Top Holders", "66.67%",
		"Recent Transfers", "mint", "#2",
		"all complete",
	} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, strings.ToLower(out), "0xbbbb...bbbb")
}

func TestRenderReportPartialCoverage(t *testing.T) {
	r := sampleReport(1)
	r.DroppedRanges = []analytics.BlockRange{{From: 3000, To: 3098}}
	out := RenderReport(r, "MON")
	assert.Contains(t, out, "1 of 21 log ranges failed (99 blocks missing)")
}

func TestTablesEmpty(t *testing.T) {
	assert.Contains(t, HoldersTable(nil), "no holders")
	assert.Contains(t, TransfersTable(nil), "no transfers")
}

func TestMintHistoryOneLinePerDay(t *testing.T) {
	out := MintHistory(sampleReport(1).MintDays)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "Mar 1")
	assert.Contains(t, lines[6], strings.Repeat("█", mintBarWidth))
}

// ---------------------------------------------------------------------------
// AnalyticsModel
// ---------------------------------------------------------------------------

func update(t *testing.T, m AnalyticsModel, msg tea.Msg) AnalyticsModel {
	t.Helper()
	next, _ := m.Update(msg)
	am, ok := next.(AnalyticsModel)
	require.True(t, ok)
	return am
}

func TestDashboardShowsLatestReport(t *testing.T) {
	m := NewAnalyticsModel(contract.Hex(), "Monad Testnet", "MON")
	assert.Contains(t, m.View(), "loading")

	m = update(t, m, ReportMsg{Report: sampleReport(1)})
	require.NotNil(t, m.Report())
	assert.Contains(t, m.View(), "Purple Frogs")
	assert.Contains(t, m.View(), "updated 12:00:00 at block #5000")
}

func TestDashboardDropsStaleReports(t *testing.T) {
	m := NewAnalyticsModel(contract.Hex(), "Monad Testnet", "MON")
	newer := sampleReport(3)
	m = update(t, m, ReportMsg{Report: newer})
	m = update(t, m, ReportMsg{Report: sampleReport(2)})
	assert.Same(t, newer, m.Report())

	m = update(t, m, LoadErrMsg{Generation: 2, Err: errors.New("late failure")})
	assert.NotContains(t, m.View(), "late failure")

	m = update(t, m, LoadErrMsg{Generation: 4, Err: errors.New("rpc down")})
	assert.Contains(t, m.View(), "rpc down")
	assert.Same(t, newer, m.Report(), "an error keeps the last good report")
}

func TestDashboardHeadMarksLoading(t *testing.T) {
	m := NewAnalyticsModel(contract.Hex(), "Monad Testnet", "MON")
	m = update(t, m, ReportMsg{Report: sampleReport(1)})
	m = update(t, m, HeadMsg{Head: 5100})
	assert.Contains(t, m.View(), "loading at block #5100")
}

func TestDashboardRefreshAndQuit(t *testing.T) {
	called := false
	m := NewAnalyticsModel(contract.Hex(), "Monad Testnet", "MON")
	m.Refresh = func() { called = true }

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	cmd()
	assert.True(t, called)

	_, cmd = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
