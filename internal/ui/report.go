package ui

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nftterminal/nftterm/internal/analytics"
	"github.com/nftterminal/nftterm/internal/nft"
)

const mintBarWidth = 30

// CollectionBlock renders the collection snapshot.
func CollectionBlock(c *nft.Collection, currency string) string {
	return KeyValueBlock(fmt.Sprintf("%s (%s)", c.Name, c.Symbol), [][2]string{
		{"Contract", c.Address.Hex()},
		{"Owner", c.Owner.Hex()},
		{"Supply", fmt.Sprintf("%d / %d (%.1f%%)", c.TotalSupply, c.MaxSupply, c.MintProgress())},
		{"Mint Price", FormatEther(c.MintPrice) + " " + currency},
		{"Max Per Wallet", fmt.Sprintf("%d", c.MaxPerWallet)},
		{"Public Mint", onOff(c.PublicMintActive)},
		{"Allowlist Mint", onOff(c.WhitelistMintActive)},
	})
}

// MintStatusBlock renders a wallet's mint eligibility.
func MintStatusBlock(wallet common.Address, st nft.MintStatus, currency string) string {
	verdict := StyleSuccess.Render("yes")
	if !st.CanMint {
		verdict = StyleError.Render("no") + StyleMeta.Render(" ("+st.Reason+")")
	}
	return KeyValueBlock("Mint Status", [][2]string{
		{"Wallet", wallet.Hex()},
		{"Remaining", fmt.Sprintf("%d", st.Remaining)},
		{"Minted By Wallet", fmt.Sprintf("%d", st.Minted)},
		{"Quantity", fmt.Sprintf("%d", st.Quantity)},
		{"Cost", FormatEther(st.Cost) + " " + currency},
		{"Can Mint", verdict},
	})
}

// RenderReport renders a full analytics report.
func RenderReport(r *analytics.Report, currency string) string {
	var sb strings.Builder

	name := r.Contract.Hex()
	if r.Collection != nil {
		name = fmt.Sprintf("%s (%s)", r.Collection.Name, r.Collection.Symbol)
	}
	sb.WriteString(KeyValueBlock("Analytics · "+name, [][2]string{
		{"Total Minted", FormatNumber(r.TotalMinted)},
		{"Unique Holders", FormatNumber(uint64(r.UniqueHolders))},
		{"Mint Volume", FormatEther(r.MintVolume) + " " + currency},
		{"Active Addresses", "~" + FormatNumber(r.ActiveAddresses)},
		{"Transfers Scanned", FormatNumber(uint64(r.Transfers))},
		{"Block Window", fmt.Sprintf("%d → %d", r.StartBlock, r.Head)},
	}))
	sb.WriteString("\n\n")

	sb.WriteString(StyleTitle.Render("Mints · last 7 days") + "\n")
	sb.WriteString(MintHistory(r.MintDays))
	sb.WriteString("\n")

	sb.WriteString(StyleTitle.Render("Top Holders") + "\n")
	sb.WriteString(HoldersTable(r.TopHolders))
	sb.WriteString("\n")

	sb.WriteString(StyleTitle.Render("Recent Transfers") + "\n")
	sb.WriteString(TransfersTable(r.Recent))

	sb.WriteString("\n" + Coverage(r) + "\n")
	return sb.String()
}

// MintHistory renders one bar per day bucket.
func MintHistory(days []analytics.MintDayBucket) string {
	peak := 0
	for _, d := range days {
		if d.Count > peak {
			peak = d.Count
		}
	}
	var sb strings.Builder
	for _, d := range days {
		sb.WriteString(fmt.Sprintf("  %s  %s %s\n",
			StyleMeta.Render(fmt.Sprintf("%-6s", d.Label)),
			StyleBar.Render(fit(Bar(d.Count, peak, mintBarWidth), mintBarWidth, false)),
			Val(fmt.Sprintf("%d", d.Count))))
	}
	return sb.String()
}

// HoldersTable renders the top holders.
func HoldersTable(holders []analytics.HolderBalance) string {
	if len(holders) == 0 {
		return Meta("  no holders in the scanned window") + "\n"
	}
	t := NewTable([]Column{
		{Title: "#", Width: 3, Right: true},
		{Title: "Holder", Width: 14},
		{Title: "Tokens", Width: 8, Right: true},
		{Title: "Share", Width: 8, Right: true},
	})
	for i, h := range holders {
		t.AddRow(Row{
			fmt.Sprintf("%d", i+1),
			ShortenAddress(h.Address.Hex(), 4),
			fmt.Sprintf("%d", h.Count),
			FormatPercent(h.Percentage),
		})
	}
	return t.Render()
}

// TransfersTable renders transfers in the order given.
func TransfersTable(events []analytics.TransferEvent) string {
	if len(events) == 0 {
		return Meta("  no transfers in the scanned window") + "\n"
	}
	t := NewTable([]Column{
		{Title: "Block", Width: 10, Right: true},
		{Title: "Kind", Width: 8},
		{Title: "From", Width: 14},
		{Title: "To", Width: 14},
		{Title: "Token", Width: 8, Right: true},
		{Title: "Tx", Width: 14},
	})
	for _, e := range events {
		kind := "transfer"
		if e.IsMint() {
			kind = "mint"
		}
		token := "?"
		if e.TokenID != nil {
			token = "#" + e.TokenID.String()
		}
		t.AddRow(Row{
			fmt.Sprintf("%d", e.BlockNumber),
			kind,
			ShortenAddress(e.From.Hex(), 4),
			ShortenAddress(e.To.Hex(), 4),
			token,
			ShortenAddress(e.TxHash, 4),
		})
	}
	return t.Render()
}

// Coverage describes how much of the block window was scanned.
func Coverage(r *analytics.Report) string {
	if r.Complete() {
		return Meta(fmt.Sprintf("  scanned %d log ranges, all complete", r.Ranges))
	}
	var missed uint64
	for _, d := range r.DroppedRanges {
		missed += d.Len()
	}
	return Warn(fmt.Sprintf("%d of %d log ranges failed (%d blocks missing); holder counts may be low",
		len(r.DroppedRanges), r.Ranges, missed))
}

func onOff(b bool) string {
	if b {
		return StyleSuccess.Render("active")
	}
	return StyleMeta.Render("inactive")
}
