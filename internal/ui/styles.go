package ui

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green: mint open, success
	ColorWarning   = lipgloss.Color("#FFB800") // yellow: partial data, warning
	ColorError     = lipgloss.Color("#FF4444") // red: error, danger
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan: addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold: counts, MON values
	ColorMeta      = lipgloss.Color("#555555") // dim gray: labels, block numbers
	ColorBorder    = lipgloss.Color("#3B1F6B") // deep purple: UI chrome
	ColorBrand     = lipgloss.Color("#836EF9") // monad purple: titles, network names
	ColorHighlight = lipgloss.Color("#F15BB5") // pink: headers, bars
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleNetwork = lipgloss.NewStyle().Foreground(ColorBrand).Bold(true)
	StyleBar     = lipgloss.NewStyle().Foreground(ColorHighlight)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorBrand).
			Bold(true).
			MarginBottom(1)
)

// Banner returns the nftterm banner.
func Banner() string {
	art := `
  ███╗   ██╗███████╗████████╗  ████████╗███████╗██████╗ ███╗   ███╗
  ████╗  ██║██╔════╝╚══██╔══╝  ╚══██╔══╝██╔════╝██╔══██╗████╗ ████║
  ██╔██╗ ██║█████╗     ██║        ██║   █████╗  ██████╔╝██╔████╔██║
  ██║╚██╗██║██╔══╝     ██║        ██║   ██╔══╝  ██╔══██╗██║╚██╔╝██║
  ██║ ╚████║██║        ██║        ██║   ███████╗██║  ██║██║ ╚═╝ ██║
  ╚═╝  ╚═══╝╚═╝        ╚═╝        ╚═╝   ╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝`

	tagline := StyleMeta.Render("     On-chain NFT collection analytics  ✦  Monad testnet")
	return StyleNetwork.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// NetworkName formats a network name.
func NetworkName(n string) string { return StyleNetwork.Render(n) }

// ShortenAddress keeps chars hex digits on each side: 0x1234...abcd.
// Strings too short to shorten are returned unchanged.
func ShortenAddress(addr string, chars int) string {
	if chars <= 0 {
		chars = 4
	}
	if len(addr) <= 2*chars+5 {
		return addr
	}
	return addr[:chars+2] + "..." + addr[len(addr)-chars:]
}

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FormatEther renders a wei amount in whole units with 4 decimals.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0000"
	}
	return new(big.Rat).SetFrac(wei, weiPerEther).FloatString(4)
}

// FormatNumber abbreviates thousands and millions with one decimal: 1.5K, 2.0M.
func FormatNumber(n uint64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatPercent renders a share with two decimals.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// Bar draws a horizontal bar of up to width cells scaled to value/peak.
func Bar(value, peak, width int) string {
	if peak <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	if value > peak {
		value = peak
	}
	n := value * width / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
