package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nftterminal/nftterm/internal/analytics"
	"github.com/nftterminal/nftterm/internal/chain"
)

// HeadMsg announces a new chain head; a reload is under way.
type HeadMsg struct {
	Head uint64
}

// ReportMsg delivers a finished analytics load.
type ReportMsg struct {
	Report *analytics.Report
}

// LoadErrMsg delivers a failed analytics load.
type LoadErrMsg struct {
	Generation uint64
	Err        error
}

type dashSpinMsg struct{}

func dashSpinTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return dashSpinMsg{}
	})
}

// AnalyticsModel is the Bubble Tea model for the live analytics dashboard.
// Results older than the newest one shown are dropped.
type AnalyticsModel struct {
	Contract string
	Network  string
	Currency string

	// Refresh, when set, is run on "r" to request an out-of-band reload.
	Refresh func()

	report   *analytics.Report
	shown    uint64
	head     uint64
	loading  bool
	errMsg   string
	frame    int
	quitting bool
}

// NewAnalyticsModel creates the dashboard for one collection.
func NewAnalyticsModel(contract, network, currency string) AnalyticsModel {
	return AnalyticsModel{Contract: contract, Network: network, Currency: currency, loading: true}
}

// Report returns the report currently on screen.
func (m AnalyticsModel) Report() *analytics.Report { return m.report }

func (m AnalyticsModel) Init() tea.Cmd { return dashSpinTick() }

func (m AnalyticsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.Refresh != nil {
				m.loading = true
				refresh := m.Refresh
				return m, func() tea.Msg { refresh(); return nil }
			}
		}

	case dashSpinMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, dashSpinTick()

	case HeadMsg:
		if msg.Head > m.head {
			m.head = msg.Head
		}
		m.loading = true

	case ReportMsg:
		if msg.Report == nil || msg.Report.Generation < m.shown {
			return m, nil
		}
		m.report = msg.Report
		m.shown = msg.Report.Generation
		m.loading = false
		m.errMsg = ""

	case LoadErrMsg:
		if msg.Generation < m.shown {
			return m, nil
		}
		m.loading = false
		m.errMsg = chain.TruncateError(msg.Err, chain.DefaultErrorLimit)
	}

	return m, nil
}

func (m AnalyticsModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	title := fmt.Sprintf("◆ Live Analytics  ·  %s  ·  %s", ShortenAddress(m.Contract, 4), m.Network)
	sb.WriteString(StyleTitle.Render(title) + "\n")

	switch {
	case m.errMsg != "":
		sb.WriteString(Err(m.errMsg) + "\n\n")
	case m.loading:
		sb.WriteString(StyleNetwork.Render(spinnerFrames[m.frame]) +
			Meta(fmt.Sprintf("  loading at block #%d…", m.head)) + "\n\n")
	case m.report != nil:
		sb.WriteString(Meta(fmt.Sprintf("  updated %s at block #%d",
			m.report.LoadedAt.Format("15:04:05"), m.report.Head)) + "\n\n")
	}

	if m.report != nil {
		sb.WriteString(RenderReport(m.report, m.Currency))
	}

	sb.WriteString("\n" + Meta("  r refresh · q quit") + "\n")
	return sb.String()
}
