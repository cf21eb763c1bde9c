package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nftterminal/nftterm/internal/analytics"
	"github.com/nftterminal/nftterm/internal/chain"
	"github.com/nftterminal/nftterm/internal/config"
	"github.com/nftterminal/nftterm/internal/ui"
)

var (
	analyticsLive  bool
	analyticsChart string
	analyticsJSON  bool
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics [address]",
	Short: "Holder, mint and transfer analytics for a collection",
	Long: `Read the collection, scan Transfer logs over the most recent blocks and
report total minted, unique holders, mint volume, top holders, mints per
day for the last 7 days and the latest transfers.

Log ranges that fail are skipped; the report says how many were missed.

Examples:
  nftterm analytics 0x1234...                 # one-shot report
  nftterm analytics --live                    # refresh on every new block
  nftterm analytics --chart mints.png         # also save the mint histogram
  nftterm analytics 0x1234... --json | jq .top_holders`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := contractArg(args)
		if err != nil {
			return err
		}
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		loader := s.loader()

		if analyticsLive {
			return runLiveAnalytics(cmd, s, loader, addr)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.LoadTimeout)
		defer cancel()

		var spin *ui.Spinner
		if !analyticsJSON {
			spin = ui.NewSpinnerTo(cmd.ErrOrStderr(), fmt.Sprintf("Scanning %s on %s…", ui.ShortenAddress(addr.Hex(), 4), s.net.DisplayName))
			spin.Start()
		}
		report, err := loader.Load(ctx, addr)
		if spin != nil {
			spin.Stop()
		}
		if err != nil {
			return fmt.Errorf("loading analytics: %w", err)
		}

		if analyticsChart != "" {
			title := fmt.Sprintf("%s · mints per day", report.Collection.Name)
			if err := ui.RenderMintChart(analyticsChart, title, report.MintDays); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if analyticsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Fprintln(out, ui.RenderReport(report, s.net.NativeCurrency))
		if analyticsChart != "" {
			fmt.Fprintln(out, ui.Success("Mint chart saved to "+analyticsChart))
		}
		if u := s.net.AddressURL(addr.Hex()); u != "" {
			fmt.Fprintln(out, ui.Meta("  "+u))
		}
		return nil
	},
}

// runLiveAnalytics reloads the report on every new head until the user quits.
// Loads run one at a time; heads that arrive meanwhile collapse into a single
// follow-up load.
func runLiveAnalytics(cmd *cobra.Command, s *session, loader *analytics.Loader, addr common.Address) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	wsURL := ""
	if cfg.Websocket {
		if len(s.net.WSRPCs) == 0 {
			return fmt.Errorf("websocket heads on %s: %w", s.net.Name, chain.ErrNoWebsocket)
		}
		wsURL = s.net.WSRPCs[0]
	}
	interval := time.Duration(cfg.RefreshInterval) * time.Second
	watcher := chain.NewHeadWatcher(s.client, wsURL, interval, logger.Named("heads"))

	reload := make(chan struct{}, 1)
	trigger := func() {
		select {
		case reload <- struct{}{}:
		default:
		}
	}

	model := ui.NewAnalyticsModel(addr.Hex(), s.net.DisplayName, s.net.NativeCurrency)
	model.Refresh = trigger
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-reload:
			}
			loadCtx, cancelLoad := context.WithTimeout(ctx, config.LoadTimeout)
			report, err := loader.Load(loadCtx, addr)
			cancelLoad()
			switch {
			case errors.Is(err, analytics.ErrStaleLoad):
				continue
			case err != nil:
				if ctx.Err() != nil {
					return
				}
				logger.Warn("analytics load failed", zap.Error(err))
				p.Send(ui.LoadErrMsg{Generation: loader.Latest(), Err: err})
			default:
				p.Send(ui.ReportMsg{Report: report})
			}
		}
	}()

	go func() {
		err := watcher.Watch(ctx, func(head uint64) {
			p.Send(ui.HeadMsg{Head: head})
			trigger()
		})
		if err != nil && ctx.Err() == nil {
			p.Send(ui.LoadErrMsg{Generation: loader.Latest(), Err: fmt.Errorf("watching heads: %w", err)})
		}
	}()

	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func init() {
	analyticsCmd.Flags().BoolVar(&analyticsLive, "live", false, "keep refreshing on new blocks (q to quit)")
	analyticsCmd.Flags().StringVar(&analyticsChart, "chart", "", "save a PNG of mints per day to this path")
	analyticsCmd.Flags().BoolVar(&analyticsJSON, "json", false, "print the report as JSON")
	analyticsCmd.MarkFlagsMutuallyExclusive("live", "json")
}
