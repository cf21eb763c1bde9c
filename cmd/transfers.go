package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nftterminal/nftterm/internal/analytics"
	"github.com/nftterminal/nftterm/internal/config"
	"github.com/nftterminal/nftterm/internal/ui"
)

var (
	transfersCount int
	transfersMints bool
	transfersJSON  bool
)

var transfersCmd = &cobra.Command{
	Use:   "transfers [address]",
	Short: "Latest Transfer events in the scan window",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := contractArg(args)
		if err != nil {
			return err
		}
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.LoadTimeout)
		defer cancel()

		head, err := s.client.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("reading head block: %w", err)
		}
		res, err := s.scanner().Scan(ctx, addr, head)
		if err != nil {
			return fmt.Errorf("scanning transfers: %w", err)
		}

		events := res.Events
		if transfersMints {
			mints := events[:0:0]
			for _, e := range events {
				if e.IsMint() {
					mints = append(mints, e)
				}
			}
			events = mints
		}
		recent := analytics.RecentTransfers(events, transfersCount)

		out := cmd.OutOrStdout()
		if transfersJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(recent)
		}

		fmt.Fprintln(out, ui.StyleTitle.Render(fmt.Sprintf("Transfers · blocks %d → %d", res.Start, res.Head)))
		fmt.Fprint(out, ui.TransfersTable(recent))
		if !res.Complete() {
			fmt.Fprintln(out, ui.Warn(fmt.Sprintf("%d of %d log ranges failed; the list may be incomplete", len(res.Dropped), res.Ranges)))
		}
		for _, e := range recent {
			if u := s.net.TxURL(e.TxHash); u != "" {
				fmt.Fprintln(out, ui.Meta("  "+u))
			}
		}
		return nil
	},
}

func init() {
	transfersCmd.Flags().IntVarP(&transfersCount, "count", "n", analytics.DefaultRecentTransfers, "number of transfers to show")
	transfersCmd.Flags().BoolVar(&transfersMints, "mints", false, "only show mints")
	transfersCmd.Flags().BoolVar(&transfersJSON, "json", false, "print as JSON")
}
