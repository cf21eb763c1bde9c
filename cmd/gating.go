package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nftterminal/nftterm/internal/deployments"
	"github.com/nftterminal/nftterm/internal/gating"
	"github.com/nftterminal/nftterm/internal/ui"
)

var gatingKind string

var gatingCmd = &cobra.Command{
	Use:   "gating [address]",
	Short: "Print a token-gating code snippet for a collection",
	Long: `Print a snippet that checks balanceOf(user) > 0 against the collection.

Kinds: react, html, backend, nextapi. Without an address the latest
registered deployment is used, or a placeholder when there is none.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := gating.ParseKind(gatingKind)
		if err != nil {
			return err
		}
		net, err := currentNetwork()
		if err != nil {
			return err
		}

		contract := ""
		addr, err := contractArg(args)
		switch {
		case err == nil:
			contract = addr.Hex()
		case len(args) == 0 && errors.Is(err, deployments.ErrNoDeployments):
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn("no deployments registered; using a placeholder address"))
		default:
			return err
		}

		rpcURL := ""
		if len(net.RPCs) > 0 {
			rpcURL = net.RPCs[0]
		}
		snippet, err := gating.Render(kind, gating.Params{
			Contract:    contract,
			RPCURL:      rpcURL,
			NetworkName: net.DisplayName,
			ChainID:     net.ChainID,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), ui.StyleTitle.Render(kind.Label()))
		fmt.Fprint(cmd.OutOrStdout(), snippet)
		return nil
	},
}

func init() {
	gatingCmd.Flags().StringVarP(&gatingKind, "kind", "k", string(gating.KindReact), fmt.Sprintf("snippet kind %v", gating.Kinds()))
}
