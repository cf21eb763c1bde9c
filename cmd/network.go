package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nftterminal/nftterm/internal/chain"
	"github.com/nftterminal/nftterm/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "", Width: 1},
			{Title: "Name", Width: 18},
			{Title: "Display", Width: 18},
			{Title: "Chain ID", Width: 10, Right: true},
			{Title: "Currency", Width: 8},
			{Title: "Blocks/Day", Width: 10, Right: true},
			{Title: "WS", Width: 3},
		})

		for _, n := range reg.All() {
			mark := ""
			if n.Name == cfg.Network {
				mark = "*"
			}
			ws := ""
			if len(n.WSRPCs) > 0 {
				ws = "yes"
			}
			t.AddRow(ui.Row{
				mark,
				n.Name,
				n.DisplayName,
				fmt.Sprintf("%d", n.ChainID),
				n.NativeCurrency,
				ui.FormatNumber(n.BlocksPerDay),
				ws,
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d networks · * = current", len(reg.All()))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <network>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q (run `nftterm network list`)", args[0])
		}
		if err := cfg.Set("network", n.Name); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default network set to %s", ui.NetworkName(n.DisplayName))))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
