package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nftterminal/nftterm/internal/chain"
	"github.com/nftterminal/nftterm/internal/config"
	"github.com/nftterminal/nftterm/internal/rpc"
	"github.com/nftterminal/nftterm/internal/ui"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a custom RPC URL for the current network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := currentNetwork()
		if err != nil {
			return err
		}
		if err := cfg.AddRPC(net.Name, args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.NetworkName(net.Name), args[0])))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove a custom RPC URL from the current network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := currentNetwork()
		if err != nil {
			return err
		}
		if err := cfg.RemoveRPC(net.Name, args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed RPC for %s: %s", net.Name, args[0])))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the RPCs of the current network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := currentNetwork()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s", net.DisplayName)))

		fmt.Fprintln(out, ui.StyleHeader.Render("Built-in:"))
		for _, r := range net.RPCs {
			fmt.Fprintf(out, "  %s\n", r)
		}
		for _, r := range net.WSRPCs {
			fmt.Fprintf(out, "  %s %s\n", r, ui.Meta("(websocket)"))
		}
		if custom := cfg.GetRPCs(net.Name); len(custom) > 0 {
			fmt.Fprintln(out, ui.StyleHeader.Render("Custom:"))
			for _, r := range custom {
				fmt.Fprintf(out, "  %s\n", r)
			}
		}
		return nil
	},
}

var rpcBenchCmd = &cobra.Command{
	Use:     "bench",
	Aliases: []string{"benchmark"},
	Short:   "Benchmark every RPC of the current network and show which one would be picked",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := currentNetwork()
		if err != nil {
			return err
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}
		urls := rpc.Candidates(net, cfg.GetRPCs(net.Name))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s RPCs...", net.DisplayName)))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		samples := rpc.Benchmark(ctx, urls, net.ChainID)
		endpoints := rpc.Endpoints(samples)

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 44},
			{Title: "Latency", Width: 9, Right: true},
			{Title: "Block #", Width: 12, Right: true},
			{Title: "Status", Width: 36},
		})
		for i, p := range samples {
			latency, block := "—", "—"
			status := ui.StyleSuccess.Render("healthy")
			switch {
			case p.Err != nil:
				status = ui.StyleError.Render(chain.Truncate(p.Err.Error(), 34))
			case !endpoints[i].Healthy:
				latency = fmt.Sprintf("%dms", p.Latency.Milliseconds())
				block = fmt.Sprintf("%d", p.Head)
				status = ui.StyleWarning.Render("lagging")
			default:
				latency = fmt.Sprintf("%dms", p.Latency.Milliseconds())
				block = fmt.Sprintf("%d", p.Head)
			}
			t.AddRow(ui.Row{p.URL, latency, block, status})
		}
		fmt.Fprint(out, t.Render())

		winner, err := rpc.NewPicker(algo).Pick(endpoints)
		if err != nil {
			fmt.Fprintln(out, ui.Err(err.Error()))
			return nil
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s would use %s", algo, winner.URL)))
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm <fastest|round-robin|failover>",
	Short: "Set the RPC selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set("rpc_algorithm", args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("RPC algorithm set to %q", args[0])))
		return nil
	},
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchCmd, rpcAlgorithmCmd)
}
