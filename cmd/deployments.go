package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nftterminal/nftterm/internal/chain"
	"github.com/nftterminal/nftterm/internal/config"
	"github.com/nftterminal/nftterm/internal/deployments"
	"github.com/nftterminal/nftterm/internal/nft"
	deploysync "github.com/nftterminal/nftterm/internal/sync"
	"github.com/nftterminal/nftterm/internal/ui"
)

var (
	deployTx      string
	deployOffline bool
	deployName    string
	deploySymbol  string
	deployMax     string
	deployPrice   string
	syncEvery     time.Duration
)

var deploymentsCmd = &cobra.Command{
	Use:     "deployments",
	Aliases: []string{"deploys"},
	Short:   "Local registry of deployed collections",
}

var deploymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered collections, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, closeStore, err := openRegistry()
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		records := reg.List()
		if len(records) == 0 {
			fmt.Fprintln(out, ui.Meta("No collections registered yet. Add one with `nftterm deployments add <address>`."))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 3, Right: true},
			{Title: "Name", Width: 18},
			{Title: "Symbol", Width: 8},
			{Title: "Address", Width: 14},
			{Title: "Max Supply", Width: 10, Right: true},
			{Title: "Price", Width: 10, Right: true},
			{Title: "Deployed", Width: 16},
		})
		for i, r := range records {
			deployed := "—"
			if r.DeployedAt > 0 {
				deployed = r.DeployedTime().Local().Format("2006-01-02 15:04")
			}
			t.AddRow(ui.Row{
				fmt.Sprintf("%d", i+1),
				r.Name,
				r.Symbol,
				ui.ShortenAddress(r.Address, 4),
				r.MaxSupply,
				r.MintPrice,
				deployed,
			})
		}
		fmt.Fprint(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d collections · latest is used when no address is given", len(records))))
		return nil
	},
}

var deploymentsAddCmd = &cobra.Command{
	Use:   "add <address>",
	Short: "Register a deployed collection",
	Long: `Register a collection so other commands can default to it.

Name, symbol, max supply and mint price are read from the chain unless
--offline is given, in which case the flags are used as-is. Registering an
address twice (in any letter case) is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := nft.ParseAddress(args[0])
		if err != nil {
			return err
		}

		rec := deployments.Record{
			Address:    addr.Hex(),
			Name:       deployName,
			Symbol:     deploySymbol,
			MaxSupply:  deployMax,
			MintPrice:  deployPrice,
			DeployedAt: time.Now().UnixMilli(),
			TxHash:     deployTx,
		}
		if !deployOffline {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
			defer cancel()
			c, err := s.reader.ReadCollection(ctx, addr)
			if err != nil {
				return fmt.Errorf("reading collection (use --offline to skip): %w", err)
			}
			rec.Name = c.Name
			rec.Symbol = c.Symbol
			rec.MaxSupply = fmt.Sprintf("%d", c.MaxSupply)
			rec.MintPrice = ui.FormatEther(c.MintPrice)
		}

		reg, closeStore, err := openRegistry()
		if err != nil {
			return err
		}
		defer closeStore()

		added, err := reg.Add(rec)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !added {
			fmt.Fprintln(out, ui.Warn(fmt.Sprintf("%s is already registered", addr.Hex())))
			return nil
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Registered %s at %s", rec.Name, ui.Addr(addr.Hex()))))
		return nil
	},
}

var deploymentsSyncCmd = &cobra.Command{
	Use:   "sync <url|file>",
	Short: "Import collections from a shared manifest",
	Long: `Import collections from a manifest URL or file. Accepted layouts are
{"collections": [...]}, a bare array of records, or a store.json from
another machine. Addresses already registered are left untouched.

With --every the source is re-read on that interval until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, closeStore, err := openRegistry()
		if err != nil {
			return err
		}
		defer closeStore()

		s := deploysync.New(reg, deploysync.WithLogger(logger.Named("sync")))
		out := cmd.OutOrStdout()
		report := func(res deploysync.Result, err error) {
			if err != nil {
				fmt.Fprintln(out, ui.Err(chain.TruncateError(err, chain.DefaultErrorLimit)))
				return
			}
			msg := fmt.Sprintf("Imported %d collections (%d already registered", res.Added, res.Skipped)
			if res.Invalid > 0 {
				msg += fmt.Sprintf(", %d invalid", res.Invalid)
			}
			fmt.Fprintln(out, ui.Success(msg+")"))
		}

		if syncEvery > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Meta(fmt.Sprintf("syncing every %s, ctrl+c to stop", syncEvery)))
			return s.Watch(cmd.Context(), args[0], syncEvery, report)
		}
		res, err := s.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		report(res, nil)
		return nil
	},
}

func init() {
	deploymentsAddCmd.Flags().StringVar(&deployTx, "tx", "", "deployment transaction hash")
	deploymentsAddCmd.Flags().BoolVar(&deployOffline, "offline", false, "do not read the chain; use the flags below")
	deploymentsAddCmd.Flags().StringVar(&deployName, "name", "", "collection name (with --offline)")
	deploymentsAddCmd.Flags().StringVar(&deploySymbol, "symbol", "", "collection symbol (with --offline)")
	deploymentsAddCmd.Flags().StringVar(&deployMax, "max-supply", "", "max supply (with --offline)")
	deploymentsAddCmd.Flags().StringVar(&deployPrice, "mint-price", "", "mint price in whole units (with --offline)")

	deploymentsSyncCmd.Flags().DurationVar(&syncEvery, "every", 0, "keep syncing on this interval")

	deploymentsCmd.AddCommand(deploymentsListCmd, deploymentsAddCmd, deploymentsSyncCmd)
}
