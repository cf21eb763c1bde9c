package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nftterminal/nftterm/internal/config"
	"github.com/nftterminal/nftterm/internal/nft"
	"github.com/nftterminal/nftterm/internal/ui"
)

var (
	mintWallet   string
	mintQuantity uint64
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Read a collection's on-chain state",
}

var collectionInfoCmd = &cobra.Command{
	Use:   "info [address]",
	Short: "Name, supply, price and sale state of a collection",
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

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		c, err := s.reader.ReadCollection(ctx, addr)
		if err != nil {
			return fmt.Errorf("reading collection: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.CollectionBlock(c, s.net.NativeCurrency))
		if u := s.net.AddressURL(addr.Hex()); u != "" {
			fmt.Fprintln(out, ui.Meta("  "+u))
		}
		return nil
	},
}

var collectionMintStatusCmd = &cobra.Command{
	Use:   "mint-status [address]",
	Short: "Check whether a wallet can mint right now",
	Long: `Check the public mint for a wallet: remaining supply, tokens already
minted by the wallet, the per-wallet cap and the cost of --quantity tokens.

When the minted count cannot be read it is treated as 0.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wallet, err := nft.ParseAddress(mintWallet)
		if err != nil {
			return fmt.Errorf("--wallet: %w", err)
		}
		addr, err := contractArg(args)
		if err != nil {
			return err
		}
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		c, err := s.reader.ReadCollection(ctx, addr)
		if err != nil {
			return fmt.Errorf("reading collection: %w", err)
		}
		minted, err := s.reader.MintedCount(ctx, addr, wallet)
		if err != nil {
			logger.Warn("mintedCount failed, assuming 0", zap.String("wallet", wallet.Hex()), zap.Error(err))
			minted = 0
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.MintStatusBlock(wallet, c.MintStatus(minted, mintQuantity), s.net.NativeCurrency))
		if held, err := s.reader.BalanceOf(ctx, addr, wallet); err == nil {
			fmt.Fprintln(out, ui.Meta(fmt.Sprintf("  wallet currently holds %d %s", held, c.Symbol)))
		} else {
			logger.Debug("balanceOf failed", zap.Error(err))
		}
		if gas, err := s.client.GetGasInfo(ctx); err == nil {
			gwei, isBase := gas.Display()
			label := "gas price"
			if isBase {
				label = "base fee"
			}
			fmt.Fprintln(out, ui.Meta(fmt.Sprintf("  %s %.2f gwei", label, gwei)))
		} else {
			logger.Debug("gas price unavailable", zap.Error(err))
		}
		if c.IsOwner(wallet) {
			fmt.Fprintln(out, ui.Meta("  this wallet owns the collection"))
		}
		return nil
	},
}

func init() {
	collectionMintStatusCmd.Flags().StringVar(&mintWallet, "wallet", "", "wallet address to check (required)")
	collectionMintStatusCmd.Flags().Uint64VarP(&mintQuantity, "quantity", "q", 1, "tokens to mint")
	_ = collectionMintStatusCmd.MarkFlagRequired("wallet")

	collectionCmd.AddCommand(collectionInfoCmd, collectionMintStatusCmd)
}
