package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nftterminal/nftterm/internal/chain"
	"github.com/nftterminal/nftterm/internal/config"
	"github.com/nftterminal/nftterm/internal/logging"
	"github.com/nftterminal/nftterm/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/nftterminal/nftterm/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	rpcOverride string
	logger      = zap.NewNop()
	closeLog    = func() error { return nil }
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "nftterm",
	Short: "On-chain analytics for NFT Terminal collections",
	Long: `nftterm reads, analyses and manages ERC-721 collections deployed from
NFT Terminal on Monad testnet and other EVM test networks.

  Collection state, holder distribution, daily mints and recent transfers
  straight from the chain; a local registry of your deployments; allowlist
  and token-gating tools.

Configuration lives in ~/.nftterm/config.json and can be overridden by
NFTTERM_* environment variables, a .env file or the flags below.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir, cmd.Flags())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger, closeLog, err = logging.New(logging.Options{
			Verbose: verbose,
			File:    cfg.LogFile,
			Console: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		logger.Debug("config loaded", zap.String("dir", cfg.Dir()), zap.String("network", cfg.Network))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return flushLog()
	},
}

// flushLog syncs and closes the log once. Later calls are no-ops.
func flushLog() error {
	_ = logger.Sync()
	closeFn := closeLog
	closeLog = func() error { return nil }
	return closeFn()
}

// execute runs the CLI and flushes the log whether or not the command
// failed; PersistentPostRunE is skipped on errors.
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if ferr := flushLog(); err == nil {
		err = ferr
	}
	return err
}

// Execute runs the root command. Errors are printed once, truncated.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(chain.TruncateError(err, chain.DefaultErrorLimit)))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $NFTTERM_CONFIG_DIR or ~/.nftterm)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().String("network", "", "network to use (see `nftterm network list`)")
	rootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this file")
	rootCmd.PersistentFlags().String("store", "", "deployments store backend: json, leveldb, pebble or memory")
	rootCmd.PersistentFlags().StringVar(&rpcOverride, "rpc", "", "use this RPC URL instead of selecting one")

	rootCmd.AddCommand(
		analyticsCmd,
		transfersCmd,
		collectionCmd,
		deploymentsCmd,
		allowlistCmd,
		gatingCmd,
		networkCmd,
		rpcCmd,
		configCmd,
	)
}
