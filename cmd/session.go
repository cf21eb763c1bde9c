package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/nftterminal/nftterm/internal/analytics"
	"github.com/nftterminal/nftterm/internal/chain"
	"github.com/nftterminal/nftterm/internal/config"
	"github.com/nftterminal/nftterm/internal/deployments"
	"github.com/nftterminal/nftterm/internal/nft"
	"github.com/nftterminal/nftterm/internal/rpc"
	"github.com/nftterminal/nftterm/internal/store"
)

// session holds the chain dependencies of one invocation.
type session struct {
	net    *chain.Network
	client *chain.EVMClient
	reader *nft.Reader
}

// currentNetwork resolves the configured network.
func currentNetwork() (*chain.Network, error) {
	net, err := chain.NewRegistry().GetByName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("network %q: %w (run `nftterm network list`)", cfg.Network, err)
	}
	return net, nil
}

// openSession selects an RPC endpoint for the configured network and wires
// the client with the configured rate limit and breaker.
func openSession(ctx context.Context) (*session, error) {
	net, err := currentNetwork()
	if err != nil {
		return nil, err
	}

	url := rpcOverride
	if url == "" {
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return nil, err
		}
		selectCtx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
		defer cancel()
		url, err = rpc.Best(selectCtx, rpc.Candidates(net, cfg.GetRPCs(net.Name)), net.ChainID, algo, logger)
		if err != nil {
			return nil, fmt.Errorf("selecting RPC for %s: %w", net.Name, err)
		}
	}
	logger.Debug("using rpc", zap.String("network", net.Name), zap.String("url", url))

	client := chain.NewEVMClient(url,
		chain.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		chain.WithBreaker(cfg.BreakerFailures, config.BreakerCooldown),
		chain.WithLogger(logger.Named("rpc")),
	)
	return &session{net: net, client: client, reader: nft.NewReader(client)}, nil
}

// scanner builds a log scanner from config.
func (s *session) scanner() *analytics.Scanner {
	return analytics.NewScanner(s.client,
		analytics.WithWindow(cfg.ScanWindow),
		analytics.WithRangeSpan(cfg.RangeSpan),
		analytics.WithBatchSize(cfg.BatchSize),
		analytics.WithScanLogger(logger.Named("scan")),
	)
}

// loader builds an analytics loader from config.
func (s *session) loader() *analytics.Loader {
	return analytics.NewLoader(s.client, s.reader, s.scanner(), analytics.LoaderConfig{
		BlocksPerDay:    s.net.BlocksPerDay,
		TopHolders:      cfg.TopHolders,
		RecentTransfers: cfg.RecentTransfers,
	}, logger.Named("analytics"))
}

// openRegistry opens the deployments registry on the configured store.
// The returned func closes the store.
func openRegistry() (*deployments.Registry, func() error, error) {
	st, err := store.Open(cfg.StoreBackend, cfg.Dir())
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	return deployments.NewRegistry(st, deployments.WithLogger(logger.Named("deployments"))), st.Close, nil
}

// contractArg parses the optional [address] argument. Without one, the most
// recently registered deployment is used.
func contractArg(args []string) (common.Address, error) {
	if len(args) > 0 {
		return nft.ParseAddress(args[0])
	}
	reg, closeStore, err := openRegistry()
	if err != nil {
		return common.Address{}, err
	}
	defer closeStore()

	rec, err := reg.Latest()
	if errors.Is(err, deployments.ErrNoDeployments) {
		return common.Address{}, fmt.Errorf("no address given and %w; pass an address or run `nftterm deployments add`", err)
	}
	if err != nil {
		return common.Address{}, err
	}
	logger.Debug("using latest deployment", zap.String("address", rec.Address), zap.String("name", rec.Name))
	return nft.ParseAddress(rec.Address)
}
