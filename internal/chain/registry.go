package chain

import (
	"errors"
	"sort"
	"strings"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// DefaultNetwork is the network used when none is configured.
const DefaultNetwork = "monad-testnet"

// Network holds the metadata needed to operate collections on one chain.
type Network struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        uint64   `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	RPCs           []string `json:"rpcs"`
	WSRPCs         []string `json:"ws_rpcs,omitempty"`
	Explorer       string   `json:"explorer"`
	// BlocksPerDay approximates block height per 24h from the nominal block
	// time. Day bucketing drifts when real block times differ.
	BlocksPerDay uint64 `json:"blocks_per_day"`
}

// AddressURL returns the explorer page for addr, or "" without an explorer.
func (n *Network) AddressURL(addr string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/address/" + addr
}

// TxURL returns the explorer page for a transaction hash.
func (n *Network) TxURL(hash string) string {
	if n.Explorer == "" || hash == "" {
		return ""
	}
	return n.Explorer + "/tx/" + hash
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	byID     map[uint64]*Network
}

// NewRegistry returns the registry of supported networks.
func NewRegistry() *Registry {
	nets := allNetworks()
	r := &Registry{
		networks: nets,
		byName:   make(map[string]*Network, len(nets)),
		byID:     make(map[uint64]*Network, len(nets)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
		r.byID[n.ChainID] = n
	}
	return r
}

// All returns every network sorted by name.
func (r *Registry) All() []Network {
	out := make([]Network, len(r.networks))
	copy(out, r.networks)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetByName finds a network by its slug (e.g. "monad-testnet").
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// GetByChainID finds a network by its numeric chain ID.
func (r *Registry) GetByChainID(id uint64) (*Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

func allNetworks() []Network {
	return []Network{
		{
			Name: "monad-testnet", DisplayName: "Monad Testnet", ChainID: 10143,
			NativeCurrency: "MON",
			RPCs:           []string{"https://testnet-rpc.monad.xyz"},
			Explorer:       "https://testnet.monadexplorer.com",
			BlocksPerDay:   172_800, // ~500ms blocks
		},
		{
			Name: "sepolia", DisplayName: "Ethereum Sepolia", ChainID: 11155111,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://rpc.sepolia.org"},
			Explorer:       "https://sepolia.etherscan.io",
			BlocksPerDay:   7_200,
		},
		{
			Name: "base-sepolia", DisplayName: "Base Sepolia", ChainID: 84532,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://sepolia.base.org"},
			Explorer:       "https://sepolia.basescan.org",
			BlocksPerDay:   43_200,
		},
		{
			Name: "arbitrum-sepolia", DisplayName: "Arbitrum Sepolia", ChainID: 421614,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://sepolia-rollup.arbitrum.io/rpc"},
			Explorer:       "https://sepolia.arbiscan.io",
			BlocksPerDay:   345_600,
		},
		{
			Name: "localhost", DisplayName: "Local Devnet", ChainID: 31337,
			NativeCurrency: "ETH",
			RPCs:           []string{"http://127.0.0.1:8545"},
			WSRPCs:         []string{"ws://127.0.0.1:8545"},
			BlocksPerDay:   86_400,
		},
	}
}
