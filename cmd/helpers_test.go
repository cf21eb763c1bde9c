package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/nftterminal/nftterm/internal/nft"
)

var (
	collectionAddr = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	ownerAddr      = common.HexToAddress("0x0000000000000000000000000000000000000abc")
	holderA        = common.HexToAddress("0x000000000000000000000000000000000000000a")
	holderB        = common.HexToAddress("0x000000000000000000000000000000000000000b")
)

// chainNode is an in-memory NFT Terminal contract behind a JSON-RPC server.
type chainNode struct {
	head    uint64
	chainID uint64
	calls   map[string][]interface{} // method name → return values
	logs    []map[string]interface{}

	mu       sync.Mutex
	hits     atomic.Int32
	getLogs  int
	srv      *httptest.Server
	failCall map[string]bool
}

func newChainNode(t *testing.T) *chainNode {
	t.Helper()
	n := &chainNode{
		head:    5000,
		chainID: 10143,
		calls: map[string][]interface{}{
			"name":                {"Purple Frogs"},
			"symbol":              {"FROG"},
			"totalSupply":         {big.NewInt(3)},
			"maxSupply":           {big.NewInt(100)},
			"mintPrice":           {big.NewInt(10_000_000_000_000_000)},
			"maxPerWallet":        {big.NewInt(5)},
			"publicMintActive":    {true},
			"whitelistMintActive": {false},
			"owner":               {ownerAddr},
			"mintedCount":         {big.NewInt(1)},
			"balanceOf":           {big.NewInt(2)},
		},
		failCall: map[string]bool{},
	}
	// Three mints: A gets token 1, B gets tokens 2 and 3.
	n.addTransfer(common.Address{}, holderA, 1, 4990, 0)
	n.addTransfer(common.Address{}, holderB, 2, 4995, 0)
	n.addTransfer(common.Address{}, holderB, 3, 4995, 1)

	n.srv = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.srv.Close)
	return n
}

func (n *chainNode) url() string { return n.srv.URL }

func (n *chainNode) logCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.getLogs
}

func (n *chainNode) addTransfer(from, to common.Address, tokenID int64, block, index uint64) {
	n.logs = append(n.logs, map[string]interface{}{
		"address": collectionAddr.Hex(),
		"topics": []string{
			nft.TransferTopic.Hex(),
			common.BytesToHash(from.Bytes()).Hex(),
			common.BytesToHash(to.Bytes()).Hex(),
			common.BigToHash(big.NewInt(tokenID)).Hex(),
		},
		"data":            "0x",
		"blockNumber":     hexutil.EncodeUint64(block),
		"transactionHash": common.BigToHash(new(big.Int).SetUint64(block*10 + index)).Hex(),
		"logIndex":        hexutil.EncodeUint64(index),
		"removed":         false,
	})
}

func (n *chainNode) serve(w http.ResponseWriter, r *http.Request) {
	n.hits.Add(1)
	var req struct {
		ID     int64             `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	reply := func(result interface{}) {
		json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result}) //nolint:errcheck
	}
	fail := func(msg string) {
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]interface{}{"code": 3, "message": msg},
		})
	}

	switch req.Method {
	case "eth_blockNumber":
		reply(hexutil.EncodeUint64(n.head))
	case "eth_chainId":
		reply(hexutil.EncodeUint64(n.chainID))
	case "eth_gasPrice":
		reply("0xba43b7400")
	case "eth_call":
		var call struct {
			Data string `json:"data"`
		}
		json.Unmarshal(req.Params[0], &call) //nolint:errcheck
		data, err := hexutil.Decode(call.Data)
		if err != nil || len(data) < 4 {
			fail("bad calldata")
			return
		}
		m, err := nft.TerminalABI.MethodById(data[:4])
		if err != nil {
			fail("execution reverted")
			return
		}
		vals, ok := n.calls[m.Name]
		if !ok || n.failCall[m.Name] {
			fail("execution reverted")
			return
		}
		out, err := m.Outputs.Pack(vals...)
		if err != nil {
			fail(err.Error())
			return
		}
		reply(hexutil.Encode(out))
	case "eth_getLogs":
		var filter struct {
			FromBlock string `json:"fromBlock"`
			ToBlock   string `json:"toBlock"`
		}
		json.Unmarshal(req.Params[0], &filter) //nolint:errcheck
		from, _ := hexutil.DecodeUint64(filter.FromBlock)
		to, _ := hexutil.DecodeUint64(filter.ToBlock)
		n.mu.Lock()
		n.getLogs++
		n.mu.Unlock()
		out := []map[string]interface{}{}
		for _, l := range n.logs {
			b, _ := hexutil.DecodeUint64(l["blockNumber"].(string))
			if b >= from && b <= to {
				out = append(out, l)
			}
		}
		reply(out)
	default:
		fail("method not found")
	}
}

// lockedBuffer is a stderr sink shared by the spinner and the logger.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args against an isolated config dir and returns
// stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NFTTERM_RATE_LIMIT", "0")
	resetFlags(rootCmd)

	var out bytes.Buffer
	errOut := &lockedBuffer{}
	rootCmd.SetOut(&out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--config", dir}, args...))
	err := execute(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, "nftterm %s", strings.Join(args, " "))
	return out
}
