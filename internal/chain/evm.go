package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNullResult is returned when the node answers with a JSON null.
var ErrNullResult = errors.New("null result")

// EVMClient is a minimal, read-only JSON-RPC client for EVM chains.
type EVMClient struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
	nextID  atomic.Int64
}

// Option configures an EVMClient.
type Option func(*EVMClient)

// WithHTTPClient replaces the default HTTP client (15 s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *EVMClient) { c.client = hc }
}

// WithRateLimit caps outgoing requests at rps per second. Public testnet
// providers throttle eth_getLogs aggressively; rps <= 0 disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *EVMClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreaker trips after maxFailures consecutive failed requests and fails
// fast for cooldown. Requests are never retried. Only transport, HTTP and
// parse failures count; a JSON-RPC error or null result means the node
// answered.
func WithBreaker(maxFailures uint32, cooldown time.Duration) Option {
	return func(c *EVMClient) {
		if maxFailures == 0 {
			c.breaker = nil
			return
		}
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "rpc:" + c.url,
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: nodeAnswered,
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.log.Warn("rpc breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}
}

// nodeAnswered reports whether err leaves the endpoint's health intact.
func nodeAnswered(err error) bool {
	var rpcErr *RPCError
	switch {
	case err == nil,
		errors.As(err, &rpcErr),
		errors.Is(err, ErrNullResult),
		errors.Is(err, context.Canceled):
		return true
	}
	return false
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *EVMClient) {
		if l != nil {
			c.log = l
		}
	}
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string, opts ...Option) *EVMClient {
	c := &EVMClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint this client talks to.
func (c *EVMClient) URL() string { return c.url }

// BlockNumber returns the latest block number.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	var hexStr string
	if err := c.call(ctx, &hexStr, "eth_blockNumber"); err != nil {
		return 0, err
	}
	n, err := hexutil.DecodeUint64(hexStr)
	if err != nil {
		return 0, fmt.Errorf("could not parse block number %q: %w", hexStr, err)
	}
	return n, nil
}

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (uint64, error) {
	var hexStr string
	if err := c.call(ctx, &hexStr, "eth_chainId"); err != nil {
		return 0, err
	}
	id, err := hexutil.DecodeUint64(hexStr)
	if err != nil {
		return 0, fmt.Errorf("could not parse chain id %q: %w", hexStr, err)
	}
	return id, nil
}

// CallContract performs an eth_call against the latest block and returns the
// raw return data.
func (c *EVMClient) CallContract(ctx context.Context, to common.Address, calldata []byte) ([]byte, error) {
	params := map[string]string{
		"to":   to.Hex(),
		"data": hexutil.Encode(calldata),
	}
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_call", params, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// LogEntry holds one raw event log as returned by eth_getLogs.
type LogEntry struct {
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	BlockNumber string   `json:"blockNumber"`
	TxHash      string   `json:"transactionHash"`
	LogIndex    string   `json:"logIndex"`
	Removed     bool     `json:"removed"`
}

// LogFilter selects logs for a single eth_getLogs request.
type LogFilter struct {
	Address   common.Address
	Topics    []common.Hash // positional topic filter; only topic0 is used in practice
	FromBlock uint64
	ToBlock   uint64
}

// GetLogs queries event logs in the inclusive block range of f.
func (c *EVMClient) GetLogs(ctx context.Context, f LogFilter) ([]LogEntry, error) {
	filter := map[string]interface{}{
		"address":   f.Address.Hex(),
		"fromBlock": hexutil.EncodeUint64(f.FromBlock),
		"toBlock":   hexutil.EncodeUint64(f.ToBlock),
	}
	if len(f.Topics) > 0 {
		topics := make([]string, len(f.Topics))
		for i, t := range f.Topics {
			topics[i] = t.Hex()
		}
		filter["topics"] = topics
	}

	var logs []LogEntry
	if err := c.call(ctx, &logs, "eth_getLogs", filter); err != nil {
		return nil, err
	}
	return logs, nil
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int64         `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

func (c *EVMClient) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	do := func() (interface{}, error) {
		return nil, c.roundTrip(ctx, out, method, params)
	}
	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(do)
	} else {
		_, err = do()
	}
	if err != nil {
		c.log.Debug("rpc call failed", zap.String("method", method), zap.Error(err))
	}
	return err
}

func (c *EVMClient) roundTrip(ctx context.Context, out interface{}, method string, params []interface{}) error {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	c.log.Debug("rpc call",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("RPC HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return fmt.Errorf("%s: %w", method, ErrNullResult)
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("parsing result: %w", err)
	}
	return nil
}
