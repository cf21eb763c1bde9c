package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// HeadFunc is invoked with every new head block number.
type HeadFunc func(head uint64)

// HeadWatcher delivers new chain heads until ctx is cancelled.
type HeadWatcher interface {
	Watch(ctx context.Context, fn HeadFunc) error
}

// BlockNumberer is the slice of EVMClient that polling needs.
type BlockNumberer interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// PollHeadWatcher polls eth_blockNumber and reports strictly increasing heads.
type PollHeadWatcher struct {
	Client   BlockNumberer
	Interval time.Duration
	Log      *zap.Logger
}

// Watch blocks until ctx is done. Poll errors are logged and skipped.
func (w *PollHeadWatcher) Watch(ctx context.Context, fn HeadFunc) error {
	interval := w.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}

	var last uint64
	check := func() {
		head, err := w.Client.BlockNumber(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("head poll failed", zap.Error(err))
			}
			return
		}
		if head > last {
			last = head
			fn(head)
		}
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			check()
		}
	}
}

// WSHeadWatcher subscribes to newHeads over a websocket endpoint. When the
// subscription cannot be opened or drops, Watch hands over to Fallback if
// one is set.
type WSHeadWatcher struct {
	URL      string
	Dialer   *websocket.Dialer
	Log      *zap.Logger
	Fallback HeadWatcher
}

type wsMessage struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	Params struct {
		Subscription string `json:"subscription"`
		Result       struct {
			Number string `json:"number"`
		} `json:"result"`
	} `json:"params"`
}

// Watch dials URL, subscribes and blocks until ctx is done. A failed
// subscription is returned as is without a Fallback; with one, Watch keeps
// going on the fallback and reports only heads above the last one seen.
func (w *WSHeadWatcher) Watch(ctx context.Context, fn HeadFunc) error {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}

	var last uint64
	err := w.subscribe(ctx, log, func(head uint64) {
		if head > last {
			last = head
		}
		fn(head)
	})
	if ctx.Err() != nil || w.Fallback == nil {
		return err
	}

	log.Warn("websocket heads lost, falling back to polling", zap.String("url", w.URL), zap.Error(err))
	return w.Fallback.Watch(ctx, func(head uint64) {
		if head > last {
			last = head
			fn(head)
		}
	})
}

func (w *WSHeadWatcher) subscribe(ctx context.Context, log *zap.Logger, fn HeadFunc) error {
	dialer := w.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, w.URL, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", w.URL, err)
	}
	defer conn.Close()

	// Unblock ReadJSON on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	sub := rpcRequest{JSONRPC: "2.0", Method: "eth_subscribe", Params: []interface{}{"newHeads"}, ID: 1}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribing: %w", err)
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading subscription: %w", err)
		}
		switch {
		case msg.Error != nil:
			return msg.Error
		case msg.ID == sub.ID && msg.Method == "":
			log.Debug("newHeads subscribed", zap.ByteString("subscription", msg.Result))
		case msg.Method == "eth_subscription":
			head, err := hexutil.DecodeUint64(msg.Params.Result.Number)
			if err != nil {
				log.Warn("bad head number", zap.String("number", msg.Params.Result.Number))
				continue
			}
			fn(head)
		}
	}
}

// ErrNoWebsocket is returned when a websocket watcher is requested for a
// network without a websocket endpoint.
var ErrNoWebsocket = errors.New("no websocket endpoint configured")

// NewHeadWatcher returns a websocket watcher when wsURL is set, otherwise a
// poller over client. The websocket watcher polls client once the
// subscription is lost.
func NewHeadWatcher(client BlockNumberer, wsURL string, interval time.Duration, log *zap.Logger) HeadWatcher {
	poll := &PollHeadWatcher{Client: client, Interval: interval, Log: log}
	if wsURL != "" {
		return &WSHeadWatcher{URL: wsURL, Log: log, Fallback: poll}
	}
	return poll
}
