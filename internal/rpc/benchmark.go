package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nftterminal/nftterm/internal/chain"
)

// ErrWrongChain is returned when an endpoint serves a different chain than
// the network it is configured for.
var ErrWrongChain = errors.New("endpoint serves a different chain")

// sampleTimeout bounds a single endpoint sample.
const sampleTimeout = 5 * time.Second

// Sample is the outcome of sampling one endpoint.
type Sample struct {
	URL     string
	Latency time.Duration
	Head    uint64
	ChainID uint64
	Err     error
}

// Benchmark samples every url in parallel. When chainID is non-zero an
// endpoint reporting another chain ID is marked failed.
func Benchmark(ctx context.Context, urls []string, chainID uint64) []Sample {
	samples := make([]Sample, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			samples[idx] = sample(ctx, u, chainID)
		}(i, u)
	}
	wg.Wait()
	return samples
}

func sample(ctx context.Context, url string, want uint64) Sample {
	ctx, cancel := context.WithTimeout(ctx, sampleTimeout)
	defer cancel()

	c := chain.NewEVMClient(url)
	p := Sample{URL: url}
	p.Latency, p.Head, p.Err = c.Ping(ctx)
	if p.Err != nil || want == 0 {
		return p
	}
	if p.ChainID, p.Err = c.ChainID(ctx); p.Err == nil && p.ChainID != want {
		p.Err = fmt.Errorf("%w: got %d, want %d", ErrWrongChain, p.ChainID, want)
	}
	return p
}

// Endpoints converts samples into checked picker endpoints, keeping order.
// Samples behind the best head by more than the stale threshold are
// unhealthy.
func Endpoints(samples []Sample) []Endpoint {
	var best uint64
	for _, p := range samples {
		if p.Err == nil && p.Head > best {
			best = p.Head
		}
	}
	out := make([]Endpoint, 0, len(samples))
	for _, p := range samples {
		out = append(out, Endpoint{
			URL:     p.URL,
			Latency: p.Latency,
			Head:    p.Head,
			Healthy: p.Err == nil && best-p.Head <= staleBlockThreshold,
			Checked: true,
		})
	}
	return out
}

// Candidates returns custom URLs followed by the network's own, without
// duplicates.
func Candidates(net *chain.Network, custom []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{custom, net.RPCs} {
		for _, u := range list {
			u = strings.TrimSpace(u)
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

// Best benchmarks urls and picks one with algo. A single URL is returned
// without probing.
func Best(ctx context.Context, urls []string, chainID uint64, algo Algorithm, log *zap.Logger) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	samples := Benchmark(ctx, urls, chainID)
	for _, p := range samples {
		if p.Err != nil {
			log.Debug("rpc sample failed", zap.String("url", p.URL), zap.Error(p.Err))
		}
	}
	winner, err := NewPicker(algo).Pick(Endpoints(samples))
	if err != nil {
		return "", err
	}
	log.Debug("rpc selected", zap.String("url", winner.URL), zap.Duration("latency", winner.Latency))
	return winner.URL, nil
}
