package rpc

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Endpoints more than this many blocks behind the best head are skipped.
	staleBlockThreshold = 3
	// How long a fastest-pick winner is reused.
	cacheTTL = 5 * time.Minute
)

// ParseAlgorithm validates an algorithm name. "" means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover:
		return a, nil
	}
	return "", fmt.Errorf("unknown rpc algorithm %q", s)
}

// Endpoint is one RPC URL with its measured attributes.
type Endpoint struct {
	URL     string
	Latency time.Duration
	Head    uint64
	Healthy bool // meaningful only when Checked
	Checked bool
}

// Picker selects an endpoint according to its algorithm. It is safe for
// concurrent use.
type Picker struct {
	algo Algorithm

	mu      sync.Mutex
	next    int
	winner  string
	expires time.Time
	now     func() time.Time
}

// NewPicker creates a Picker.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo, now: time.Now}
}

// Pick selects one of endpoints.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.algo {
	case AlgorithmRoundRobin:
		return p.roundRobin(endpoints)
	case AlgorithmFailover:
		return failover(endpoints)
	default:
		return p.fastest(endpoints)
	}
}

// fastest returns the best-scoring fresh endpoint and remembers it for
// cacheTTL as long as it stays in the list.
func (p *Picker) fastest(endpoints []Endpoint) (*Endpoint, error) {
	if p.winner != "" && p.now().Before(p.expires) {
		for i := range endpoints {
			if endpoints[i].URL == p.winner {
				return &endpoints[i], nil
			}
		}
	}

	best := bestHead(endpoints)
	var (
		winner    *Endpoint
		bestScore float64
	)
	for _, e := range candidates(endpoints) {
		if best > 0 && best-e.Head > staleBlockThreshold {
			continue
		}
		if s := score(e, best); winner == nil || s > bestScore {
			winner, bestScore = e, s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	p.winner = winner.URL
	p.expires = p.now().Add(cacheTTL)
	return winner, nil
}

func (p *Picker) roundRobin(endpoints []Endpoint) (*Endpoint, error) {
	healthy := candidates(endpoints)
	if len(healthy) == 0 {
		return nil, ErrNoHealthyRPC
	}
	e := healthy[p.next%len(healthy)]
	p.next = (p.next + 1) % len(healthy)
	return e, nil
}

// failover returns the first endpoint not known to be down.
func failover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		if e := &endpoints[i]; !e.Checked || e.Healthy {
			return e, nil
		}
	}
	return nil, ErrNoHealthyRPC
}

// score favours low latency, minus a point per block behind the best head.
func score(e *Endpoint, best uint64) float64 {
	var s float64
	if ms := e.Latency.Milliseconds(); ms > 0 {
		s += 1000.0 / float64(ms)
	} else if e.Latency > 0 {
		s += 1000.0
	}
	if best > 0 {
		s += 10 - float64(best-e.Head)
	}
	return s
}

func bestHead(endpoints []Endpoint) uint64 {
	var best uint64
	for _, e := range endpoints {
		if (!e.Checked || e.Healthy) && e.Head > best {
			best = e.Head
		}
	}
	return best
}

// candidates drops endpoints that were checked and found unhealthy.
func candidates(endpoints []Endpoint) []*Endpoint {
	out := make([]*Endpoint, 0, len(endpoints))
	for i := range endpoints {
		if e := &endpoints[i]; !e.Checked || e.Healthy {
			out = append(out, e)
		}
	}
	return out
}
