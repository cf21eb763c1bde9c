// Package sync imports deployment records published elsewhere, such as a
// shared manifest URL or a store.json copied from another machine.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nftterminal/nftterm/internal/deployments"
	"github.com/nftterminal/nftterm/internal/nft"
)

// maxManifestSize caps how much of a remote manifest is read.
const maxManifestSize = 4 << 20

// ErrEmptyManifest is returned when a manifest holds no records.
var ErrEmptyManifest = errors.New("manifest lists no collections")

// Manifest is the object form of a deployments manifest. A bare JSON array
// of records is accepted too.
type Manifest struct {
	Collections []deployments.Record `json:"collections"`
	// Stored is the layout of a store.json dump.
	Stored []deployments.Record `json:"nft_terminal_deployed_contracts"`
}

// Result counts what one Run did.
type Result struct {
	Added   int
	Skipped int // already registered
	Invalid int // malformed address
}

// Syncer merges manifests into a deployments registry.
type Syncer struct {
	reg    *deployments.Registry
	client *http.Client
	log    *zap.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithHTTPClient replaces the default client used for http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Syncer) { s.client = c }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Syncer over reg.
func New(reg *deployments.Registry, opts ...Option) *Syncer {
	s := &Syncer{
		reg:    reg,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches source (an http(s) URL or a local path) and adds every record
// whose address is not registered yet, in manifest order.
func (s *Syncer) Run(ctx context.Context, source string) (Result, error) {
	var res Result
	data, err := s.fetch(ctx, source)
	if err != nil {
		return res, fmt.Errorf("fetching manifest: %w", err)
	}
	records, err := ParseManifest(data)
	if err != nil {
		return res, err
	}

	for _, rec := range records {
		addr, err := nft.ParseAddress(rec.Address)
		if err != nil {
			s.log.Warn("skipping manifest entry", zap.String("name", rec.Name), zap.Error(err))
			res.Invalid++
			continue
		}
		rec.Address = addr.Hex()
		added, err := s.reg.Add(rec)
		if err != nil {
			return res, err
		}
		if added {
			res.Added++
		} else {
			res.Skipped++
		}
	}
	s.log.Debug("manifest synced",
		zap.String("source", source),
		zap.Int("added", res.Added),
		zap.Int("skipped", res.Skipped),
		zap.Int("invalid", res.Invalid),
	)
	return res, nil
}

// Watch runs Run once, then again on every tick until ctx is cancelled.
// Errors after the first run are logged and passed to onSync so a flaky
// source does not stop the loop.
func (s *Syncer) Watch(ctx context.Context, source string, interval time.Duration, onSync func(Result, error)) error {
	res, err := s.Run(ctx, source)
	if err != nil {
		return err
	}
	if onSync != nil {
		onSync(res, nil)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res, err := s.Run(ctx, source)
			if err != nil {
				s.log.Warn("manifest sync failed", zap.String("source", source), zap.Error(err))
			}
			if onSync != nil {
				onSync(res, err)
			}
		}
	}
}

// ParseManifest decodes any of the accepted manifest layouts.
func ParseManifest(data []byte) ([]deployments.Record, error) {
	data = bytes.TrimSpace(data)
	var records []deployments.Record
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing manifest: %w", err)
		}
	} else {
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing manifest: %w", err)
		}
		records = append(m.Collections, m.Stored...)
	}
	if len(records) == 0 {
		return nil, ErrEmptyManifest
	}
	return records, nil
}

func (s *Syncer) fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
}
