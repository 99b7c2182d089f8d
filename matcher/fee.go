// MIT License
//
// Copyright 2018 Canonical Ledgers, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

package matcher

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	_log "github.com/waveskit/waveskit/internal/log"
	"github.com/waveskit/waveskit/node"
	"github.com/waveskit/waveskit/tx"
	"github.com/waveskit/waveskit/waves"
)

// DefaultDecimalsCacheSize is the number of asset decimals a Calculator
// remembers.
const DefaultDecimalsCacheSize = 256

// Calculator computes matcher fees from the settings of a matcher and the
// decimals of the assets it lists.
type Calculator struct {
	matcher  *Client
	node     *node.Fetcher
	decimals *lru.Cache[string, int]
	log      _log.Log

	mu       sync.RWMutex
	settings *Settings
}

// NewCalculator returns a Calculator that looks up decimals on n. Settings
// are loaded on first use.
func NewCalculator(matcher *Client, n *node.Fetcher,
	opts ...Option) (*Calculator, error) {
	o := newOptions(opts)
	decimals, err := lru.New[string, int](o.cacheSize)
	if err != nil {
		return nil, err
	}
	return &Calculator{matcher: matcher, node: n, decimals: decimals,
		log: _log.Entry(o.log, "matcher")}, nil
}

// Decimals returns the decimals of asset, 8 for WAVES.
func (c *Calculator) Decimals(ctx context.Context, asset string) (int, error) {
	if asset == "WAVES" || asset == "" {
		return wavesDecimals, nil
	}
	if d, ok := c.decimals.Get(asset); ok {
		return d, nil
	}
	id, err := waves.NewDigest(asset)
	if err != nil {
		return 0, fmt.Errorf("asset %q: %w", asset, err)
	}
	details, err := c.node.AssetDetails(ctx, id)
	if err != nil {
		return 0, err
	}
	c.decimals.Add(asset, details.Decimals)
	return details.Decimals, nil
}

// Reload fetches and parses the settings of the matcher.
func (c *Calculator) Reload(ctx context.Context) error {
	data, err := c.matcher.Settings(ctx)
	if err != nil {
		return err
	}
	return c.SetSettings(ctx, data)
}

// SetSettings replaces the settings with the /matcher/settings document
// data.
func (c *Calculator) SetSettings(ctx context.Context, data []byte) error {
	s, err := ParseSettings(ctx, data, c.Decimals)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
	c.log.WithField("rates", len(s.Rates)).Debug("matcher settings loaded")
	return nil
}

// Settings returns the current settings, loading them if needed.
func (c *Calculator) Settings(ctx context.Context) (*Settings, error) {
	c.mu.RLock()
	s := c.settings
	c.mu.RUnlock()
	if s != nil {
		return s, nil
	}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings, nil
}

// Fee returns the matcher fee of o and its asset, nil for WAVES.
func (c *Calculator) Fee(ctx context.Context, o *tx.Order,
	discount bool) (int64, *waves.Digest, error) {
	s, err := c.Settings(ctx)
	if err != nil {
		return 0, nil, err
	}
	return s.Fee(o, discount)
}

// SetFee sets the matcher fee and fee asset of o. o must be signed
// afterwards.
func (c *Calculator) SetFee(ctx context.Context, o *tx.Order,
	discount bool) error {
	fee, asset, err := c.Fee(ctx, o, discount)
	if err != nil {
		return err
	}
	o.MatcherFee, o.MatcherFeeAssetID = fee, asset
	return nil
}
