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

package node

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// rerunDelay is the wait before probing again when the network looks to be
// in the middle of producing a block.
const rerunDelay = time.Second

// SetBestNode probes the height and latency of every host and reorders the
// hosts by
//
//	height + (1 - elapsed/(timeout+10s))
//
// descending, so height dominates and latency breaks ties. A host that
// fails its probe scores as height 0. If two hosts adjacent in the current
// order differ in height by exactly one, a block is likely propagating and
// the probe is repeated once after a second. The cache is reset afterwards.
func (f *Fetcher) SetBestNode(ctx context.Context) error {
	hosts := f.snapshot()
	var scores []float64
	for run := 1; ; run++ {
		var heights []int64
		heights, scores = f.probe(ctx, hosts)
		if err := ctx.Err(); err != nil {
			return err
		}
		if run == 2 || !propagating(heights) {
			break
		}
		f.log.Debug("heights differ by one, probing again")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.clock.After(rerunDelay):
		}
	}

	ranked := make([]int, len(hosts))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return scores[ranked[a]] > scores[ranked[b]]
	})
	best := make([]*host, len(hosts))
	for i, r := range ranked {
		best[i] = hosts[r]
		f.log.WithField("host", hosts[r].url).
			Debugf("score %.4f", scores[r])
	}

	f.mu.Lock()
	f.hosts = best
	f.failures = 0
	f.mu.Unlock()
	f.ResetCache()
	return nil
}

func propagating(heights []int64) bool {
	for i := 1; i < len(heights); i++ {
		d := heights[i] - heights[i-1]
		if d == 1 || d == -1 {
			return true
		}
	}
	return false
}

func (f *Fetcher) probe(ctx context.Context,
	hosts []*host) (heights []int64, scores []float64) {
	heights = make([]int64, len(hosts))
	scores = make([]float64, len(hosts))
	window := float64(f.cfg.Timeout + bestNodeSlack)
	var g errgroup.Group
	for i, h := range hosts {
		i, h := i, h
		g.Go(func() error {
			start := f.clock.Now()
			height, err := f.hostHeight(ctx, h)
			elapsed := f.clock.Since(start)
			if err != nil {
				f.log.WithField("host", h.url).WithError(err).
					Debug("probe failed")
				height = 0
			}
			heights[i] = height
			scores[i] = float64(height) + (1 - float64(elapsed)/window)
			return nil
		})
	}
	g.Wait()
	return heights, scores
}

// hostHeight asks h alone for its height, bypassing the cache and the
// failover.
func (f *Fetcher) hostHeight(ctx context.Context, h *host) (int64, error) {
	data, _, err := f.fetchHost(ctx, h, Request{Path: pathHeight})
	if err != nil {
		return 0, err
	}
	return decodeHeight(data)
}

func decodeHeight(data []byte) (int64, error) {
	var res struct {
		Height *int64 `json:"height"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return 0, fmt.Errorf("height: %w", err)
	}
	if res.Height == nil {
		return 0, fmt.Errorf("height: missing")
	}
	return *res.Height, nil
}
