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
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	_log "github.com/waveskit/waveskit/internal/log"
	"github.com/waveskit/waveskit/waves"
)

// Defaults used when the corresponding Config field is zero.
const (
	DefaultTimeout   = 5 * time.Second
	DefaultCacheTTL  = time.Second
	DefaultCacheSize = 256

	// bestNodeSlack is added to the timeout when scoring latency so that a
	// probe that used the entire timeout still scores above the next lower
	// height.
	bestNodeSlack = 10 * time.Second
)

// DefaultHosts returns the public nodes of chain: one for MainNet and four
// for TestNet. Other chains have none.
func DefaultHosts(chain waves.ChainID) []string {
	switch chain {
	case waves.MainNet:
		return []string{"https://nodes.wavesplatform.com"}
	case waves.TestNet:
		return []string{
			"https://testnode1.wavesnodes.com",
			"https://testnode2.wavesnodes.com",
			"https://testnode3.wavesnodes.com",
			"https://testnode4.wavesnodes.com",
		}
	}
	return nil
}

// Config configures a Fetcher.
type Config struct {
	// ChainID selects the DefaultHosts when Hosts is empty.
	ChainID waves.ChainID

	// Hosts are tried in order. A trailing slash is ignored.
	Hosts []string

	// Timeout bounds each request to a single host.
	Timeout time.Duration

	// CacheTTL is how long a GET response is served from the cache. A
	// negative value disables the cache.
	CacheTTL time.Duration

	// CacheSize is the number of cached paths at which the whole cache is
	// flushed.
	CacheSize int

	// SetBestOnError, if positive, makes the Fetcher rerank its hosts with
	// SetBestNode before the next request once this many host failures
	// have been seen. It only applies with more than one host.
	SetBestOnError int

	// Limiter, if not nil, is waited on before every request to a host.
	Limiter *rate.Limiter
}

func (c Config) withDefaults() (Config, error) {
	if len(c.Hosts) == 0 {
		c.Hosts = DefaultHosts(c.ChainID)
	}
	if len(c.Hosts) == 0 {
		return c, fmt.Errorf("no hosts for chain %v", c.ChainID)
	}
	hosts := make([]string, len(c.Hosts))
	for i, host := range c.Hosts {
		host = strings.TrimRight(host, "/")
		if host == "" {
			return c, fmt.Errorf("empty host at %v", i)
		}
		hosts[i] = host
	}
	c.Hosts = hosts
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	return c, nil
}

// Option configures the collaborators of a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger. By default a logger tagged pkg=node is used.
func WithLogger(log *logrus.Entry) Option {
	return func(f *Fetcher) { f.log = _log.Entry(log, "node") }
}

// WithClock sets the clock used to measure and wait during SetBestNode.
func WithClock(clock clockwork.Clock) Option {
	return func(f *Fetcher) { f.clock = clock }
}
