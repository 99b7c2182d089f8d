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

package node_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveskit/waveskit/node"
	"github.com/waveskit/waveskit/waves"
)

// testNode is an httptest server that counts requests by URI.
type testNode struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newTestNode(t *testing.T, handler http.HandlerFunc) *testNode {
	n := &testNode{hits: make(map[string]int)}
	n.Server = httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			n.mu.Lock()
			n.hits[r.URL.RequestURI()]++
			n.mu.Unlock()
			handler(w, r)
		}))
	t.Cleanup(n.Close)
	return n
}

func (n *testNode) Hits(uri string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hits[uri]
}

func heightNode(t *testing.T, height int64) *testNode {
	return newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"height":%v}`, height)
	})
}

func failingNode(t *testing.T) *testNode {
	return newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":199,"message":"internal error"}`)
	})
}

func newFetcher(t *testing.T, cfg node.Config, hosts ...*testNode) *node.Fetcher {
	for _, h := range hosts {
		cfg.Hosts = append(cfg.Hosts, h.URL)
	}
	f, err := node.New(cfg)
	require.NoError(t, err)
	return f
}

func TestNewDefaults(t *testing.T) {
	f, err := node.New(node.Config{ChainID: waves.TestNet})
	require.NoError(t, err)
	assert.Len(t, f.Hosts(), 4)

	f, err = node.New(node.Config{ChainID: waves.MainNet})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://nodes.wavesplatform.com"}, f.Hosts())

	f, err = node.New(node.Config{Hosts: []string{"http://localhost:6869/"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:6869"}, f.Hosts())

	_, err = node.New(node.Config{ChainID: waves.StageNet})
	assert.Error(t, err)
}

func TestFetcherFailover(t *testing.T) {
	bad := failingNode(t)
	good := heightNode(t, 10)
	f := newFetcher(t, node.Config{}, bad, good)

	height, err := f.Height(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), height)
	assert.Equal(t, 1, bad.Hits("/blocks/height"))
	assert.Equal(t, 1, good.Hits("/blocks/height"))

	// Served from the cache.
	height, err = f.Height(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), height)
	assert.Equal(t, 1, bad.Hits("/blocks/height"))
	assert.Equal(t, 1, good.Hits("/blocks/height"))

	f.ResetCache()
	_, err = f.Height(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, good.Hits("/blocks/height"))
}

func TestFetcherTransportFailure(t *testing.T) {
	down := heightNode(t, 1)
	down.Close()
	good := heightNode(t, 7)
	f := newFetcher(t, node.Config{}, down, good)

	height, err := f.Height(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), height)
}

func TestFetcherAllFail(t *testing.T) {
	f := newFetcher(t, node.Config{}, failingNode(t), failingNode(t))
	_, err := f.Height(context.Background())
	assert.True(t, errors.Is(err, node.ErrNetwork), err)
	assert.False(t, errors.Is(err, node.ErrNotFound))
}

func TestFetcherNotFound(t *testing.T) {
	missing := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":311,"message":"transactions does not exist"}`)
	})
	other := heightNode(t, 1)
	f := newFetcher(t, node.Config{}, missing, other)

	id := waves.Digest{1}
	uri := "/transactions/info/" + id.String()
	_, err := f.TransactionInfo(context.Background(), id, false)
	assert.True(t, errors.Is(err, node.ErrNotFound), err)
	assert.Equal(t, 1, missing.Hits(uri))
	assert.Equal(t, 0, other.Hits(uri), "ignorable status must not fail over")

	// The absence is cached too.
	_, err = f.TransactionInfo(context.Background(), id, false)
	assert.True(t, errors.Is(err, node.ErrNotFound), err)
	assert.Equal(t, 1, missing.Hits(uri))

	// 404 is a failure where it was not declared ignorable.
	_, err = f.Height(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, other.Hits("/blocks/height"))
}

func TestFetcherCache(t *testing.T) {
	n := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"height":1}`)
	})
	ctx := context.Background()

	t.Run("Disabled", func(t *testing.T) {
		f := newFetcher(t, node.Config{CacheTTL: -1}, n)
		for i := 0; i < 3; i++ {
			_, err := f.Get(ctx, "/disabled")
			require.NoError(t, err)
		}
		assert.Equal(t, 3, n.Hits("/disabled"))
	})
	t.Run("Expires", func(t *testing.T) {
		f := newFetcher(t, node.Config{CacheTTL: 20 * time.Millisecond}, n)
		_, err := f.Get(ctx, "/expires")
		require.NoError(t, err)
		_, err = f.Get(ctx, "/expires")
		require.NoError(t, err)
		assert.Equal(t, 1, n.Hits("/expires"))
		time.Sleep(40 * time.Millisecond)
		_, err = f.Get(ctx, "/expires")
		require.NoError(t, err)
		assert.Equal(t, 2, n.Hits("/expires"))
	})
	t.Run("Overflow", func(t *testing.T) {
		f := newFetcher(t, node.Config{CacheSize: 2}, n)
		for _, path := range []string{"/a", "/b", "/c"} {
			_, err := f.Get(ctx, path)
			require.NoError(t, err)
		}
		// Storing /c flushed /a and /b.
		_, err := f.Get(ctx, "/a")
		require.NoError(t, err)
		_, err = f.Get(ctx, "/c")
		require.NoError(t, err)
		assert.Equal(t, 2, n.Hits("/a"))
		assert.Equal(t, 1, n.Hits("/c"))
	})
	t.Run("PostBypass", func(t *testing.T) {
		f := newFetcher(t, node.Config{}, n)
		for i := 0; i < 2; i++ {
			_, err := f.Post(ctx, "/post", []byte(`{}`))
			require.NoError(t, err)
		}
		assert.Equal(t, 2, n.Hits("/post"))
	})
	t.Run("Copy", func(t *testing.T) {
		f := newFetcher(t, node.Config{}, n)
		data, err := f.Get(ctx, "/copy")
		require.NoError(t, err)
		data[0] = 'x'
		data, err = f.Get(ctx, "/copy")
		require.NoError(t, err)
		assert.Equal(t, `{"height":1}`, string(data))
	})
}

func TestFetcherCanceled(t *testing.T) {
	n := heightNode(t, 1)
	f := newFetcher(t, node.Config{}, n, n)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Height(ctx)
	assert.True(t, errors.Is(err, context.Canceled), err)
}

func TestSetBestNode(t *testing.T) {
	low, high, mid := heightNode(t, 5), heightNode(t, 20), heightNode(t, 12)
	cfg := node.Config{Hosts: []string{low.URL, high.URL, mid.URL}}
	f, err := node.New(cfg, node.WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	require.NoError(t, f.SetBestNode(context.Background()))
	assert.Equal(t, []string{high.URL, mid.URL, low.URL}, f.Hosts())
	assert.Equal(t, 1, low.Hits("/blocks/height"))
}

func TestSetBestNodeFailedProbe(t *testing.T) {
	bad, good := failingNode(t), heightNode(t, 3)
	cfg := node.Config{Hosts: []string{bad.URL, good.URL}}
	f, err := node.New(cfg, node.WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)
	require.NoError(t, f.SetBestNode(context.Background()))
	assert.Equal(t, []string{good.URL, bad.URL}, f.Hosts())
}

func TestSetBestNodeRerun(t *testing.T) {
	a, b := heightNode(t, 10), heightNode(t, 11)
	clock := clockwork.NewFakeClock()
	cfg := node.Config{Hosts: []string{a.URL, b.URL}}
	f, err := node.New(cfg, node.WithClock(clock))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- f.SetBestNode(context.Background()) }()
	clock.BlockUntil(1)
	assert.Equal(t, 1, a.Hits("/blocks/height"))
	clock.Advance(time.Second)
	require.NoError(t, <-done)

	assert.Equal(t, 2, a.Hits("/blocks/height"))
	assert.Equal(t, 2, b.Hits("/blocks/height"))
	assert.Equal(t, []string{b.URL, a.URL}, f.Hosts())
}

func TestSetBestNodeLatency(t *testing.T) {
	slow := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"height":10}`)
	})
	fast := heightNode(t, 10)
	f := newFetcher(t, node.Config{}, slow, fast)
	require.NoError(t, f.SetBestNode(context.Background()))
	assert.Equal(t, []string{fast.URL, slow.URL}, f.Hosts())
}

func TestSetBestOnError(t *testing.T) {
	bad, good := failingNode(t), heightNode(t, 9)
	f := newFetcher(t, node.Config{CacheTTL: -1, SetBestOnError: 1}, bad, good)
	ctx := context.Background()

	_, err := f.Height(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{bad.URL, good.URL}, f.Hosts())

	_, err = f.Height(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{good.URL, bad.URL}, f.Hosts())
	// One failed request and one probe.
	assert.Equal(t, 2, bad.Hits("/blocks/height"))
}
