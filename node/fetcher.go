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
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jonboulle/clockwork"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	_log "github.com/waveskit/waveskit/internal/log"
)

var (
	// ErrNotFound is returned when a host answers with one of the status
	// codes a request declared ignorable, such as 404 for an unknown
	// transaction id. It reports an absence, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned when every host failed.
	ErrNetwork = errors.New("network failure")
)

// Request is a call to the node API.
type Request struct {
	// Method defaults to GET. Only GET responses are cached.
	Method string
	Path   string
	Body   []byte
	Header http.Header

	// Ignore lists the status codes that end the request with ErrNotFound
	// instead of failing over to the next host.
	Ignore []int
}

func (r Request) isGet() bool {
	return r.Method == "" || r.Method == http.MethodGet
}

func (r Request) ignores(status int) bool {
	for _, code := range r.Ignore {
		if code == status {
			return true
		}
	}
	return false
}

type host struct {
	url    string
	client *retryablehttp.Client
}

// Fetcher makes requests against an ordered list of node hosts. It is safe
// for concurrent use.
type Fetcher struct {
	cfg   Config
	log   _log.Log
	clock clockwork.Clock

	mu       sync.Mutex
	hosts    []*host
	failures int

	// cache maps a GET path to its body, or to notFound. It is nil when
	// caching is disabled.
	cache *cache.Cache
}

type notFoundEntry struct{}

var notFound = notFoundEntry{}

// New returns a Fetcher for cfg. Zero Config fields take their defaults.
func New(cfg Config, opts ...Option) (*Fetcher, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	f := &Fetcher{cfg: cfg,
		log:   _log.New("pkg", "node"),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.hosts = make([]*host, len(cfg.Hosts))
	for i, url := range cfg.Hosts {
		f.hosts[i] = f.newHost(url)
	}
	if cfg.CacheTTL > 0 {
		// No janitor: expired entries are dropped on access and the
		// cache is flushed whenever it reaches CacheSize.
		f.cache = cache.New(cfg.CacheTTL, 0)
	}
	return f, nil
}

// newHost returns a host with its own connection pool. Failover between
// hosts replaces retries, so the client never retries by itself.
func (f *Fetcher) newHost(url string) *host {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.HTTPClient.Timeout = f.cfg.Timeout
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = leveledLogger{f.log.WithField("host", url)}
	return &host{url: url, client: client}
}

// Hosts returns the hosts in the order they are tried.
func (f *Fetcher) Hosts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	hosts := make([]string, len(f.hosts))
	for i, h := range f.hosts {
		hosts[i] = h.url
	}
	return hosts
}

func (f *Fetcher) snapshot() []*host {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*host(nil), f.hosts...)
}

// Get requests path, reporting the ignore status codes as ErrNotFound.
func (f *Fetcher) Get(ctx context.Context, path string,
	ignore ...int) ([]byte, error) {
	return f.Do(ctx, Request{Path: path, Ignore: ignore})
}

// Post sends body as JSON to path. Responses are never cached.
func (f *Fetcher) Post(ctx context.Context, path string, body []byte,
	ignore ...int) ([]byte, error) {
	return f.Do(ctx, Request{Method: http.MethodPost, Path: path,
		Body: body, Ignore: ignore})
}

// Do tries req against each host in order and returns the body of the first
// HTTP 200 response.
//
// A status code listed in req.Ignore stops the request with ErrNotFound. Any
// other failure is logged once for the host and the next host is tried. If
// every host fails the error wraps ErrNetwork.
func (f *Fetcher) Do(ctx context.Context, req Request) ([]byte, error) {
	get := req.isGet()
	if get {
		if data, ok, err := f.cached(req.Path); ok {
			return data, err
		}
	}

	if f.bestOnErrorDue() {
		if err := f.SetBestNode(ctx); err != nil {
			return nil, err
		}
		f.log.Infof("best node: %v", f.Hosts()[0])
	}

	hosts := f.snapshot()
	for _, h := range hosts {
		data, status, err := f.fetchHost(ctx, h, req)
		if err == nil {
			if get {
				f.store(req.Path, data)
			}
			return copyBytes(data), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if status != 0 && req.ignores(status) {
			if get {
				f.store(req.Path, notFound)
			}
			return nil, fmt.Errorf("%w: %v", ErrNotFound, req.Path)
		}
		f.fail(h, status, data, err)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	return nil, fmt.Errorf("%w: %v %v: %v host(s) failed",
		ErrNetwork, method, req.Path, len(hosts))
}

// fetchHost performs req against h only. A non zero status is returned
// whenever a response was received.
func (f *Fetcher) fetchHost(ctx context.Context, h *host,
	req Request) ([]byte, int, error) {
	if f.cfg.Limiter != nil {
		if err := f.cfg.Limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body interface{}
	if req.Body != nil {
		body = req.Body
	}
	r, err := retryablehttp.NewRequestWithContext(ctx, method,
		h.url+req.Path, body)
	if err != nil {
		return nil, 0, err
	}
	r.Header.Set("Accept", "application/json")
	if req.Body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.Header {
		r.Header[key] = values
	}

	res, err := h.client.Do(r)
	if err != nil {
		// Drop the connection so the next request to this host
		// reconnects.
		h.client.HTTPClient.CloseIdleConnections()
		return nil, 0, err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		h.client.HTTPClient.CloseIdleConnections()
		return nil, res.StatusCode, err
	}
	if res.StatusCode != http.StatusOK {
		return data, res.StatusCode, fmt.Errorf("HTTP %v", res.StatusCode)
	}
	return data, res.StatusCode, nil
}

// apiError is the error body returned by nodes and matchers.
type apiError struct {
	Error   interface{} `json:"error"`
	Status  string      `json:"status"`
	Message string      `json:"message"`
}

func (f *Fetcher) fail(h *host, status int, data []byte, err error) {
	log := f.log.WithField("host", h.url)
	if status != 0 {
		log = log.WithField("status", status)
	}
	var apiErr apiError
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
		code := apiErr.Error
		if code == nil && apiErr.Status != "" {
			code = apiErr.Status
		}
		log = log.WithFields(logrus.Fields{
			"error": code, "message": apiErr.Message})
	} else {
		log = log.WithError(err)
	}
	log.Warn("request failed")

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cfg.SetBestOnError > 0 && len(f.hosts) > 1 {
		f.failures++
	}
}

func (f *Fetcher) bestOnErrorDue() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.SetBestOnError > 0 && f.failures >= f.cfg.SetBestOnError
}

func (f *Fetcher) cached(path string) ([]byte, bool, error) {
	if f.cache == nil {
		return nil, false, nil
	}
	v, ok := f.cache.Get(path)
	if !ok {
		return nil, false, nil
	}
	if _, ok := v.(notFoundEntry); ok {
		return nil, true, fmt.Errorf("%w: %v", ErrNotFound, path)
	}
	return copyBytes(v.([]byte)), true, nil
}

func (f *Fetcher) store(path string, v interface{}) {
	if f.cache == nil {
		return
	}
	if f.cache.ItemCount() >= f.cfg.CacheSize {
		f.cache.Flush()
	}
	if data, ok := v.([]byte); ok {
		v = copyBytes(data)
	}
	f.cache.SetDefault(path, v)
}

// ResetCache drops every cached response.
func (f *Fetcher) ResetCache() {
	if f.cache != nil {
		f.cache.Flush()
	}
}

func copyBytes(data []byte) []byte {
	return append([]byte(nil), data...)
}

// leveledLogger adapts a logrus entry to retryablehttp.LeveledLogger. Host
// failures are reported by Fetcher.fail, so everything the client logs
// itself is debug output.
type leveledLogger struct {
	log *logrus.Entry
}

func (l leveledLogger) fields(kv []interface{}) *logrus.Entry {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fields[key] = kv[i+1]
		}
	}
	return l.log.WithFields(fields)
}

func (l leveledLogger) Error(msg string, kv ...interface{}) {
	l.fields(kv).Debug(msg)
}
func (l leveledLogger) Warn(msg string, kv ...interface{}) {
	l.fields(kv).Debug(msg)
}
func (l leveledLogger) Info(msg string, kv ...interface{}) {
	l.fields(kv).Debug(msg)
}
func (l leveledLogger) Debug(msg string, kv ...interface{}) {
	l.fields(kv).Debug(msg)
}
