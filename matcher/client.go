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
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	_log "github.com/waveskit/waveskit/internal/log"
	"github.com/waveskit/waveskit/node"
	"github.com/waveskit/waveskit/tx"
	"github.com/waveskit/waveskit/waves"
)

// ErrRejected is returned when the matcher answers a request with success
// false.
var ErrRejected = errors.New("rejected by matcher")

// DefaultHost returns the public matcher of chain, or "" if there is none.
func DefaultHost(chain waves.ChainID) string {
	switch chain {
	case waves.MainNet:
		return "https://matcher.waves.exchange"
	case waves.TestNet:
		return "https://matcher-testnet.waves.exchange"
	}
	return ""
}

// DefaultPublicKey returns the public key of DefaultHost(chain).
func DefaultPublicKey(chain waves.ChainID) (waves.PublicKey, bool) {
	var s string
	switch chain {
	case waves.MainNet:
		s = "9cpfKN9suPNvfeUNphzxXMjcnn974eme8ZhWUjaktzU5"
	case waves.TestNet:
		s = "8QUAqtTckM5B8gvcuP7mMswat9SjKUuafJMusEoSn1Gy"
	default:
		return waves.PublicKey{}, false
	}
	pub, err := waves.ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pub, true
}

// Config configures a Client.
type Config struct {
	ChainID waves.ChainID

	// Hosts defaults to DefaultHost(ChainID).
	Hosts []string

	// PublicKey defaults to DefaultPublicKey(ChainID).
	PublicKey *waves.PublicKey

	Timeout time.Duration
}

type options struct {
	log       *logrus.Entry
	clock     clockwork.Clock
	cacheSize int
}

type Option func(*options)

// WithLogger sets the logger. By default a logger tagged pkg=matcher is
// used.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) { o.log = log }
}

// WithClock sets the clock of request timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithDecimalsCacheSize sets the number of asset decimals remembered by a
// Calculator.
func WithDecimalsCacheSize(size int) Option {
	return func(o *options) { o.cacheSize = size }
}

func newOptions(opts []Option) options {
	o := options{clock: clockwork.NewRealClock(),
		cacheSize: DefaultDecimalsCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Signer signs requests on behalf of an account. waves.Identity is a
// Signer.
type Signer interface {
	PublicKey() (waves.PublicKey, error)
	Sign(msg []byte) ([]byte, error)
}

// Client is a matcher API client.
type Client struct {
	f     *node.Fetcher
	pub   waves.PublicKey
	log   _log.Log
	clock clockwork.Clock
}

func New(cfg Config, opts ...Option) (*Client, error) {
	o := newOptions(opts)
	log := _log.Entry(o.log, "matcher")
	hosts := cfg.Hosts
	if len(hosts) == 0 {
		host := DefaultHost(cfg.ChainID)
		if host == "" {
			return nil, fmt.Errorf("no matcher for chain %v", cfg.ChainID)
		}
		hosts = []string{host}
	}
	var pub waves.PublicKey
	if cfg.PublicKey != nil {
		pub = *cfg.PublicKey
	} else {
		var ok bool
		if pub, ok = DefaultPublicKey(cfg.ChainID); !ok {
			return nil, fmt.Errorf("no matcher public key for chain %v",
				cfg.ChainID)
		}
	}
	// Matcher responses change with every trade, so nothing is cached.
	f, err := node.New(node.Config{Hosts: hosts, Timeout: cfg.Timeout,
		CacheTTL: -1}, node.WithLogger(log.Entry))
	if err != nil {
		return nil, err
	}
	return &Client{f: f, pub: pub, log: log, clock: o.clock}, nil
}

// PublicKey returns the public key of the matcher, which orders must name.
func (c *Client) PublicKey() waves.PublicKey { return c.pub }

// Settings returns the raw /matcher/settings document.
func (c *Client) Settings(ctx context.Context) ([]byte, error) {
	return c.f.Get(ctx, "/matcher/settings")
}

type response struct {
	Success *bool           `json:"success"`
	Status  string          `json:"status"`
	Message json.RawMessage `json:"message"`
}

func (c *Client) post(ctx context.Context, path string,
	in interface{}) (*response, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	data, err := c.f.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	var res response
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	if res.Success != nil && !*res.Success {
		return nil, fmt.Errorf("%w: %v: %v %s", ErrRejected, path,
			res.Status, res.Message)
	}
	return &res, nil
}

// PlaceOrder submits a signed order and returns the order accepted by the
// matcher.
func (c *Client) PlaceOrder(ctx context.Context,
	o *tx.Order) (json.RawMessage, error) {
	res, err := c.post(ctx, "/matcher/orderbook", o)
	if err != nil {
		return nil, err
	}
	var msg struct {
		ID *waves.Digest `json:"id"`
	}
	if err := json.Unmarshal(res.Message, &msg); err != nil || msg.ID == nil {
		return nil, fmt.Errorf("/matcher/orderbook: no order in response")
	}
	c.log.WithField("id", msg.ID).Debug("order placed")
	return res.Message, nil
}

// CancelOrder cancels the order id of the account of s.
func (c *Client) CancelOrder(ctx context.Context, s Signer,
	id waves.Digest) error {
	pub, err := s.PublicKey()
	if err != nil {
		return err
	}
	sig, err := s.Sign(append(append([]byte(nil), pub[:]...), id[:]...))
	if err != nil {
		return err
	}
	_, err = c.post(ctx, "/matcher/orderbook/cancel", struct {
		Sender    waves.PublicKey `json:"sender"`
		OrderID   waves.Digest    `json:"orderId"`
		Signature waves.Bytes     `json:"signature"`
	}{pub, id, sig})
	return err
}

// CancelAll cancels every order of the account of s.
func (c *Client) CancelAll(ctx context.Context, s Signer) error {
	pub, ts, sig, err := c.signTimestamp(s)
	if err != nil {
		return err
	}
	_, err = c.post(ctx, "/matcher/orderbook/cancel", struct {
		Sender    waves.PublicKey `json:"sender"`
		Timestamp int64           `json:"timestamp"`
		Signature waves.Bytes     `json:"signature"`
	}{pub, ts, sig})
	return err
}

// signTimestamp signs the public key of s followed by the current time.
func (c *Client) signTimestamp(s Signer) (waves.PublicKey, int64, []byte,
	error) {
	pub, err := s.PublicKey()
	if err != nil {
		return pub, 0, nil, err
	}
	ts := c.clock.Now().UnixMilli()
	msg := binary.BigEndian.AppendUint64(
		append([]byte(nil), pub[:]...), uint64(ts))
	sig, err := s.Sign(msg)
	return pub, ts, sig, err
}

// OrderInfo is an order in the history of an account.
type OrderInfo struct {
	ID        waves.Digest `json:"id"`
	Type      tx.OrderType `json:"type"`
	Amount    int64        `json:"amount"`
	Price     int64        `json:"price"`
	Filled    int64        `json:"filled"`
	Timestamp int64        `json:"timestamp"`
	Status    string       `json:"status"`
	AssetPair struct {
		AmountAsset string `json:"amountAsset"`
		PriceAsset  string `json:"priceAsset"`
	} `json:"assetPair"`
}

// Pair returns the asset pair of the order.
func (info OrderInfo) Pair() (tx.AssetPair, error) {
	amount, err := tx.ParseAsset(info.AssetPair.AmountAsset)
	if err != nil {
		return tx.AssetPair{}, err
	}
	price, err := tx.ParseAsset(info.AssetPair.PriceAsset)
	if err != nil {
		return tx.AssetPair{}, err
	}
	return tx.AssetPair{AmountAsset: amount, PriceAsset: price}, nil
}

func (c *Client) signedGet(ctx context.Context, s Signer, path string,
	v interface{}) error {
	_, ts, sig, err := c.signTimestamp(s)
	if err != nil {
		return err
	}
	data, err := c.f.Do(ctx, node.Request{Path: path, Header: http.Header{
		"Timestamp": {strconv.FormatInt(ts, 10)},
		"Signature": {waves.Base58Encode(sig)},
	}})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}
	return nil
}

// Orders lists the orders of the account of s. A nil closedOnly lists both
// open and closed orders.
func (c *Client) Orders(ctx context.Context, s Signer, activeOnly bool,
	closedOnly *bool) ([]OrderInfo, error) {
	pub, err := s.PublicKey()
	if err != nil {
		return nil, err
	}
	q := url.Values{"activeOnly": {strconv.FormatBool(activeOnly)}}
	if closedOnly != nil {
		q.Set("closedOnly", strconv.FormatBool(*closedOnly))
	}
	var orders []OrderInfo
	err = c.signedGet(ctx, s, "/matcher/orderbook/"+pub.String()+"?"+
		q.Encode(), &orders)
	return orders, err
}

// OrderStatus returns the order id of the account of s.
func (c *Client) OrderStatus(ctx context.Context, s Signer,
	id waves.Digest) (*OrderInfo, error) {
	pub, err := s.PublicKey()
	if err != nil {
		return nil, err
	}
	var info OrderInfo
	if err := c.signedGet(ctx, s,
		"/matcher/orderbook/"+pub.String()+"/"+id.String(),
		&info); err != nil {
		return nil, err
	}
	return &info, nil
}
