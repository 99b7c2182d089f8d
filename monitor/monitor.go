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

// Package monitor watches the transaction history of an address and
// reports new transactions once, surviving restarts and chain
// reorganizations.
//
// The state is kept in a pairs database (see internal/db): the height at
// which each transaction was seen and the signature of each walked block.
// A pass walks the history newest first and stops once enough consecutive
// blocks carry unchanged signatures and no unseen transactions.
package monitor

import (
	"bytes"
	"context"
	"errors"
	"time"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/waveskit/waveskit/internal/db"
	_log "github.com/waveskit/waveskit/internal/log"
	"github.com/waveskit/waveskit/node"
	"github.com/waveskit/waveskit/waves"
)

// ErrStop may be returned by a Handler to end Run without error.
var ErrStop = errors.New("stop monitoring")

const (
	DefaultConfirmations = 2
	DefaultPoll          = time.Second
	DefaultInterval      = time.Minute
	DefaultLimit         = 100

	firstPage = 10

	// Pages grow to Limit after this many blocks were walked.
	growAfter = 10
)

// Node is the part of *node.Fetcher used by a Monitor.
type Node interface {
	Transactions(ctx context.Context, adr waves.Address, limit int,
		after *waves.Digest) ([]*node.TxInfo, error)
	BlockAt(ctx context.Context, height int64,
		headersOnly bool) (*node.Block, error)
	Height(ctx context.Context) (int64, error)
}

type Config struct {
	Address waves.Address

	// Confirmations is the number of consecutive unchanged blocks after
	// which a pass stops walking back.
	Confirmations int64

	// Depth is the lowest height a pass walks to.
	Depth int64

	// Poll is the delay between requests while waiting for a new
	// transaction.
	Poll time.Duration

	// Interval is the longest wait for a new transaction before the next
	// pass.
	Interval time.Duration

	// Limit is the largest page of history requested.
	Limit int
}

func (c Config) withDefaults() Config {
	if c.Confirmations <= 0 {
		c.Confirmations = DefaultConfirmations
	}
	if c.Poll <= 0 {
		c.Poll = DefaultPoll
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Limit < firstPage {
		c.Limit = DefaultLimit
	}
	return c
}

// Status tells why a transaction is reported.
type Status int

const (
	// StatusNew transactions were never seen before.
	StatusNew Status = iota
	// StatusReplaced transactions were seen at another height.
	StatusReplaced
)

func (s Status) String() string {
	if s == StatusReplaced {
		return "replaced"
	}
	return "new"
}

type Tx struct {
	*node.TxInfo
	Status Status
}

// Update is the result of a pass.
type Update struct {
	// Refreshed is true if any transaction or block signature changed.
	Refreshed bool

	// Transactions lists the reported transactions, oldest first.
	Transactions []Tx
}

// Handler is called after every pass, before the pass is saved. If it
// returns an error the pass is not saved and Run returns the error, or nil
// for ErrStop.
type Handler func(ctx context.Context, u Update) error

type Option func(*Monitor)

func WithLogger(log *logrus.Entry) Option {
	return func(m *Monitor) { m.log = _log.Entry(log, "monitor") }
}

func WithClock(clock clockwork.Clock) Option {
	return func(m *Monitor) { m.clock = clock }
}

// Monitor watches one address. It is not safe for concurrent use.
type Monitor struct {
	n     Node
	conn  *sqlite.Conn
	cfg   Config
	log   _log.Log
	clock clockwork.Clock
}

// New returns a Monitor saving its state on conn, which must be a pairs
// database opened with db.Open.
func New(n Node, conn *sqlite.Conn, cfg Config, opts ...Option) *Monitor {
	m := Monitor{n: n, conn: conn, cfg: cfg.withDefaults(),
		log:   _log.New("pkg", "monitor"),
		clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&m)
	}
	m.log.Entry = m.log.WithField("address", cfg.Address)
	return &m
}

// pass is the outcome of walking the history once.
type pass struct {
	Update
	newest     *node.TxInfo
	signatures map[int64][]byte
}

// Pass walks the history once and returns what changed without saving it.
func (m *Monitor) Pass(ctx context.Context) (Update, error) {
	p, err := m.walk(ctx)
	if err != nil {
		return Update{}, err
	}
	return p.Update, nil
}

func (m *Monitor) walk(ctx context.Context) (*pass, error) {
	p := pass{signatures: make(map[int64][]byte)}
	var (
		after      *waves.Digest
		lastHeight int64 = -1
		walked     int
		limit      = firstPage
		// stable counts consecutive unchanged blocks, -1 while the
		// current block changed.
		stable int64 = -1
	)
walk:
	for {
		txs, err := m.n.Transactions(ctx, m.cfg.Address, limit, after)
		if err != nil {
			return nil, err
		}
		if len(txs) == 0 {
			break
		}
		for _, info := range txs {
			id := info.ID
			after = &id
			if p.newest == nil {
				p.newest = info
			}

			if info.Height != lastHeight {
				walked++
				lastHeight = info.Height
				if info.Height < m.cfg.Depth {
					break walk
				}
				header, err := m.n.BlockAt(ctx, info.Height, true)
				if err != nil {
					return nil, err
				}
				saved, err := db.SelectSignature(m.conn, info.Height)
				if err != nil {
					return nil, err
				}
				switch {
				case !bytes.Equal(saved, header.Signature):
					p.signatures[info.Height] = header.Signature
					stable = -1
				case stable < 0:
					stable = 0
				default:
					stable++
					if stable >= m.cfg.Confirmations {
						break walk
					}
				}
			}

			height, ok, err := db.SelectTransactionHeight(m.conn, info.ID)
			if err != nil {
				return nil, err
			}
			status := StatusNew
			switch {
			case !ok:
			case height != info.Height:
				status = StatusReplaced
			default:
				continue
			}
			p.Transactions = append(p.Transactions,
				Tx{TxInfo: info, Status: status})
			stable = -1
		}
		if walked > growAfter {
			limit = m.cfg.Limit
		}
	}

	// Oldest first.
	for i, j := 0, len(p.Transactions)-1; i < j; i, j = i+1, j-1 {
		p.Transactions[i], p.Transactions[j] =
			p.Transactions[j], p.Transactions[i]
	}
	p.Refreshed = len(p.Transactions) > 0 || len(p.signatures) > 0
	return &p, nil
}

func (m *Monitor) save(p *pass) (err error) {
	defer sqlitex.Save(m.conn)(&err)
	for _, tx := range p.Transactions {
		if err = db.SaveTransaction(m.conn, tx.ID, tx.Height); err != nil {
			return
		}
	}
	for height, sig := range p.signatures {
		if err = db.SaveSignature(m.conn, height, sig); err != nil {
			return
		}
	}
	return nil
}

// Run calls h after every pass and saves the pass until ctx is done or h
// returns an error. Between passes it waits for a new transaction for up
// to Interval once the newest one is confirmed, otherwise for Poll.
func (m *Monitor) Run(ctx context.Context, h Handler) error {
	for {
		p, err := m.walk(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.log.Warnf("pass failed: %v", err)
			if err := m.sleep(ctx, m.cfg.Poll); err != nil {
				return err
			}
			continue
		}

		if err := h(ctx, p.Update); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}

		if p.Refreshed {
			if err := m.save(p); err != nil {
				return err
			}
			var n int
			for _, tx := range p.Transactions {
				if tx.Status == StatusNew {
					n++
				}
			}
			if n > 0 {
				m.log.Infof("new transactions (%v)", n)
			}
		}

		if err := m.wait(ctx, p.newest); err != nil {
			return err
		}
	}
}

// wait returns after Poll if newest is not yet confirmed, otherwise when a
// newer transaction appears or after Interval.
func (m *Monitor) wait(ctx context.Context, newest *node.TxInfo) error {
	var newestHeight int64
	if newest != nil {
		newestHeight = newest.Height
	}
	height, err := m.n.Height(ctx)
	if err != nil || height-newestHeight <= m.cfg.Confirmations {
		if err != nil && ctx.Err() == nil {
			m.log.Warnf("height: %v", err)
		}
		return m.sleep(ctx, m.cfg.Poll)
	}

	for waited := time.Duration(0); ; waited += m.cfg.Poll {
		txs, err := m.n.Transactions(ctx, m.cfg.Address, 1, nil)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil && len(txs) > 0 && (newest == nil ||
			txs[0].ID != newest.ID || txs[0].Height != newest.Height) {
			m.log.Info("new transaction found")
			return nil
		}
		if waited >= m.cfg.Interval {
			m.log.Debug("no new transactions")
			return nil
		}
		if err := m.sleep(ctx, m.cfg.Poll); err != nil {
			return err
		}
	}
}

func (m *Monitor) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.clock.After(d):
		return nil
	}
}
