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

package confirm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	_log "github.com/waveskit/waveskit/internal/log"
	"github.com/waveskit/waveskit/node"
	"github.com/waveskit/waveskit/waves"
)

var (
	// ErrLost is returned when the transaction stayed absent from both
	// the blockchain and the UTX pool for longer than the timeout.
	ErrLost = errors.New("transaction lost")

	// ErrApplicationFailed is returned when the transaction was
	// confirmed but its script execution failed.
	ErrApplicationFailed = errors.New("transaction application failed")

	// ErrNotConfirmed is returned by a single poll, with a zero
	// interval, that found the transaction unconfirmed or not deep
	// enough.
	ErrNotConfirmed = errors.New("transaction not confirmed")

	// ErrTimeout is returned when a hard timeout expired before the
	// transaction was confirmed.
	ErrTimeout = errors.New("confirmation timeout")
)

// DefaultTimeout is used when Params.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Node is the part of node.Fetcher used by a Tracker.
type Node interface {
	TransactionInfo(ctx context.Context, id waves.Digest,
		unconfirmed bool) (*node.TxInfo, error)
	Height(ctx context.Context) (int64, error)
	ResetCache()
}

// Params controls a call to Ensure.
type Params struct {
	// Confirmations is the number of blocks that must be on top of the
	// block holding the transaction, beyond it.
	Confirmations int64

	// Interval is the time between polls. Zero polls exactly once.
	Interval time.Duration

	// Timeout is how long the transaction may be absent from the UTX pool
	// before it is lost.
	Timeout time.Duration

	// Hard makes Timeout also bound the total wait for the first
	// confirmation.
	Hard bool
}

type Status int

const (
	Pending Status = iota
	Confirmed
	Failed
	Lost
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	case Lost:
		return "lost"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result is the outcome of Ensure. Info is the confirmed transaction, or nil
// if it was never confirmed.
type Result struct {
	Status        Status
	Info          *node.TxInfo
	Confirmations int64
}

// Tracker runs Ensure against a Node.
type Tracker struct {
	node  Node
	log   _log.Log
	clock clockwork.Clock
}

type Option func(*Tracker)

// WithLogger sets the logger. By default a logger tagged pkg=confirm is
// used.
func WithLogger(log *logrus.Entry) Option {
	return func(t *Tracker) { t.log = _log.Entry(log, "confirm") }
}

// WithClock sets the clock used for timeouts and sleeping.
func WithClock(clock clockwork.Clock) Option {
	return func(t *Tracker) { t.clock = clock }
}

func New(n Node, opts ...Option) *Tracker {
	t := &Tracker{node: n,
		log:   _log.New("pkg", "confirm"),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Ensure returns New(n).Ensure(ctx, id, p).
func Ensure(ctx context.Context, n Node, id waves.Digest,
	p Params) (*Result, error) {
	return New(n).Ensure(ctx, id, p)
}

// Ensure blocks until the transaction id is confirmed with
// p.Confirmations blocks on top, it is lost, or ctx is done.
//
// The Result is never nil. If the error wraps ErrApplicationFailed the
// Status is Failed, if it wraps ErrLost it is Lost.
func (t *Tracker) Ensure(ctx context.Context, id waves.Digest,
	p Params) (*Result, error) {
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	log := t.log.WithField("id", id)
	for {
		info, err := t.awaitConfirmed(ctx, log, id, p)
		if err != nil {
			res := &Result{Status: Pending}
			if errors.Is(err, ErrLost) {
				res.Status = Lost
			}
			return res, err
		}
		if info.Failed() {
			log.WithField("status", info.ApplicationStatus).
				Error("failed")
			return &Result{Status: Failed, Info: info},
				fmt.Errorf("%w: %v: %v", ErrApplicationFailed,
					id, info.ApplicationStatus)
		}
		if p.Confirmations <= 0 {
			return &Result{Status: Confirmed, Info: info}, nil
		}

		c, err := t.awaitDepth(ctx, log, info, p)
		if err != nil {
			return &Result{Status: Confirmed, Info: info,
				Confirmations: c}, err
		}

		latest, err := t.node.TransactionInfo(ctx, id, false)
		if err := ctx.Err(); err != nil {
			return &Result{Status: Confirmed, Info: info,
				Confirmations: c}, err
		}
		if err == nil && bytes.Equal(latest.Raw, info.Raw) {
			log.Infof("reached %v confirmations", c)
			return &Result{Status: Confirmed, Info: info,
				Confirmations: c}, nil
		}
		log.Warn("change detected")
		t.node.ResetCache()
	}
}

// awaitConfirmed polls until id is in a block.
func (t *Tracker) awaitConfirmed(ctx context.Context, log *logrus.Entry,
	id waves.Digest, p Params) (*node.TxInfo, error) {
	start := t.clock.Now()
	// missingSince is when the transaction was found absent from the UTX
	// pool, or zero while it is known to be there.
	var missingSince time.Time
	for n := 1; ; n++ {
		info, err := t.node.TransactionInfo(ctx, id, false)
		if err == nil {
			if p.Interval > 0 {
				log.Infof("confirmed (%v)", n)
			}
			return info, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t.logPollError(log, err)

		if p.Interval == 0 {
			return nil, fmt.Errorf("%w: %v", ErrNotConfirmed, id)
		}
		if elapsed := t.clock.Since(start); p.Hard && elapsed > p.Timeout {
			log.Warnf("hard timeout reached (%v)", n)
			return nil, fmt.Errorf("%w: %v after %v", ErrTimeout, id,
				elapsed)
		}

		if !missingSince.IsZero() {
			gap := t.clock.Since(missingSince)
			if gap > p.Timeout {
				if !t.inUTX(ctx, log, id) {
					if err := ctx.Err(); err != nil {
						return nil, err
					}
					log.Errorf("not found (timeout reached)")
					return nil, fmt.Errorf("%w: %v: missing for %v",
						ErrLost, id, gap)
				}
				log.Warnf("found in unconfirmed again (%v)", n)
				missingSince = time.Time{}
				continue
			}
			log.Infof("still unconfirmed (%v) (timeout %v/%v)",
				n, gap.Round(time.Millisecond), p.Timeout)
		} else {
			if !t.inUTX(ctx, log, id) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				log.Infof("not in unconfirmed (%v)", n)
				missingSince = t.clock.Now()
				continue
			}
			log.Infof("unconfirmed (%v)", n)
		}

		if err := t.sleep(ctx, p.Interval); err != nil {
			return nil, err
		}
	}
}

// inUTX reports whether id is in the UTX pool. Errors other than
// node.ErrNotFound are logged and count as absent.
func (t *Tracker) inUTX(ctx context.Context, log *logrus.Entry,
	id waves.Digest) bool {
	_, err := t.node.TransactionInfo(ctx, id, true)
	if err != nil {
		t.logPollError(log, err)
		return false
	}
	return true
}

func (t *Tracker) logPollError(log *logrus.Entry, err error) {
	if !errors.Is(err, node.ErrNotFound) {
		log.WithError(err).Debug("poll failed")
	}
}

// awaitDepth polls the height until info has p.Confirmations blocks on
// top of it.
func (t *Tracker) awaitDepth(ctx context.Context, log *logrus.Entry,
	info *node.TxInfo, p Params) (int64, error) {
	var c int64
	for n := 1; ; n++ {
		height, err := t.node.Height(ctx)
		if err != nil {
			if err := ctx.Err(); err != nil {
				return c, err
			}
			log.WithError(err).Debug("height failed")
		} else {
			c = height - info.Height
		}
		if err == nil && c >= p.Confirmations {
			return c, nil
		}
		if p.Interval == 0 {
			return c, fmt.Errorf("%w: %v: %v/%v confirmations",
				ErrNotConfirmed, info.ID, c, p.Confirmations)
		}
		log.Infof("%v/%v confirmations (%v)", c, p.Confirmations, n)
		if err := t.sleep(ctx, depthWait(p, c)); err != nil {
			return c, err
		}
	}
}

// depthWait returns how long to wait for the next block. Sub second
// intervals are multiplied by the number of blocks still missing.
func depthWait(p Params, c int64) time.Duration {
	if p.Interval > time.Second {
		return p.Interval
	}
	remaining := p.Confirmations - c
	if remaining < 1 {
		remaining = 1
	}
	return p.Interval * time.Duration(remaining)
}

func (t *Tracker) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.clock.After(d):
		return nil
	}
}
