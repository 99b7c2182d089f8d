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

package confirm_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveskit/waveskit/confirm"
	"github.com/waveskit/waveskit/node"
	"github.com/waveskit/waveskit/waves"
)

var testID = waves.Digest{0xaa}

func txInfo(height int64, status string) *node.TxInfo {
	return &node.TxInfo{ID: testID, Height: height,
		ApplicationStatus: status,
		Raw: []byte(fmt.Sprintf(`{"id":"%v","height":%v}`,
			testID, height)),
	}
}

var errNetwork = fmt.Errorf("%w: test", node.ErrNetwork)

func notFound() (*node.TxInfo, error) {
	return nil, fmt.Errorf("%w: test", node.ErrNotFound)
}

// fakeNode answers from functions of the call count, starting at 1.
type fakeNode struct {
	mu sync.Mutex

	confirmed   func(n int) (*node.TxInfo, error)
	unconfirmed func(n int) (*node.TxInfo, error)
	height      func(n int) (int64, error)

	confirmedCalls   int
	unconfirmedCalls int
	heightCalls      int
	resets           int
}

func (f *fakeNode) TransactionInfo(_ context.Context, id waves.Digest,
	unconfirmed bool) (*node.TxInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if unconfirmed {
		f.unconfirmedCalls++
		if f.unconfirmed == nil {
			return notFound()
		}
		return f.unconfirmed(f.unconfirmedCalls)
	}
	f.confirmedCalls++
	if f.confirmed == nil {
		return notFound()
	}
	return f.confirmed(f.confirmedCalls)
}

func (f *fakeNode) Height(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heightCalls++
	return f.height(f.heightCalls)
}

func (f *fakeNode) ResetCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func (f *fakeNode) UnconfirmedCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unconfirmedCalls
}

func always(info *node.TxInfo) func(int) (*node.TxInfo, error) {
	return func(int) (*node.TxInfo, error) { return info, nil }
}

func ensure(n confirm.Node, p confirm.Params) (*confirm.Result, error) {
	return confirm.New(n).Ensure(context.Background(), testID, p)
}

func TestEnsureLost(t *testing.T) {
	n := &fakeNode{}
	res, err := ensure(n, confirm.Params{Interval: time.Millisecond,
		Timeout: 10 * time.Millisecond})
	assert.True(t, errors.Is(err, confirm.ErrLost), err)
	assert.Equal(t, confirm.Lost, res.Status)
	assert.Nil(t, res.Info)
	assert.GreaterOrEqual(t, n.unconfirmedCalls, 2)
}

func TestEnsureLostOnNetworkErrors(t *testing.T) {
	n := &fakeNode{
		confirmed: func(int) (*node.TxInfo, error) { return nil, errNetwork },
		unconfirmed: func(int) (*node.TxInfo, error) {
			return nil, errNetwork
		},
	}
	res, err := ensure(n, confirm.Params{Interval: time.Millisecond,
		Timeout: 5 * time.Millisecond})
	assert.True(t, errors.Is(err, confirm.ErrLost), err)
	assert.Equal(t, confirm.Lost, res.Status)
}

func TestEnsureConfirmed(t *testing.T) {
	n := &fakeNode{
		confirmed: func(n int) (*node.TxInfo, error) {
			if n < 4 {
				return notFound()
			}
			return txInfo(10, node.StatusSucceeded), nil
		},
		unconfirmed: always(txInfo(0, "")),
	}
	res, err := ensure(n, confirm.Params{Interval: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, confirm.Confirmed, res.Status)
	assert.Equal(t, int64(10), res.Info.Height)
	assert.Equal(t, 4, n.confirmedCalls)
	assert.Equal(t, 3, n.unconfirmedCalls)
	assert.Equal(t, 0, n.heightCalls)
}

func TestEnsureFoundInUnconfirmedAgain(t *testing.T) {
	n := &fakeNode{
		unconfirmed: func(n int) (*node.TxInfo, error) {
			if n == 1 {
				return notFound()
			}
			return txInfo(0, ""), nil
		},
	}
	n.confirmed = func(int) (*node.TxInfo, error) {
		// Called with n.mu held.
		if n.unconfirmedCalls < 2 {
			return notFound()
		}
		return txInfo(3, ""), nil
	}
	res, err := ensure(n, confirm.Params{Interval: 2 * time.Millisecond,
		Timeout: 5 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, confirm.Confirmed, res.Status)
	assert.Equal(t, 2, n.unconfirmedCalls)
}

func TestEnsureFailed(t *testing.T) {
	n := &fakeNode{confirmed: always(txInfo(10, "script_execution_failed"))}
	res, err := ensure(n, confirm.Params{Interval: time.Millisecond,
		Confirmations: 3})
	assert.True(t, errors.Is(err, confirm.ErrApplicationFailed), err)
	assert.Equal(t, confirm.Failed, res.Status)
	require.NotNil(t, res.Info)
	assert.Equal(t, 0, n.heightCalls)
}

func TestEnsureZeroInterval(t *testing.T) {
	n := &fakeNode{unconfirmed: always(txInfo(0, ""))}
	res, err := ensure(n, confirm.Params{})
	assert.True(t, errors.Is(err, confirm.ErrNotConfirmed), err)
	assert.Equal(t, confirm.Pending, res.Status)
	assert.Equal(t, 1, n.confirmedCalls)
	assert.Equal(t, 0, n.unconfirmedCalls)

	n = &fakeNode{confirmed: always(txInfo(10, "")),
		height: func(int) (int64, error) { return 11, nil }}
	res, err = ensure(n, confirm.Params{})
	require.NoError(t, err)
	assert.Equal(t, confirm.Confirmed, res.Status)

	res, err = ensure(n, confirm.Params{Confirmations: 2})
	assert.True(t, errors.Is(err, confirm.ErrNotConfirmed), err)
	assert.Equal(t, int64(1), res.Confirmations)
	assert.Equal(t, 1, n.heightCalls)
}

func TestEnsureHardTimeout(t *testing.T) {
	n := &fakeNode{unconfirmed: always(txInfo(0, ""))}
	_, err := ensure(n, confirm.Params{Interval: time.Millisecond,
		Timeout: 5 * time.Millisecond, Hard: true})
	assert.True(t, errors.Is(err, confirm.ErrTimeout), err)
}

func TestEnsureDepth(t *testing.T) {
	n := &fakeNode{
		confirmed: always(txInfo(10, node.StatusSucceeded)),
		height: func(n int) (int64, error) {
			switch {
			case n == 2:
				return 0, errNetwork
			case n < 4:
				return 11, nil
			}
			return 12, nil
		},
	}
	res, err := ensure(n, confirm.Params{Interval: time.Millisecond,
		Confirmations: 2})
	require.NoError(t, err)
	assert.Equal(t, confirm.Confirmed, res.Status)
	assert.Equal(t, int64(2), res.Confirmations)
	assert.Equal(t, 4, n.heightCalls)
	assert.Equal(t, 2, n.confirmedCalls)
	assert.Equal(t, 0, n.resets)
}

func TestEnsureReorg(t *testing.T) {
	before, after := txInfo(10, ""), txInfo(11, "")
	n := &fakeNode{
		confirmed: func(n int) (*node.TxInfo, error) {
			if n == 1 {
				return before, nil
			}
			return after, nil
		},
		height: func(n int) (int64, error) {
			if n <= 2 {
				return 12, nil
			}
			return 13, nil
		},
	}
	res, err := ensure(n, confirm.Params{Interval: time.Millisecond,
		Confirmations: 2})
	require.NoError(t, err)
	assert.Equal(t, confirm.Confirmed, res.Status)
	assert.Equal(t, after, res.Info)
	assert.Equal(t, int64(2), res.Confirmations)
	assert.Equal(t, 1, n.resets)
	assert.Equal(t, 4, n.confirmedCalls)
	assert.Equal(t, 3, n.heightCalls)
}

func TestEnsureCanceled(t *testing.T) {
	n := &fakeNode{unconfirmed: always(txInfo(0, ""))}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for n.UnconfirmedCalls() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	res, err := confirm.New(n).Ensure(ctx, testID,
		confirm.Params{Interval: time.Hour})
	assert.True(t, errors.Is(err, context.Canceled), err)
	assert.Equal(t, confirm.Pending, res.Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "lost", confirm.Lost.String())
	assert.Equal(t, "status(9)", confirm.Status(9).String())
}
