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

// Package engine runs the transaction monitor of wavesmond.
package engine

import (
	"context"
	"path/filepath"
	"strings"

	"crawshaw.io/sqlite"
	"github.com/nightlyone/lockfile"
	"github.com/sirupsen/logrus"

	"github.com/waveskit/waveskit/internal/db"
	"github.com/waveskit/waveskit/internal/flag"
	_log "github.com/waveskit/waveskit/internal/log"
	"github.com/waveskit/waveskit/monitor"
	"github.com/waveskit/waveskit/node"
)

var (
	log      _log.Log
	lockFile lockfile.Lockfile
)

func runIfNotDone(ctx context.Context, f func()) {
	select {
	case <-ctx.Done():
	default:
		f()
	}
}

// Start opens the database and launches the monitor goroutine. If ctx is
// done or an error occurs, the monitor stops, the database is closed, the
// lockfile is removed and done is closed. Start returns nil if the engine
// could not be started.
func Start(ctx context.Context) (done <-chan struct{}) {
	log = _log.New("pkg", "engine")

	// One directory per chain.
	dir := filepath.Join(flag.DBPath,
		strings.ReplaceAll(flag.ChainID.String(), " ", ""))
	path, err := db.Path(dir)
	if err != nil {
		log.Errorf("db.Path(%q): %v", dir, err)
		return nil
	}

	// Try to create a lockfile
	lockFilePath := filepath.Join(dir, "db.lock")
	lockFile, err = lockfile.New(lockFilePath)
	if err != nil {
		log.Errorf("lockfile.New(%q): %v", lockFilePath, err)
		return nil
	}
	if err = lockFile.TryLock(); err != nil {
		log.Errorf("lockFile.TryLock(): %v", err)
		return nil
	}
	// Always clean up the lockfile if Start fails.
	defer func() {
		if done == nil {
			if err := lockFile.Unlock(); err != nil {
				log.Errorf("lockFile.Unlock(): %v", err)
			}
		}
	}()

	n, err := node.New(flag.NodeConfig(),
		node.WithLogger(flag.Logger("node")))
	if err != nil {
		log.Error(err)
		return nil
	}
	if err := n.SetBestNode(ctx); err != nil {
		runIfNotDone(ctx, func() {
			log.Warnf("n.SetBestNode(): %v", err)
		})
	}
	log.Debugf("Nodes: %v", n.Hosts())

	log.Infof("Loading database %v...", path)
	conn, err := db.Open(ctx, path)
	if err != nil {
		runIfNotDone(ctx, func() {
			log.Error(err)
		})
		return nil
	}
	saved, err := db.CountTransactions(conn)
	if err != nil {
		log.Error(err)
		db.Close(conn)
		return nil
	}
	log.Infof("Saved transactions: %v", saved)

	m := monitor.New(n, conn, flag.MonitorConfig(),
		monitor.WithLogger(flag.Logger("monitor")))

	_done := make(chan struct{})
	go engine(ctx, m, conn, _done)
	return _done
}

func engine(ctx context.Context, m *monitor.Monitor, conn *sqlite.Conn,
	done chan struct{}) {
	// Always close the database and remove lockfile on exit.
	defer func() {
		if err := db.Close(conn); err != nil {
			log.Errorf("db.Close(): %v", err)
		}
		if err := lockFile.Unlock(); err != nil {
			log.Errorf("lockFile.Unlock(): %v", err)
		}
		close(done)
	}()

	if err := m.Run(ctx, report); err != nil {
		runIfNotDone(ctx, func() {
			log.Errorf("monitor: %v", err)
		})
	}
}

// report logs every reported transaction.
func report(_ context.Context, u monitor.Update) error {
	for _, tx := range u.Transactions {
		log.WithFields(logrus.Fields{
			"id":     tx.ID,
			"type":   tx.Type,
			"height": tx.Height,
			"status": tx.Status,
		}).Info("transaction")
	}
	if u.Refreshed && len(u.Transactions) == 0 {
		log.Debug("block signatures changed")
	}
	return nil
}
