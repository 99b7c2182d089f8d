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

// Command wavesmond watches the transactions of a Waves address and logs
// every new or replaced one exactly once, across restarts and chain
// reorganizations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/waveskit/waveskit/internal/engine"
	"github.com/waveskit/waveskit/internal/flag"
	"github.com/waveskit/waveskit/internal/log"
)

func main() { os.Exit(_main()) }
func _main() (ret int) {
	// Completion uses some flags, so parse them first thing.
	flag.Parse()
	if flag.Completion.Complete() {
		// Invoked for the purposes of completion, so don't actually
		// run the daemon.
		return 0
	}
	if err := flag.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// Set up interrupts channel. We don't want to be interrupted during
	// initialization. If the signal is sent we will handle it later.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)
	go func() {
		if _, ok := <-sigint; ok {
			cancel()
		}
	}()

	log := log.New("pkg", "main")
	log.Info("wavesmond Version: ", flag.Revision)
	defer log.Info("Waves Monitor Daemon stopped.")

	engineDone := engine.Start(ctx)
	if engineDone == nil {
		return 1
	}
	defer func() {
		<-engineDone // Wait for engine to stop.
		log.Info("Monitor engine stopped.")
	}()
	log.Infof("Monitor engine started for %v on %v.",
		flag.Address, flag.ChainID)

	// Stop handling signals once we return.
	defer func() { signal.Reset(); close(sigint) }()

	select {
	case <-ctx.Done():
		log.Infof("SIGINT: Shutting down...")
		return 0
	case <-engineDone: // Closed if engine exits prematurely.
	}
	return 1
}
