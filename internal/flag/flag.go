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

// Package flag configures wavesmond from command line flags, falling back
// to WAVESMOND_ environment variables for anything not set on the command
// line.
package flag

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/posener/complete"
	"github.com/sirupsen/logrus"

	_log "github.com/waveskit/waveskit/internal/log"
	"github.com/waveskit/waveskit/monitor"
	"github.com/waveskit/waveskit/node"
	"github.com/waveskit/waveskit/waves"
)

var Revision string

// Environment variable name prefix
const envNamePrefix = "WAVESMOND_"

var (
	envNames = map[string]string{
		"chainid":       "CHAIN_ID",
		"nodes":         "NODES",
		"nodetimeout":   "NODE_TIMEOUT",
		"bestonerror":   "BEST_ON_ERROR",
		"address":       "ADDRESS",
		"dbpath":        "DB_PATH",
		"interval":      "INTERVAL",
		"poll":          "POLL",
		"confirmations": "CONFIRMATIONS",
		"depth":         "DEPTH",
		"limit":         "LIMIT",
		"debug":         "DEBUG",
	}
	defaults = map[string]interface{}{
		"nodetimeout":   node.DefaultTimeout,
		"bestonerror":   int64(0),
		"interval":      monitor.DefaultInterval,
		"poll":          monitor.DefaultPoll,
		"confirmations": int64(monitor.DefaultConfirmations),
		"depth":         int64(0),
		"limit":         int64(monitor.DefaultLimit),
		"debug":         false,

		"dbpath": func() string {
			if home, err := os.UserHomeDir(); err == nil {
				return filepath.Join(home, ".wavesmond")
			}
			return "./wavesmond.db"
		}(),
	}
	descriptions = map[string]string{
		"chainid":       `Accepts "mainnet", "testnet", "stagenet" or a one character chain id`,
		"nodes":         "Comma separated node URLs, defaults to the public nodes of -chainid",
		"nodetimeout":   "Timeout for each node request",
		"bestonerror":   "Reselect the best node after this many failed requests, 0 disables",
		"address":       "Address whose transactions are monitored",
		"dbpath":        "Path to the folder containing the database files",
		"interval":      "Longest wait for a new transaction between passes",
		"poll":          "Delay between node requests while waiting",
		"confirmations": "Unchanged blocks after which a pass stops walking back",
		"depth":         "Lowest block height to walk back to",
		"limit":         "Largest page of transactions requested",
		"debug":         "Log debug messages",
	}
	flags = complete.Flags{
		"-chainid":       complete.PredictSet("mainnet", "testnet", "stagenet"),
		"-nodes":         complete.PredictAnything,
		"-nodetimeout":   complete.PredictAnything,
		"-bestonerror":   complete.PredictAnything,
		"-address":       complete.PredictAnything,
		"-dbpath":        complete.PredictDirs("*"),
		"-interval":      complete.PredictAnything,
		"-poll":          complete.PredictAnything,
		"-confirmations": complete.PredictAnything,
		"-depth":         complete.PredictAnything,
		"-limit":         complete.PredictAnything,
		"-debug":         complete.PredictNothing,

		"-y":                   complete.PredictNothing,
		"-installcompletion":   complete.PredictNothing,
		"-uninstallcompletion": complete.PredictNothing,
	}

	ChainID = waves.MainNet
	Nodes   StringList
	Address waves.Address

	NodeTimeout   time.Duration
	BestOnError   int64
	Interval      time.Duration
	Poll          time.Duration
	Confirmations int64
	Depth         int64
	Limit         int64
	LogDebug      bool

	DBPath string

	flagset    map[string]bool
	log        _log.Log
	Completion *complete.Complete
)

func init() {
	flagVar(&ChainID, "chainid")
	flagVar(&Nodes, "nodes")
	flagVar(&NodeTimeout, "nodetimeout")
	flagVar(&BestOnError, "bestonerror")
	flagVar(&Address, "address")
	flagVar(&DBPath, "dbpath")
	flagVar(&Interval, "interval")
	flagVar(&Poll, "poll")
	flagVar(&Confirmations, "confirmations")
	flagVar(&Depth, "depth")
	flagVar(&Limit, "limit")
	flagVar(&LogDebug, "debug")

	// Add flags for self installing the CLI completion tool
	Completion = complete.New(os.Args[0], complete.Command{Flags: flags})
	Completion.CLI.InstallName = "installcompletion"
	Completion.CLI.UninstallName = "uninstallcompletion"
	Completion.AddFlags(nil)
}

func Parse() {
	flag.Parse()
	flagset = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { flagset[f.Name] = true })

	// Load options from environment variables if they haven't been
	// specified on the command line.
	loadFromEnv(&ChainID, "chainid")
	loadFromEnv(&Nodes, "nodes")
	loadFromEnv(&NodeTimeout, "nodetimeout")
	loadFromEnv(&BestOnError, "bestonerror")
	loadFromEnv(&Address, "address")
	loadFromEnv(&DBPath, "dbpath")
	loadFromEnv(&Interval, "interval")
	loadFromEnv(&Poll, "poll")
	loadFromEnv(&Confirmations, "confirmations")
	loadFromEnv(&Depth, "depth")
	loadFromEnv(&Limit, "limit")
	loadFromEnv(&LogDebug, "debug")

	_log.Debug = LogDebug
	log = _log.New("pkg", "flag")
}

// Validate checks the options and logs them at debug level. It returns an
// error for options that can never work.
func Validate() error {
	if flagset == nil {
		return fmt.Errorf("flag.Parse() first")
	}
	if Address == (waves.Address{}) {
		return fmt.Errorf("-address is required")
	}
	if !Address.Valid(ChainID) {
		return fmt.Errorf("-address %v is not valid on %v", Address, ChainID)
	}
	if len(Nodes) == 0 {
		Nodes = node.DefaultHosts(ChainID)
	}
	if Confirmations < 1 {
		return fmt.Errorf("-confirmations must be positive")
	}

	var err error
	if DBPath, err = filepath.Abs(DBPath); err != nil {
		return fmt.Errorf("-dbpath %v: %w", DBPath, err)
	}

	log.Debugf("-chainid       %v", ChainID)
	log.Debugf("-nodes         %q", []string(Nodes))
	log.Debugf("-nodetimeout   %v", NodeTimeout)
	log.Debugf("-bestonerror   %v", BestOnError)
	debugPrintln()

	log.Debugf("-address       %v", Address)
	log.Debugf("-dbpath        %#v", DBPath)
	log.Debugf("-interval      %v", Interval)
	log.Debugf("-poll          %v", Poll)
	log.Debugf("-confirmations %v", Confirmations)
	log.Debugf("-depth         %v", Depth)
	log.Debugf("-limit         %v", Limit)
	debugPrintln()
	return nil
}

// NodeConfig returns the node.Config selected by the flags.
func NodeConfig() node.Config {
	return node.Config{ChainID: ChainID, Hosts: Nodes, Timeout: NodeTimeout,
		SetBestOnError: int(BestOnError)}
}

// MonitorConfig returns the monitor.Config selected by the flags.
func MonitorConfig() monitor.Config {
	return monitor.Config{Address: Address, Confirmations: Confirmations,
		Depth: Depth, Poll: Poll, Interval: Interval, Limit: int(Limit)}
}

// Logger returns the entry passed to the libraries.
func Logger(pkg string) *logrus.Entry {
	return _log.New("pkg", pkg).Entry
}

// StringList is a comma separated flag.Value.
type StringList []string

func (l StringList) String() string { return strings.Join(l, ",") }

func (l *StringList) Set(s string) error {
	*l = nil
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*l = append(*l, v)
		}
	}
	return nil
}

func flagVar(v interface{}, name string) {
	dflt := defaults[name]
	desc := description(name)
	switch v := v.(type) {
	case *string:
		flag.StringVar(v, name, dflt.(string), desc)
	case *time.Duration:
		flag.DurationVar(v, name, dflt.(time.Duration), desc)
	case *int64:
		flag.Int64Var(v, name, dflt.(int64), desc)
	case *bool:
		flag.BoolVar(v, name, dflt.(bool), desc)
	case flag.Value:
		flag.Var(v, name, desc)
	}
}

func loadFromEnv(v interface{}, flagName string) {
	if flagset[flagName] {
		return
	}
	eName := envName(flagName)
	eVar, ok := os.LookupEnv(eName)
	if len(eVar) == 0 {
		return
	}
	var err error
	switch v := v.(type) {
	case flag.Value:
		err = v.Set(eVar)
	case *string:
		*v = eVar
	case *time.Duration:
		*v, err = time.ParseDuration(eVar)
	case *int64:
		*v, err = strconv.ParseInt(eVar, 10, 64)
	case *bool:
		*v = ok
	}
	if err != nil {
		// log is not set up yet.
		fmt.Fprintf(os.Stderr, "Environment Variable %v: %v\n", eName, err)
		os.Exit(2)
	}
}

func debugPrintln() {
	if LogDebug {
		fmt.Println()
	}
}

func envName(flagName string) string {
	return envNamePrefix + envNames[flagName]
}

func description(flagName string) string {
	return fmt.Sprintf("%s\nEnvironment variable: %v",
		descriptions[flagName], envName(flagName))
}
