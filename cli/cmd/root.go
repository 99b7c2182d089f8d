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

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/posener/complete"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	_log "github.com/waveskit/waveskit/internal/log"
	"github.com/waveskit/waveskit/node"
	"github.com/waveskit/waveskit/waves"
)

// Revision is printed by the version command.
var Revision string

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var (
	cfgFile string
	Debug   bool

	ChainID = waves.MainNet
	Nodes   []string
	Timeout time.Duration

	// Node is set up by initClients before any command runs.
	Node *node.Fetcher

	log _log.Log
)

func init() {
	cobra.OnInitialize(initConfig, initClients)
}

// envPrefix is used for WAVES_CLI_SEED, WAVES_CLI_PRIVKEY and any flag.
const envPrefix = "WAVES_CLI"

var apiFlags = func() *flag.FlagSet {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.VarP(&ChainID, "chainid", "c",
		`"mainnet", "testnet", "stagenet" or a one character chain id`)
	flags.StringSliceVarP(&Nodes, "node", "n", nil,
		"scheme://host:port of a node, may be repeated (default public nodes)")
	flags.DurationVar(&Timeout, "timeout", node.DefaultTimeout,
		"Timeout for each node request (i.e. 10s, 1m)")
	flags.BoolVar(&Debug, "debug", false, "Log debug messages")
	return flags
}()

// rootCmd represents the base command when called without any subcommands
var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waves-cli",
		Short: "Waves client CLI",
		Long: `waves-cli queries Waves nodes and sends signed transactions.

Node Settings

Use --chainid to select the network and --node to use other nodes than the
public ones. When more than one node is given, requests fail over from one
node to the next.

Keys

Commands that sign read the seed phrase from WAVES_CLI_SEED or the base58
private key from WAVES_CLI_PRIVKEY, or from the "seed" or "privkey" keys of
the config file (default $HOME/.waves-cli.yaml). Keys are never accepted on
the command line.`,
		Args: cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, _ []string) {
			// Complete() returns true if it was invoked for
			// completion, otherwise just output the help page.
			if !Complete() {
				cmd.Help()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.AddFlagSet(apiFlags)
	flags.StringVar(&cfgFile, "config", "",
		"config file (default $HOME/.waves-cli.yaml)")

	generateCmplFlags(cmd, rootCmplCmd.Flags)
	return cmd
}()

var rootCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Sub:   complete.Commands{"help": complete.Command{Sub: complete.Commands{}}},
}
var apiCmplFlags = complete.Flags{
	"--help":    complete.PredictNothing,
	"--chainid": PredictChainIDs,
	"-c":        PredictChainIDs,
	"--config":  complete.PredictFiles("*.yaml"),
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".waves-cli" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".waves-cli")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && Debug {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	// Flags not set on the command line come from the config file or
	// the environment.
	apiFlags.VisitAll(func(flg *flag.Flag) {
		if flg.Changed || !viper.IsSet(flg.Name) {
			return
		}
		v := viper.GetString(flg.Name)
		if flg.Value.Type() == "stringSlice" {
			v = strings.Join(viper.GetStringSlice(flg.Name), ",")
		}
		if err := flg.Value.Set(v); err != nil {
			fmt.Printf("config %v: %v\n", flg.Name, err)
			os.Exit(1)
		}
	})
}

// initClients sets up the logger and the node Fetcher shared by all
// commands.
func initClients() {
	_log.Debug = Debug
	log = _log.New("pkg", "cli")
	var err error
	Node, err = node.New(node.Config{ChainID: ChainID, Hosts: Nodes,
		Timeout: Timeout}, node.WithLogger(_log.New("pkg", "node").Entry))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// identity returns the signing identity configured by WAVES_CLI_SEED or
// WAVES_CLI_PRIVKEY.
func identity() (*waves.Identity, error) {
	id := waves.NewIdentity(ChainID)
	if seed := viper.GetString("seed"); seed != "" {
		id.SetSeedPhrase(seed)
		return id, nil
	}
	if priv := viper.GetString("privkey"); priv != "" {
		if err := id.SetPrivateKeyBase58(priv); err != nil {
			return nil, fmt.Errorf("%v_PRIVKEY: %w", envPrefix, err)
		}
		return id, nil
	}
	return nil, fmt.Errorf("set %v_SEED or %v_PRIVKEY", envPrefix, envPrefix)
}
