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

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/waveskit/waveskit/waves"
)

var (
	newSeed   bool
	seedWords int
)

// addressCmd represents the address command
var addressCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
address [--new [--words N]]`[1:],
		Short: "Print the public key and address of the configured account",
		Long: `
Print the public key and address derived from WAVES_CLI_SEED or
WAVES_CLI_PRIVKEY on --chainid.

With --new a random seed phrase is generated instead and printed along with
its public key and address. Store the phrase safely, it is not saved.
`[1:],
		Args: cobra.ExactArgs(0),
		RunE: address,
	}
	cmd.Flags().BoolVar(&newSeed, "new", false, "Generate a new seed phrase")
	cmd.Flags().IntVar(&seedWords, "words", waves.DefaultSeedWords,
		"Number of words of a new seed phrase")
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["address"] = addressCmplCmd
	rootCmplCmd.Sub["help"].Sub["address"] = complete.Command{}
	generateCmplFlags(cmd, addressCmplCmd.Flags)
	return cmd
}()

var addressCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func address(cmd *cobra.Command, _ []string) error {
	var id *waves.Identity
	if newSeed {
		phrase, err := waves.NewSeedPhrase(seedWords)
		if err != nil {
			return err
		}
		fmt.Println("Seed:      ", phrase)
		id = waves.NewIdentityFromSeed(ChainID, phrase)
	} else {
		var err error
		if id, err = identity(); err != nil {
			return err
		}
	}
	pub, err := id.PublicKey()
	if err != nil {
		return err
	}
	adr, err := id.Address()
	if err != nil {
		return err
	}
	fmt.Println("Public Key:", pub)
	fmt.Println("Address:   ", adr)
	return nil
}
