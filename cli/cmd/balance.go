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
	"context"
	"fmt"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/waveskit/waveskit/tx"
	"github.com/waveskit/waveskit/waves"
)

var (
	balanceAddress waves.Address
	balanceAsset   *waves.Digest
)

// balanceCmd represents the balance command
var balanceCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
balance ADDRESS [ASSET]`[1:],
		Short: "Get the balance of an address",
		Long: `
Get the balance of ADDRESS in ASSET, or in WAVES if ASSET is omitted or is
"WAVES". Balances are printed in the smallest unit of the asset.
`[1:],
		Args: balanceArgs,
		RunE: balance,
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["balance"] = balanceCmplCmd
	rootCmplCmd.Sub["help"].Sub["balance"] = complete.Command{}
	generateCmplFlags(cmd, balanceCmplCmd.Flags)
	return cmd
}()

var balanceCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func balanceArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
		return err
	}
	if err := balanceAddress.Set(args[0]); err != nil {
		return err
	}
	if !balanceAddress.Valid(ChainID) {
		return fmt.Errorf("address %v is not valid on %v",
			balanceAddress, ChainID)
	}
	if len(args) == 2 {
		var err error
		if balanceAsset, err = tx.ParseAsset(args[1]); err != nil {
			return fmt.Errorf("asset: %w", err)
		}
	}
	return nil
}

func balance(cmd *cobra.Command, _ []string) error {
	log.Debugf("Fetching balance of %v...", balanceAddress)
	b, err := Node.AssetBalance(context.Background(), balanceAddress,
		balanceAsset)
	if err != nil {
		return err
	}
	fmt.Println(balanceAddress, b, tx.AssetString(balanceAsset))
	return nil
}
