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

	"github.com/waveskit/waveskit/matcher"
	"github.com/waveskit/waveskit/tx"
)

var (
	matcherHosts []string
	feeOrder     tx.Order
	feeDiscount  bool
)

// feeCmd represents the fee command
var feeCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
fee AMOUNT_ASSET PRICE_ASSET --type buy|sell --amount N --price N [--discount]`[1:],
		Short: "Compute the matcher fee of an order",
		Long: `
Compute the matcher fee of an order on the pair AMOUNT_ASSET/PRICE_ASSET from
the settings of the matcher. Use "WAVES" for WAVES. With --discount the fee is
paid in the discount asset of the matcher, if it has one.
`[1:],
		Args: feeArgs,
		RunE: fee,
	}
	flags := cmd.Flags()
	flags.Var(&feeOrder.OrderType, "type", `"buy" or "sell"`)
	flags.Int64Var(&feeOrder.Amount, "amount", 0,
		"Amount in the smallest unit of AMOUNT_ASSET")
	flags.Int64Var(&feeOrder.Price, "price", 0,
		"Price of one AMOUNT_ASSET, times 10^8")
	flags.BoolVar(&feeDiscount, "discount", false,
		"Pay the fee in the discount asset")
	flags.StringSliceVar(&matcherHosts, "matcher", nil,
		"scheme://host:port of the matcher (default public matcher)")
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["fee"] = feeCmplCmd
	rootCmplCmd.Sub["help"].Sub["fee"] = complete.Command{}
	generateCmplFlags(cmd, feeCmplCmd.Flags)
	return cmd
}()

var feeCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags, complete.Flags{
		"--type": PredictOrderTypes,
	}),
}

func feeArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(2)(cmd, args); err != nil {
		return err
	}
	var err error
	if feeOrder.AssetPair.AmountAsset, err = tx.ParseAsset(args[0]); err != nil {
		return fmt.Errorf("AMOUNT_ASSET: %w", err)
	}
	if feeOrder.AssetPair.PriceAsset, err = tx.ParseAsset(args[1]); err != nil {
		return fmt.Errorf("PRICE_ASSET: %w", err)
	}
	if !cmd.Flags().Changed("type") {
		return fmt.Errorf("--type is required")
	}
	if feeOrder.Amount <= 0 || feeOrder.Price <= 0 {
		return fmt.Errorf("--amount and --price must be positive")
	}
	return nil
}

func fee(cmd *cobra.Command, _ []string) error {
	m, err := matcher.New(matcher.Config{ChainID: ChainID,
		Hosts: matcherHosts, Timeout: Timeout},
		matcher.WithLogger(log.Entry))
	if err != nil {
		return err
	}
	calc, err := matcher.NewCalculator(m, Node, matcher.WithLogger(log.Entry))
	if err != nil {
		return err
	}
	fee, asset, err := calc.Fee(context.Background(), &feeOrder, feeDiscount)
	if err != nil {
		return err
	}
	fmt.Println(fee, tx.AssetString(asset))
	return nil
}
