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

	"github.com/waveskit/waveskit/waves"
)

var heightCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "height",
		Short: "Print the height of the blockchain",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			height, err := Node.Height(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(height)
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["height"] = nodeCmplCmd
	rootCmplCmd.Sub["help"].Sub["height"] = complete.Command{}
	return cmd
}()

var bestCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "best",
		Short: "Rank the nodes by height and latency",
		Long: `
Probe every --node for its height and print the nodes from best to worst.
Nodes that are behind or slow to answer rank last.
`[1:],
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := Node.SetBestNode(context.Background()); err != nil {
				return err
			}
			for _, host := range Node.Hosts() {
				fmt.Println(host)
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["best"] = nodeCmplCmd
	rootCmplCmd.Sub["help"].Sub["best"] = complete.Command{}
	return cmd
}()

var validateCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use:                   "validate ADDRESS...",
		Short:                 "Check that addresses belong to --chainid",
		Args:                  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var invalid int
			for _, arg := range args {
				adr, err := waves.ParseAddress(arg)
				if err != nil || !adr.Valid(ChainID) {
					fmt.Println(arg, "invalid")
					invalid++
					continue
				}
				fmt.Println(arg, "valid")
			}
			if invalid > 0 {
				return fmt.Errorf("%v invalid address(es) on %v",
					invalid, ChainID)
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["validate"] = nodeCmplCmd
	rootCmplCmd.Sub["help"].Sub["validate"] = complete.Command{}
	return cmd
}()

var versionCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of waves-cli",
		Args:  cobra.ExactArgs(0),
		Run: func(*cobra.Command, []string) {
			fmt.Printf("waves-cli: %v\n", Revision)
		},
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["version"] = complete.Command{}
	rootCmplCmd.Sub["help"].Sub["version"] = complete.Command{}
	return cmd
}()

var nodeCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}
