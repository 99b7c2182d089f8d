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
	"github.com/posener/complete/cmd/install"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

const cliName = "waves-cli"

// Complete runs the completion program if waves-cli was invoked by the
// shell for completion and returns true if so.
func Complete() bool {
	comp := complete.New(cliName, rootCmplCmd)
	return comp.Complete()
}

// generateCmplFlags adds completion for all cmd.Flags() not already present in
// cmplFlags.
func generateCmplFlags(cmd *cobra.Command, cmplFlags complete.Flags) {
	// Due to a bug in cobra.Command.Flags(), we must call LocalFlags()
	// first to get any parent flags merged into cmd.Flags().
	// https://github.com/spf13/cobra/issues/412
	cmd.LocalFlags()
	cmd.Flags().VisitAll(func(flg *flag.Flag) {
		name := "--" + flg.Name
		// If the flag already has a custom completion, there is
		// nothing to do.
		if _, ok := cmplFlags[name]; ok {
			return
		}
		// Add a predictor
		var predict complete.Predictor = complete.PredictAnything
		if flg.Value.Type() == "bool" {
			predict = complete.PredictNothing
		}
		cmplFlags[name] = predict
	})
}

// mergeFlags returns a new complete.Flags that merges all flgs.
func mergeFlags(flgs ...complete.Flags) complete.Flags {
	var size int
	for _, flg := range flgs {
		size += len(flg)
	}
	f := make(complete.Flags, size)
	for _, flg := range flgs {
		for k, v := range flg {
			f[k] = v
		}
	}
	return f
}

var uninstall bool

var completionCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Install shell completion",
		Long: `
Install or, with --uninstall, remove completion of waves-cli in bash, zsh and
fish.
`[1:],
		Args: cobra.ExactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			if uninstall {
				return install.Uninstall(cliName)
			}
			if err := install.Install(cliName); err != nil {
				return err
			}
			fmt.Println("Completion installed, restart your shell.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&uninstall, "uninstall", false,
		"Remove completion")
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["completion"] = completionCmplCmd
	rootCmplCmd.Sub["help"].Sub["completion"] = complete.Command{}
	generateCmplFlags(cmd, completionCmplCmd.Flags)
	return cmd
}()

var completionCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}
