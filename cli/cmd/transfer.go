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
	"strconv"
	"time"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/waveskit/waveskit/confirm"
	"github.com/waveskit/waveskit/tx"
	"github.com/waveskit/waveskit/waves"
)

var (
	transferRecipient  waves.Recipient
	transferAmount     int64
	transferAsset      string
	transferFee        int64
	transferAttachment string
	noWait             bool

	ensureID     waves.Digest
	ensureParams = confirm.Params{Interval: time.Second}
)

func addEnsureFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int64Var(&ensureParams.Confirmations, "confirmations", 0,
		"Blocks required on top of the transaction")
	flags.DurationVar(&ensureParams.Interval, "interval", time.Second,
		"Time between polls, 0 polls once")
	flags.DurationVar(&ensureParams.Timeout, "lost", confirm.DefaultTimeout,
		"Time the transaction may be missing before it is lost")
	flags.BoolVar(&ensureParams.Hard, "hard", false,
		"Give up after --lost even if the transaction is still pending")
}

// transferCmd represents the transfer command
var transferCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
transfer RECIPIENT AMOUNT [--asset ASSET] [--fee FEE] [--attachment TEXT]`[1:],
		Short: "Send WAVES or an asset",
		Long: `
Send AMOUNT, in the smallest unit of --asset, to RECIPIENT, an address or an
alias. The transaction is signed with the configured account, broadcast and
followed until it has --confirmations unless --nowait is set.
`[1:],
		Args: transferArgs,
		RunE: transfer,
	}
	flags := cmd.Flags()
	flags.StringVar(&transferAsset, "asset", "WAVES", "Asset to send")
	flags.Int64Var(&transferFee, "fee", tx.FeeTransfer, "Fee in WAVES")
	flags.StringVar(&transferAttachment, "attachment", "", "Attachment text")
	flags.BoolVar(&noWait, "nowait", false, "Do not wait for confirmation")
	addEnsureFlags(cmd)
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["transfer"] = transferCmplCmd
	rootCmplCmd.Sub["help"].Sub["transfer"] = complete.Command{}
	generateCmplFlags(cmd, transferCmplCmd.Flags)
	return cmd
}()

var transferCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags, complete.Flags{
		"--asset": complete.PredictAnything,
	}),
}

func transferArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(2)(cmd, args); err != nil {
		return err
	}
	var err error
	if transferRecipient, err = waves.ParseRecipient(ChainID,
		args[0]); err != nil {
		return err
	}
	if transferAmount, err = strconv.ParseInt(args[1], 10, 64); err != nil ||
		transferAmount <= 0 {
		return fmt.Errorf("invalid AMOUNT: %q", args[1])
	}
	return nil
}

func transfer(cmd *cobra.Command, _ []string) error {
	id, err := identity()
	if err != nil {
		return err
	}
	asset, err := tx.ParseAsset(transferAsset)
	if err != nil {
		return fmt.Errorf("--asset: %w", err)
	}
	b, err := tx.NewBuilder(id)
	if err != nil {
		return err
	}
	t := b.Transfer(transferRecipient, transferAmount, asset,
		tx.WithFee(transferFee),
		tx.WithAttachment([]byte(transferAttachment)))
	if err := tx.Sign(id, t); err != nil {
		return err
	}

	ctx := context.Background()
	info, err := Node.Broadcast(ctx, t)
	if err != nil {
		return err
	}
	fmt.Println("Transaction:", info.ID)
	if noWait {
		return nil
	}
	return ensure(ctx, info.ID)
}

// ensureCmd represents the ensure command
var ensureCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
ensure ID [--confirmations N] [--interval DURATION] [--lost DURATION] [--hard]`[1:],
		Short: "Wait until a transaction is confirmed",
		Long: `
Follow the transaction ID through the unconfirmed pool into a block and until
it has --confirmations blocks on top. Fails if the transaction is lost or its
execution failed.
`[1:],
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			return ensureID.Set(args[0])
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ensure(context.Background(), ensureID)
		},
	}
	addEnsureFlags(cmd)
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["ensure"] = ensureCmplCmd
	rootCmplCmd.Sub["help"].Sub["ensure"] = complete.Command{}
	generateCmplFlags(cmd, ensureCmplCmd.Flags)
	return cmd
}()

var ensureCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func ensure(ctx context.Context, id waves.Digest) error {
	tracker := confirm.New(Node, confirm.WithLogger(log.Entry))
	res, err := tracker.Ensure(ctx, id, ensureParams)
	if err != nil {
		return fmt.Errorf("%v: %v: %w", id, res.Status, err)
	}
	fmt.Printf("%v %v at height %v (%v confirmations)\n",
		id, res.Status, res.Info.Height, res.Confirmations)
	return nil
}
