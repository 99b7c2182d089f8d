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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveskit/waveskit/waves"
)

const (
	testPrivateKey = "7VLYNhmuvAo5Us4mNGxWpzhMSdSSdEbEPFUDKSnA6eBv"
	testAddress    = "3N9Q2sdkkhAnbR4XCveuRaSMLiVtvebZ3wp"
)

func run(args ...string) error {
	rootCmd.SetArgs(append([]string{"--config", "/nonexistent.yaml"},
		args...))
	return rootCmd.Execute()
}

func TestValidate(t *testing.T) {
	assert.NoError(t, run("validate", "--chainid", "testnet", testAddress))
	assert.Error(t, run("validate", "--chainid", "mainnet", testAddress))
	assert.Error(t, run("validate", "--chainid", "testnet", "garbage"))
}

func TestIdentity(t *testing.T) {
	t.Setenv("WAVES_CLI_SEED", "")
	t.Setenv("WAVES_CLI_PRIVKEY", testPrivateKey)
	require.NoError(t, run("address", "--chainid", "testnet"))

	id, err := identity()
	require.NoError(t, err)
	adr, err := id.Address()
	require.NoError(t, err)
	assert.Equal(t, testAddress, adr.String())
	assert.Equal(t, waves.TestNet, ChainID)

	t.Setenv("WAVES_CLI_PRIVKEY", "")
	_, err = identity()
	assert.Error(t, err)
}

func TestTransferArgs(t *testing.T) {
	ChainID = waves.TestNet
	assert.NoError(t, transferArgs(transferCmd, []string{testAddress, "100"}))
	assert.Equal(t, int64(100), transferAmount)
	assert.False(t, transferRecipient.IsAlias())

	assert.NoError(t, transferArgs(transferCmd, []string{"merry", "1"}))
	assert.True(t, transferRecipient.IsAlias())

	assert.Error(t, transferArgs(transferCmd, []string{testAddress, "-1"}))
	assert.Error(t, transferArgs(transferCmd, []string{testAddress}))
}
