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

package waves

import (
	"fmt"
	"strings"
)

const (
	MainNet  ChainID = 'W'
	TestNet  ChainID = 'T'
	StageNet ChainID = 'S'
)

// ChainID is the single byte network identifier embedded in addresses and
// transaction bodies.
type ChainID byte

func (c ChainID) String() string {
	switch c {
	case MainNet:
		return "mainnet"
	case TestNet:
		return "testnet"
	case StageNet:
		return "stagenet"
	default:
		return fmt.Sprintf("custom: %q", byte(c))
	}
}

// Set accepts "mainnet", "testnet", "stagenet" or a single character chain
// id. Set implements flag.Value.
func (c *ChainID) Set(s string) error {
	switch strings.ToLower(s) {
	case "main", "mainnet":
		*c = MainNet
		return nil
	case "test", "testnet":
		*c = TestNet
		return nil
	case "stage", "stagenet":
		*c = StageNet
		return nil
	}
	if len(s) != 1 {
		return fmt.Errorf("invalid chain id: %q", s)
	}
	*c = ChainID(s[0])
	return nil
}

// Type implements pflag.Value.
func (c *ChainID) Type() string { return "chainid" }

func (c ChainID) IsMainNet() bool { return c == MainNet }
func (c ChainID) IsTestNet() bool { return c == TestNet }
