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
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// DefaultSeedWords is the number of words in a generated seed phrase.
const DefaultSeedWords = 15

// NewSeedPhrase returns a random phrase of n words from the English BIP-39
// word list. An n of zero or less uses DefaultSeedWords.
func NewSeedPhrase(n int) (string, error) {
	if n <= 0 {
		n = DefaultSeedWords
	}
	list := bip39.GetWordList()
	max := big.NewInt(int64(len(list)))
	words := make([]string, n)
	for i := range words {
		j, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("crypto/rand: %w", err)
		}
		words[i] = list[j.Int64()]
	}
	return strings.Join(words, " "), nil
}
