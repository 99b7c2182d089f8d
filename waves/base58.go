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
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mr-tron/base58"
)

// ErrDecode is returned for malformed base58 text or data of the wrong
// length.
var ErrDecode = errors.New("decode error")

// DefaultBase58CacheSize is the number of decoded strings a Base58Cache holds
// when no size is given.
const DefaultBase58CacheSize = 256

// Base58Encode returns the base58 encoding of data using the Bitcoin
// alphabet.
func Base58Encode(data []byte) string {
	return base58.Encode(data)
}

// Base58Decode decodes base58 text. The empty string decodes to an empty
// slice.
func Base58Decode(s string) ([]byte, error) {
	if len(s) == 0 {
		return []byte{}, nil
	}
	data, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base58 %q: %v", ErrDecode, s, err)
	}
	return data, nil
}

// Base58Cache memoizes Base58Decode. It is safe for concurrent use and is
// owned by whoever creates it; there is no package level cache.
type Base58Cache struct {
	cache *lru.Cache[string, []byte]
}

// NewBase58Cache returns a cache holding at most size entries. A size of zero
// or less uses DefaultBase58CacheSize.
func NewBase58Cache(size int) *Base58Cache {
	if size <= 0 {
		size = DefaultBase58CacheSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Base58Cache{cache: cache}
}

// Decode is Base58Decode backed by the cache. A nil *Base58Cache decodes
// without caching. The returned slice is a copy and may be modified.
func (c *Base58Cache) Decode(s string) ([]byte, error) {
	if c == nil {
		return Base58Decode(s)
	}
	if data, ok := c.cache.Get(s); ok {
		return append([]byte{}, data...), nil
	}
	data, err := Base58Decode(s)
	if err != nil {
		return nil, err
	}
	c.cache.Add(s, append([]byte{}, data...))
	return data, nil
}

// Len returns the number of cached entries.
func (c *Base58Cache) Len() int {
	return c.cache.Len()
}
