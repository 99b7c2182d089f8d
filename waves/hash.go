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
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Sha256 returns the SHA-256 digest of data.
func Sha256(data []byte) Digest {
	return sha256.Sum256(data)
}

// Sha512 returns the SHA-512 digest of data.
func Sha512(data []byte) [64]byte {
	return sha512.Sum512(data)
}

// Blake2b256 returns the 32 byte Blake2b digest of data. Transaction ids are
// computed with this hash.
func Blake2b256(data []byte) Digest {
	return blake2b.Sum256(data)
}

// Keccak256 returns the legacy Keccak-256 digest of data. This is the
// pre-standard Keccak padding, not the FIPS-202 SHA3-256.
func Keccak256(data []byte) Digest {
	var d Digest
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	h.Sum(d[:0])
	return d
}

// SecureHash returns Keccak256(Blake2b256(data)).
func SecureHash(data []byte) Digest {
	b := Blake2b256(data)
	return Keccak256(b[:])
}
