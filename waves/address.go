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
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	// AddressSize is the length of a binary address.
	AddressSize = 26

	addressVersion  = 0x01
	addressHashSize = 20
	checksumSize    = 4
)

// Address is the binary form of a Waves address:
//
//	version(1) | chain id(1) | SecureHash(public key)[:20] | checksum(4)
//
// where the checksum is SecureHash of the first 22 bytes.
type Address [AddressSize]byte

// NewAddress derives the address of pub on chain.
func NewAddress(chain ChainID, pub PublicKey) Address {
	var adr Address
	adr[0] = addressVersion
	adr[1] = byte(chain)
	hash := SecureHash(pub[:])
	copy(adr[2:], hash[:addressHashSize])
	sum := SecureHash(adr[:2+addressHashSize])
	copy(adr[2+addressHashSize:], sum[:checksumSize])
	return adr
}

// ParseAddress decodes base58 text into an Address. It only checks the
// length. Use Valid to check the version, chain id and checksum.
func ParseAddress(s string) (Address, error) {
	var adr Address
	return adr, adr.Set(s)
}

// ValidAddress returns true if data is a well formed address for chain.
func ValidAddress(chain ChainID, data []byte) bool {
	if len(data) != AddressSize {
		return false
	}
	var adr Address
	copy(adr[:], data)
	return adr.Valid(chain)
}

// Valid returns true if a has the address version byte, the given chain id
// and a matching checksum.
func (a Address) Valid(chain ChainID) bool {
	if a[0] != addressVersion || a[1] != byte(chain) {
		return false
	}
	sum := SecureHash(a[:2+addressHashSize])
	return bytes.Equal(sum[:checksumSize], a[2+addressHashSize:])
}

// ChainID returns the chain id byte of a.
func (a Address) ChainID() ChainID {
	return ChainID(a[1])
}

// PublicKeyHash returns the 20 byte public key hash portion of a.
func (a Address) PublicKeyHash() []byte {
	return a[2 : 2+addressHashSize]
}

// String returns the base58 encoding of a.
func (a Address) String() string {
	return Base58Encode(a[:])
}

// Set decodes s into a. Set implements flag.Value.
func (a *Address) Set(s string) error {
	data, err := Base58Decode(s)
	if err != nil {
		return err
	}
	if len(data) != AddressSize {
		return fmt.Errorf("%w: address length %v", ErrDecode, len(data))
	}
	copy(a[:], data)
	return nil
}

// Type implements pflag.Value.
func (a *Address) Type() string { return "address" }

func (a *Address) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return a.Set(s)
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// PublicKeySize is the length of a curve25519 public key.
const PublicKeySize = 32

// PublicKey is a curve25519 (Montgomery u coordinate) public key.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes base58 text holding exactly 32 bytes.
func ParsePublicKey(s string) (PublicKey, error) {
	var pub PublicKey
	return pub, pub.Set(s)
}

// Address returns the address of pub on chain.
func (pub PublicKey) Address(chain ChainID) Address {
	return NewAddress(chain, pub)
}

func (pub PublicKey) String() string {
	return Base58Encode(pub[:])
}

// Set decodes s into pub. Set implements flag.Value.
func (pub *PublicKey) Set(s string) error {
	data, err := Base58Decode(s)
	if err != nil {
		return err
	}
	if len(data) != PublicKeySize {
		return fmt.Errorf("%w: public key length %v", ErrDecode, len(data))
	}
	copy(pub[:], data)
	return nil
}

// Type implements pflag.Value.
func (pub *PublicKey) Type() string { return "publickey" }

func (pub *PublicKey) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return pub.Set(s)
}

func (pub PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pub.String())
}
