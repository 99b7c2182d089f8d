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
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	aliasPrefix  = "alias:"
	aliasVersion = 0x02

	// AddressTextLen is the length of a base58 encoded address.
	AddressTextLen = 35
)

// Recipient is the destination of a transfer, lease or invocation. It is
// either an Address or an alias registered on the chain.
type Recipient struct {
	Address *Address
	Alias   string
	ChainID ChainID
}

// NewAddressRecipient returns a Recipient for adr.
func NewAddressRecipient(adr Address) Recipient {
	return Recipient{Address: &adr, ChainID: adr.ChainID()}
}

// NewAliasRecipient returns a Recipient for the alias name on chain.
func NewAliasRecipient(chain ChainID, name string) Recipient {
	return Recipient{Alias: name, ChainID: chain}
}

// ParseRecipient parses a 35 character base58 address, a fully qualified
// "alias:<chain>:<name>" reference, or a bare alias name on chain.
func ParseRecipient(chain ChainID, s string) (Recipient, error) {
	if len(s) == AddressTextLen {
		adr, err := ParseAddress(s)
		if err != nil {
			return Recipient{}, err
		}
		return NewAddressRecipient(adr), nil
	}
	if strings.HasPrefix(s, aliasPrefix) {
		rest := s[len(aliasPrefix):]
		if len(rest) < 3 || rest[1] != ':' {
			return Recipient{}, fmt.Errorf("invalid alias: %q", s)
		}
		return NewAliasRecipient(ChainID(rest[0]), rest[2:]), nil
	}
	if len(s) == 0 {
		return Recipient{}, fmt.Errorf("empty recipient")
	}
	return NewAliasRecipient(chain, s), nil
}

// IsAlias returns true if r refers to an alias.
func (r Recipient) IsAlias() bool {
	return r.Address == nil
}

// Bytes returns the binary form of r used in transaction bodies: the raw 26
// address bytes, or 0x02 | chain id | uint16 length | name for an alias.
func (r Recipient) Bytes() []byte {
	if r.Address != nil {
		return append([]byte{}, r.Address[:]...)
	}
	data := make([]byte, 4, 4+len(r.Alias))
	data[0] = aliasVersion
	data[1] = byte(r.ChainID)
	binary.BigEndian.PutUint16(data[2:], uint16(len(r.Alias)))
	return append(data, r.Alias...)
}

// String returns the address text or "alias:<chain>:<name>".
func (r Recipient) String() string {
	if r.Address != nil {
		return r.Address.String()
	}
	return aliasPrefix + string(rune(r.ChainID)) + ":" + r.Alias
}

func (r Recipient) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts an address or a fully qualified alias.
func (r *Recipient) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	rcp, err := ParseRecipient(0, s)
	if err != nil {
		return err
	}
	*r = rcp
	return nil
}
