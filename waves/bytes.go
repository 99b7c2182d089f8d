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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Digest is a 32 byte value such as a hash, transaction id or asset id. It
// is encoded as base58 text.
type Digest [32]byte

// NewDigest decodes base58 text that must hold exactly 32 bytes.
func NewDigest(s string) (Digest, error) {
	var d Digest
	return d, d.Set(s)
}

// String returns the base58 encoding of d.
func (d Digest) String() string {
	return Base58Encode(d[:])
}

// Set decodes s into d. Set implements flag.Value.
func (d *Digest) Set(s string) error {
	data, err := Base58Decode(s)
	if err != nil {
		return err
	}
	if len(data) != len(d) {
		return fmt.Errorf("%w: digest length %v", ErrDecode, len(data))
	}
	copy(d[:], data)
	return nil
}

// Type implements pflag.Value.
func (d *Digest) Type() string { return "digest" }

// IsZero returns true if all bytes of d are zero.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// UnmarshalJSON unmarshals a base58 string holding exactly 32 bytes.
func (d *Digest) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.Set(s)
}

// MarshalJSON marshals d as a base58 string.
func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Bytes implements json.Marshaler and json.Unmarshaler to encode and decode
// strings of base58 encoded data, such as proofs and attachments.
type Bytes []byte

// String returns the base58 encoding of b.
func (b Bytes) String() string {
	return Base58Encode(b)
}

// UnmarshalJSON unmarshals a base58 string.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*b = nil
		return nil
	}
	dec, err := Base58Decode(s)
	if err != nil {
		return err
	}
	*b = dec
	return nil
}

// MarshalJSON marshals b as a base58 string.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

const base64Prefix = "base64:"

// Base64 holds binary data that nodes exchange as "base64:" prefixed text,
// such as compiled scripts and binary data entries.
type Base64 []byte

// ParseBase64 decodes s with or without the "base64:" prefix.
func ParseBase64(s string) (Base64, error) {
	data, err := base64.StdEncoding.DecodeString(
		strings.TrimPrefix(s, base64Prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}
	return data, nil
}

// String returns the "base64:" prefixed encoding of b.
func (b Base64) String() string {
	return base64Prefix + base64.StdEncoding.EncodeToString(b)
}

func (b *Base64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dec, err := ParseBase64(s)
	if err != nil {
		return err
	}
	*b = dec
	return nil
}

func (b Base64) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}
