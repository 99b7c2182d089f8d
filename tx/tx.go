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

package tx

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/waveskit/waveskit/waves"
)

var (
	// ErrUnsupportedKind is returned when encoding or decoding a
	// transaction type or version that has no known layout.
	ErrUnsupportedKind = errors.New("unsupported transaction kind")

	// ErrInvalid is returned for transactions that cannot be built as
	// requested.
	ErrInvalid = errors.New("invalid transaction")
)

// Type is the transaction type tag, the first byte of every transaction
// body.
type Type byte

const (
	TypeIssue           Type = 3
	TypeTransfer        Type = 4
	TypeReissue         Type = 5
	TypeBurn            Type = 6
	TypeExchange        Type = 7
	TypeLease           Type = 8
	TypeLeaseCancel     Type = 9
	TypeCreateAlias     Type = 10
	TypeMassTransfer    Type = 11
	TypeData            Type = 12
	TypeSetScript       Type = 13
	TypeSponsorship     Type = 14
	TypeSetAssetScript  Type = 15
	TypeInvokeScript    Type = 16
	TypeUpdateAssetInfo Type = 17
)

var typeNames = map[Type]string{
	TypeIssue:           "issue",
	TypeTransfer:        "transfer",
	TypeReissue:         "reissue",
	TypeBurn:            "burn",
	TypeExchange:        "exchange",
	TypeLease:           "lease",
	TypeLeaseCancel:     "lease cancel",
	TypeCreateAlias:     "create alias",
	TypeMassTransfer:    "mass transfer",
	TypeData:            "data",
	TypeSetScript:       "set script",
	TypeSponsorship:     "sponsorship",
	TypeSetAssetScript:  "set asset script",
	TypeInvokeScript:    "invoke script",
	TypeUpdateAssetInfo: "update asset info",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", byte(t))
}

// Transaction is implemented by every transaction kind and by Order. The
// set of implementations is closed.
type Transaction interface {
	// TxID returns the id assigned when the transaction was signed, or
	// nil.
	TxID() *waves.Digest

	proofs() *Proofs
	setID(waves.Digest)
}

// Header holds the fields common to all transaction kinds.
type Header struct {
	Type            Type            `json:"type"`
	Version         byte            `json:"version"`
	ID              *waves.Digest   `json:"id,omitempty"`
	ChainID         waves.ChainID   `json:"chainId,omitempty"`
	Sender          *waves.Address  `json:"sender,omitempty"`
	SenderPublicKey waves.PublicKey `json:"senderPublicKey"`
	Fee             int64           `json:"fee"`
	FeeAssetID      *waves.Digest   `json:"feeAssetId,omitempty"`
	Timestamp       int64           `json:"timestamp"`
	Proofs          Proofs          `json:"proofs"`
}

func (h *Header) TxID() *waves.Digest   { return h.ID }
func (h *Header) proofs() *Proofs       { return &h.Proofs }
func (h *Header) setID(id waves.Digest) { h.ID = &id }

// Proofs is the sparse, index addressed list of signatures of a
// transaction. Unset indexes hold an empty proof.
type Proofs []waves.Bytes

// Set stores proof at index i, growing the list as needed.
func (p *Proofs) Set(i int, proof []byte) {
	for len(*p) <= i {
		*p = append(*p, nil)
	}
	(*p)[i] = append(waves.Bytes{}, proof...)
}

// Get returns the proof at index i, or nil.
func (p Proofs) Get(i int) []byte {
	if i < 0 || i >= len(p) || len(p[i]) == 0 {
		return nil
	}
	return p[i]
}

// MarshalJSON always produces a JSON array, never null.
func (p Proofs) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]waves.Bytes(p))
}
