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
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/waveskit/waveskit/waves"
)

// ProtoMarshaler encodes the transaction kinds whose signed body is a
// protobuf waves.Transaction message. call is the binary function call as
// returned by FunctionCallBytes.
type ProtoMarshaler interface {
	MarshalInvokeScript(t *InvokeScript, call []byte) ([]byte, error)
	MarshalUpdateAssetInfo(t *UpdateAssetInfo) ([]byte, error)
}

// WireProto writes the waves.Transaction message field by field with
// protowire, in field number order and omitting proto3 default values.
type WireProto struct{}

var _ ProtoMarshaler = WireProto{}

// Field numbers of waves.Transaction and the messages it references.
const (
	fieldChainID         protowire.Number = 1
	fieldSenderPublicKey protowire.Number = 2
	fieldFee             protowire.Number = 3
	fieldTimestamp       protowire.Number = 4
	fieldVersion         protowire.Number = 5
	fieldInvokeScript    protowire.Number = 116
	fieldUpdateAssetInfo protowire.Number = 117

	fieldAmountAssetID protowire.Number = 1
	fieldAmountAmount  protowire.Number = 2

	fieldRecipientPublicKeyHash protowire.Number = 1
	fieldRecipientAlias         protowire.Number = 2

	fieldInvokeDApp         protowire.Number = 1
	fieldInvokeFunctionCall protowire.Number = 2
	fieldInvokePayments     protowire.Number = 3

	fieldUpdateAssetID     protowire.Number = 1
	fieldUpdateName        protowire.Number = 2
	fieldUpdateDescription protowire.Number = 3
)

func (WireProto) MarshalInvokeScript(t *InvokeScript, call []byte) ([]byte, error) {
	var data []byte
	data = appendMessage(data, fieldInvokeDApp, protoRecipient(t.DApp))
	data = appendBytes(data, fieldInvokeFunctionCall, call)
	for _, p := range t.Payments {
		data = appendMessage(data, fieldInvokePayments,
			protoAmount(p.AssetID, p.Amount))
	}
	return protoTransaction(&t.Header, fieldInvokeScript, data), nil
}

func (WireProto) MarshalUpdateAssetInfo(t *UpdateAssetInfo) ([]byte, error) {
	var data []byte
	data = appendBytes(data, fieldUpdateAssetID, t.AssetID[:])
	data = appendBytes(data, fieldUpdateName, []byte(t.Name))
	data = appendBytes(data, fieldUpdateDescription, []byte(t.Description))
	return protoTransaction(&t.Header, fieldUpdateAssetInfo, data), nil
}

func protoTransaction(h *Header, payload protowire.Number, data []byte) []byte {
	var b []byte
	b = appendVarint(b, fieldChainID, uint64(h.ChainID))
	b = appendBytes(b, fieldSenderPublicKey, h.SenderPublicKey[:])
	b = appendMessage(b, fieldFee, protoAmount(h.FeeAssetID, h.Fee))
	b = appendVarint(b, fieldTimestamp, uint64(h.Timestamp))
	b = appendVarint(b, fieldVersion, uint64(h.Version))
	return appendMessage(b, payload, data)
}

func protoAmount(asset *waves.Digest, amount int64) []byte {
	var b []byte
	if asset != nil {
		b = appendBytes(b, fieldAmountAssetID, asset[:])
	}
	return appendVarint(b, fieldAmountAmount, uint64(amount))
}

// protoRecipient sets exactly one member of the recipient oneof, so the
// field is written even when empty.
func protoRecipient(r waves.Recipient) []byte {
	var b []byte
	if r.Address != nil {
		b = protowire.AppendTag(b, fieldRecipientPublicKeyHash,
			protowire.BytesType)
		return protowire.AppendBytes(b, r.Address.PublicKeyHash())
	}
	b = protowire.AppendTag(b, fieldRecipientAlias, protowire.BytesType)
	return protowire.AppendString(b, r.Alias)
}

// appendVarint omits zero values.
func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendBytes omits empty values.
func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessage always writes a set message field, even when empty.
func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}
