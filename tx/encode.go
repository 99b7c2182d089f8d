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
	"encoding/binary"
	"fmt"

	"github.com/waveskit/waveskit/waves"
)

// Encoder produces the exact bytes of a transaction that are signed and
// hashed into its id.
type Encoder struct {
	// Proto encodes the kinds that are signed in protobuf form. If nil,
	// WireProto is used.
	Proto ProtoMarshaler
}

// DefaultEncoder uses WireProto.
var DefaultEncoder = Encoder{}

// Body returns DefaultEncoder.Body(t).
func Body(t Transaction) ([]byte, error) {
	return DefaultEncoder.Body(t)
}

// ID returns the Blake2b256 hash of the body of t.
func ID(t Transaction) (waves.Digest, error) {
	return DefaultEncoder.ID(t)
}

// ID returns the Blake2b256 hash of the body of t.
func (e Encoder) ID(t Transaction) (waves.Digest, error) {
	body, err := e.Body(t)
	if err != nil {
		return waves.Digest{}, err
	}
	return waves.Blake2b256(body), nil
}

// Body encodes t. It never modifies t. Unknown kinds and versions return
// ErrUnsupportedKind.
func (e Encoder) Body(t Transaction) ([]byte, error) {
	switch t := t.(type) {
	case *Issue:
		return e.issue(t)
	case *Transfer:
		return e.transfer(t)
	case *Reissue:
		return e.reissue(t)
	case *Burn:
		return e.burn(t)
	case *Lease:
		return e.lease(t)
	case *LeaseCancel:
		return e.leaseCancel(t)
	case *CreateAlias:
		return e.createAlias(t)
	case *MassTransfer:
		return e.massTransfer(t)
	case *Data:
		return e.data(t)
	case *SetScript:
		return e.setScript(t)
	case *Sponsorship:
		return e.sponsorship(t)
	case *SetAssetScript:
		return e.setAssetScript(t)
	case *InvokeScript:
		return e.invokeScript(t)
	case *UpdateAssetInfo:
		return e.updateAssetInfo(t)
	case *Order:
		return e.order(t)
	case *Header:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKind, t.Type)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKind, t)
	}
}

func (e Encoder) proto() ProtoMarshaler {
	if e.Proto == nil {
		return WireProto{}
	}
	return e.Proto
}

func checkVersion(typ Type, version byte, supported ...byte) error {
	for _, v := range supported {
		if v == version {
			return nil
		}
	}
	return fmt.Errorf("%w: %v version %v", ErrUnsupportedKind, typ, version)
}

// body accumulates big endian, length prefixed fields.
type body []byte

func (b *body) putByte(v byte)    { *b = append(*b, v) }
func (b *body) putBytes(v []byte) { *b = append(*b, v...) }

func (b *body) putBool(v bool) {
	if v {
		b.putByte(1)
		return
	}
	b.putByte(0)
}
func (b *body) putUint16(v int) { *b = binary.BigEndian.AppendUint16(*b, uint16(v)) }
func (b *body) putUint32(v int) { *b = binary.BigEndian.AppendUint32(*b, uint32(v)) }
func (b *body) putInt64(v int64) {
	*b = binary.BigEndian.AppendUint64(*b, uint64(v))
}

// putString16 writes a 2 byte length followed by data.
func (b *body) putString16(data []byte) {
	b.putUint16(len(data))
	b.putBytes(data)
}

// putString32 writes a 4 byte length followed by data.
func (b *body) putString32(data []byte) {
	b.putUint32(len(data))
	b.putBytes(data)
}

// putAsset writes 0x00 for nil or 0x01 followed by the 32 byte id.
func (b *body) putAsset(asset *waves.Digest) {
	if asset == nil {
		b.putByte(0)
		return
	}
	b.putByte(1)
	b.putBytes(asset[:])
}

// putScript writes 0x00 for an empty script or 0x01 followed by the length
// prefixed script.
func (b *body) putScript(script []byte) {
	if len(script) == 0 {
		b.putByte(0)
		return
	}
	b.putByte(1)
	b.putString16(script)
}

func (b *body) putHeader(h *Header, typ Type) {
	b.putByte(byte(typ))
	b.putByte(h.Version)
}

func (e Encoder) issue(t *Issue) ([]byte, error) {
	if err := checkVersion(TypeIssue, t.Version, 2); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeIssue)
	b.putByte(byte(t.ChainID))
	b.putBytes(t.SenderPublicKey[:])
	b.putString16([]byte(t.Name))
	b.putString16([]byte(t.Description))
	b.putInt64(t.Quantity)
	b.putByte(t.Decimals)
	b.putBool(t.Reissuable)
	b.putInt64(t.Fee)
	b.putInt64(t.Timestamp)
	b.putScript(t.Script)
	return b, nil
}

func (e Encoder) transfer(t *Transfer) ([]byte, error) {
	if err := checkVersion(TypeTransfer, t.Version, 2); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeTransfer)
	b.putBytes(t.SenderPublicKey[:])
	b.putAsset(t.AssetID)
	b.putAsset(t.FeeAssetID)
	b.putInt64(t.Timestamp)
	b.putInt64(t.Amount)
	b.putInt64(t.Fee)
	b.putBytes(t.Recipient.Bytes())
	b.putString16(t.Attachment)
	return b, nil
}

func (e Encoder) reissue(t *Reissue) ([]byte, error) {
	if err := checkVersion(TypeReissue, t.Version, 2); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeReissue)
	b.putByte(byte(t.ChainID))
	b.putBytes(t.SenderPublicKey[:])
	b.putBytes(t.AssetID[:])
	b.putInt64(t.Quantity)
	b.putBool(t.Reissuable)
	b.putInt64(t.Fee)
	b.putInt64(t.Timestamp)
	return b, nil
}

func (e Encoder) burn(t *Burn) ([]byte, error) {
	if err := checkVersion(TypeBurn, t.Version, 2); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeBurn)
	b.putByte(byte(t.ChainID))
	b.putBytes(t.SenderPublicKey[:])
	b.putBytes(t.AssetID[:])
	b.putInt64(t.Amount)
	b.putInt64(t.Fee)
	b.putInt64(t.Timestamp)
	return b, nil
}

func (e Encoder) lease(t *Lease) ([]byte, error) {
	if err := checkVersion(TypeLease, t.Version, 2); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeLease)
	// Leases are always in WAVES.
	b.putAsset(nil)
	b.putBytes(t.SenderPublicKey[:])
	b.putBytes(t.Recipient.Bytes())
	b.putInt64(t.Amount)
	b.putInt64(t.Fee)
	b.putInt64(t.Timestamp)
	return b, nil
}

func (e Encoder) leaseCancel(t *LeaseCancel) ([]byte, error) {
	if err := checkVersion(TypeLeaseCancel, t.Version, 2); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeLeaseCancel)
	b.putByte(byte(t.ChainID))
	b.putBytes(t.SenderPublicKey[:])
	b.putInt64(t.Fee)
	b.putInt64(t.Timestamp)
	b.putBytes(t.LeaseID[:])
	return b, nil
}

func (e Encoder) createAlias(t *CreateAlias) ([]byte, error) {
	if err := checkVersion(TypeCreateAlias, t.Version, 2); err != nil {
		return nil, err
	}
	alias := waves.NewAliasRecipient(t.ChainID, t.Alias).Bytes()
	var b body
	b.putHeader(&t.Header, TypeCreateAlias)
	b.putBytes(t.SenderPublicKey[:])
	b.putString16(alias)
	b.putInt64(t.Fee)
	b.putInt64(t.Timestamp)
	return b, nil
}

func (e Encoder) massTransfer(t *MassTransfer) ([]byte, error) {
	if err := checkVersion(TypeMassTransfer, t.Version, 1); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeMassTransfer)
	b.putBytes(t.SenderPublicKey[:])
	b.putAsset(t.AssetID)
	b.putUint16(len(t.Transfers))
	for _, item := range t.Transfers {
		b.putBytes(item.Recipient.Bytes())
		b.putInt64(item.Amount)
	}
	b.putInt64(t.Timestamp)
	b.putInt64(t.Fee)
	b.putString16(t.Attachment)
	return b, nil
}

const (
	dataInteger = 0
	dataBoolean = 1
	dataBinary  = 2
	dataString  = 3
)

func (e Encoder) data(t *Data) ([]byte, error) {
	if err := checkVersion(TypeData, t.Version, 1); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeData)
	b.putBytes(t.SenderPublicKey[:])
	b.putUint16(len(t.Data))
	for i, entry := range t.Data {
		b.putString16([]byte(entry.Key))
		switch v := entry.Value.(type) {
		case IntegerValue:
			b.putByte(dataInteger)
			b.putInt64(int64(v))
		case BooleanValue:
			b.putByte(dataBoolean)
			b.putBool(bool(v))
		case BinaryValue:
			b.putByte(dataBinary)
			b.putString16(v)
		case StringValue:
			b.putByte(dataString)
			b.putString16([]byte(v))
		default:
			return nil, fmt.Errorf("%w: data[%v] %q: value type %T",
				ErrInvalid, i, entry.Key, v)
		}
	}
	b.putInt64(t.Timestamp)
	b.putInt64(t.Fee)
	return b, nil
}

func (e Encoder) setScript(t *SetScript) ([]byte, error) {
	if err := checkVersion(TypeSetScript, t.Version, 1); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeSetScript)
	b.putByte(byte(t.ChainID))
	b.putBytes(t.SenderPublicKey[:])
	b.putScript(t.Script)
	b.putInt64(t.Fee)
	b.putInt64(t.Timestamp)
	return b, nil
}

func (e Encoder) sponsorship(t *Sponsorship) ([]byte, error) {
	if err := checkVersion(TypeSponsorship, t.Version, 1); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeSponsorship)
	b.putBytes(t.SenderPublicKey[:])
	b.putBytes(t.AssetID[:])
	b.putInt64(t.MinSponsoredAssetFee)
	b.putInt64(t.Fee)
	b.putInt64(t.Timestamp)
	return b, nil
}

func (e Encoder) setAssetScript(t *SetAssetScript) ([]byte, error) {
	if err := checkVersion(TypeSetAssetScript, t.Version, 1); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeSetAssetScript)
	b.putByte(byte(t.ChainID))
	b.putBytes(t.SenderPublicKey[:])
	b.putBytes(t.AssetID[:])
	b.putInt64(t.Fee)
	b.putInt64(t.Timestamp)
	b.putScript(t.Script)
	return b, nil
}

func (e Encoder) invokeScript(t *InvokeScript) ([]byte, error) {
	call, err := FunctionCallBytes(t.Call)
	if err != nil {
		return nil, err
	}
	if t.Version >= 2 {
		return e.proto().MarshalInvokeScript(t, call)
	}
	if err := checkVersion(TypeInvokeScript, t.Version, 1); err != nil {
		return nil, err
	}
	var b body
	b.putHeader(&t.Header, TypeInvokeScript)
	b.putByte(byte(t.ChainID))
	b.putBytes(t.SenderPublicKey[:])
	b.putBytes(t.DApp.Bytes())
	b.putBytes(call)
	b.putUint16(len(t.Payments))
	for _, p := range t.Payments {
		var payment body
		payment.putInt64(p.Amount)
		payment.putAsset(p.AssetID)
		b.putString16(payment)
	}
	b.putInt64(t.Fee)
	b.putAsset(t.FeeAssetID)
	b.putInt64(t.Timestamp)
	return b, nil
}

func (e Encoder) updateAssetInfo(t *UpdateAssetInfo) ([]byte, error) {
	if t.Version < 1 {
		return nil, checkVersion(TypeUpdateAssetInfo, t.Version)
	}
	return e.proto().MarshalUpdateAssetInfo(t)
}

func (e Encoder) order(o *Order) ([]byte, error) {
	if o.Version != 3 {
		return nil, fmt.Errorf("%w: order version %v",
			ErrUnsupportedKind, o.Version)
	}
	var b body
	b.putByte(o.Version)
	b.putBytes(o.SenderPublicKey[:])
	b.putBytes(o.MatcherPublicKey[:])
	b.putAsset(o.AssetPair.AmountAsset)
	b.putAsset(o.AssetPair.PriceAsset)
	b.putByte(byte(o.OrderType))
	b.putInt64(o.Price)
	b.putInt64(o.Amount)
	b.putInt64(o.Timestamp)
	b.putInt64(o.Expiration)
	b.putInt64(o.MatcherFee)
	b.putAsset(o.MatcherFeeAssetID)
	return b, nil
}

const (
	argInteger = 0
	argBinary  = 1
	argString  = 2
	argTrue    = 6
	argFalse   = 7
	argList    = 11

	functionCallTag = 9
	userFunctionTag = 1
	callPresent     = 1
	defaultFunction = 0
)

// FunctionCallBytes returns the binary form of call: 0x00 for nil, or
// 0x01 0x09 0x01 followed by the length prefixed function name, the
// argument count and the arguments.
func FunctionCallBytes(call *FunctionCall) ([]byte, error) {
	var b body
	if call == nil {
		b.putByte(defaultFunction)
		return b, nil
	}
	b.putByte(callPresent)
	b.putByte(functionCallTag)
	b.putByte(userFunctionTag)
	b.putString32([]byte(call.Function))
	if err := b.putArgs(call.Args); err != nil {
		return nil, fmt.Errorf("%w: function %q: %v",
			ErrInvalid, call.Function, err)
	}
	return b, nil
}

func (b *body) putArgs(args []Arg) error {
	b.putUint32(len(args))
	for i, arg := range args {
		switch arg := arg.(type) {
		case IntegerArg:
			b.putByte(argInteger)
			b.putInt64(int64(arg))
		case BinaryArg:
			b.putByte(argBinary)
			b.putString32(arg)
		case StringArg:
			b.putByte(argString)
			b.putString32([]byte(arg))
		case BooleanArg:
			if arg {
				b.putByte(argTrue)
			} else {
				b.putByte(argFalse)
			}
		case ListArg:
			b.putByte(argList)
			if err := b.putArgs(arg); err != nil {
				return fmt.Errorf("args[%v]: %w", i, err)
			}
		default:
			return fmt.Errorf("args[%v]: type %T", i, arg)
		}
	}
	return nil
}
