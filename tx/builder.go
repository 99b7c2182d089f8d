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
	"fmt"
	"time"

	"github.com/waveskit/waveskit/waves"
)

// Default fees in the smallest WAVES unit.
const (
	FeeAlias           = 100000
	FeeIssue           = 100000000
	FeeReissue         = 100000
	FeeBurn            = 100000
	FeeTransfer        = 100000
	FeeLease           = 100000
	FeeLeaseCancel     = 100000
	FeeSetScript       = 1000000
	FeeSponsorship     = 100000000
	FeeSetAssetScript  = 100000000
	FeeInvokeScript    = 500000
	FeeUpdateAssetInfo = 100000
	FeeMatcher         = 300000

	feeMassBase     = 100000
	feeMassPer      = 50000
	feeDataPerKB    = 100000
	dataFeeUnitSize = 1024

	// OrderLifetime is the default distance from an order's timestamp to
	// its expiration.
	OrderLifetime = 30 * 24 * time.Hour
)

// MassTransferFee returns the default fee of a mass transfer to n
// recipients.
func MassTransferFee(n int) int64 {
	return feeMassBase + feeMassPer*int64(n) + feeMassPer*int64(n%2)
}

// DataFee returns the default fee of a data transaction with a body of size
// bytes: 100000 per started kilobyte.
func DataFee(size int) int64 {
	if size <= 0 {
		return feeDataPerKB
	}
	return feeDataPerKB * int64(1+(size-1)/dataFeeUnitSize)
}

// Builder creates transactions on chain ChainID, filling the sender and
// timestamp from its fields unless overridden by an Option.
type Builder struct {
	ChainID         waves.ChainID
	SenderPublicKey waves.PublicKey
	Encoder         Encoder

	// Now returns the time used for timestamps. If nil, time.Now is
	// used.
	Now func() time.Time
}

// NewBuilder returns a Builder for the public key and chain of id.
func NewBuilder(id *waves.Identity) (*Builder, error) {
	pub, err := id.PublicKey()
	if err != nil {
		return nil, err
	}
	return &Builder{ChainID: id.ChainID(), SenderPublicKey: pub}, nil
}

type options struct {
	fee        *int64
	timestamp  *int64
	version    *byte
	feeAsset   *waves.Digest
	sender     *waves.PublicKey
	attachment []byte
}

// Option overrides a default used by a Builder.
type Option func(*options)

func WithFee(fee int64) Option {
	return func(o *options) { o.fee = &fee }
}

// WithTimestamp sets the timestamp in milliseconds since the Unix epoch.
func WithTimestamp(ms int64) Option {
	return func(o *options) { o.timestamp = &ms }
}

func WithVersion(version byte) Option {
	return func(o *options) { o.version = &version }
}

// WithFeeAsset pays the fee in a sponsored asset. Only transfers and
// invocations use it.
func WithFeeAsset(asset waves.Digest) Option {
	return func(o *options) { o.feeAsset = &asset }
}

// WithSenderPublicKey builds the transaction on behalf of pub.
func WithSenderPublicKey(pub waves.PublicKey) Option {
	return func(o *options) { o.sender = &pub }
}

// WithAttachment sets the attachment of transfers and mass transfers.
func WithAttachment(attachment []byte) Option {
	return func(o *options) { o.attachment = attachment }
}

func (b *Builder) now() int64 {
	if b.Now == nil {
		return time.Now().UnixMilli()
	}
	return b.Now().UnixMilli()
}

func (b *Builder) header(typ Type, version byte, fee int64,
	opts []Option) (Header, options) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	h := Header{
		Type:            typ,
		Version:         version,
		ChainID:         b.ChainID,
		SenderPublicKey: b.SenderPublicKey,
		Fee:             fee,
		FeeAssetID:      o.feeAsset,
	}
	if o.sender != nil {
		h.SenderPublicKey = *o.sender
	}
	sender := h.SenderPublicKey.Address(b.ChainID)
	h.Sender = &sender
	if o.version != nil {
		h.Version = *o.version
	}
	if o.fee != nil {
		h.Fee = *o.fee
	}
	if o.timestamp != nil {
		h.Timestamp = *o.timestamp
	} else {
		h.Timestamp = b.now()
	}
	return h, o
}

// Issue creates an asset. A non-empty script makes it a smart asset.
func (b *Builder) Issue(name, description string, quantity int64,
	decimals byte, reissuable bool, script []byte, opts ...Option) *Issue {
	h, _ := b.header(TypeIssue, 2, FeeIssue, opts)
	return &Issue{Header: h,
		Name:        name,
		Description: description,
		Quantity:    quantity,
		Decimals:    decimals,
		Reissuable:  reissuable,
		Script:      script,
	}
}

// Transfer sends amount of asset, or WAVES if asset is nil.
func (b *Builder) Transfer(recipient waves.Recipient, amount int64,
	asset *waves.Digest, opts ...Option) *Transfer {
	h, o := b.header(TypeTransfer, 2, FeeTransfer, opts)
	return &Transfer{Header: h,
		Recipient:  recipient,
		AssetID:    asset,
		Amount:     amount,
		Attachment: o.attachment,
	}
}

func (b *Builder) Reissue(asset waves.Digest, quantity int64,
	reissuable bool, opts ...Option) *Reissue {
	h, _ := b.header(TypeReissue, 2, FeeReissue, opts)
	return &Reissue{Header: h,
		AssetID:    asset,
		Quantity:   quantity,
		Reissuable: reissuable,
	}
}

func (b *Builder) Burn(asset waves.Digest, amount int64,
	opts ...Option) *Burn {
	h, _ := b.header(TypeBurn, 2, FeeBurn, opts)
	return &Burn{Header: h, AssetID: asset, Amount: amount}
}

func (b *Builder) Lease(recipient waves.Recipient, amount int64,
	opts ...Option) *Lease {
	h, _ := b.header(TypeLease, 2, FeeLease, opts)
	return &Lease{Header: h, Recipient: recipient, Amount: amount}
}

func (b *Builder) LeaseCancel(lease waves.Digest,
	opts ...Option) *LeaseCancel {
	h, _ := b.header(TypeLeaseCancel, 2, FeeLeaseCancel, opts)
	return &LeaseCancel{Header: h, LeaseID: lease}
}

func (b *Builder) CreateAlias(alias string, opts ...Option) *CreateAlias {
	h, _ := b.header(TypeCreateAlias, 2, FeeAlias, opts)
	return &CreateAlias{Header: h, Alias: alias}
}

// MassTransfer sends amounts[i] of asset to recipients[i].
func (b *Builder) MassTransfer(recipients []waves.Recipient, amounts []int64,
	asset *waves.Digest, opts ...Option) (*MassTransfer, error) {
	if len(recipients) != len(amounts) {
		return nil, fmt.Errorf("%w: %v recipients, %v amounts",
			ErrInvalid, len(recipients), len(amounts))
	}
	h, o := b.header(TypeMassTransfer, 1,
		MassTransferFee(len(recipients)), opts)
	items := make([]MassTransferItem, len(recipients))
	for i := range items {
		items[i] = MassTransferItem{Recipient: recipients[i],
			Amount: amounts[i]}
	}
	return &MassTransfer{Header: h,
		AssetID:    asset,
		Transfers:  items,
		Attachment: o.attachment,
	}, nil
}

// Data writes entries. Unless WithFee is given the fee is computed from the
// size of the encoded body.
func (b *Builder) Data(entries []DataEntry, opts ...Option) (*Data, error) {
	h, o := b.header(TypeData, 1, 0, opts)
	t := &Data{Header: h, Data: entries}
	if o.fee != nil {
		return t, nil
	}
	body, err := b.Encoder.Body(t)
	if err != nil {
		return nil, err
	}
	t.Fee = DataFee(len(body))
	return t, nil
}

// SetScript sets the account script. An empty script removes it.
func (b *Builder) SetScript(script []byte, opts ...Option) *SetScript {
	h, _ := b.header(TypeSetScript, 1, FeeSetScript, opts)
	return &SetScript{Header: h, Script: script}
}

func (b *Builder) Sponsorship(asset waves.Digest, minFee int64,
	opts ...Option) *Sponsorship {
	h, _ := b.header(TypeSponsorship, 1, FeeSponsorship, opts)
	return &Sponsorship{Header: h, AssetID: asset, MinSponsoredAssetFee: minFee}
}

func (b *Builder) SetAssetScript(asset waves.Digest, script []byte,
	opts ...Option) *SetAssetScript {
	h, _ := b.header(TypeSetAssetScript, 1, FeeSetAssetScript, opts)
	return &SetAssetScript{Header: h, AssetID: asset, Script: script}
}

// InvokeScript calls dApp. A nil call invokes the default function. Version
// 2, selected WithVersion(2), is signed in protobuf form.
func (b *Builder) InvokeScript(dApp waves.Recipient, call *FunctionCall,
	payments []Payment, opts ...Option) *InvokeScript {
	h, _ := b.header(TypeInvokeScript, 1, FeeInvokeScript, opts)
	return &InvokeScript{Header: h,
		DApp:     dApp,
		Call:     call,
		Payments: payments,
	}
}

func (b *Builder) UpdateAssetInfo(asset waves.Digest, name,
	description string, opts ...Option) *UpdateAssetInfo {
	h, _ := b.header(TypeUpdateAssetInfo, 1, FeeUpdateAssetInfo, opts)
	return &UpdateAssetInfo{Header: h,
		AssetID:     asset,
		Name:        name,
		Description: description,
	}
}

// Order creates a version 3 order for matcher. A zero expiration is the
// timestamp plus OrderLifetime. WithFee sets the matcher fee and
// WithFeeAsset the matcher fee asset.
func (b *Builder) Order(matcher waves.PublicKey, pair AssetPair,
	typ OrderType, amount, price, expiration int64,
	opts ...Option) *Order {
	h, _ := b.header(0, 3, FeeMatcher, opts)
	if expiration == 0 {
		expiration = h.Timestamp + OrderLifetime.Milliseconds()
	}
	return &Order{
		Version:           h.Version,
		Sender:            h.Sender,
		SenderPublicKey:   h.SenderPublicKey,
		MatcherPublicKey:  matcher,
		AssetPair:         pair,
		OrderType:         typ,
		Price:             price,
		Amount:            amount,
		Timestamp:         h.Timestamp,
		Expiration:        expiration,
		MatcherFee:        h.Fee,
		MatcherFeeAssetID: h.FeeAssetID,
	}
}
