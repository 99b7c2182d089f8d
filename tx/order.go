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
	"fmt"

	"github.com/waveskit/waveskit/waves"
)

// OrderType is the direction of an Order.
type OrderType byte

const (
	Buy  OrderType = 0
	Sell OrderType = 1
)

func (o OrderType) String() string {
	if o == Sell {
		return "sell"
	}
	return "buy"
}

func (o OrderType) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *OrderType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return o.Set(s)
}

// Set accepts "buy" or "sell". Set implements flag.Value.
func (o *OrderType) Set(s string) error {
	switch s {
	case "buy":
		*o = Buy
	case "sell":
		*o = Sell
	default:
		return fmt.Errorf("invalid order type: %q", s)
	}
	return nil
}

// Type implements pflag.Value.
func (o *OrderType) Type() string { return "ordertype" }

// AssetPair is the market of an Order. A nil asset is WAVES.
type AssetPair struct {
	AmountAsset *waves.Digest `json:"amountAsset"`
	PriceAsset  *waves.Digest `json:"priceAsset"`
}

// Key returns "<amount asset>-<price asset>", with "WAVES" for nil assets.
func (p AssetPair) Key() string {
	return AssetString(p.AmountAsset) + "-" + AssetString(p.PriceAsset)
}

// AssetString returns the base58 asset id, or "WAVES" for nil.
func AssetString(asset *waves.Digest) string {
	if asset == nil {
		return "WAVES"
	}
	return asset.String()
}

// ParseAsset parses an asset id. The empty string and "WAVES" are nil.
func ParseAsset(s string) (*waves.Digest, error) {
	if s == "" || s == "WAVES" {
		return nil, nil
	}
	d, err := waves.NewDigest(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Order is an exchange request sent to a matcher. It is signed like a
// transaction but never broadcast on its own.
type Order struct {
	Version           byte            `json:"version"`
	ID                *waves.Digest   `json:"id,omitempty"`
	Sender            *waves.Address  `json:"sender,omitempty"`
	SenderPublicKey   waves.PublicKey `json:"senderPublicKey"`
	MatcherPublicKey  waves.PublicKey `json:"matcherPublicKey"`
	AssetPair         AssetPair       `json:"assetPair"`
	OrderType         OrderType       `json:"orderType"`
	Price             int64           `json:"price"`
	Amount            int64           `json:"amount"`
	Timestamp         int64           `json:"timestamp"`
	Expiration        int64           `json:"expiration"`
	MatcherFee        int64           `json:"matcherFee"`
	MatcherFeeAssetID *waves.Digest   `json:"matcherFeeAssetId"`
	Proofs            Proofs          `json:"proofs"`
}

func (o *Order) TxID() *waves.Digest   { return o.ID }
func (o *Order) proofs() *Proofs       { return &o.Proofs }
func (o *Order) setID(id waves.Digest) { o.ID = &id }

// SpendAsset returns the asset the order spends: the amount asset when
// selling, otherwise the price asset.
func (o *Order) SpendAsset() *waves.Digest {
	if o.OrderType == Sell {
		return o.AssetPair.AmountAsset
	}
	return o.AssetPair.PriceAsset
}
