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

package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/waveskit/waveskit/tx"
	"github.com/waveskit/waveskit/waves"
)

const (
	wavesDecimals = 8

	// percentSpending is the only type of percent fee that is
	// understood.
	percentSpending = "spending"
)

type percentJSON struct {
	Type          string  `json:"type"`
	MinFee        float64 `json:"minFee"`
	MinFeeInWaves int64   `json:"minFeeInWaves"`
}

type settingsJSON struct {
	Rates    map[string]float64 `json:"rates"`
	OrderFee struct {
		Composite struct {
			Default struct {
				Dynamic struct {
					BaseFee *int64 `json:"baseFee"`
				} `json:"dynamic"`
			} `json:"default"`
			Custom map[string]struct {
				Percent *percentJSON `json:"percent"`
			} `json:"custom"`
			Discount *struct {
				AssetID string  `json:"assetId"`
				Value   float64 `json:"value"`
			} `json:"discount"`
			Verified *struct {
				Assets  []string     `json:"assets"`
				Percent *percentJSON `json:"percent"`
			} `json:"verified"`
		} `json:"composite"`
	} `json:"orderFee"`
}

// Settings are the fee rules of a matcher.
type Settings struct {
	// BaseFee is the fee, in WAVES, of orders without a percent rule.
	BaseFee int64

	// Rates maps an asset id, or "WAVES", to the amount of the asset
	// worth one WAVES, both in their smallest units.
	Rates map[string]float64

	// DiscountAsset pays fees at DiscountRate. It is "" when the
	// matcher offers no discount.
	DiscountAsset string
	DiscountRate  float64

	// Percents maps "<amount asset>-<price asset>" or
	// "<amount asset>-<price asset>:<buy|sell>" to the minimal fee as a
	// fraction of the spent amount.
	Percents map[string]float64

	// Verified lists the assets whose spending uses VerifiedPercent when
	// their pair has no rule of its own.
	Verified        map[string]bool
	VerifiedPercent float64
}

// ParseSettings parses a /matcher/settings document. decimals returns the
// decimals of an asset id; it is not called for WAVES.
//
// Percent rules of another type than spending, or whose minimal fee in
// WAVES differs from the base fee, are ignored.
func ParseSettings(ctx context.Context, data []byte,
	decimals func(context.Context, string) (int, error)) (*Settings, error) {
	var raw settingsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("matcher settings: %w", err)
	}
	composite := raw.OrderFee.Composite
	if raw.Rates == nil || composite.Default.Dynamic.BaseFee == nil {
		return nil, fmt.Errorf("matcher settings: missing rates or base fee")
	}
	s := Settings{BaseFee: *composite.Default.Dynamic.BaseFee,
		Rates:    make(map[string]float64, len(raw.Rates)),
		Percents: make(map[string]float64, len(composite.Custom)),
		Verified: make(map[string]bool),
	}

	// Sorted so that decimals are looked up in a stable order.
	assets := make([]string, 0, len(raw.Rates))
	for asset := range raw.Rates {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	for _, asset := range assets {
		d := wavesDecimals
		if asset != "WAVES" {
			var err error
			if d, err = decimals(ctx, asset); err != nil {
				return nil, fmt.Errorf("matcher settings: rate %v: %w",
					asset, err)
			}
		}
		s.Rates[asset] = raw.Rates[asset] / math.Pow10(wavesDecimals-d)
	}

	if discount := composite.Discount; discount != nil &&
		discount.AssetID != "" {
		rate, ok := s.Rates[discount.AssetID]
		if !ok {
			return nil, fmt.Errorf(
				"matcher settings: no rate for discount asset %v",
				discount.AssetID)
		}
		s.DiscountAsset = discount.AssetID
		s.DiscountRate = rate * (100 - discount.Value) / 100
	}

	for key, custom := range composite.Custom {
		if pct, ok := s.percent(custom.Percent); ok {
			s.Percents[key] = pct
		}
	}
	if verified := composite.Verified; verified != nil {
		if pct, ok := s.percent(verified.Percent); ok {
			for _, asset := range verified.Assets {
				s.Verified[asset] = true
			}
			s.VerifiedPercent = pct
		}
	}
	return &s, nil
}

func (s *Settings) percent(p *percentJSON) (float64, bool) {
	if p == nil || p.Type != percentSpending || p.MinFeeInWaves != s.BaseFee {
		return 0, false
	}
	return p.MinFee / 100, true
}

// minFee returns the most specific percent rule for an order spending
// spent: pair and direction, then pair, then the verified tier.
func (s *Settings) minFee(pair tx.AssetPair, typ tx.OrderType,
	spent string) (float64, bool) {
	key := pair.Key()
	if pct, ok := s.Percents[key+":"+typ.String()]; ok {
		return pct, true
	}
	if pct, ok := s.Percents[key]; ok {
		return pct, true
	}
	if s.Verified[spent] {
		return s.VerifiedPercent, true
	}
	return 0, false
}

// Fee returns the matcher fee of o and the asset it is paid in, nil for
// WAVES. With discount the fee is paid in the discount asset, if the
// matcher has one.
func (s *Settings) Fee(o *tx.Order, discount bool) (int64, *waves.Digest,
	error) {
	discount = discount && s.DiscountAsset != ""
	spent := tx.AssetString(o.SpendAsset())

	fee := float64(s.BaseFee)
	rate := 1.0
	asset := ""
	if pct, ok := s.minFee(o.AssetPair, o.OrderType, spent); ok {
		spentRate, ok := s.Rates[spent]
		if !ok || spentRate <= 0 {
			return 0, nil, fmt.Errorf("no rate for %v", spent)
		}
		amount := float64(o.Amount)
		if o.OrderType == tx.Buy {
			amount = amount * float64(o.Price) / 1e8
		}
		if f := amount * pct / spentRate; f > fee {
			fee = f
		}
		rate, asset = spentRate, spent
	}
	if discount {
		rate, asset = s.DiscountRate, s.DiscountAsset
	}
	feeAsset, err := tx.ParseAsset(asset)
	if err != nil {
		return 0, nil, err
	}
	return int64(math.Ceil(fee * rate)), feeAsset, nil
}
