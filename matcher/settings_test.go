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

package matcher_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveskit/waveskit/matcher"
	"github.com/waveskit/waveskit/tx"
	"github.com/waveskit/waveskit/waves"
)

const (
	assetA   = "EdqM52SpXCn5c1uozuvuH5o9Tcr41kYeCWz4Ymu6ngbt"
	assetB   = "5Ba2vn7EcuaYvrhJBtUPZu8BYGFwNKjJwG8xFYskpme4"
	assetC   = "48UTVdfmJax7bRvUZK4PwPYFmRz4PPU4PzJez1e26baD"
	discount = "2fK7rWX3rVFaLu8t1j2CvvqH8AxYdwJesdgxYsVuxsj1"
	noRate   = "5GnM3pbTVyh1KiGxnvUVkXVAuB5Uex9ViW1LNdZNf2v5"
)

var testSettings = fmt.Sprintf(`{
	"rates": {"WAVES": 1, %[1]q: 200, %[2]q: 1, %[4]q: 4},
	"orderFee": {"composite": {
		"default": {"dynamic": {"baseFee": 300000}},
		"custom": {
			"%[1]s-WAVES": {"percent": {"type": "spending", "minFee": 50, "minFeeInWaves": 300000}},
			"%[1]s-WAVES:buy": {"percent": {"type": "spending", "minFee": 25, "minFeeInWaves": 300000}},
			"%[3]s-WAVES": {"percent": {"type": "receiving", "minFee": 50, "minFeeInWaves": 300000}},
			"%[2]s-%[3]s": {"percent": {"type": "spending", "minFee": 50, "minFeeInWaves": 100000}},
			"%[5]s-WAVES": {"percent": {"type": "spending", "minFee": 50, "minFeeInWaves": 300000}}
		},
		"discount": {"assetId": %[4]q, "value": 50},
		"verified": {"assets": [%[2]q], "percent": {"type": "spending", "minFee": 100, "minFeeInWaves": 300000}}
	}}
}`, assetA, assetB, assetC, discount, noRate)

var testDecimals = map[string]int{assetA: 6, assetB: 8, discount: 8}

func decimals(_ context.Context, asset string) (int, error) {
	d, ok := testDecimals[asset]
	if !ok {
		return 0, fmt.Errorf("unknown asset %v", asset)
	}
	return d, nil
}

func order(t *testing.T, amount, price string, typ tx.OrderType,
	qty, px int64) *tx.Order {
	a, err := tx.ParseAsset(amount)
	require.NoError(t, err)
	p, err := tx.ParseAsset(price)
	require.NoError(t, err)
	return &tx.Order{AssetPair: tx.AssetPair{AmountAsset: a, PriceAsset: p},
		OrderType: typ, Amount: qty, Price: px}
}

func TestParseSettings(t *testing.T) {
	s, err := matcher.ParseSettings(context.Background(),
		[]byte(testSettings), decimals)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), s.BaseFee)
	assert.Equal(t, 2.0, s.Rates[assetA])
	assert.Equal(t, 1.0, s.Rates["WAVES"])
	assert.Equal(t, discount, s.DiscountAsset)
	assert.Equal(t, 2.0, s.DiscountRate)
	assert.Equal(t, map[string]float64{
		assetA + "-WAVES":     0.5,
		assetA + "-WAVES:buy": 0.25,
		noRate + "-WAVES":     0.5,
	}, s.Percents)
	assert.True(t, s.Verified[assetB])
	assert.Equal(t, 1.0, s.VerifiedPercent)

	_, err = matcher.ParseSettings(context.Background(), []byte(`{}`),
		decimals)
	assert.Error(t, err)

	_, err = matcher.ParseSettings(context.Background(),
		[]byte(`{"rates": {"WAVES": 1, "`+assetC+`": 1},
		"orderFee": {"composite": {"default": {"dynamic": {"baseFee": 1}}}}}`),
		decimals)
	assert.Error(t, err, "decimals of an unknown rate asset")
}

func TestSettingsFee(t *testing.T) {
	s, err := matcher.ParseSettings(context.Background(),
		[]byte(testSettings), decimals)
	require.NoError(t, err)

	for _, test := range []struct {
		Name     string
		Order    *tx.Order
		Discount bool
		Fee      int64
		Asset    string
	}{{
		Name:  "percent below base fee",
		Order: order(t, assetA, "WAVES", tx.Sell, 1000000, 1),
		Fee:   600000,
		Asset: assetA,
	}, {
		Name:  "percent",
		Order: order(t, assetA, "WAVES", tx.Sell, 4000000, 1),
		Fee:   2000000,
		Asset: assetA,
	}, {
		Name:  "direction rule",
		Order: order(t, assetA, "WAVES", tx.Buy, 1000000, 200000000),
		Fee:   500000,
		Asset: "WAVES",
	}, {
		Name:     "percent with discount",
		Order:    order(t, assetA, "WAVES", tx.Sell, 4000000, 1),
		Discount: true,
		Fee:      2000000,
		Asset:    discount,
	}, {
		Name:  "verified",
		Order: order(t, assetB, "WAVES", tx.Sell, 1000000, 1),
		Fee:   1000000,
		Asset: assetB,
	}, {
		Name:  "base fee",
		Order: order(t, assetB, "WAVES", tx.Buy, 1000000, 1),
		Fee:   300000,
		Asset: "WAVES",
	}, {
		Name:     "base fee with discount",
		Order:    order(t, assetB, "WAVES", tx.Buy, 1000000, 1),
		Discount: true,
		Fee:      600000,
		Asset:    discount,
	}, {
		Name:  "ignored rule type",
		Order: order(t, assetC, "WAVES", tx.Sell, 1000000000, 1),
		Fee:   300000,
		Asset: "WAVES",
	}, {
		Name:  "ignored rule minimum",
		Order: order(t, assetB, assetC, tx.Buy, 1000000000, 1),
		Fee:   300000,
		Asset: "WAVES",
	}} {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			fee, asset, err := s.Fee(test.Order, test.Discount)
			require.NoError(t, err)
			assert.Equal(t, test.Fee, fee)
			assert.Equal(t, test.Asset, tx.AssetString(asset))
		})
	}

	_, _, err = s.Fee(order(t, noRate, "WAVES", tx.Sell, 1, 1), false)
	assert.Error(t, err)
}

func TestSettingsNoDiscount(t *testing.T) {
	s, err := matcher.ParseSettings(context.Background(), []byte(`{
		"rates": {"WAVES": 1},
		"orderFee": {"composite": {"default": {"dynamic": {"baseFee": 300000}}}}
	}`), decimals)
	require.NoError(t, err)
	fee, asset, err := s.Fee(order(t, "WAVES", assetA, tx.Sell, 1, 1), true)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), fee)
	assert.Nil(t, asset)
}

func TestOrderAssetKey(t *testing.T) {
	o := order(t, assetA, "WAVES", tx.Buy, 1, 1)
	assert.Equal(t, assetA+"-WAVES", o.AssetPair.Key())
	assert.Equal(t, (*waves.Digest)(nil), o.SpendAsset())
}
