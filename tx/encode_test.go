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

package tx_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveskit/waveskit/tx"
	"github.com/waveskit/waveskit/waves"
)

// The sender key is 32 bytes of 0x11 so the vectors can be checked by
// hand.
func goldenHeader(typ tx.Type, version byte, fee int64) tx.Header {
	var pub waves.PublicKey
	for i := range pub {
		pub[i] = 0x11
	}
	return tx.Header{Type: typ, Version: version, ChainID: waves.TestNet,
		SenderPublicKey: pub, Fee: fee, Timestamp: testTimestamp}
}

func feeAsset(h tx.Header) tx.Header {
	h.FeeAssetID = &testAsset
	return h
}

func TestEncodeGolden(t *testing.T) {
	alice := waves.NewAliasRecipient(waves.TestNet, "alice")
	var leaseID waves.Digest
	for i := range leaseID {
		leaseID[i] = 0x22
	}

	for _, test := range []struct {
		Name string
		Tx   tx.Transaction
		Hex  string
	}{{
		"Issue",
		&tx.Issue{Header: goldenHeader(tx.TypeIssue, 2, tx.FeeIssue),
			Name: "Token", Description: "desc", Quantity: 1000000,
			Decimals: 2, Reissuable: true, Script: []byte{1, 2, 3}},
		"0302541111111111111111111111111111111111111111111111111111111111" +
			"1111110005546f6b656e00046465736300000000000f424002010000000005f5" +
			"e10000000174876e8000010003010203",
	}, {
		"Reissue",
		&tx.Reissue{Header: goldenHeader(tx.TypeReissue, 2, tx.FeeReissue),
			AssetID: testAsset, Quantity: 500},
		"0502541111111111111111111111111111111111111111111111111111111111" +
			"1111110102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d" +
			"1e1f2000000000000001f40000000000000186a000000174876e8000",
	}, {
		"Burn",
		&tx.Burn{Header: goldenHeader(tx.TypeBurn, 2, tx.FeeBurn),
			AssetID: testAsset, Amount: 7},
		"0602541111111111111111111111111111111111111111111111111111111111" +
			"1111110102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d" +
			"1e1f20000000000000000700000000000186a000000174876e8000",
	}, {
		"Lease",
		&tx.Lease{Header: goldenHeader(tx.TypeLease, 2, tx.FeeLease),
			Recipient: alice, Amount: 123456},
		"0802001111111111111111111111111111111111111111111111111111111111" +
			"11111102540005616c696365000000000001e24000000000000186a000000174" +
			"876e8000",
	}, {
		"LeaseCancel",
		&tx.LeaseCancel{
			Header:  goldenHeader(tx.TypeLeaseCancel, 2, tx.FeeLeaseCancel),
			LeaseID: leaseID},
		"0902541111111111111111111111111111111111111111111111111111111111" +
			"11111100000000000186a000000174876e800022222222222222222222222222" +
			"22222222222222222222222222222222222222",
	}, {
		"MassTransfer",
		&tx.MassTransfer{
			Header:  goldenHeader(tx.TypeMassTransfer, 1, 200000),
			AssetID: &testAsset,
			Transfers: []tx.MassTransferItem{
				{Recipient: testRecipient(t), Amount: 10},
				{Recipient: alice, Amount: 20},
			},
			Attachment: []byte("hi")},
		"0b01111111111111111111111111111111111111111111111111111111111111" +
			"1111010102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d" +
			"1e1f2000020154d5b39d62972a2f197db5747f89521675dba29e5db46bacb300" +
			"0000000000000a02540005616c696365000000000000001400000174876e8000" +
			"0000000000030d4000026869",
	}, {
		"SetScriptRemove",
		&tx.SetScript{Header: goldenHeader(tx.TypeSetScript, 1, tx.FeeSetScript)},
		"0d01541111111111111111111111111111111111111111111111111111111111" +
			"1111110000000000000f424000000174876e8000",
	}, {
		"Sponsorship",
		&tx.Sponsorship{
			Header:  goldenHeader(tx.TypeSponsorship, 1, tx.FeeSponsorship),
			AssetID: testAsset, MinSponsoredAssetFee: 1000},
		"0e01111111111111111111111111111111111111111111111111111111111111" +
			"11110102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e" +
			"1f2000000000000003e80000000005f5e10000000174876e8000",
	}, {
		"SetAssetScript",
		&tx.SetAssetScript{
			Header:  goldenHeader(tx.TypeSetAssetScript, 1, tx.FeeSetAssetScript),
			AssetID: testAsset, Script: []byte{0xde, 0xad}},
		"0f01541111111111111111111111111111111111111111111111111111111111" +
			"1111110102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d" +
			"1e1f200000000005f5e10000000174876e8000010002dead",
	}, {
		"InvokeScriptV2",
		&tx.InvokeScript{
			Header: goldenHeader(tx.TypeInvokeScript, 2, tx.FeeInvokeScript),
			DApp:   testRecipient(t),
			Call: &tx.FunctionCall{Function: "f",
				Args: []tx.Arg{tx.IntegerArg(1)}},
			Payments: []tx.Payment{{Amount: 5, AssetID: &testAsset}}},
		"0854122011111111111111111111111111111111111111111111111111111111" +
			"111111111a0410a0c21e208080babbc82e2802a207550a160a14d5b39d62972a" +
			"2f197db5747f89521675dba29e5d121501090100000001660000000100000000" +
			"00000000011a240a200102030405060708090a0b0c0d0e0f1011121314151617" +
			"18191a1b1c1d1e1f201005",
	}, {
		"InvokeScriptV2Alias",
		&tx.InvokeScript{
			Header: goldenHeader(tx.TypeInvokeScript, 2, tx.FeeInvokeScript),
			DApp:   alice},
		"0854122011111111111111111111111111111111111111111111111111111111" +
			"111111111a0410a0c21e208080babbc82e2802a2070c0a071205616c69636512" +
			"0100",
	}, {
		"UpdateAssetInfo",
		&tx.UpdateAssetInfo{Header: feeAsset(
			goldenHeader(tx.TypeUpdateAssetInfo, 1, tx.FeeUpdateAssetInfo)),
			AssetID: testAsset, Name: "name", Description: "desc"},
		"0854122011111111111111111111111111111111111111111111111111111111" +
			"111111111a260a200102030405060708090a0b0c0d0e0f101112131415161718" +
			"191a1b1c1d1e1f2010a08d06208080babbc82e2801aa072e0a20010203040506" +
			"0708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f2012046e616d65" +
			"1a0464657363",
	}} {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			body, err := tx.Body(test.Tx)
			require.NoError(t, err)
			assert.Equal(t, test.Hex, hex.EncodeToString(body))
		})
	}
}
