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
	"bytes"
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/waveskit/waveskit/tx"
	"github.com/waveskit/waveskit/waves"
)

const (
	testPrivateKey = "7VLYNhmuvAo5Us4mNGxWpzhMSdSSdEbEPFUDKSnA6eBv"
	testAddress    = "3N9Q2sdkkhAnbR4XCveuRaSMLiVtvebZ3wp"
	testTimestamp  = 1600000000000
)

var testAsset = waves.Digest{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32}

func testIdentity(t *testing.T) *waves.Identity {
	id := waves.NewIdentity(waves.TestNet)
	require.NoError(t, id.SetPrivateKeyBase58(testPrivateKey))
	return id
}

func testBuilder(t *testing.T) (*tx.Builder, *waves.Identity) {
	id := testIdentity(t)
	b, err := tx.NewBuilder(id)
	require.NoError(t, err)
	b.Now = func() time.Time { return time.UnixMilli(testTimestamp) }
	return b, id
}

func testRecipient(t *testing.T) waves.Recipient {
	r, err := waves.ParseRecipient(waves.TestNet, testAddress)
	require.NoError(t, err)
	return r
}

func be64(v int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(v))
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestBuilderDefaults(t *testing.T) {
	b, id := testBuilder(t)
	pub, _ := id.PublicKey()
	adr, _ := id.Address()

	transfer := b.Transfer(testRecipient(t), 1, nil)
	assert := assert.New(t)
	assert.Equal(tx.TypeTransfer, transfer.Type)
	assert.Equal(byte(2), transfer.Version)
	assert.Equal(int64(tx.FeeTransfer), transfer.Fee)
	assert.Equal(int64(testTimestamp), transfer.Timestamp)
	assert.Equal(pub, transfer.SenderPublicKey)
	assert.Equal(adr, *transfer.Sender)
	assert.Equal(waves.TestNet, transfer.ChainID)

	other := waves.NewIdentityFromSeed(waves.TestNet, "other")
	otherPub, _ := other.PublicKey()
	otherAdr, _ := other.Address()
	lease := b.Lease(testRecipient(t), 5,
		tx.WithFee(7), tx.WithTimestamp(9), tx.WithSenderPublicKey(otherPub))
	assert.Equal(int64(7), lease.Fee)
	assert.Equal(int64(9), lease.Timestamp)
	assert.Equal(otherPub, lease.SenderPublicKey)
	assert.Equal(otherAdr, *lease.Sender)

	for _, test := range []struct {
		Name    string
		Header  tx.Header
		Version byte
		Fee     int64
	}{
		{"issue", b.Issue("a", "b", 1, 0, false, nil).Header, 2, tx.FeeIssue},
		{"reissue", b.Reissue(testAsset, 1, true).Header, 2, tx.FeeReissue},
		{"burn", b.Burn(testAsset, 1).Header, 2, tx.FeeBurn},
		{"lease cancel", b.LeaseCancel(testAsset).Header, 2, tx.FeeLeaseCancel},
		{"alias", b.CreateAlias("alice").Header, 2, tx.FeeAlias},
		{"set script", b.SetScript(nil).Header, 1, tx.FeeSetScript},
		{"sponsorship", b.Sponsorship(testAsset, 1).Header, 1, tx.FeeSponsorship},
		{"set asset script", b.SetAssetScript(testAsset, []byte{1}).Header, 1,
			tx.FeeSetAssetScript},
		{"invoke", b.InvokeScript(testRecipient(t), nil, nil).Header, 1,
			tx.FeeInvokeScript},
		{"update asset info", b.UpdateAssetInfo(testAsset, "n", "d").Header, 1,
			tx.FeeUpdateAssetInfo},
	} {
		assert.Equal(test.Version, test.Header.Version, test.Name)
		assert.Equal(test.Fee, test.Header.Fee, test.Name)
	}

	order := b.Order(otherPub, tx.AssetPair{AmountAsset: &testAsset},
		tx.Sell, 10, 20, 0)
	assert.Equal(byte(3), order.Version)
	assert.Equal(int64(tx.FeeMatcher), order.MatcherFee)
	assert.Equal(int64(testTimestamp)+tx.OrderLifetime.Milliseconds(),
		order.Expiration)
}

func TestMassTransferFee(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(int64(200000), tx.MassTransferFee(1))
	assert.Equal(int64(200000), tx.MassTransferFee(2))
	assert.Equal(int64(300000), tx.MassTransferFee(3))

	b, _ := testBuilder(t)
	r := testRecipient(t)
	mt, err := b.MassTransfer([]waves.Recipient{r, r, r}, []int64{1, 2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(int64(300000), mt.Fee)
	assert.Len(mt.Transfers, 3)

	_, err = b.MassTransfer([]waves.Recipient{r}, []int64{1, 2}, nil)
	assert.ErrorIs(err, tx.ErrInvalid)
}

func TestDataFee(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(int64(100000), tx.DataFee(1))
	assert.Equal(int64(100000), tx.DataFee(1024))
	assert.Equal(int64(200000), tx.DataFee(1025))

	b, _ := testBuilder(t)
	small, err := b.Data([]tx.DataEntry{{Key: "k", Value: tx.IntegerValue(1)}})
	require.NoError(t, err)
	assert.Equal(int64(100000), small.Fee)

	big, err := b.Data([]tx.DataEntry{{Key: "k",
		Value: tx.BinaryValue(make([]byte, 1500))}})
	require.NoError(t, err)
	assert.Equal(int64(200000), big.Fee)

	fixed, err := b.Data(big.Data, tx.WithFee(5))
	require.NoError(t, err)
	assert.Equal(int64(5), fixed.Fee)
}

func TestEncodeTransfer(t *testing.T) {
	b, id := testBuilder(t)
	pub, _ := id.PublicKey()
	adr, _ := waves.ParseAddress(testAddress)
	transfer := b.Transfer(testRecipient(t), 100, &testAsset,
		tx.WithAttachment([]byte("hi")))

	body, err := tx.Body(transfer)
	require.NoError(t, err)
	want := concat([]byte{4, 2}, pub[:],
		[]byte{1}, testAsset[:],
		[]byte{0},
		be64(testTimestamp), be64(100), be64(tx.FeeTransfer),
		adr[:],
		[]byte{0, 2, 'h', 'i'})
	assert.Equal(t, want, body)
}

func TestEncodeCreateAlias(t *testing.T) {
	b, id := testBuilder(t)
	pub, _ := id.PublicKey()
	body, err := tx.Body(b.CreateAlias("alice"))
	require.NoError(t, err)
	want := concat([]byte{10, 2}, pub[:],
		[]byte{0, 9, 2, 'T', 0, 5}, []byte("alice"),
		be64(tx.FeeAlias), be64(testTimestamp))
	assert.Equal(t, want, body)
}

func TestEncodeData(t *testing.T) {
	b, id := testBuilder(t)
	pub, _ := id.PublicKey()
	data, err := b.Data([]tx.DataEntry{
		{Key: "i", Value: tx.IntegerValue(-1)},
		{Key: "b", Value: tx.BooleanValue(true)},
		{Key: "x", Value: tx.BinaryValue{0xaa}},
		{Key: "s", Value: tx.StringValue("str")},
	}, tx.WithFee(tx.FeeTransfer))
	require.NoError(t, err)
	body, err := tx.Body(data)
	require.NoError(t, err)
	want := concat([]byte{12, 1}, pub[:], []byte{0, 4},
		[]byte{0, 1, 'i', 0}, be64(-1),
		[]byte{0, 1, 'b', 1, 1},
		[]byte{0, 1, 'x', 2, 0, 1, 0xaa},
		[]byte{0, 1, 's', 3, 0, 3, 's', 't', 'r'},
		be64(testTimestamp), be64(tx.FeeTransfer))
	assert.Equal(t, want, body)

	data.Data = append(data.Data, tx.DataEntry{Key: "nil"})
	_, err = tx.Body(data)
	assert.ErrorIs(t, err, tx.ErrInvalid)
}

func TestEncodeOrder(t *testing.T) {
	b, id := testBuilder(t)
	pub, _ := id.PublicKey()
	matcher := waves.PublicKey{9}
	order := b.Order(matcher, tx.AssetPair{PriceAsset: &testAsset}, tx.Buy,
		10, 20, 30)
	body, err := tx.Body(order)
	require.NoError(t, err)
	want := concat([]byte{3}, pub[:], matcher[:],
		[]byte{0}, []byte{1}, testAsset[:], []byte{0},
		be64(20), be64(10), be64(testTimestamp), be64(30),
		be64(tx.FeeMatcher), []byte{0})
	assert.Equal(t, want, body)
}

func TestFunctionCallBytes(t *testing.T) {
	assert := assert.New(t)
	data, err := tx.FunctionCallBytes(nil)
	assert.NoError(err)
	assert.Equal([]byte{0}, data)

	data, err = tx.FunctionCallBytes(&tx.FunctionCall{Function: "f",
		Args: []tx.Arg{
			tx.IntegerArg(1),
			tx.BinaryArg{0xbb},
			tx.StringArg("s"),
			tx.BooleanArg(true),
			tx.BooleanArg(false),
			tx.ListArg{tx.IntegerArg(2), tx.StringArg("t")},
		}})
	assert.NoError(err)
	want := concat([]byte{1, 9, 1, 0, 0, 0, 1, 'f', 0, 0, 0, 6},
		[]byte{0}, be64(1),
		[]byte{1, 0, 0, 0, 1, 0xbb},
		[]byte{2, 0, 0, 0, 1, 's'},
		[]byte{6},
		[]byte{7},
		[]byte{11, 0, 0, 0, 2, 0}, be64(2), []byte{2, 0, 0, 0, 1, 't'})
	assert.Equal(want, data)

	_, err = tx.FunctionCallBytes(&tx.FunctionCall{Function: "f",
		Args: []tx.Arg{nil}})
	assert.ErrorIs(err, tx.ErrInvalid)
}

func TestEncodeInvokeScriptV1(t *testing.T) {
	b, id := testBuilder(t)
	pub, _ := id.PublicKey()
	adr, _ := waves.ParseAddress(testAddress)
	invoke := b.InvokeScript(testRecipient(t), nil, []tx.Payment{
		{Amount: 5},
		{Amount: 6, AssetID: &testAsset},
	})
	body, err := tx.Body(invoke)
	require.NoError(t, err)
	want := concat([]byte{16, 1, 'T'}, pub[:], adr[:], []byte{0},
		[]byte{0, 2},
		[]byte{0, 9}, be64(5), []byte{0},
		[]byte{0, 41}, be64(6), []byte{1}, testAsset[:],
		be64(tx.FeeInvokeScript), []byte{0}, be64(testTimestamp))
	assert.Equal(t, want, body)
}

// fields decodes one level of a protobuf message.
func fields(t *testing.T, data []byte) map[protowire.Number][][]byte {
	out := make(map[protowire.Number][][]byte)
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		require.Greater(t, n, 0)
		data = data[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			require.Greater(t, n, 0)
			out[num] = append(out[num], protowire.AppendVarint(nil, v))
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			require.Greater(t, n, 0)
			out[num] = append(out[num], v)
			data = data[n:]
		default:
			t.Fatalf("unexpected wire type %v", typ)
		}
	}
	return out
}

func varint(v uint64) []byte { return protowire.AppendVarint(nil, v) }

func TestEncodeProto(t *testing.T) {
	b, id := testBuilder(t)
	pub, _ := id.PublicKey()
	adr, _ := waves.ParseAddress(testAddress)

	t.Run("InvokeScriptV2", func(t *testing.T) {
		assert := assert.New(t)
		call := &tx.FunctionCall{Function: "f"}
		invoke := b.InvokeScript(testRecipient(t), call,
			[]tx.Payment{{Amount: 5, AssetID: &testAsset}},
			tx.WithVersion(2))
		body, err := tx.Body(invoke)
		require.NoError(t, err)

		top := fields(t, body)
		assert.Equal([][]byte{varint('T')}, top[1])
		assert.Equal([][]byte{pub[:]}, top[2])
		assert.Equal([][]byte{varint(testTimestamp)}, top[4])
		assert.Equal([][]byte{varint(2)}, top[5])
		fee := fields(t, top[3][0])
		assert.Nil(fee[1])
		assert.Equal([][]byte{varint(tx.FeeInvokeScript)}, fee[2])

		require.Len(t, top[116], 1)
		data := fields(t, top[116][0])
		dApp := fields(t, data[1][0])
		assert.Equal([][]byte{adr.PublicKeyHash()}, dApp[1])
		callBytes, _ := tx.FunctionCallBytes(call)
		assert.Equal([][]byte{callBytes}, data[2])
		require.Len(t, data[3], 1)
		payment := fields(t, data[3][0])
		assert.Equal([][]byte{testAsset[:]}, payment[1])
		assert.Equal([][]byte{varint(5)}, payment[2])
	})
	t.Run("UpdateAssetInfo", func(t *testing.T) {
		assert := assert.New(t)
		update := b.UpdateAssetInfo(testAsset, "name", "desc",
			tx.WithFeeAsset(testAsset))
		body, err := tx.Body(update)
		require.NoError(t, err)
		top := fields(t, body)
		fee := fields(t, top[3][0])
		assert.Equal([][]byte{testAsset[:]}, fee[1])
		require.Len(t, top[117], 1)
		data := fields(t, top[117][0])
		assert.Equal([][]byte{testAsset[:]}, data[1])
		assert.Equal([][]byte{[]byte("name")}, data[2])
		assert.Equal([][]byte{[]byte("desc")}, data[3])
	})
}

type recordingProto struct{ calls int }

func (p *recordingProto) MarshalInvokeScript(*tx.InvokeScript, []byte) ([]byte, error) {
	p.calls++
	return []byte("invoke"), nil
}
func (p *recordingProto) MarshalUpdateAssetInfo(*tx.UpdateAssetInfo) ([]byte, error) {
	p.calls++
	return []byte("update"), nil
}

func TestEncoderProtoMarshaler(t *testing.T) {
	b, _ := testBuilder(t)
	p := &recordingProto{}
	e := tx.Encoder{Proto: p}
	body, err := e.Body(b.UpdateAssetInfo(testAsset, "n", "d"))
	require.NoError(t, err)
	assert.Equal(t, []byte("update"), body)
	body, err = e.Body(b.InvokeScript(testRecipient(t), nil, nil,
		tx.WithVersion(2)))
	require.NoError(t, err)
	assert.Equal(t, []byte("invoke"), body)
	_, err = e.Body(b.InvokeScript(testRecipient(t), nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestEncodeUnsupported(t *testing.T) {
	b, _ := testBuilder(t)
	_, err := tx.Body(&tx.Header{Type: 99})
	assert.ErrorIs(t, err, tx.ErrUnsupportedKind)

	transfer := b.Transfer(testRecipient(t), 1, nil, tx.WithVersion(3))
	_, err = tx.Body(transfer)
	assert.ErrorIs(t, err, tx.ErrUnsupportedKind)

	order := b.Order(waves.PublicKey{}, tx.AssetPair{}, tx.Buy, 1, 1, 0,
		tx.WithVersion(1))
	_, err = tx.Body(order)
	assert.ErrorIs(t, err, tx.ErrUnsupportedKind)

	_, err = tx.Unmarshal([]byte(`{"type":7}`))
	assert.ErrorIs(t, err, tx.ErrUnsupportedKind)
}

func TestEncodeIdempotent(t *testing.T) {
	b, _ := testBuilder(t)
	r := testRecipient(t)
	mt, _ := b.MassTransfer([]waves.Recipient{r}, []int64{1}, nil)
	data, _ := b.Data([]tx.DataEntry{{Key: "k", Value: tx.StringValue("v")}})
	for _, t1 := range []tx.Transaction{
		b.Issue("name", "desc", 1000, 2, true, []byte{1, 2, 3}),
		b.Transfer(r, 1, nil),
		b.Reissue(testAsset, 1, false),
		b.Burn(testAsset, 1),
		b.Lease(r, 1),
		b.LeaseCancel(testAsset),
		b.CreateAlias("alias"),
		mt,
		data,
		b.SetScript([]byte{1}),
		b.Sponsorship(testAsset, 1),
		b.SetAssetScript(testAsset, []byte{1}),
		b.InvokeScript(r, &tx.FunctionCall{Function: "f"}, nil),
		b.InvokeScript(r, nil, nil, tx.WithVersion(2)),
		b.UpdateAssetInfo(testAsset, "n", "d"),
		b.Order(waves.PublicKey{}, tx.AssetPair{}, tx.Buy, 1, 1, 0),
	} {
		before, err := json.Marshal(t1)
		require.NoError(t, err)
		body1, err := tx.Body(t1)
		require.NoError(t, err)
		body2, err := tx.Body(t1)
		require.NoError(t, err)
		assert.Equal(t, body1, body2)
		after, _ := json.Marshal(t1)
		assert.JSONEq(t, string(before), string(after))

		id, err := tx.ID(t1)
		require.NoError(t, err)
		assert.Equal(t, waves.Blake2b256(body1), id)
	}
}

func TestSign(t *testing.T) {
	require := require.New(t)
	b, id := testBuilder(t)
	pub, _ := id.PublicKey()
	transfer := b.Transfer(testRecipient(t), 1, nil)
	body, _ := tx.Body(transfer)

	require.NoError(tx.Sign(id, transfer))
	require.NotNil(transfer.ID)
	require.Equal(waves.Blake2b256(body), *transfer.ID)
	require.Len(transfer.Proofs, 1)
	require.True(waves.Verify(pub, body, transfer.Proofs[0]))

	cosigner := waves.NewIdentityFromSeed(waves.TestNet, "cosigner")
	cosignerPub, _ := cosigner.PublicKey()
	require.NoError(tx.SignAt(cosigner, transfer, 3))
	require.Len(transfer.Proofs, 4)
	require.Nil(transfer.Proofs.Get(1))
	require.Nil(transfer.Proofs.Get(2))
	require.True(waves.Verify(cosignerPub, body, transfer.Proofs.Get(3)))
	require.True(waves.Verify(pub, body, transfer.Proofs.Get(0)))

	// Replacing a proof keeps the others in place.
	require.NoError(tx.SignAt(cosigner, transfer, 0))
	require.True(waves.Verify(cosignerPub, body, transfer.Proofs.Get(0)))
	require.Len(transfer.Proofs, 4)

	pk := waves.NewIdentity(waves.TestNet)
	pk.SetPublicKey(pub)
	require.ErrorIs(tx.Sign(pk, b.Burn(testAsset, 1)),
		waves.ErrSigningUnavailable)
}

func TestSignOrder(t *testing.T) {
	b, id := testBuilder(t)
	pub, _ := id.PublicKey()
	order := b.Order(waves.PublicKey{1}, tx.AssetPair{}, tx.Sell, 1, 1, 0)
	require.NoError(t, tx.Sign(id, order))
	body, _ := tx.Body(order)
	assert.Equal(t, waves.Blake2b256(body), *order.TxID())
	assert.True(t, waves.Verify(pub, body, order.Proofs.Get(0)))
}

func TestJSON(t *testing.T) {
	b, id := testBuilder(t)
	transfer := b.Transfer(testRecipient(t), 12, &testAsset,
		tx.WithAttachment([]byte("memo")))
	require.NoError(t, tx.Sign(id, transfer))

	data, err := json.Marshal(transfer)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":4`)
	assert.Contains(t, string(data), `"recipient":"`+testAddress+`"`)
	assert.Contains(t, string(data), `"attachment":"`+
		waves.Base58Encode([]byte("memo"))+`"`)

	decoded, err := tx.Unmarshal(data)
	require.NoError(t, err)
	require.IsType(t, &tx.Transfer{}, decoded)
	assert.Equal(t, transfer, decoded)

	invoke := b.InvokeScript(testRecipient(t), &tx.FunctionCall{
		Function: "deposit",
		Args: []tx.Arg{tx.IntegerArg(1), tx.BinaryArg{1, 2},
			tx.ListArg{tx.StringArg("a"), tx.BooleanArg(true)}},
	}, []tx.Payment{{Amount: 1}})
	data, err = json.Marshal(invoke)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"proofs":[]`)
	invoke.Proofs = tx.Proofs{}
	assert.Contains(t, string(data), `{"type":"binary","value":"base64:AQI="}`)
	decoded, err = tx.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, invoke, decoded)

	entries, err := b.Data([]tx.DataEntry{
		{Key: "b", Value: tx.BinaryValue{0xff}},
		{Key: "s", Value: tx.StringValue("v")}})
	require.NoError(t, err)
	require.NoError(t, tx.Sign(id, entries))
	data, err = json.Marshal(entries)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"type":"binary","value":"base64:/w=="`))
	decoded, err = tx.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, entries, decoded)
}
