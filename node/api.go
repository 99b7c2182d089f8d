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

package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/waveskit/waveskit/tx"
	"github.com/waveskit/waveskit/waves"
)

const (
	pathHeight       = "/blocks/height"
	pathBroadcast    = "/transactions/broadcast"
	pathValidate     = "/debug/validate"
	pathCompile      = "/utils/script/compile"
	pathTime         = "/utils/time"
	pathCalculateFee = "/transactions/calculateFee"

	// NFTPageSize is the number of NFTs requested per page.
	NFTPageSize = 100
)

func (f *Fetcher) getJSON(ctx context.Context, path string, v interface{},
	ignore ...int) error {
	data, err := f.Get(ctx, path, ignore...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}
	return nil
}

func (f *Fetcher) postJSON(ctx context.Context, path string,
	in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	data, err := f.Post(ctx, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}
	return nil
}

// Height returns the current height of the chain.
func (f *Fetcher) Height(ctx context.Context) (int64, error) {
	data, err := f.Get(ctx, pathHeight)
	if err != nil {
		return 0, err
	}
	return decodeHeight(data)
}

// Block is a block or block header.
type Block struct {
	Version          int               `json:"version"`
	Height           int64             `json:"height"`
	Timestamp        int64             `json:"timestamp"`
	Signature        waves.Bytes       `json:"signature"`
	Reference        waves.Bytes       `json:"reference"`
	Generator        *waves.Address    `json:"generator"`
	TransactionCount int               `json:"transactionCount"`
	Transactions     []json.RawMessage `json:"transactions,omitempty"`
}

// BlockAt returns the block at height, or the last block if height is 0.
// With headersOnly the transactions are omitted.
func (f *Fetcher) BlockAt(ctx context.Context, height int64,
	headersOnly bool) (*Block, error) {
	path := "/blocks"
	if headersOnly {
		path += "/headers"
	}
	if height > 0 {
		path += "/at/" + strconv.FormatInt(height, 10)
	} else {
		path += "/last"
	}
	var b Block
	if err := f.getJSON(ctx, path, &b); err != nil {
		return nil, err
	}
	if len(b.Signature) == 0 || len(b.Reference) == 0 {
		return nil, fmt.Errorf("%v: missing signature or reference", path)
	}
	return &b, nil
}

// StatusSucceeded is the application status of a transaction whose
// execution succeeded.
const StatusSucceeded = "succeeded"

// TxInfo is a transaction as returned by the node. Raw holds the complete
// compacted JSON.
type TxInfo struct {
	ID                waves.Digest `json:"id"`
	Type              tx.Type      `json:"type"`
	Height            int64        `json:"height"`
	ApplicationStatus string       `json:"applicationStatus"`

	Raw json.RawMessage `json:"-"`
}

func decodeTxInfo(data []byte) (*TxInfo, error) {
	var info TxInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	var raw bytes.Buffer
	if err := json.Compact(&raw, data); err != nil {
		return nil, err
	}
	info.Raw = raw.Bytes()
	return &info, nil
}

// Failed reports whether the transaction was applied with a failed script
// execution. Nodes that predate application statuses never report failure.
func (info *TxInfo) Failed() bool {
	return info.ApplicationStatus != "" &&
		info.ApplicationStatus != StatusSucceeded
}

// Transaction decodes Raw into its kind.
func (info *TxInfo) Transaction() (tx.Transaction, error) {
	return tx.Unmarshal(info.Raw)
}

// TransactionInfo looks up id among confirmed transactions, or among
// unconfirmed transactions in the UTX pool. An unknown id returns
// ErrNotFound.
func (f *Fetcher) TransactionInfo(ctx context.Context, id waves.Digest,
	unconfirmed bool) (*TxInfo, error) {
	path := "/transactions/info/" + id.String()
	if unconfirmed {
		path = "/transactions/unconfirmed/info/" + id.String()
	}
	data, err := f.Get(ctx, path, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	info, err := decodeTxInfo(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return info, nil
}

// Broadcast submits a signed transaction.
func (f *Fetcher) Broadcast(ctx context.Context,
	t tx.Transaction) (*TxInfo, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	data, err := f.Post(ctx, pathBroadcast, body)
	if err != nil {
		return nil, err
	}
	info, err := decodeTxInfo(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", pathBroadcast, err)
	}
	if info.ID.IsZero() {
		return nil, fmt.Errorf("%v: no id in response", pathBroadcast)
	}
	return info, nil
}

// Validation is the outcome of validating a transaction without
// broadcasting it.
type Validation struct {
	Valid          bool              `json:"valid"`
	ValidationTime int64             `json:"validationTime"`
	Trace          []json.RawMessage `json:"trace"`
	Error          string            `json:"error"`
}

// Validate checks t against the current state of the node.
func (f *Fetcher) Validate(ctx context.Context,
	t tx.Transaction) (*Validation, error) {
	var v Validation
	if err := f.postJSON(ctx, pathValidate, t, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Balance returns the WAVES balance of adr.
func (f *Fetcher) Balance(ctx context.Context,
	adr waves.Address) (int64, error) {
	var res struct {
		Balance int64 `json:"balance"`
	}
	err := f.getJSON(ctx, "/addresses/balance/"+adr.String(), &res)
	return res.Balance, err
}

type AssetBalance struct {
	AssetID              waves.Digest `json:"assetId"`
	Balance              int64        `json:"balance"`
	Reissuable           bool         `json:"reissuable"`
	Quantity             int64        `json:"quantity"`
	MinSponsoredAssetFee *int64       `json:"minSponsoredAssetFee"`
	SponsorBalance       *int64       `json:"sponsorBalance"`
}

// AssetBalances returns the balance of every asset held by adr, excluding
// WAVES.
func (f *Fetcher) AssetBalances(ctx context.Context,
	adr waves.Address) ([]AssetBalance, error) {
	var res struct {
		Balances []AssetBalance `json:"balances"`
	}
	err := f.getJSON(ctx, "/assets/balance/"+adr.String(), &res)
	return res.Balances, err
}

// AssetBalance returns the balance of asset held by adr. A nil asset is
// WAVES.
func (f *Fetcher) AssetBalance(ctx context.Context, adr waves.Address,
	asset *waves.Digest) (int64, error) {
	if asset == nil {
		return f.Balance(ctx, adr)
	}
	var res struct {
		Balance int64 `json:"balance"`
	}
	err := f.getJSON(ctx,
		"/assets/balance/"+adr.String()+"/"+asset.String(), &res)
	return res.Balance, err
}

// Data returns the entry stored at key in the account storage of adr. An
// unset key returns ErrNotFound.
func (f *Fetcher) Data(ctx context.Context, adr waves.Address,
	key string) (tx.DataEntry, error) {
	var entry tx.DataEntry
	err := f.getJSON(ctx,
		"/addresses/data/"+adr.String()+"/"+url.PathEscape(key),
		&entry, http.StatusNotFound)
	return entry, err
}

// DataAll returns every entry in the account storage of adr.
func (f *Fetcher) DataAll(ctx context.Context,
	adr waves.Address) ([]tx.DataEntry, error) {
	var entries []tx.DataEntry
	err := f.getJSON(ctx, "/addresses/data/"+adr.String(), &entries)
	return entries, err
}

type AssetDetails struct {
	AssetID              waves.Digest  `json:"assetId"`
	IssueHeight          int64         `json:"issueHeight"`
	IssueTimestamp       int64         `json:"issueTimestamp"`
	Issuer               waves.Address `json:"issuer"`
	Name                 string        `json:"name"`
	Description          string        `json:"description"`
	Decimals             int           `json:"decimals"`
	Reissuable           bool          `json:"reissuable"`
	Quantity             int64         `json:"quantity"`
	Scripted             bool          `json:"scripted"`
	MinSponsoredAssetFee *int64        `json:"minSponsoredAssetFee"`
}

// AssetDetails returns the description of asset.
func (f *Fetcher) AssetDetails(ctx context.Context,
	asset waves.Digest) (*AssetDetails, error) {
	var details AssetDetails
	if err := f.getJSON(ctx, "/assets/details/"+asset.String(),
		&details); err != nil {
		return nil, err
	}
	return &details, nil
}

// NFTs returns every NFT held by adr, following pages of NFTPageSize.
func (f *Fetcher) NFTs(ctx context.Context,
	adr waves.Address) ([]AssetDetails, error) {
	var nfts []AssetDetails
	base := fmt.Sprintf("/assets/nft/%v/limit/%v", adr, NFTPageSize)
	path := base
	for {
		var page []AssetDetails
		if err := f.getJSON(ctx, path, &page); err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return nfts, nil
		}
		nfts = append(nfts, page...)
		path = base + "?after=" + page[len(page)-1].AssetID.String()
	}
}

// Script is a compiled script.
type Script struct {
	Script     waves.Base64 `json:"script"`
	Complexity int64        `json:"complexity"`
	ExtraFee   int64        `json:"extraFee"`
}

// Compile compiles the source of a Ride script.
func (f *Fetcher) Compile(ctx context.Context, source string) (*Script, error) {
	data, err := f.Do(ctx, Request{Method: http.MethodPost,
		Path:   pathCompile,
		Body:   []byte(source),
		Header: http.Header{"Content-Type": {"text/plain"}},
	})
	if err != nil {
		return nil, err
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%v: %w", pathCompile, err)
	}
	if len(s.Script) == 0 {
		return nil, fmt.Errorf("%v: no script in response", pathCompile)
	}
	return &s, nil
}

// ScriptInfo is the script set on an account. Script is empty for accounts
// without one.
type ScriptInfo struct {
	Address    waves.Address `json:"address"`
	Script     waves.Base64  `json:"script"`
	ScriptText string        `json:"scriptText"`
	Complexity int64         `json:"complexity"`
	ExtraFee   int64         `json:"extraFee"`
}

func (f *Fetcher) ScriptInfo(ctx context.Context,
	adr waves.Address) (*ScriptInfo, error) {
	var info ScriptInfo
	if err := f.getJSON(ctx, "/addresses/scriptInfo/"+adr.String(),
		&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Time returns the NTP corrected time of the node in milliseconds since
// the Unix epoch.
func (f *Fetcher) Time(ctx context.Context) (int64, error) {
	var res struct {
		NTP *int64 `json:"NTP"`
	}
	if err := f.getJSON(ctx, pathTime, &res); err != nil {
		return 0, err
	}
	if res.NTP == nil {
		return 0, fmt.Errorf("%v: no NTP time in response", pathTime)
	}
	return *res.NTP, nil
}

// Fee is the minimal fee of a transaction. A nil FeeAssetID is WAVES.
type Fee struct {
	FeeAssetID *waves.Digest `json:"feeAssetId"`
	FeeAmount  int64         `json:"feeAmount"`
}

// CalculateFee asks the node for the minimal fee of t.
func (f *Fetcher) CalculateFee(ctx context.Context,
	t tx.Transaction) (*Fee, error) {
	var fee Fee
	if err := f.postJSON(ctx, pathCalculateFee, t, &fee); err != nil {
		return nil, err
	}
	return &fee, nil
}

// AddressByAlias resolves alias, given without the "alias:<chain>:"
// prefix. An unknown alias returns ErrNotFound.
func (f *Fetcher) AddressByAlias(ctx context.Context,
	alias string) (waves.Address, error) {
	var res struct {
		Address *waves.Address `json:"address"`
	}
	path := "/alias/by-alias/" + url.PathEscape(alias)
	if err := f.getJSON(ctx, path, &res, http.StatusNotFound); err != nil {
		return waves.Address{}, err
	}
	if res.Address == nil {
		return waves.Address{}, fmt.Errorf("%v: no address in response", path)
	}
	return *res.Address, nil
}

// StateChanges returns the transaction id with the state changes of its
// script invocation.
func (f *Fetcher) StateChanges(ctx context.Context,
	id waves.Digest) (json.RawMessage, error) {
	path := "/debug/stateChanges/info/" + id.String()
	data, err := f.Get(ctx, path, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	var res struct {
		ID           waves.Digest    `json:"id"`
		StateChanges json.RawMessage `json:"stateChanges"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	if res.ID != id || len(res.StateChanges) == 0 {
		return nil, fmt.Errorf("%v: no state changes", path)
	}
	return data, nil
}

// Transactions returns up to limit transactions of adr, newest first,
// starting after the transaction after if it is not nil.
func (f *Fetcher) Transactions(ctx context.Context, adr waves.Address,
	limit int, after *waves.Digest) ([]*TxInfo, error) {
	path := fmt.Sprintf("/transactions/address/%v/limit/%v", adr, limit)
	if after != nil {
		path += "?after=" + after.String()
	}
	var res [][]json.RawMessage
	if err := f.getJSON(ctx, path, &res); err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, nil
	}
	infos := make([]*TxInfo, len(res[0]))
	for i, data := range res[0] {
		info, err := decodeTxInfo(data)
		if err != nil {
			return nil, fmt.Errorf("%v: [%v]: %w", path, i, err)
		}
		infos[i] = info
	}
	return infos, nil
}
