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
	"github.com/waveskit/waveskit/waves"
)

// Issue creates a new asset.
type Issue struct {
	Header
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Quantity    int64        `json:"quantity"`
	Decimals    byte         `json:"decimals"`
	Reissuable  bool         `json:"reissuable"`
	Script      waves.Base64 `json:"script,omitempty"`
}

// Transfer sends Amount of AssetID, or WAVES if AssetID is nil.
type Transfer struct {
	Header
	Recipient  waves.Recipient `json:"recipient"`
	AssetID    *waves.Digest   `json:"assetId"`
	Amount     int64           `json:"amount"`
	Attachment waves.Bytes     `json:"attachment"`
}

type Reissue struct {
	Header
	AssetID    waves.Digest `json:"assetId"`
	Quantity   int64        `json:"quantity"`
	Reissuable bool         `json:"reissuable"`
}

type Burn struct {
	Header
	AssetID waves.Digest `json:"assetId"`
	Amount  int64        `json:"amount"`
}

type Lease struct {
	Header
	Recipient waves.Recipient `json:"recipient"`
	Amount    int64           `json:"amount"`
}

type LeaseCancel struct {
	Header
	LeaseID waves.Digest `json:"leaseId"`
}

type CreateAlias struct {
	Header
	Alias string `json:"alias"`
}

type MassTransferItem struct {
	Recipient waves.Recipient `json:"recipient"`
	Amount    int64           `json:"amount"`
}

type MassTransfer struct {
	Header
	AssetID    *waves.Digest      `json:"assetId"`
	Transfers  []MassTransferItem `json:"transfers"`
	Attachment waves.Bytes        `json:"attachment"`
}

// Data writes key/value entries to the sender's account storage.
type Data struct {
	Header
	Data []DataEntry `json:"data"`
}

// SetScript sets the account script, or removes it if Script is empty.
type SetScript struct {
	Header
	Script waves.Base64 `json:"script,omitempty"`
}

// Sponsorship enables paying fees in AssetID. A zero MinSponsoredAssetFee
// cancels sponsorship.
type Sponsorship struct {
	Header
	AssetID              waves.Digest `json:"assetId"`
	MinSponsoredAssetFee int64        `json:"minSponsoredAssetFee"`
}

type SetAssetScript struct {
	Header
	AssetID waves.Digest `json:"assetId"`
	Script  waves.Base64 `json:"script,omitempty"`
}

// InvokeScript calls a dApp function. A nil Call invokes the default
// function.
type InvokeScript struct {
	Header
	DApp     waves.Recipient `json:"dApp"`
	Call     *FunctionCall   `json:"call,omitempty"`
	Payments []Payment       `json:"payment"`
}

type UpdateAssetInfo struct {
	Header
	AssetID     waves.Digest `json:"assetId"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
}

// Payment is an amount of AssetID, or WAVES if AssetID is nil, attached to
// an invocation.
type Payment struct {
	Amount  int64         `json:"amount"`
	AssetID *waves.Digest `json:"assetId"`
}
