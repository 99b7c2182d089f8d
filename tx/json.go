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
)

// Unmarshal decodes the JSON of a transaction as returned by a node into
// the struct of its kind. Kinds without a struct return ErrUnsupportedKind.
func Unmarshal(data []byte) (Transaction, error) {
	var h struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	var t Transaction
	switch h.Type {
	case TypeIssue:
		t = new(Issue)
	case TypeTransfer:
		t = new(Transfer)
	case TypeReissue:
		t = new(Reissue)
	case TypeBurn:
		t = new(Burn)
	case TypeLease:
		t = new(Lease)
	case TypeLeaseCancel:
		t = new(LeaseCancel)
	case TypeCreateAlias:
		t = new(CreateAlias)
	case TypeMassTransfer:
		t = new(MassTransfer)
	case TypeData:
		t = new(Data)
	case TypeSetScript:
		t = new(SetScript)
	case TypeSponsorship:
		t = new(Sponsorship)
	case TypeSetAssetScript:
		t = new(SetAssetScript)
	case TypeInvokeScript:
		t = new(InvokeScript)
	case TypeUpdateAssetInfo:
		t = new(UpdateAssetInfo)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKind, h.Type)
	}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("%v: %w", h.Type, err)
	}
	return t, nil
}
