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

// DataValue is one of IntegerValue, BooleanValue, BinaryValue or
// StringValue.
type DataValue interface {
	DataType() string
}

type (
	IntegerValue int64
	BooleanValue bool
	BinaryValue  []byte
	StringValue  string
)

func (IntegerValue) DataType() string { return "integer" }
func (BooleanValue) DataType() string { return "boolean" }
func (BinaryValue) DataType() string  { return "binary" }
func (StringValue) DataType() string  { return "string" }

// DataEntry is a typed key/value record of a Data transaction or of account
// storage.
type DataEntry struct {
	Key   string
	Value DataValue
}

type dataEntryJSON struct {
	Key   string          `json:"key"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (e DataEntry) MarshalJSON() ([]byte, error) {
	if e.Value == nil {
		return nil, fmt.Errorf("data entry %q: no value", e.Key)
	}
	var value interface{} = e.Value
	if b, ok := e.Value.(BinaryValue); ok {
		value = waves.Base64(b)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dataEntryJSON{
		Key: e.Key, Type: e.Value.DataType(), Value: data})
}

func (e *DataEntry) UnmarshalJSON(data []byte) error {
	var raw dataEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Key = raw.Key
	var err error
	switch raw.Type {
	case "integer":
		var v IntegerValue
		err = json.Unmarshal(raw.Value, &v)
		e.Value = v
	case "boolean":
		var v BooleanValue
		err = json.Unmarshal(raw.Value, &v)
		e.Value = v
	case "binary":
		var v waves.Base64
		err = json.Unmarshal(raw.Value, &v)
		e.Value = BinaryValue(v)
	case "string":
		var v StringValue
		err = json.Unmarshal(raw.Value, &v)
		e.Value = v
	default:
		return fmt.Errorf("data entry %q: unknown type %q", raw.Key, raw.Type)
	}
	if err != nil {
		return fmt.Errorf("data entry %q: %w", raw.Key, err)
	}
	return nil
}
