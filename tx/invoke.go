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

// Arg is an invocation argument: IntegerArg, BinaryArg, StringArg,
// BooleanArg or ListArg.
type Arg interface {
	ArgType() string
}

type (
	IntegerArg int64
	BinaryArg  []byte
	StringArg  string
	BooleanArg bool
	ListArg    []Arg
)

func (IntegerArg) ArgType() string { return "integer" }
func (BinaryArg) ArgType() string  { return "binary" }
func (StringArg) ArgType() string  { return "string" }
func (BooleanArg) ArgType() string { return "boolean" }
func (ListArg) ArgType() string    { return "list" }

// FunctionCall names a dApp function and its arguments.
type FunctionCall struct {
	Function string
	Args     []Arg
}

type argJSON struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type functionCallJSON struct {
	Function string    `json:"function"`
	Args     []argJSON `json:"args"`
}

func (c FunctionCall) MarshalJSON() ([]byte, error) {
	args, err := marshalArgs(c.Args)
	if err != nil {
		return nil, err
	}
	return json.Marshal(functionCallJSON{Function: c.Function, Args: args})
}

func (c *FunctionCall) UnmarshalJSON(data []byte) error {
	var raw functionCallJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	args, err := unmarshalArgs(raw.Args)
	if err != nil {
		return fmt.Errorf("function %q: %w", raw.Function, err)
	}
	c.Function, c.Args = raw.Function, args
	return nil
}

func marshalArgs(args []Arg) ([]argJSON, error) {
	out := make([]argJSON, len(args))
	for i, arg := range args {
		var value interface{} = arg
		switch arg := arg.(type) {
		case BinaryArg:
			value = waves.Base64(arg)
		case ListArg:
			list, err := marshalArgs(arg)
			if err != nil {
				return nil, err
			}
			value = list
		case nil:
			return nil, fmt.Errorf("args[%v]: nil", i)
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		out[i] = argJSON{Type: arg.ArgType(), Value: data}
	}
	return out, nil
}

func unmarshalArgs(raw []argJSON) ([]Arg, error) {
	args := make([]Arg, len(raw))
	for i, a := range raw {
		var err error
		switch a.Type {
		case "integer":
			var v IntegerArg
			err = json.Unmarshal(a.Value, &v)
			args[i] = v
		case "binary":
			var v waves.Base64
			err = json.Unmarshal(a.Value, &v)
			args[i] = BinaryArg(v)
		case "string":
			var v StringArg
			err = json.Unmarshal(a.Value, &v)
			args[i] = v
		case "boolean":
			var v BooleanArg
			err = json.Unmarshal(a.Value, &v)
			args[i] = v
		case "list":
			var list []argJSON
			if err = json.Unmarshal(a.Value, &list); err == nil {
				var v []Arg
				v, err = unmarshalArgs(list)
				args[i] = ListArg(v)
			}
		default:
			err = fmt.Errorf("unknown type %q", a.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("args[%v]: %w", i, err)
		}
	}
	return args, nil
}
