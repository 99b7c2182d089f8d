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

// Signer signs transaction bodies. *waves.Identity is a Signer.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
}

// Sign signs t with DefaultEncoder and appends the signature to its proofs.
func Sign(s Signer, t Transaction) error {
	return DefaultEncoder.Sign(s, t)
}

// SignAt signs t with DefaultEncoder and stores the signature at proof index
// i. Co-signers of a multi-signature account use distinct indexes.
func SignAt(s Signer, t Transaction, i int) error {
	return DefaultEncoder.SignAt(s, t, i)
}

// Sign appends the signature of t to its proofs and sets its id.
func (e Encoder) Sign(s Signer, t Transaction) error {
	return e.SignAt(s, t, len(*t.proofs()))
}

// SignAt stores the signature of t at proof index i and sets its id.
func (e Encoder) SignAt(s Signer, t Transaction, i int) error {
	body, err := e.Body(t)
	if err != nil {
		return err
	}
	sig, err := s.Sign(body)
	if err != nil {
		return err
	}
	t.setID(waves.Blake2b256(body))
	t.proofs().Set(i, sig)
	return nil
}
