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

package waves

import (
	"fmt"
	"sync"
)

const redacted = "[redacted]"

// Secret holds sensitive key material. The bytes are only reachable inside
// the function passed to Use, and every fmt verb prints "[redacted]".
//
// The zero value holds nothing. A Secret must not be copied after first use.
type Secret struct {
	mu   sync.Mutex
	data []byte
}

// NewSecret returns a Secret holding a copy of data. The caller should zero
// data after the call if it is no longer needed.
func NewSecret(data []byte) *Secret {
	return &Secret{data: append([]byte{}, data...)}
}

// Use calls f with a temporary copy of the secret and zeroes the copy when f
// returns. f must not retain the slice. Use returns ErrSigningUnavailable if
// s is empty.
func (s *Secret) Use(f func(secret []byte) error) error {
	if s == nil {
		return ErrSigningUnavailable
	}
	s.mu.Lock()
	if len(s.data) == 0 {
		s.mu.Unlock()
		return ErrSigningUnavailable
	}
	tmp := append([]byte{}, s.data...)
	s.mu.Unlock()
	defer zero(tmp)
	return f(tmp)
}

// IsEmpty returns true if s holds no data.
func (s *Secret) IsEmpty() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data) == 0
}

// Destroy zeroes and releases the secret.
func (s *Secret) Destroy() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	zero(s.data)
	s.data = nil
}

func (s *Secret) String() string   { return redacted }
func (s *Secret) GoString() string { return redacted }

// Format implements fmt.Formatter so that no verb, including %x and %v,
// prints the secret.
func (s *Secret) Format(f fmt.State, _ rune) {
	f.Write([]byte(redacted))
}

func (s *Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

func zero(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
