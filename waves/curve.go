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
	"crypto/rand"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"
	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"golang.org/x/crypto/curve25519"
)

const (
	// PrivateKeySize is the length of a curve25519 private key.
	PrivateKeySize = 32
	// SignatureSize is the length of a signature.
	SignatureSize = 64

	nonceSize = 64
	signBit   = 0x80
)

// curvePublicKey returns the X25519 public key of the scalar priv.
func curvePublicKey(priv []byte) (PublicKey, error) {
	var pub PublicKey
	if len(priv) != PrivateKeySize {
		return pub, fmt.Errorf("%w: private key length %v",
			ErrDecode, len(priv))
	}
	u, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], u)
	return pub, nil
}

// acceleratedKeyPair returns the ed25519 key pair generated from the 32 byte
// cloaked secret derived from priv, together with the curve25519 private
// scalar of that key pair. If prehash is set the cloaked secret is
// Sha512(priv)[:32], otherwise it is priv itself.
func acceleratedKeyPair(priv []byte, prehash bool) (ed25519.PrivateKey, []byte) {
	seed := priv
	if prehash {
		h := Sha512(priv)
		seed = h[:PrivateKeySize]
	}
	kp := ed25519.NewKeyFromSeed(seed)
	h := Sha512(kp[:ed25519.SeedSize])
	var curve [PrivateKeySize]byte
	copy(curve[:], h[:PrivateKeySize])
	curve[0] &= 248
	curve[31] &= 127
	curve[31] |= 64
	zero(h[:])
	return kp, curve[:]
}

// signAccelerated signs msg with the ed25519 key pair kp. The sign bit of the
// Edwards public key is carried in the top bit of the signature so that it
// verifies against the Montgomery form of the key.
func signAccelerated(kp ed25519.PrivateKey, msg []byte) []byte {
	sig := ed25519.Sign(kp, msg)
	edPub := kp[ed25519.SeedSize:]
	sig[SignatureSize-1] |= edPub[31] & signBit
	return sig
}

// signDirect signs msg with the curve25519 scalar priv and the 64 byte nonce
// material rnd.
func signDirect(priv, msg, rnd []byte) ([]byte, error) {
	a, err := edwards25519.NewScalar().SetBytesWithClamping(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: private key length %v",
			ErrDecode, len(priv))
	}
	edPub := edwards25519.NewIdentityPoint().ScalarBaseMult(a).Bytes()

	// The clamped scalar bytes are the same ones hashed into the nonce.
	clamped := append([]byte{}, priv...)
	clamped[0] &= 248
	clamped[31] &= 127
	clamped[31] |= 64
	defer zero(clamped)

	h := sha512.New()
	h.Write([]byte{0xfe})
	for i := 1; i < 32; i++ {
		h.Write([]byte{0xff})
	}
	h.Write(clamped)
	h.Write(msg)
	h.Write(rnd)
	r, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	if err != nil {
		return nil, err
	}
	R := edwards25519.NewIdentityPoint().ScalarBaseMult(r).Bytes()

	h.Reset()
	h.Write(R)
	h.Write(edPub)
	h.Write(msg)
	k, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	if err != nil {
		return nil, err
	}
	S := edwards25519.NewScalar().MultiplyAdd(k, a, r)

	sig := make([]byte, 0, SignatureSize)
	sig = append(sig, R...)
	sig = append(sig, S.Bytes()...)
	sig[SignatureSize-1] |= edPub[31] & signBit
	return sig, nil
}

// randomNonce returns fresh nonce material for signDirect.
func randomNonce() ([]byte, error) {
	rnd := make([]byte, nonceSize)
	if _, err := rand.Read(rnd); err != nil {
		return nil, fmt.Errorf("crypto/rand: %w", err)
	}
	return rnd, nil
}

// deterministicNonce expands rseed to nonce material. A 64 byte rseed is used
// as is.
func deterministicNonce(rseed []byte) []byte {
	if len(rseed) == nonceSize {
		return append([]byte{}, rseed...)
	}
	h := Sha512(rseed)
	return h[:]
}

// Sign signs msg with the curve25519 private key priv using a random nonce.
// It does not touch any Identity.
func Sign(priv, msg []byte) ([]byte, error) {
	rnd, err := randomNonce()
	if err != nil {
		return nil, err
	}
	return signDirect(priv, msg, rnd)
}

// Verify returns true if sig is a valid signature of msg by pub. It accepts
// signatures from every signing mode and keys with the last bit flipped.
func Verify(pub PublicKey, msg, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	edPub, ok := edwardsPublicKey(pub)
	if !ok {
		return false
	}
	edPub[31] |= sig[SignatureSize-1] & signBit
	s := append([]byte{}, sig...)
	s[SignatureSize-1] &^= signBit
	return ed25519.Verify(ed25519.PublicKey(edPub[:]), msg, s)
}

// edwardsPublicKey converts the Montgomery u coordinate to the Edwards y
// coordinate, y = (u - 1) / (u + 1), with the sign bit clear.
func edwardsPublicKey(pub PublicKey) ([32]byte, bool) {
	var edPub [32]byte
	pub[31] &^= signBit
	u, err := new(field.Element).SetBytes(pub[:])
	if err != nil {
		return edPub, false
	}
	one := new(field.Element).One()
	num := new(field.Element).Subtract(u, one)
	den := new(field.Element).Add(u, one)
	y := new(field.Element).Multiply(num, new(field.Element).Invert(den))
	copy(edPub[:], y.Bytes())
	return edPub, true
}
