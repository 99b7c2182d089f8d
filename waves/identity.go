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
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSigningUnavailable is returned when no private key can be
	// derived, e.g. when only a public key or address was set.
	ErrSigningUnavailable = errors.New("signing unavailable: no private key")

	// ErrDeterministicNonceDisabled is returned by SetDeterministicNonce
	// unless RequireDeterministicNonce(true) was called first.
	ErrDeterministicNonceDisabled = errors.New(
		"deterministic nonce not enabled")

	// ErrNonceRequired is returned by Sign in deterministic nonce mode
	// when no nonce has been armed.
	ErrNonceRequired = errors.New("deterministic nonce required")

	// ErrInvalidAddress is returned by SetAddress for an address with a bad
	// version, checksum or chain id.
	ErrInvalidAddress = errors.New("invalid address")
)

// seedPrefix is the 4 byte nonce prepended to the seed before hashing.
var seedPrefix = []byte{0, 0, 0, 0}

// Identity holds the key material of one account: an optional seed, the
// private key, public key and address derived from it. Derived values are
// computed lazily and cached until a setter invalidates them.
//
// An Identity is safe for concurrent use.
type Identity struct {
	mu    sync.Mutex
	chain ChainID

	seed *Secret
	priv *Secret
	pub  *PublicKey
	adr  *Address

	// Explicitly set values survive a change of derivation mode.
	pubSet, adrSet bool

	accelerated   bool
	prehash       bool
	lastBitFlip   bool
	deterministic bool
	rseed         *Secret
}

// NewIdentity returns an empty Identity for chain.
func NewIdentity(chain ChainID) *Identity {
	return &Identity{chain: chain}
}

// NewIdentityFromSeed is NewIdentity followed by SetSeedPhrase.
func NewIdentityFromSeed(chain ChainID, phrase string) *Identity {
	id := NewIdentity(chain)
	id.SetSeedPhrase(phrase)
	return id
}

// ChainID returns the chain the Identity derives addresses for.
func (id *Identity) ChainID() ChainID {
	return id.chain
}

// SetSeed sets the raw seed bytes and discards every value derived from a
// previous seed.
func (id *Identity) SetSeed(seed []byte) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.seed.Destroy()
	id.seed = NewSecret(seed)
	id.clearPrivLocked()
}

// SetSeedPhrase sets the seed to the UTF-8 bytes of phrase.
func (id *Identity) SetSeedPhrase(phrase string) {
	id.SetSeed([]byte(phrase))
}

// SetSeedBase58 sets the seed from its base58 encoding.
func (id *Identity) SetSeedBase58(s string) error {
	seed, err := Base58Decode(s)
	if err != nil {
		return err
	}
	id.SetSeed(seed)
	zero(seed)
	return nil
}

// SetPrivateKey sets the 32 byte private key and discards the public key
// and address derived from a previous key.
func (id *Identity) SetPrivateKey(priv []byte) error {
	if len(priv) != PrivateKeySize {
		return ErrDecode
	}
	id.mu.Lock()
	defer id.mu.Unlock()
	id.clearPrivLocked()
	id.priv = NewSecret(priv)
	return nil
}

// SetPrivateKeyBase58 sets the private key from its base58 encoding.
func (id *Identity) SetPrivateKeyBase58(s string) error {
	priv, err := Base58Decode(s)
	if err != nil {
		return err
	}
	defer zero(priv)
	return id.SetPrivateKey(priv)
}

// SetPublicKey sets the public key and discards a derived address. Signing
// still requires a private key.
func (id *Identity) SetPublicKey(pub PublicKey) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.clearPubLocked()
	id.pub = &pub
	id.pubSet = true
}

// SetAddress sets the address. It must be valid on the chain of id.
func (id *Identity) SetAddress(adr Address) error {
	if !adr.Valid(id.chain) {
		return fmt.Errorf("%w: %v on %v", ErrInvalidAddress, adr, id.chain)
	}
	id.mu.Lock()
	defer id.mu.Unlock()
	id.adr = &adr
	id.adrSet = true
	return nil
}

// SetLastBitFlip toggles the compatibility mode that flips the top bit of
// the last public key byte before address derivation. It is off by default.
// Derived public keys and addresses are recomputed on next use.
func (id *Identity) SetLastBitFlip(enabled bool) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.lastBitFlip = enabled
	id.clearDerivedPubLocked()
}

// SetAccelerated selects the signing path that generates an ed25519 key pair
// from the private key. With prehash the key pair seed is
// Sha512(private key)[:32]. The derived public key differs from the direct
// path.
func (id *Identity) SetAccelerated(enabled, prehash bool) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.accelerated = enabled
	id.prehash = prehash
	id.clearDerivedPubLocked()
}

// RequireDeterministicNonce enables or disables deterministic nonce mode. In
// this mode every Sign consumes a nonce armed by SetDeterministicNonce and
// fails without one.
//
// Signing two different messages with the same nonce reveals the private
// key.
func (id *Identity) RequireDeterministicNonce(enabled bool) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.deterministic = enabled
	if !enabled {
		id.rseed.Destroy()
		id.rseed = nil
	}
}

// SetDeterministicNonce arms rseed for exactly one Sign call.
func (id *Identity) SetDeterministicNonce(rseed []byte) error {
	id.mu.Lock()
	defer id.mu.Unlock()
	if !id.deterministic {
		return ErrDeterministicNonceDisabled
	}
	id.rseed.Destroy()
	id.rseed = NewSecret(deterministicNonce(rseed))
	return nil
}

// UsePrivateKey calls f with the private key, deriving it from the seed if
// needed.
func (id *Identity) UsePrivateKey(f func(priv []byte) error) error {
	id.mu.Lock()
	priv, err := id.privateKeyLocked()
	id.mu.Unlock()
	if err != nil {
		return err
	}
	return priv.Use(f)
}

// PublicKey returns the public key, deriving it if needed.
func (id *Identity) PublicKey() (PublicKey, error) {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.publicKeyLocked()
}

// Address returns the address, deriving it if needed.
func (id *Identity) Address() (Address, error) {
	id.mu.Lock()
	defer id.mu.Unlock()
	if id.adr != nil {
		return *id.adr, nil
	}
	pub, err := id.publicKeyLocked()
	if err != nil {
		return Address{}, err
	}
	adr := NewAddress(id.chain, pub)
	id.adr = &adr
	return adr, nil
}

// Sign signs msg. An armed deterministic nonce takes precedence, then the
// accelerated path if enabled, then the direct path with a random nonce.
func (id *Identity) Sign(msg []byte) ([]byte, error) {
	id.mu.Lock()
	defer id.mu.Unlock()
	priv, err := id.privateKeyLocked()
	if err != nil {
		return nil, err
	}

	var rnd []byte
	if id.deterministic {
		if id.rseed.IsEmpty() {
			return nil, ErrNonceRequired
		}
		rseed := id.rseed
		id.rseed = nil
		defer rseed.Destroy()
		if err := rseed.Use(func(r []byte) error {
			rnd = append([]byte{}, r...)
			return nil
		}); err != nil {
			return nil, err
		}
		defer zero(rnd)
	}

	var sig []byte
	err = priv.Use(func(priv []byte) error {
		if id.accelerated {
			kp, scalar := acceleratedKeyPair(priv, id.prehash)
			defer zero(kp)
			defer zero(scalar)
			if rnd == nil {
				sig = signAccelerated(kp, msg)
				return nil
			}
			priv = scalar
		}
		if rnd == nil {
			var err error
			if rnd, err = randomNonce(); err != nil {
				return err
			}
		}
		var err error
		sig, err = signDirect(priv, msg, rnd)
		return err
	})
	return sig, err
}

// Verify returns true if sig is a valid signature of msg by the public key
// of id.
func (id *Identity) Verify(msg, sig []byte) bool {
	pub, err := id.PublicKey()
	if err != nil {
		return false
	}
	return Verify(pub, msg, sig)
}

// Destroy zeroes all secrets held by id.
func (id *Identity) Destroy() {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.seed.Destroy()
	id.priv.Destroy()
	id.rseed.Destroy()
	id.seed, id.priv, id.rseed = nil, nil, nil
	id.clearDerivedPubLocked()
}

func (id *Identity) privateKeyLocked() (*Secret, error) {
	if !id.priv.IsEmpty() {
		return id.priv, nil
	}
	if id.seed.IsEmpty() {
		return nil, ErrSigningUnavailable
	}
	var priv *Secret
	if err := id.seed.Use(func(seed []byte) error {
		buf := make([]byte, 0, len(seedPrefix)+len(seed))
		buf = append(buf, seedPrefix...)
		buf = append(buf, seed...)
		defer zero(buf)
		hash := SecureHash(buf)
		key := Sha256(hash[:])
		priv = NewSecret(key[:])
		zero(hash[:])
		zero(key[:])
		return nil
	}); err != nil {
		return nil, err
	}
	id.priv = priv
	return priv, nil
}

func (id *Identity) publicKeyLocked() (PublicKey, error) {
	if id.pub != nil {
		return *id.pub, nil
	}
	priv, err := id.privateKeyLocked()
	if err != nil {
		return PublicKey{}, err
	}
	var pub PublicKey
	if err := priv.Use(func(priv []byte) error {
		if id.accelerated {
			kp, scalar := acceleratedKeyPair(priv, id.prehash)
			defer zero(kp)
			defer zero(scalar)
			priv = scalar
		}
		var err error
		pub, err = curvePublicKey(priv)
		return err
	}); err != nil {
		return PublicKey{}, err
	}
	if id.lastBitFlip {
		pub[31] ^= signBit
	}
	id.pub = &pub
	return pub, nil
}

// clearPrivLocked discards the private key and everything below it.
func (id *Identity) clearPrivLocked() {
	id.priv.Destroy()
	id.priv = nil
	id.clearPubLocked()
}

// clearPubLocked discards the public key and address.
func (id *Identity) clearPubLocked() {
	id.pub, id.adr = nil, nil
	id.pubSet, id.adrSet = false, false
}

// clearDerivedPubLocked discards the public key and address unless they were
// set explicitly.
func (id *Identity) clearDerivedPubLocked() {
	if !id.pubSet {
		id.pub = nil
	}
	if !id.adrSet {
		id.adr = nil
	}
}
