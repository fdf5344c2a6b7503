package jwtx

import (
	"crypto/ed25519"
	"errors"
	"sync"
)

var (
	ErrNoKey       = errors.New("jwtx: key not found")
	ErrEmptyKeySet = errors.New("jwtx: key set has no usable keys")
)

// KeySet holds the Ed25519 verification keys currently trusted, by kid. It is
// safe for concurrent use; the background refresher swaps keys while
// requests are being verified.
type KeySet struct {
	mu  sync.RWMutex
	jks JWKS
	pub map[string]ed25519.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]ed25519.PublicKey)}
}

// Add trusts pub under kid.
func (k *KeySet) Add(kid string, pub ed25519.PublicKey) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.pub[kid] = pub
	k.jks.Keys = append(k.jks.Keys, NewEd25519JWK(kid, pub))
}

// Get returns the key for kid.
func (k *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// JWKS returns a copy of the trusted keys.
func (k *KeySet) JWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return JWKS{Keys: append([]JWK(nil), k.jks.Keys...)}
}

// Len reports how many keys are trusted.
func (k *KeySet) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub)
}

// IsReady reports whether at least one key is loaded.
func (k *KeySet) IsReady() bool { return k.Len() > 0 }

// ResetFromJWKS replaces the trusted keys with the Ed25519 keys in jwks.
// Keys of other types are skipped. When nothing usable remains the current
// keys are kept and ErrEmptyKeySet is returned.
func (k *KeySet) ResetFromJWKS(jwks JWKS) (int, error) {
	next := make(map[string]ed25519.PublicKey, len(jwks.Keys))
	kept := JWKS{Keys: make([]JWK, 0, len(jwks.Keys))}

	for _, j := range jwks.Keys {
		if j.Kid == "" {
			continue
		}
		pub, err := j.Ed25519()
		if err != nil {
			if errors.Is(err, ErrUnsupportedKey) {
				continue
			}
			return 0, err
		}
		next[j.Kid] = pub
		kept.Keys = append(kept.Keys, j)
	}

	if len(next) == 0 {
		return 0, ErrEmptyKeySet
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.pub = next
	k.jks = kept
	return len(next), nil
}
