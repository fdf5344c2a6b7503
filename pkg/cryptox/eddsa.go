// Package cryptox loads and generates the Ed25519 key material used to verify
// bearer tokens.
package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

var ErrNotEd25519 = errors.New("cryptox: not an Ed25519 key")

// GenerateEd25519Key returns a new Ed25519 private key as PKCS8 PEM.
func GenerateEd25519Key() ([]byte, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: generate Ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal PKCS8 key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// ParseEd25519PrivateKey decodes a PKCS8 PEM private key.
func ParseEd25519PrivateKey(pemKey []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, errors.New("cryptox: expected PKCS8 PRIVATE KEY PEM block")
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cryptox: parse PKCS8: %w", err)
	}

	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, ErrNotEd25519
	}
	return key, nil
}

// ParseEd25519PublicKey decodes a PKIX "PUBLIC KEY" PEM block. A PKCS8
// private key is also accepted, and its public half returned, so operators
// can point the service at the same file the issuer signs with.
func ParseEd25519PublicKey(pemKey []byte) (ed25519.PublicKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("cryptox: invalid PEM")
	}

	switch block.Type {
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("cryptox: parse PKIX: %w", err)
		}
		key, ok := pub.(ed25519.PublicKey)
		if !ok {
			return nil, ErrNotEd25519
		}
		return key, nil

	case "PRIVATE KEY":
		priv, err := ParseEd25519PrivateKey(pemKey)
		if err != nil {
			return nil, err
		}
		return priv.Public().(ed25519.PublicKey), nil

	default:
		return nil, fmt.Errorf("cryptox: unexpected PEM block %q", block.Type)
	}
}

// MarshalEd25519PublicKey encodes pub as a PKIX PEM block.
func MarshalEd25519PublicKey(pub ed25519.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal PKIX: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
