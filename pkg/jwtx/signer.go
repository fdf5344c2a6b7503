package jwtx

import (
	"crypto/ed25519"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/invitelinks/pkg/cryptox"
)

// EdDSASigner signs tokens with an Ed25519 key. The link service never
// issues tokens; the signer backs tests and the local token helper.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
}

// NewSignerEdDSA loads a PKCS8 PEM private key.
func NewSignerEdDSA(kid string, pemKey []byte) (*EdDSASigner, error) {
	key, err := cryptox.ParseEd25519PrivateKey(pemKey)
	if err != nil {
		return nil, err
	}
	return &EdDSASigner{kid: kid, key: key}, nil
}

func (s *EdDSASigner) KID() string { return s.kid }

// Public returns the verification half of the key.
func (s *EdDSASigner) Public() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// PublicJWK returns the key as it would appear in a JWKS.
func (s *EdDSASigner) PublicJWK() JWK {
	return NewEd25519JWK(s.kid, s.Public())
}

// Sign encodes claims as a compact JWT with the kid header set.
func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}
