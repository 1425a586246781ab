// internal/pkg/jwt/verifier.go
package jwt

import (
	"crypto/rsa"
	"fmt"

	xerrors "bnb-client/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Decoder turns a bearer token into identity claims.
type Decoder interface {
	Decode(tokenString string) (*Claims, error)
	// Verifies reports whether Decode checks the signature.
	Verifies() bool
}

// UnverifiedDecoder reads the claims without checking the signature. The
// token is trusted because it arrived in the backend's login response; it
// must never be used to authorize anything locally.
type UnverifiedDecoder struct{}

func (UnverifiedDecoder) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidToken, err)
	}
	if err := claims.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidToken, err)
	}
	return claims, nil
}

func (UnverifiedDecoder) Verifies() bool { return false }

// Verifier checks signature, expiry and, when configured, issuer and
// audience before returning the claims.
type Verifier struct {
	key      interface{}
	methods  []string
	issuer   string
	audience string
}

// NewVerifier verifies RS256-family tokens with an RSA public key.
func NewVerifier(pub *rsa.PublicKey, issuer, audience string) *Verifier {
	return &Verifier{
		key:      pub,
		methods:  []string{"RS256", "RS384", "RS512"},
		issuer:   issuer,
		audience: audience,
	}
}

// NewHMACVerifier verifies HS256-family tokens with a shared secret.
func NewHMACVerifier(secret []byte, issuer, audience string) *Verifier {
	return &Verifier{
		key:      secret,
		methods:  []string{"HS256", "HS384", "HS512"},
		issuer:   issuer,
		audience: audience,
	}
}

// Verify validates a JWT token and returns the claims
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if v.key == nil {
		return nil, fmt.Errorf("jwt verifier has no key")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods(v.methods)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", xerrors.ErrInvalidToken)
	}
	if err := claims.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidToken, err)
	}

	return claims, nil
}

func (v *Verifier) Decode(tokenString string) (*Claims, error) {
	return v.Verify(tokenString)
}

func (v *Verifier) Verifies() bool { return true }
