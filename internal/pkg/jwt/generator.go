// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Generator issues backend-shaped tokens. The client never signs tokens
// itself; this backs the mock backend and tests.
type Generator struct {
	method   jwt.SigningMethod
	key      interface{}
	issuer   string
	audience string
	kid      string // key id for rotation
	Ttl      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		method:   jwt.SigningMethodRS256,
		key:      priv,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		Ttl:      ttl,
	}
}

func NewHMACGenerator(secret []byte, issuer, audience string, ttl time.Duration) *Generator {
	return &Generator{
		method:   jwt.SigningMethodHS256,
		key:      secret,
		issuer:   issuer,
		audience: audience,
		Ttl:      ttl,
	}
}

// Generate creates a signed token carrying the identity claims.
func (g *Generator) Generate(id, name, email, role string) (string, error) {
	if g.key == nil {
		return "", fmt.Errorf("jwt generator has no signing key")
	}

	now := time.Now()
	claims := &Claims{
		ID:    ClaimID(id),
		Name:  name,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}
	if g.audience != "" {
		claims.Audience = []string{g.audience}
	}
	// Zero Ttl means no exp claim; a negative one issues an expired token.
	if g.Ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(g.Ttl))
	}

	tok := jwt.NewWithClaims(g.method, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}
	return tok.SignedString(g.key)
}
