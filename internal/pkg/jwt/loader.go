// internal/pkg/jwt/loader.go
package jwt

import (
	"fmt"
	"time"
)

type Config struct {
	PrivPath string
	PubPath  string
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
	KID      string
}

// BuildDecoder picks the strongest decoder the configured key material
// allows: RSA public key, then shared secret, then unverified decoding.
func BuildDecoder(cfg Config) (Decoder, error) {
	switch {
	case cfg.PubPath != "":
		pub, err := LoadRSAPublicKeyFromPEM(cfg.PubPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load public key from %s: %w", cfg.PubPath, err)
		}
		return NewVerifier(pub, cfg.Issuer, cfg.Audience), nil
	case cfg.Secret != "":
		return NewHMACVerifier([]byte(cfg.Secret), cfg.Issuer, cfg.Audience), nil
	default:
		return UnverifiedDecoder{}, nil
	}
}

// BuildGenerator builds the signer used by the mock backend. fallbackSecret
// is used when neither a private key nor a secret is configured.
func BuildGenerator(cfg Config, fallbackSecret string) (*Generator, error) {
	if cfg.PrivPath != "" {
		priv, err := LoadRSAPrivateKeyFromPEM(cfg.PrivPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load private key from %s: %w", cfg.PrivPath, err)
		}
		return NewGenerator(priv, cfg.Issuer, cfg.Audience, cfg.KID, cfg.TTL), nil
	}
	secret := cfg.Secret
	if secret == "" {
		secret = fallbackSecret
	}
	if secret == "" {
		return nil, fmt.Errorf("no signing key configured")
	}
	return NewHMACGenerator([]byte(secret), cfg.Issuer, cfg.Audience, cfg.TTL), nil
}
