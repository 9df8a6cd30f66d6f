package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/geniusbot/core/internal/ports"
	"github.com/golang-jwt/jwt/v5"
)

// JWTSigner implements HS256 signing/parsing for the web bearer envelope.
// The key is held at adapter level so the application layer stays
// crypto-library agnostic. The envelope only carries the account ID and the
// opaque session token; session validity is always re-checked against the
// session store.
type JWTSigner struct {
	key []byte
	ttl time.Duration
}

// NewJWTSigner builds a signer from a configured secret.
func NewJWTSigner(secret string, ttl time.Duration) (*JWTSigner, error) {
	if secret == "" {
		return nil, errors.New("jwt signing secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTSigner{key: []byte(secret), ttl: ttl}, nil
}

// NewEphemeralJWTSigner creates an in-memory key for local/dev use.
// Tokens do not survive process restarts; web logins re-authenticate.
func NewEphemeralJWTSigner(ttl time.Duration) (*JWTSigner, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTSigner{key: key, ttl: ttl}, nil
}

type webJWTClaims struct {
	AccountID    string `json:"account_id"`
	SessionToken string `json:"session_token"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) Sign(claims ports.WebClaims) (string, error) {
	issuedAt := claims.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now().UTC()
	}
	expiresAt := claims.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = issuedAt.Add(s.ttl)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, webJWTClaims{
		AccountID:    claims.AccountID,
		SessionToken: claims.SessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	return token.SignedString(s.key)
}

func (s *JWTSigner) ParseAndValidate(raw string) (ports.WebClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &webJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.WebClaims{}, err
	}
	claims, ok := parsed.Claims.(*webJWTClaims)
	if !ok || !parsed.Valid {
		return ports.WebClaims{}, errors.New("invalid token claims")
	}
	if claims.AccountID == "" || claims.SessionToken == "" {
		return ports.WebClaims{}, errors.New("incomplete token claims")
	}

	out := ports.WebClaims{
		AccountID:    claims.AccountID,
		SessionToken: claims.SessionToken,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
