package ports

import "time"

// PasswordHasher abstracts the credential hash so tests can use a cheap fake.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// WebClaims is the bearer-token envelope the web front end hands to
// browsers. SessionToken stays the source of truth: parsing the envelope
// never replaces the session-store validation.
type WebClaims struct {
	AccountID    string
	SessionToken string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// TokenSigner signs and validates the web bearer-token envelope.
type TokenSigner interface {
	Sign(claims WebClaims) (string, error)
	ParseAndValidate(token string) (WebClaims, error)
}
