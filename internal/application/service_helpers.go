package application

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/hex"
	"strings"
)

// accountIDEncoding drops the padded/ambiguous tail of base32 for short,
// shout-safe identifiers users can read to an administrator over chat.
var accountIDEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// newAccountID mints a short opaque account identifier. Eight base32
// characters give 40 bits of entropy; the caller retries on the unlikely
// collision.
func newAccountID() string {
	raw := make([]byte, 5)
	_, _ = rand.Read(raw)
	return strings.ToUpper(accountIDEncoding.EncodeToString(raw))
}

// newSessionToken mints the opaque secret proving the holder is the most
// recent authenticated party for an account.
func newSessionToken() string {
	raw := make([]byte, 32)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}
