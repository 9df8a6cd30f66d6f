package security

import "golang.org/x/crypto/bcrypt"

// BcryptHasher is the ports.PasswordHasher implementation. The work
// factor comes from configuration; anything non-positive falls back to
// the library default so a missing knob never weakens hashing.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	h := &BcryptHasher{cost: cost}
	if h.cost <= 0 {
		h.cost = bcrypt.DefaultCost
	}
	return h
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(out), err
}

func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
