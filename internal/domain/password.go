package domain

import "fmt"

// ValidatePassword enforces the minimal registration password policy.
// The bar is deliberately low: accounts guard prepaid credits, not payment
// instruments, and the lockout window covers online guessing.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	if len(password) > 128 {
		return fmt.Errorf("%w: password must be at most 128 characters", ErrInvalidInput)
	}
	return nil
}
