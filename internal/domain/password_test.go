package domain

import (
	"errors"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "valid", password: "SecurePass123", valid: true},
		{name: "minimum length", password: "12345678", valid: true},
		{name: "too short", password: "1234567", valid: false},
		{name: "empty", password: "", valid: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePassword(tc.password)
			if tc.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.valid && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected InvalidInput, got %v", err)
			}
		})
	}
}
