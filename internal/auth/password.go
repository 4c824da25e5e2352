package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a configurable cost.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether the candidate password matches the stored hash.
// bcrypt's comparison is constant-time on the derived key.
func (h *Hasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordPolicy checks the signup/change-password policy. It returns
// every violation joined into one message so the client can show them all.
func ValidatePasswordPolicy(password string) (bool, string) {
	var errs []string

	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		errs = append(errs, "Password must contain an uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "Password must contain a lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "Password must contain a number")
	}
	if !hasSpecial {
		errs = append(errs, "Password must contain a special character")
	}

	if len(errs) > 0 {
		return false, strings.Join(errs, ". ")
	}
	return true, ""
}
