package handlers

import (
	"net/mail"
	"strings"
	"unicode"
)

// passwordSymbols is the punctuation set of which at least one character
// must appear in a password.
const passwordSymbols = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// normalizeEmail trims and lower-cases an address. All comparisons,
// storage, and dedup operate on the normalized form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// validatePassword enforces the password policy. It returns an empty string
// when the password is acceptable, or a message describing the failure.
func validatePassword(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return "password must contain an uppercase letter, a lowercase letter, a digit, and a symbol"
	}

	return ""
}
