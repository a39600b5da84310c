// Package email holds helpers for the email half of the login identifier.
package email

import (
	"net/mail"
	"strings"
)

// Normalize trims and lowercases an address so lookups are case-insensitive.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsValid accepts a bare addr-spec ("jane@example.com"). Display-name forms
// such as "Jane <jane@example.com>" are rejected.
func IsValid(address string) bool {
	address = strings.TrimSpace(address)
	if address == "" || len(address) > 254 {
		return false
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return false
	}
	if parsed.Address != address {
		return false
	}
	at := strings.LastIndexByte(address, '@')
	return at > 0 && strings.Contains(address[at+1:], ".")
}

// LooksLikeEmail is the cheap discriminator used by login to decide whether an
// identifier should be matched against emails or aadhaar numbers.
func LooksLikeEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}
