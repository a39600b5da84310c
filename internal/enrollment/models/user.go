package models

import (
	"regexp"
	"strings"
	"time"

	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/email"
)

// User is an enrolled citizen or an administrator.
// Invariant: Email is normalized and Aadhaar is 12 digits.
type User struct {
	ID           domain.UserID
	FullName     string
	Email        string
	Phone        string
	Aadhaar      string
	PasswordHash string
	Role         domain.Role
	CreatedAt    time.Time
}

// UserView is the serialized form of a user. The password hash never leaves
// the server.
type UserView struct {
	ID        domain.UserID `json:"_id"`
	FullName  string        `json:"full_name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Aadhaar   string        `json:"aadhaar"`
	Role      domain.Role   `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
}

func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Aadhaar:   u.Aadhaar,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

var (
	aadhaarPattern = regexp.MustCompile(`^[0-9]{12}$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9][0-9 -]{6,18}[0-9]$`)
)

// passwordSpecials is the accepted set of special characters, one of which is
// required.
const passwordSpecials = "@$!%*?&"

const minPasswordLen = 8

// IsAadhaar reports whether s is a 12 digit aadhaar number.
func IsAadhaar(s string) bool {
	return aadhaarPattern.MatchString(s)
}

// EnrollRequest carries the profile fields of the enrollment form.
type EnrollRequest struct {
	FullName string
	Email    string
	Phone    string
	Aadhaar  string
	Password string
}

// Normalize trims every field and lowercases the email. The password is left
// untouched.
func (r *EnrollRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = email.Normalize(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Aadhaar = strings.TrimSpace(r.Aadhaar)
}

// Validate checks the profile fields. Call Normalize first.
func (r *EnrollRequest) Validate() error {
	if r.FullName == "" || r.Email == "" || r.Phone == "" || r.Aadhaar == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "Missing required fields")
	}
	if len(r.FullName) > 200 {
		return dErrors.New(dErrors.CodeValidation, "full name too long")
	}
	if !email.IsValid(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	if !phonePattern.MatchString(r.Phone) {
		return dErrors.New(dErrors.CodeValidation, "invalid phone number")
	}
	if !IsAadhaar(r.Aadhaar) {
		return dErrors.New(dErrors.CodeValidation, "Aadhaar must be 12 digits")
	}
	return ValidatePassword(r.Password)
}

// ValidatePassword enforces at least 8 characters with a lowercase letter, an
// uppercase letter, a digit and one of @$!%*?&.
func ValidatePassword(pw string) error {
	var lower, upper, digit, special bool
	for _, c := range pw {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, c):
			special = true
		}
	}
	if len(pw) < minPasswordLen || !lower || !upper || !digit || !special {
		return dErrors.New(dErrors.CodeValidation,
			"password must be at least 8 characters with upper, lower, number and special character")
	}
	return nil
}

// EnrollResult is returned to the enrolling client.
type EnrollResult struct {
	UserID domain.UserID `json:"-"`
	Status string        `json:"status"`
}

// StatusPendingVerification is reported after enrollment and after uploads.
const StatusPendingVerification = "pending_verification"
