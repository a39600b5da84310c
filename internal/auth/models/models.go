package models

import (
	"strings"

	dErrors "bharatid/pkg/domain-errors"
)

// LoginRequest identifies a user by email or aadhaar number.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Identifier = strings.TrimSpace(r.Identifier)
}

func (r *LoginRequest) Validate() error {
	if r.Identifier == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "identifier and password are required")
	}
	return nil
}

// LoginResult is the login response body.
type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

const MessageLoginSuccessful = "Login successful"
