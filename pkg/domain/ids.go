package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "bharatid/pkg/domain-errors"
)

// UserID identifies an enrolled citizen or administrator.
// Invariant: never the nil UUID once parsed.
//
// Usage: construct via ParseUserID at trust boundaries (path params, JSON bodies,
// token claims). Casting uuid.UUID directly is reserved for freshly generated IDs.
type UserID uuid.UUID

// NewUserID returns a fresh random UserID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// ParseUserID parses external input into a UserID.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed or the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

func (id UserID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero value.
func (id UserID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText encodes the canonical string form; the nil ID encodes as "".
func (id UserID) MarshalText() ([]byte, error) {
	if id.IsNil() {
		return []byte{}, nil
	}
	return []byte(id.String()), nil
}

// UnmarshalText accepts "" as the nil ID, for symmetry with MarshalText.
func (id *UserID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = UserID{}
		return nil
	}
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be empty")
	}
	// Longest accepted form is the braced or urn-prefixed variant.
	if len(s) > 45 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}
