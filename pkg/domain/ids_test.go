package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bharatid/pkg/domain-errors"
)

// TestParseUserID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUserID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
		assert.False(t, id.IsNil())
	})
}

// TestParseUserID_SecurityInvariants validates parsing rules at API entry points.
func TestParseUserID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE users;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUserID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseDocType(t *testing.T) {
	for _, d := range DocTypes() {
		t.Run("accepts "+d.String(), func(t *testing.T) {
			got, err := ParseDocType(string(d))
			require.NoError(t, err)
			assert.Equal(t, d, got)
		})
	}

	for _, input := range []string{"", "driving_licence", "AADHAAR", "../pan"} {
		t.Run("rejects "+input, func(t *testing.T) {
			_, err := ParseDocType(input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidDocumentType))
		})
	}

	t.Run("registry order is stable and copies", func(t *testing.T) {
		types := DocTypes()
		assert.Equal(t, []DocType{DocTypeAadhaar, DocTypePAN, DocTypePassport}, types)
		types[0] = "mutated"
		assert.Equal(t, DocTypeAadhaar, DocTypes()[0])
	})
}

func TestRoleCapabilities(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleUser, ParseRole("user"))
	assert.Equal(t, RoleNone, ParseRole("superuser"))
	assert.Equal(t, RoleNone, ParseRole(""))

	assert.True(t, RoleUser.Can(CapUploadDocument))
	assert.False(t, RoleUser.Can(CapVerifyDocument))
	assert.False(t, RoleUser.Can(CapViewAnyDocument))
	assert.True(t, RoleAdmin.Can(CapVerifyDocument))
	assert.True(t, RoleAdmin.Can(CapListUsers))
	assert.False(t, RoleNone.Can(CapViewOwnDocuments))
}

func TestUserIDTextRoundTrip(t *testing.T) {
	id := NewUserID()
	b, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, id.String(), string(b))

	var back UserID
	require.NoError(t, back.UnmarshalText(b))
	assert.Equal(t, id, back)

	var zero UserID
	b, err = zero.MarshalText()
	require.NoError(t, err)
	assert.Empty(t, b)
	require.NoError(t, back.UnmarshalText(nil))
	assert.True(t, back.IsNil())

	assert.Error(t, back.UnmarshalText([]byte("not-a-uuid")))
}
