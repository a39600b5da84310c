package domain

// Role drives the capability set of a session. The zero value RoleNone stands for
// an absent or unrecognized role and grants nothing.
type Role string

const (
	RoleNone  Role = ""
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a claim value onto a known role. Unknown values become RoleNone
// rather than an error: a bad role must fail closed, not fail the whole decode.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleUser:
		return RoleUser
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleNone
	}
}

func (r Role) String() string {
	return string(r)
}

// IsKnown reports whether r is a recognized role.
func (r Role) IsKnown() bool {
	return r == RoleUser || r == RoleAdmin
}

// Capability is a named permission gating an operation.
type Capability string

const (
	CapViewOwnDocuments Capability = "view-own-documents"
	CapUploadDocument   Capability = "upload-document"
	CapViewAnyDocument  Capability = "view-any-document"
	CapVerifyDocument   Capability = "verify-document"
	CapListUsers        Capability = "list-users"
)

// roleCapabilities is the single source of truth for role permissions. Both the
// portal (UX gating) and the server (enforcement) consult it independently.
var roleCapabilities = map[Role]map[Capability]bool{
	RoleUser: {
		CapViewOwnDocuments: true,
		CapUploadDocument:   true,
	},
	RoleAdmin: {
		CapViewOwnDocuments: true,
		CapUploadDocument:   true,
		CapViewAnyDocument:  true,
		CapVerifyDocument:   true,
		CapListUsers:        true,
	},
}

// Can reports whether the role holds capability c.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}
