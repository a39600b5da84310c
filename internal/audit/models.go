package audit

import (
	"time"

	"bharatid/pkg/domain"
)

// Action names an audited operation.
type Action string

const (
	ActionUserEnrolled     Action = "user_enrolled"
	ActionAdminSeeded      Action = "admin_seeded"
	ActionLoginSucceeded   Action = "login_succeeded"
	ActionLoginFailed      Action = "login_failed"
	ActionLogout           Action = "logout"
	ActionDocumentUploaded Action = "document_uploaded"
	ActionDocumentViewed   Action = "document_viewed"
	ActionDocumentVerified Action = "document_verified"
	ActionVerifyRejected   Action = "verify_rejected"
	ActionUsersListed      Action = "users_listed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time     `json:"timestamp"`
	Action    Action        `json:"action"`
	UserID    domain.UserID `json:"user_id"`
	// ActorID is set when someone other than UserID performed the action, e.g.
	// an admin verifying a user's document.
	ActorID   domain.UserID  `json:"actor_id"`
	DocType   domain.DocType `json:"doc_type,omitempty"`
	Decision  string         `json:"decision,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	ClientIP  string         `json:"client_ip,omitempty"`
}
