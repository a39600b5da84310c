package httptransport

import (
	"strings"

	dErrors "bharatid/pkg/domain-errors"
)

// VerifyRequest names the user whose document is verified.
type VerifyRequest struct {
	UserID string `json:"user_id"`
}

func (r *VerifyRequest) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "User ID required")
	}
	return nil
}
