package models

import (
	"time"

	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
)

// Status is the derived verification state of one document.
type Status string

const (
	StatusNotSubmitted Status = "not_submitted"
	StatusPending      Status = "pending"
	StatusVerified     Status = "verified"
)

// BiometricSecured is the only biometric status the server reports.
const BiometricSecured = "secured"

// EncryptionScheme is reported on uploaded records.
const EncryptionScheme = "AES-256-GCM"

func (s Status) Label() string {
	switch s {
	case StatusVerified:
		return "Verified"
	case StatusPending:
		return "Pending Verification"
	default:
		return "Not Submitted"
	}
}

// Record is the per-type document state.
// Invariant: Verified implies Uploaded. Path is the server-side blob key and is
// opaque to clients.
type Record struct {
	Uploaded   bool      `json:"uploaded"`
	Verified   bool      `json:"verified"`
	Path       *string   `json:"path"`
	Encryption string    `json:"encryption,omitempty"`
	UpdatedAt  time.Time `json:"-"`
}

// DeriveStatus is total over all flag combinations. A record that is verified
// without being uploaded still reports verified; Validate flags it.
func DeriveStatus(r Record) Status {
	switch {
	case r.Verified:
		return StatusVerified
	case r.Uploaded:
		return StatusPending
	default:
		return StatusNotSubmitted
	}
}

func (r Record) Status() Status {
	return DeriveStatus(r)
}

// Validate reports a broken verified-implies-uploaded invariant.
func (r Record) Validate() error {
	if r.Verified && !r.Uploaded {
		return dErrors.New(dErrors.CodeInvariantViolation, "document verified without upload")
	}
	return nil
}

// Upload applies the upload transition. Allowed from not_submitted and pending;
// a verified document cannot be replaced.
func (r Record) Upload(blobKey string, now time.Time) (Record, error) {
	if r.Verified {
		return r, dErrors.New(dErrors.CodeConflict, "document already verified")
	}
	key := blobKey
	return Record{
		Uploaded:   true,
		Verified:   false,
		Path:       &key,
		Encryption: EncryptionScheme,
		UpdatedAt:  now,
	}, nil
}

// Verify applies the admin verify transition. Only a pending record moves.
func (r Record) Verify(now time.Time) (Record, error) {
	if !r.Uploaded || r.Verified {
		return r, dErrors.New(dErrors.CodeVerificationFailed, "verification failed")
	}
	r.Verified = true
	r.UpdatedAt = now
	return r, nil
}

// BlobKey returns the stored artifact reference, empty when none is recorded.
func (r Record) BlobKey() string {
	if r.Path == nil {
		return ""
	}
	return *r.Path
}

// Set maps every registered document type to its record.
type Set map[domain.DocType]Record

// NewSet returns a set with every registered type not_submitted.
func NewSet() Set {
	s := make(Set, len(domain.DocTypes()))
	for _, t := range domain.DocTypes() {
		s[t] = Record{}
	}
	return s
}

// Clone returns a deep copy so callers cannot mutate store state.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for t, r := range s {
		if r.Path != nil {
			p := *r.Path
			r.Path = &p
		}
		out[t] = r
	}
	return out
}

// Violations lists the types whose records break the invariant, in registry order.
func (s Set) Violations() []domain.DocType {
	var out []domain.DocType
	for _, t := range domain.DocTypes() {
		if r, ok := s[t]; ok && r.Validate() != nil {
			out = append(out, t)
		}
	}
	return out
}

// Summary is the dashboard aggregate.
type Summary struct {
	Total             int `json:"total"`
	UploadedCount     int `json:"uploaded_count"`
	VerifiedCount     int `json:"verified_count"`
	CompletionPercent int `json:"completion_percent"`
}

// Aggregate counts uploads over the entries of s. CompletionPercent rounds half up
// and is 0 for an empty set.
func Aggregate(s Set) Summary {
	sum := Summary{Total: len(s)}
	for _, r := range s {
		if r.Uploaded {
			sum.UploadedCount++
		}
		if r.Verified {
			sum.VerifiedCount++
		}
	}
	if sum.Total > 0 {
		sum.CompletionPercent = (sum.UploadedCount*200 + sum.Total) / (2 * sum.Total)
	}
	return sum
}

// StatusResponse is the body of GET /api/biometric-status.
type StatusResponse struct {
	BiometricStatus string `json:"biometric_status"`
	Documents       Set    `json:"documents"`
}
