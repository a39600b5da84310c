package domain

import (
	"strings"

	dErrors "bharatid/pkg/domain-errors"
)

// DocType identifies a recognized identity document.
// Invariant: the value must be one of the registered document types.
//
// Usage: construct via ParseDocType at trust boundaries. The registry is closed;
// adding a type is a coordinated change for the portal and the server, which both
// import this file.
type DocType string

const (
	DocTypeAadhaar  DocType = "aadhaar"
	DocTypePAN      DocType = "pan"
	DocTypePassport DocType = "passport"
)

// docTypes is ordered for stable listings.
var docTypes = []DocType{DocTypeAadhaar, DocTypePAN, DocTypePassport}

var docTypeLabels = map[DocType]string{
	DocTypeAadhaar:  "Aadhaar Card",
	DocTypePAN:      "PAN Card",
	DocTypePassport: "Passport",
}

// ParseDocType constructs a DocType from external input.
//
// Errors: returns CodeInvalidDocumentType when the value is empty or unregistered.
func ParseDocType(s string) (DocType, error) {
	d := DocType(strings.TrimSpace(s))
	if !d.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidDocumentType, "invalid document type")
	}
	return d, nil
}

// IsValid checks registry membership.
func (d DocType) IsValid() bool {
	_, ok := docTypeLabels[d]
	return ok
}

func (d DocType) String() string {
	return string(d)
}

// Label is the human-facing name.
func (d DocType) Label() string {
	if l, ok := docTypeLabels[d]; ok {
		return l
	}
	return string(d)
}

// DocTypes returns the registry in display order.
func DocTypes() []DocType {
	out := make([]DocType, len(docTypes))
	copy(out, docTypes)
	return out
}
