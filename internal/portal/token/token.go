// Package token decodes bearer credentials on the client without verifying
// their signature. The decoded claims drive navigation only; the server
// re-validates every request.
package token

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bharatid/pkg/domain"
)

// ErrMalformed is matched by every decode failure.
var ErrMalformed = errors.New("malformed token")

// DecodeError describes why a credential could not be decoded.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "decode token: " + e.Reason + ": " + e.Err.Error()
	}
	return "decode token: " + e.Reason
}

func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformed, e.Err}
	}
	return []error{ErrMalformed}
}

// Claims is the subset of the payload the portal routes on.
type Claims struct {
	Subject   string
	Role      domain.Role
	ExpiresAt time.Time
}

// Expired compares at millisecond resolution. A token without a numeric exp
// is always expired. An exp beyond what a millisecond clock can represent is
// clamped to that limit rather than overflowing.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return c.ExpiresAt.UnixMilli() < now.UnixMilli()
}

// maxExpirySeconds keeps ExpiresAt.UnixMilli within int64.
const maxExpirySeconds = math.MaxInt64 / 1000

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode splits raw into header.payload.signature and decodes the payload.
// It never verifies the signature. Any JSON object is a valid payload; claims
// of the wrong JSON type read as absent.
func Decode(raw string) (*Claims, error) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) != 3 {
		return nil, &DecodeError{Reason: "expected three segments"}
	}
	seg, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, &DecodeError{Reason: "payload is not base64url", Err: err}
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(seg, &object); err != nil || object == nil {
		return nil, &DecodeError{Reason: "payload is not a JSON object", Err: err}
	}

	c := &Claims{
		Subject:   stringClaim(object, "user_id"),
		Role:      domain.ParseRole(stringClaim(object, "role")),
		ExpiresAt: expiryClaim(object["exp"]),
	}
	if c.Subject == "" {
		c.Subject = stringClaim(object, "sub")
	}
	return c, nil
}

func stringClaim(object map[string]json.RawMessage, name string) string {
	var v string
	if raw, ok := object[name]; ok && json.Unmarshal(raw, &v) == nil {
		return v
	}
	return ""
}

func expiryClaim(raw json.RawMessage) time.Time {
	var secs float64
	if raw == nil || json.Unmarshal(raw, &secs) != nil {
		return time.Time{}
	}
	switch {
	case secs >= maxExpirySeconds:
		return time.Unix(maxExpirySeconds, 0)
	case secs <= -maxExpirySeconds:
		return time.Unix(-maxExpirySeconds, 0)
	}
	var exp jwt.NumericDate
	if err := json.Unmarshal(raw, &exp); err != nil {
		return time.Time{}
	}
	return exp.Time
}
