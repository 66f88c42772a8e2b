package usercontext

// Field identifies one of the propagated metadata values.
type Field uint8

// The propagated fields in canonical order.
const (
	CorrelationID Field = iota
	AuthToken
	UserID
	OrgID

	numFields = int(OrgID) + 1
)

// Well-known header keys. Inbound matching is case-insensitive; outbound
// writes use these exact names (HTTP carriers canonicalize them).
const (
	HeaderCorrelationID = "tmx-correlation-id"
	HeaderAuthToken     = "tmx-auth-token"
	HeaderUserID        = "tmx-user-id"
	HeaderOrgID         = "tmx-org-id"
)

var (
	fieldHeaders = [numFields]string{HeaderCorrelationID, HeaderAuthToken, HeaderUserID, HeaderOrgID}
	fieldNames   = [numFields]string{"correlation_id", "auth_token", "user_id", "org_id"}
)

// Fields returns all propagated fields in canonical order.
func Fields() []Field {
	return []Field{CorrelationID, AuthToken, UserID, OrgID}
}

// Header returns the well-known header key for f.
func (f Field) Header() string {
	if !f.valid() {
		return ""
	}
	return fieldHeaders[f]
}

// String returns the snake_case name used in logs and JSON.
func (f Field) String() string {
	if !f.valid() {
		return "unknown"
	}
	return fieldNames[f]
}

func (f Field) valid() bool {
	return int(f) < numFields
}
