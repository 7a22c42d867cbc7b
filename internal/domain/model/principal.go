package model

// PrincipalKind discriminates who is invoking a domain operation. The
// boundary resolves the caller once and passes the principal explicitly
// into every mutating call; the domain never infers roles from attributes.
type PrincipalKind string

const (
	PrincipalOwner      PrincipalKind = "owner"
	PrincipalInstructor PrincipalKind = "instructor"
	PrincipalStudent    PrincipalKind = "student"
	PrincipalAdmin      PrincipalKind = "admin"
	PrincipalSystem     PrincipalKind = "system"
)

type Principal struct {
	Kind     PrincipalKind
	UserID   string // empty for system principals
	TenantID string // empty for admin and system principals
}

func OwnerPrincipal(userID, tenantID string) Principal {
	return Principal{Kind: PrincipalOwner, UserID: userID, TenantID: tenantID}
}

func AdminPrincipal(userID string) Principal {
	return Principal{Kind: PrincipalAdmin, UserID: userID}
}

// SystemPrincipal identifies automated actors such as the gateway
// callback path.
func SystemPrincipal(component string) Principal {
	return Principal{Kind: PrincipalSystem, UserID: "system:" + component}
}

func (p Principal) IsAdmin() bool  { return p.Kind == PrincipalAdmin }
func (p Principal) IsSystem() bool { return p.Kind == PrincipalSystem }

// Identity is the string persisted into processedBy / audit records.
func (p Principal) Identity() string { return p.UserID }
