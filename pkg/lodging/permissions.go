package lodging

import "strings"

// Roles recognized by RoleAuthorizer.
const (
	RoleAdmin           = "admin"
	RoleCoordinator     = "coordinator"
	RoleLodging         = "lodging"
	RoleLodgingReadOnly = "lodging_read"
)

// Principal is the authenticated caller of a Service operation.
type Principal struct {
	UserID UserID
	Roles  []string
}

// Authorizer answers lodging capability checks for a principal.
type Authorizer interface {
	CanReadLodging(principal Principal) bool
	CanWriteLodging(principal Principal) bool
}

// RoleAuthorizer grants capabilities from role names.
type RoleAuthorizer struct{}

// CanWriteLodging allows admins, coordinators and lodging operators.
func (RoleAuthorizer) CanWriteLodging(principal Principal) bool {
	if principal.UserID.IsZero() {
		return false
	}
	return hasAnyRole(principal.Roles, RoleAdmin, RoleCoordinator, RoleLodging)
}

// CanReadLodging additionally allows read-only lodging operators.
func (authorizer RoleAuthorizer) CanReadLodging(principal Principal) bool {
	if authorizer.CanWriteLodging(principal) {
		return true
	}
	if principal.UserID.IsZero() {
		return false
	}
	return hasAnyRole(principal.Roles, RoleLodgingReadOnly)
}

func hasAnyRole(granted []string, wanted ...string) bool {
	for _, role := range granted {
		normalized := strings.ToLower(strings.TrimSpace(role))
		for _, candidate := range wanted {
			if normalized == candidate {
				return true
			}
		}
	}
	return false
}
