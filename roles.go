package auth

// UserRole is the account's role within the marketplace
type UserRole string

const (
	// RoleTenant can browse listings and manage their own profile
	RoleTenant UserRole = "tenant"
	// RoleAgent can publish and manage listings once verified
	RoleAgent UserRole = "agent"
	// RoleAdmin satisfies every role requirement
	RoleAdmin UserRole = "admin"
)

// roleRank orders roles so that a higher rank satisfies any
// requirement below it. Admin sits above everything.
var roleRank = map[UserRole]int{
	RoleTenant: 1,
	RoleAgent:  1,
	RoleAdmin:  2,
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleTenant, RoleAgent, RoleAdmin:
		return true
	default:
		return false
	}
}

// Satisfies reports whether this role meets the required role. Admin
// satisfies any requirement, other roles only satisfy themselves.
func (r UserRole) Satisfies(required UserRole) bool {
	if !r.IsValid() || !required.IsValid() {
		return false
	}

	if r == required {
		return true
	}

	return roleRank[r] > roleRank[required]
}

// SelfRegisterRoles are the roles an account may pick at registration.
// Admin accounts are provisioned out of band.
func SelfRegisterRoles() []UserRole {
	return []UserRole{RoleTenant, RoleAgent}
}

// CanSelfRegister reports whether the role is assignable at registration
func (r UserRole) CanSelfRegister() bool {
	switch r {
	case RoleTenant, RoleAgent:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
