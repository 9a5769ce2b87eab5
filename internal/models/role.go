package models

// UserRole identifies a permission tier inside a tenant account.
type UserRole string

const (
	// RoleOwner is the elevated tier; owners manage the account and may
	// invite new people to create accounts of their own.
	RoleOwner UserRole = "owner"
	// RoleMember is the default tier for everyone else.
	RoleMember UserRole = "member"
)

func IsValidRole(role UserRole) bool {
	switch role {
	case RoleOwner, RoleMember:
		return true
	default:
		return false
	}
}
