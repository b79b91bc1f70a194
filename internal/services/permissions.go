package services

import (
	"pc-inventory/internal/models"
)

// Capability names an action guarded by the role policy.
type Capability string

const (
	CapViewComputers   Capability = "view_computers"
	CapManageComputers Capability = "manage_computers"
	CapViewChanges     Capability = "view_changes"
	CapDeleteChanges   Capability = "delete_changes"
	CapManageUsers     Capability = "manage_users"
)

// policy lists the roles allowed per capability. Superusers are allowed
// everything and are not listed.
var policy = map[Capability][]models.Role{
	CapViewComputers:   {models.RoleAuditor, models.RoleAdmin},
	CapManageComputers: {models.RoleAdmin},
	CapViewChanges:     {models.RoleAdmin},
	CapDeleteChanges:   nil,
	CapManageUsers:     nil,
}

// Can reports whether user holds capability. A nil user holds nothing.
func Can(user *models.User, capability Capability) bool {
	if user == nil || !user.IsActive {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	role := user.Role()
	for _, allowed := range policy[capability] {
		if role == allowed {
			return true
		}
	}
	return false
}

// Authorize is Can as an error: ErrUnauthenticated for a nil user,
// ErrForbidden for a denied one.
func Authorize(user *models.User, capability Capability) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !Can(user, capability) {
		return wrapErr(ErrForbidden, "insufficient permissions")
	}
	return nil
}

// CanEditUser reports whether actor may update target's user record.
func CanEditUser(actor, target *models.User) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.IsSuperuser || actor.ID == target.ID
}

// CanEditProfile reports whether actor may update profile.
func CanEditProfile(actor *models.User, profile *models.Profile) bool {
	if actor == nil || profile == nil {
		return false
	}
	return actor.IsSuperuser || actor.ID == profile.UserID
}

// CanChangeRole reports whether actor may change a profile role.
func CanChangeRole(actor *models.User) bool {
	if actor == nil {
		return false
	}
	return actor.IsSuperuser || actor.Role() == models.RoleAdmin
}

// CanSee reports whether actor may read target's user or profile record.
func CanSee(actor *models.User, targetUserID uint) bool {
	if actor == nil {
		return false
	}
	return actor.IsSuperuser || actor.ID == targetUserID
}
