// Package access decides which drives an actor may see or act on.
//
// The placement office sees everything. A recruiter is scoped to the drives
// listed in its assigned drives and nothing else. Students may read drive
// listings but never act on a drive.
package access

import (
	"slices"

	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/types"
)

// Action distinguishes reads from writes on a drive.
type Action int

const (
	// ActionView covers reading a drive, its applications and eligible students.
	ActionView Action = iota
	// ActionManage covers status updates and interview scheduling.
	ActionManage
)

func (a Action) String() string {
	if a == ActionManage {
		return "manage"
	}
	return "view"
}

// CanAccessDrive reports whether actor may read driveID.
func CanAccessDrive(actor *types.Actor, driveID string) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case types.RoleTPO:
		return true
	case types.RoleRecruiter:
		return actor.HasDrive(driveID)
	case types.RoleStudent:
		return true
	}
	return false
}

// Authorize returns an authorization error unless actor may perform action on driveID.
func Authorize(actor *types.Actor, driveID string, action Action) error {
	if actor == nil {
		return apperr.Authorization("authentication required")
	}
	switch actor.Role {
	case types.RoleTPO:
		return nil
	case types.RoleRecruiter:
		if actor.HasDrive(driveID) {
			return nil
		}
		return apperr.Authorization("drive is outside your assigned scope")
	case types.RoleStudent:
		if action == ActionView {
			return nil
		}
		return apperr.Authorization("students cannot %s drives", action)
	}
	return apperr.Authorization("unknown role %q", actor.Role)
}

// RequireRole returns an authorization error unless actor has one of roles.
func RequireRole(actor *types.Actor, roles ...types.Role) error {
	if actor == nil {
		return apperr.Authorization("authentication required")
	}
	if slices.Contains(roles, actor.Role) {
		return nil
	}
	return apperr.Authorization("role %s is not permitted for this operation", actor.Role)
}

// Visibility is the set of drives an actor may list.
type Visibility struct {
	All bool
	IDs []string
}

// Scoped reports whether listings must be restricted to IDs.
func (v Visibility) Scoped() bool {
	return !v.All
}

// VisibleDrives returns the drives actor may list. A recruiter with no
// assigned drives gets an empty, not failing, visibility.
func VisibleDrives(actor *types.Actor) Visibility {
	if actor == nil {
		return Visibility{}
	}
	switch actor.Role {
	case types.RoleTPO, types.RoleStudent:
		return Visibility{All: true}
	case types.RoleRecruiter:
		return Visibility{IDs: slices.Clone(actor.AssignedDrives)}
	}
	return Visibility{}
}
