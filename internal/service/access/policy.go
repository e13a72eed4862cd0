// Package access decides whether an authenticated user may perform an
// operation. Every check is a pure function of the user and its arguments.
package access

import (
	"github.com/jwalitptl/hpms-api/internal/model"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

// Role sets used by route declarations.
var (
	Clinical      = []string{model.RoleAdmin, model.RoleDoctor, model.RoleNurse}
	Practitioners = []string{model.RoleAdmin, model.RoleDoctor}
	AdminOnly     = []string{model.RoleAdmin}
)

// RequireRole fails with Forbidden unless user holds one of allowed.
func RequireRole(user *model.User, allowed ...string) error {
	if user == nil {
		return apperrors.Unauthorized("not authenticated", nil)
	}
	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}
	return apperrors.Forbidden("insufficient permissions")
}

// RequireSelfOrAdmin fails with Forbidden unless user is an admin or is the
// target user.
func RequireSelfOrAdmin(user *model.User, targetUserID int64) error {
	if user == nil {
		return apperrors.Unauthorized("not authenticated", nil)
	}
	if user.Role == model.RoleAdmin || user.ID == targetUserID {
		return nil
	}
	return apperrors.Forbidden("not enough permissions")
}
