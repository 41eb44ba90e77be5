package services

import (
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
)

// Caller identifies who performs an operation.
type Caller struct {
	UserID      int64
	UserGroupID int64
	IsAdmin     bool
}

// canEdit reports whether caller may modify an account at all.
func (c Caller) canEdit(current *models.AccountView) bool {
	switch {
	case c.IsAdmin, c.UserID == current.UserID:
		return true
	case current.OtherUserEdit:
		return true
	case current.OtherUserGroupEdit && c.UserGroupID == current.UserGroupID:
		return true
	}
	return false
}

// SanitizeAccountUpdate decides which protected fields of req the caller may
// write before it reaches the repository. The owner can only be changed by
// an admin; the owning group by an admin or the owner. Fields the caller may
// not change are reset to their current values and the matching Change flag
// is cleared. Callers with no edit right get common.ErrorUnauthorized.
func SanitizeAccountUpdate(caller Caller, current *models.AccountView, req *models.AccountRequest) error {
	if !caller.canEdit(current) {
		return fmt.Errorf("account %d: %w", current.ID, common.ErrorUnauthorized)
	}

	req.ChangeOwner = caller.IsAdmin && req.UserID > 0 && req.UserID != current.UserID
	if !req.ChangeOwner {
		req.UserID = current.UserID
	}

	req.ChangeUserGroup = (caller.IsAdmin || caller.UserID == current.UserID) &&
		req.UserGroupID > 0 && req.UserGroupID != current.UserGroupID
	if !req.ChangeUserGroup {
		req.UserGroupID = current.UserGroupID
	}

	req.UserEditID = caller.UserID
	return nil
}
