package service

import (
	"fmt"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

// RequireRole fails unless the caller holds one of the roles.
func RequireRole(p entity.Principal, roles ...entity.Role) error {
	for _, role := range roles {
		if p.Is(role) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", entity.ErrRoleRequired, p.Role)
}

// RequireOwnership fails unless the caller is the owner of the resource.
func RequireOwnership(p entity.Principal, ownerID int64) error {
	if p.ID != ownerID {
		return entity.ErrNotOwner
	}
	return nil
}
