// Package authz holds the single ownership check applied before any mutating or
// private read operation.
package authz

import (
	"errors"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
)

// ErrForbidden is returned when the principal may not perform the action.
var ErrForbidden = errors.New("forbidden")

// Action is what the principal wants to do with a resource.
type Action int

const (
	Read Action = iota
	Modify
)

func (a Action) String() string {
	if a == Modify {
		return "modify"
	}
	return "read"
}

// Principal is the authenticated caller. The zero value is an anonymous caller.
type Principal struct {
	UserID uint
	Role   string
}

// Anonymous reports whether the principal carries no identity.
func (p Principal) Anonymous() bool {
	return p.UserID == 0
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Resource is anything with an owner and a visibility flag.
type Resource interface {
	OwnerID() uint
	IsPublic() bool
}

// Check returns nil when p may perform action on r and ErrForbidden otherwise.
// Public resources are readable by anyone. Owners and admins may read and modify.
func Check(p Principal, r Resource, action Action) error {
	if action == Read && r.IsPublic() {
		return nil
	}
	if p.Anonymous() {
		return ErrForbidden
	}
	if p.IsAdmin() || r.OwnerID() == p.UserID {
		return nil
	}
	return ErrForbidden
}
