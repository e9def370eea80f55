// Package permissions holds the fixed role enumeration and the fail-closed
// role check used before protected mutations.
package permissions

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Permission = string

const (
	Admin            Permission = "ADMIN"
	User             Permission = "USER"
	ItemCreate       Permission = "ITEMCREATE"
	ItemUpdate       Permission = "ITEMUPDATE"
	ItemDelete       Permission = "ITEMDELETE"
	PermissionUpdate Permission = "PERMISSIONUPDATE"
)

var All = []Permission{Admin, User, ItemCreate, ItemUpdate, ItemDelete, PermissionUpdate}

var ErrForbidden = errors.New("you do not have sufficient permissions")

func Valid(p Permission) bool {
	return slices.Contains(All, p)
}

// Has reports whether user holds at least one of required.
func Has(user *models.User, required ...Permission) bool {
	if user == nil || len(user.Permissions) == 0 {
		return false
	}
	for _, p := range required {
		if slices.Contains(user.Permissions, p) {
			return true
		}
	}
	return false
}

func Check(user *models.User, required ...Permission) error {
	if !Has(user, required...) {
		return fmt.Errorf("%w: need one of %v", ErrForbidden, required)
	}
	return nil
}

// Normalize validates and de-duplicates a permission list, keeping order.
func Normalize(perms []string) ([]string, error) {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if !Valid(p) {
			return nil, fmt.Errorf("unknown permission %q", p)
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out, nil
}
