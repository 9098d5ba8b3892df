package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Role carries a flat list of permission ID strings in a JSON column.
type Role struct {
	BaseModel

	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	Description string         `json:"description"`
	IsSystem    bool           `gorm:"default:false" json:"is_system"`
	Permissions datatypes.JSON `json:"permissions"`

	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

// PermissionList decodes the permissions column into a string slice.
func (r *Role) PermissionList() []string {
	if len(r.Permissions) == 0 {
		return nil
	}
	var perms []string
	if err := json.Unmarshal(r.Permissions, &perms); err != nil {
		return nil
	}
	return perms
}

// PermissionsJSON encodes a permission ID list for the permissions column.
func PermissionsJSON(ids []string) (datatypes.JSON, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// HasPermission reports whether the role grants the permission directly or
// via a module wildcard ("stories.*").
func (r *Role) HasPermission(permissionID string) bool {
	for _, perm := range r.PermissionList() {
		if perm == permissionID {
			return true
		}
		if len(perm) > 2 && perm[len(perm)-2:] == ".*" {
			module := perm[:len(perm)-2]
			if len(permissionID) > len(module) && permissionID[:len(module)] == module && permissionID[len(module)] == '.' {
				return true
			}
		}
	}
	return false
}
