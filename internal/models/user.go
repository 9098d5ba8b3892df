package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User describes platform users with their organization, team, and role links.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
	Phone     string `json:"phone"`
	Bio       string `gorm:"type:text" json:"bio"`

	IsSuperuser bool `gorm:"default:false" json:"is_superuser"`
	IsActive    bool `gorm:"default:true" json:"is_active"`

	OrganizationID *string       `gorm:"type:uuid" json:"organization_id"`
	Organization   *Organization `json:"organization,omitempty"`
	TeamID         *string       `gorm:"type:uuid" json:"team_id"`
	Team           *Team         `json:"team,omitempty"`
	RoleID         *string       `gorm:"type:uuid" json:"role_id"`
	Role           *Role         `json:"role,omitempty"`

	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`
	LastLoginIP string     `json:"last_login_ip"`

	FailedAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil    *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName joins the first and last names, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
