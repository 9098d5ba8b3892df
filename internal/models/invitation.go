package models

import "time"

// Invitation statuses. Pending invitations may become accepted, cancelled,
// or expired; every other transition is rejected.
const (
	InvitationStatusPending   = "pending"
	InvitationStatusAccepted  = "accepted"
	InvitationStatusExpired   = "expired"
	InvitationStatusCancelled = "cancelled"
)

// Invitation asks an email address to join an organization with a
// pre-assigned team and role.
type Invitation struct {
	BaseModel

	Email string `gorm:"not null;index" json:"email"`

	OrganizationID string        `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization `json:"organization,omitempty"`
	TeamID         *string       `gorm:"type:uuid;index" json:"team_id"`
	Team           *Team         `json:"team,omitempty"`
	RoleID         *string       `gorm:"type:uuid" json:"role_id"`
	Role           *Role         `json:"role,omitempty"`

	Token       string `gorm:"uniqueIndex;not null" json:"token"`
	InvitedByID string `gorm:"type:uuid;not null" json:"invited_by_id"`
	InvitedBy   *User  `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`

	Status     string     `gorm:"default:'pending';index" json:"status"`
	ExpiresAt  time.Time  `gorm:"index" json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at"`
}

// IsExpired reports whether the invitation deadline has passed.
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
