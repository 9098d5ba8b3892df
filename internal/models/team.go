package models

type Team struct {
	BaseModel

	OrganizationID string        `gorm:"type:uuid;not null;index;uniqueIndex:idx_teams_org_name" json:"organization_id"`
	Organization   *Organization `json:"organization,omitempty"`

	Name        string `gorm:"not null;uniqueIndex:idx_teams_org_name" json:"name"`
	Description string `json:"description"`

	Members []User `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}
