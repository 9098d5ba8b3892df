package models

// StoryAccess grants a user or a team (exactly one of the two) scoped
// access to a story owned by someone else.
type StoryAccess struct {
	BaseModel

	StoryID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_story_access_user;uniqueIndex:idx_story_access_team" json:"story_id"`
	Story   *Story `json:"story,omitempty"`

	UserID *string `gorm:"type:uuid;uniqueIndex:idx_story_access_user" json:"user_id"`
	User   *User   `json:"user,omitempty"`
	TeamID *string `gorm:"type:uuid;uniqueIndex:idx_story_access_team" json:"team_id"`
	Team   *Team   `json:"team,omitempty"`

	CanView   bool `gorm:"default:true" json:"can_view"`
	CanEdit   bool `gorm:"default:false" json:"can_edit"`
	CanDelete bool `gorm:"default:false" json:"can_delete"`

	GrantedByID *string `gorm:"type:uuid" json:"granted_by_id"`
}
