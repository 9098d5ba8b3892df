package models

import "gorm.io/datatypes"

// Chat stores a per-user conversation. Messages is a JSON array of
// {id, role, content, timestamp} objects replaced wholesale on update.
type Chat struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"-"`

	Title    string         `gorm:"default:'New Chat'" json:"title"`
	Messages datatypes.JSON `json:"messages"`
}
