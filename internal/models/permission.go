package models

// Permission is a catalog row synced from the in-process registry. The ID is
// the permission string itself ("stories.view").
type Permission struct {
	BaseModel

	Module      string `gorm:"not null;index" json:"module"`
	Description string `json:"description"`
}
