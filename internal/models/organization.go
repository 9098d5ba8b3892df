package models

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Organization struct {
	BaseModel

	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `json:"description"`
	LogoURL     string         `json:"logo_url"`
	Settings    datatypes.JSON `json:"settings"`

	Members []User `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Teams   []Team `gorm:"foreignKey:OrganizationID" json:"teams,omitempty"`
}

// BeforeCreate derives the slug from the name when one is not supplied.
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if err := o.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if o.Slug == "" {
		o.Slug = SlugifyName(o.Name)
	}
	return nil
}

// SlugifyName lowercases a name and replaces spaces with hyphens.
func SlugifyName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
