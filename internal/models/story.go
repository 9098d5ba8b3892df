package models

import (
	"gorm.io/datatypes"
)

// Complexity grades used by assets and shots.
const (
	ComplexityLow    = "low"
	ComplexityMedium = "medium"
	ComplexityHigh   = "high"
)

// Asset types recognised by the cost calculator.
const (
	AssetTypeModel       = "model"
	AssetTypeProp        = "prop"
	AssetTypeEnvironment = "environment"
	AssetTypeEffect      = "effect"
)

// Story stores a parsed screenplay alongside the raw text it came from.
// ParsedData keeps the full parser payload, enriched after persistence with
// the database IDs of each child row plus the computed totals.
type Story struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `json:"user,omitempty"`

	Title              string         `gorm:"not null" json:"title"`
	RawText            string         `gorm:"type:text" json:"raw_text"`
	ParsedData         datatypes.JSON `json:"parsed_data"`
	Summary            string         `gorm:"type:text" json:"summary"`
	TotalShots         int            `gorm:"default:0" json:"total_shots"`
	EstimatedTotalTime string         `json:"estimated_total_time"`
	TotalEstimatedCost float64        `gorm:"type:decimal(12,2);default:0" json:"total_estimated_cost"`
	BudgetRange        string         `json:"budget_range"`

	Characters []Character  `gorm:"foreignKey:StoryID" json:"characters,omitempty"`
	Locations  []Location   `gorm:"foreignKey:StoryID" json:"locations,omitempty"`
	Assets     []StoryAsset `gorm:"foreignKey:StoryID" json:"assets,omitempty"`
	Sequences  []Sequence   `gorm:"foreignKey:StoryID" json:"sequences,omitempty"`
	Shots      []Shot       `gorm:"foreignKey:StoryID" json:"shots,omitempty"`
}

// Character extracted from a story.
type Character struct {
	BaseModel

	StoryID string `gorm:"type:uuid;not null;index" json:"story_id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Role        string `gorm:"default:'supporting'" json:"role"`
	Appearances int    `gorm:"default:0" json:"appearances"`

	Images []CharacterImage `gorm:"foreignKey:CharacterID" json:"images,omitempty"`
}

// Location extracted from a story.
type Location struct {
	BaseModel

	StoryID string `gorm:"type:uuid;not null;index" json:"story_id"`

	Name         string `gorm:"not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	LocationType string `gorm:"default:'outdoor'" json:"location_type"`
	Scenes       int    `gorm:"default:0" json:"scenes"`

	Images []LocationImage `gorm:"foreignKey:LocationID" json:"images,omitempty"`
}

// StoryAsset is a producible asset (model, prop, environment, effect)
// extracted from a story.
type StoryAsset struct {
	BaseModel

	StoryID string `gorm:"type:uuid;not null;index" json:"story_id"`

	Name          string  `gorm:"not null" json:"name"`
	AssetType     string  `gorm:"default:'prop'" json:"asset_type"`
	Description   string  `gorm:"type:text" json:"description"`
	Complexity    string  `gorm:"default:'medium'" json:"complexity"`
	EstimatedCost float64 `gorm:"type:decimal(12,2);default:0" json:"estimated_cost"`

	Images []AssetImage `gorm:"foreignKey:AssetID" json:"images,omitempty"`
}

// Sequence groups the shots that make up one scene.
type Sequence struct {
	BaseModel

	StoryID string `gorm:"type:uuid;not null;index" json:"story_id"`

	SequenceNumber int     `gorm:"not null" json:"sequence_number"`
	Title          string  `json:"title"`
	Description    string  `gorm:"type:text" json:"description"`
	LocationID     *string `gorm:"type:uuid" json:"location_id"`

	Location   *Location   `json:"location,omitempty"`
	Characters []Character `gorm:"many2many:sequence_characters;" json:"characters,omitempty"`
	Shots      []Shot      `gorm:"foreignKey:SequenceID" json:"shots,omitempty"`

	EstimatedTime string  `json:"estimated_time"`
	TotalShots    int     `gorm:"default:0" json:"total_shots"`
	EstimatedCost float64 `gorm:"type:decimal(12,2);default:0" json:"estimated_cost"`
}

// Shot is a single camera take within a sequence.
type Shot struct {
	BaseModel

	StoryID    string  `gorm:"type:uuid;not null;index" json:"story_id"`
	SequenceID *string `gorm:"type:uuid;index" json:"sequence_id"`

	ShotNumber  int    `gorm:"not null" json:"shot_number"`
	Description string `gorm:"type:text" json:"description"`

	Characters []Character `gorm:"many2many:shot_characters;" json:"characters,omitempty"`
	LocationID *string     `gorm:"type:uuid" json:"location_id"`
	Location   *Location   `json:"location,omitempty"`

	CameraAngle         string         `json:"camera_angle"`
	Complexity          string         `gorm:"default:'medium'" json:"complexity"`
	EstimatedTime       string         `json:"estimated_time"`
	SpecialRequirements datatypes.JSON `json:"special_requirements"`
	EstimatedCost       float64        `gorm:"type:decimal(12,2);default:0" json:"estimated_cost"`
}
