package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Talent types for external contractors.
const (
	TalentTypeVoiceActor     = "voice_actor"
	TalentType3DArtist       = "3d_artist"
	TalentTypeModeler        = "modeler"
	TalentTypeAnimator       = "animator"
	TalentTypeRigger         = "rigger"
	TalentTypeTextureArtist  = "texture_artist"
	TalentTypeLightingArtist = "lighting_artist"
	TalentTypeCompositor     = "compositor"
	TalentTypeOther          = "other"
)

const (
	TalentAvailable   = "available"
	TalentBusy        = "busy"
	TalentUnavailable = "unavailable"
)

// Talent assignment workflow states.
const (
	TalentStatusProposed    = "proposed"
	TalentStatusContacted   = "contacted"
	TalentStatusNegotiating = "negotiating"
	TalentStatusConfirmed   = "confirmed"
	TalentStatusInProgress  = "in_progress"
	TalentStatusCompleted   = "completed"
)

// TalentTypes lists the pool categories.
var TalentTypes = []string{
	TalentTypeVoiceActor,
	TalentType3DArtist,
	TalentTypeModeler,
	TalentTypeAnimator,
	TalentTypeRigger,
	TalentTypeTextureArtist,
	TalentTypeLightingArtist,
	TalentTypeCompositor,
	TalentTypeOther,
}

// TalentAvailabilityStatuses lists the pool availability states.
var TalentAvailabilityStatuses = []string{
	TalentAvailable,
	TalentBusy,
	TalentUnavailable,
}

// Assignment status sets per entity. Character work has no in-progress
// stage; asset and shot work does.
var (
	CharacterAssignmentStatuses = []string{
		TalentStatusProposed,
		TalentStatusContacted,
		TalentStatusNegotiating,
		TalentStatusConfirmed,
		TalentStatusCompleted,
	}
	WorkAssignmentStatuses = []string{
		TalentStatusProposed,
		TalentStatusContacted,
		TalentStatusNegotiating,
		TalentStatusConfirmed,
		TalentStatusInProgress,
		TalentStatusCompleted,
	}
)

// Role types per entity kind.
var (
	CharacterAssignmentRoles = []string{"voice_actor", "motion_capture", "reference_model"}
	AssetAssignmentRoles     = []string{"modeler", "texture_artist", "rigger", "concept_artist"}
	ShotAssignmentRoles      = []string{"animator", "lighting_artist", "compositor", "fx_artist"}
)

// Talent is an external contractor in the shared talent pool.
type Talent struct {
	BaseModel

	Name         string `gorm:"not null;index" json:"name"`
	TalentType   string `gorm:"not null;index" json:"talent_type"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PortfolioURL string `json:"portfolio_url"`
	Notes        string `gorm:"type:text" json:"notes"`

	HourlyRate         *float64 `gorm:"type:decimal(10,2)" json:"hourly_rate"`
	DailyRate          *float64 `gorm:"type:decimal(10,2)" json:"daily_rate"`
	AvailabilityStatus string   `gorm:"default:'available';index" json:"availability_status"`

	Specializations datatypes.JSON `json:"specializations"`
	Languages       datatypes.JSON `json:"languages"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id"`
	CreatedBy   *User   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// CharacterTalentAssignment links a voice actor (or mocap/reference talent)
// to a character.
type CharacterTalentAssignment struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	CharacterID string     `gorm:"type:uuid;not null;uniqueIndex:idx_character_talent" json:"character_id"`
	Character   *Character `json:"character,omitempty"`
	TalentID    string     `gorm:"type:uuid;not null;uniqueIndex:idx_character_talent" json:"talent_id"`
	Talent      *Talent    `json:"talent,omitempty"`

	RoleType string `gorm:"default:'voice_actor';uniqueIndex:idx_character_talent" json:"role_type"`
	Status   string `gorm:"default:'proposed';index" json:"status"`

	RateAgreed *float64 `gorm:"type:decimal(10,2)" json:"rate_agreed"`
	Notes      string   `gorm:"type:text" json:"notes"`

	AssignedAt time.Time `gorm:"autoCreateTime;index" json:"assigned_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *CharacterTalentAssignment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// AssetTalentAssignment links an artist to an asset.
type AssetTalentAssignment struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	AssetID  string      `gorm:"type:uuid;not null;uniqueIndex:idx_asset_talent" json:"asset_id"`
	Asset    *StoryAsset `json:"asset,omitempty"`
	TalentID string      `gorm:"type:uuid;not null;uniqueIndex:idx_asset_talent" json:"talent_id"`
	Talent   *Talent     `json:"talent,omitempty"`

	RoleType string `gorm:"default:'modeler';uniqueIndex:idx_asset_talent" json:"role_type"`
	Status   string `gorm:"default:'proposed';index" json:"status"`

	RateAgreed     *float64 `gorm:"type:decimal(10,2)" json:"rate_agreed"`
	EstimatedHours *int     `json:"estimated_hours"`
	ActualHours    *int     `json:"actual_hours"`
	Notes          string   `gorm:"type:text" json:"notes"`

	AssignedAt time.Time `gorm:"autoCreateTime;index" json:"assigned_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *AssetTalentAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ShotTalentAssignment links an animator or specialist to a shot.
type ShotTalentAssignment struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	ShotID   string  `gorm:"type:uuid;not null;uniqueIndex:idx_shot_talent" json:"shot_id"`
	Shot     *Shot   `json:"shot,omitempty"`
	TalentID string  `gorm:"type:uuid;not null;uniqueIndex:idx_shot_talent" json:"talent_id"`
	Talent   *Talent `json:"talent,omitempty"`

	RoleType string `gorm:"default:'animator';uniqueIndex:idx_shot_talent" json:"role_type"`
	Status   string `gorm:"default:'proposed';index" json:"status"`

	RateAgreed     *float64 `gorm:"type:decimal(10,2)" json:"rate_agreed"`
	EstimatedHours *int     `json:"estimated_hours"`
	ActualHours    *int     `json:"actual_hours"`
	Notes          string   `gorm:"type:text" json:"notes"`

	AssignedAt time.Time `gorm:"autoCreateTime;index" json:"assigned_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *ShotTalentAssignment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
