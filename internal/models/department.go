package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment workflow states shared by asset and shot department assignments.
const (
	AssignmentStatusPending    = "pending"
	AssignmentStatusInProgress = "in_progress"
	AssignmentStatusReview     = "review"
	AssignmentStatusApproved   = "approved"
	AssignmentStatusRejected   = "rejected"
	AssignmentStatusCompleted  = "completed"
)

const (
	AssignmentPriorityLow    = "low"
	AssignmentPriorityMedium = "medium"
	AssignmentPriorityHigh   = "high"
	AssignmentPriorityUrgent = "urgent"
)

// DepartmentAssignmentStatuses lists states in workflow order.
var DepartmentAssignmentStatuses = []string{
	AssignmentStatusPending,
	AssignmentStatusInProgress,
	AssignmentStatusReview,
	AssignmentStatusApproved,
	AssignmentStatusRejected,
	AssignmentStatusCompleted,
}

// DepartmentAssignmentPriorities lists priorities in ascending order.
var DepartmentAssignmentPriorities = []string{
	AssignmentPriorityLow,
	AssignmentPriorityMedium,
	AssignmentPriorityHigh,
	AssignmentPriorityUrgent,
}

// Department is a production workspace (modeling, rigging, compositing, ...).
// DepartmentType is unique: one row per catalog entry.
type Department struct {
	BaseModel

	Name           string `gorm:"not null" json:"name"`
	DepartmentType string `gorm:"uniqueIndex;not null" json:"department_type"`
	Description    string `gorm:"type:text" json:"description"`
	Icon           string `json:"icon"`
	Color          string `gorm:"default:'#1976d2'" json:"color"`

	IsActive     bool `gorm:"default:true" json:"is_active"`
	DisplayOrder int  `gorm:"default:0" json:"display_order"`
}

// StoryDepartment activates a department for a story.
type StoryDepartment struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	StoryID      string      `gorm:"type:uuid;not null;uniqueIndex:idx_story_departments" json:"story_id"`
	DepartmentID string      `gorm:"type:uuid;not null;uniqueIndex:idx_story_departments" json:"department_id"`
	Department   *Department `json:"department,omitempty"`

	IsActive bool   `gorm:"default:true" json:"is_active"`
	Notes    string `gorm:"type:text" json:"notes"`

	AssignedByID *string   `gorm:"type:uuid" json:"assigned_by_id"`
	AssignedAt   time.Time `gorm:"autoCreateTime;index" json:"assigned_at"`
}

func (s *StoryDepartment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// AssetDepartmentAssignment queues an asset for a department.
type AssetDepartmentAssignment struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	AssetID      string      `gorm:"type:uuid;not null;index" json:"asset_id"`
	Asset        *StoryAsset `json:"asset,omitempty"`
	DepartmentID string      `gorm:"type:uuid;not null;index" json:"department_id"`
	Department   *Department `json:"department,omitempty"`

	Status   string     `gorm:"default:'pending';index" json:"status"`
	Priority string     `gorm:"default:'medium'" json:"priority"`
	DueDate  *time.Time `json:"due_date"`
	Notes    string     `gorm:"type:text" json:"notes"`

	AssignedByID *string   `gorm:"type:uuid" json:"assigned_by_id"`
	AssignedAt   time.Time `gorm:"autoCreateTime;index" json:"assigned_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *AssetDepartmentAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ShotDepartmentAssignment queues a shot for a department.
type ShotDepartmentAssignment struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	ShotID       string      `gorm:"type:uuid;not null;index" json:"shot_id"`
	Shot         *Shot       `json:"shot,omitempty"`
	DepartmentID string      `gorm:"type:uuid;not null;index" json:"department_id"`
	Department   *Department `json:"department,omitempty"`

	Status   string     `gorm:"default:'pending';index" json:"status"`
	Priority string     `gorm:"default:'medium'" json:"priority"`
	DueDate  *time.Time `json:"due_date"`
	Notes    string     `gorm:"type:text" json:"notes"`

	AssignedByID *string   `gorm:"type:uuid" json:"assigned_by_id"`
	AssignedAt   time.Time `gorm:"autoCreateTime;index" json:"assigned_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *ShotDepartmentAssignment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
