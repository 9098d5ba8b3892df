package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/costs"
	"github.com/virtualstage/backlot/internal/models"
)

// Assignment statuses that count towards the talent section of a cost
// breakdown. Earlier stages (proposed, contacted, negotiating) carry no
// committed spend yet.
var costedAssignmentStatuses = []string{
	models.TalentStatusConfirmed,
	models.TalentStatusInProgress,
	models.TalentStatusCompleted,
}

// AssetCostLine is one asset in a story cost breakdown.
type AssetCostLine struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	AssetType     string  `json:"asset_type"`
	Complexity    string  `json:"complexity"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// ShotCostLine is one shot in a story cost breakdown.
type ShotCostLine struct {
	ID             string  `json:"id"`
	ShotNumber     int     `json:"shot_number"`
	SequenceNumber int     `json:"sequence_number"`
	Complexity     string  `json:"complexity"`
	EstimatedTime  string  `json:"estimated_time"`
	EstimatedCost  float64 `json:"estimated_cost"`
}

// SequenceCostLine is one sequence in a story cost breakdown.
type SequenceCostLine struct {
	ID             string  `json:"id"`
	SequenceNumber int     `json:"sequence_number"`
	Title          string  `json:"title"`
	TotalShots     int     `json:"total_shots"`
	EstimatedCost  float64 `json:"estimated_cost"`
}

// TalentCostLine is one committed talent assignment in a story cost
// breakdown.
type TalentCostLine struct {
	AssignmentID string  `json:"assignment_id"`
	TalentID     string  `json:"talent_id"`
	TalentName   string  `json:"talent_name"`
	EntityType   string  `json:"entity_type"`
	EntityID     string  `json:"entity_id"`
	EntityName   string  `json:"entity_name"`
	RoleType     string  `json:"role_type"`
	Status       string  `json:"status"`
	Cost         float64 `json:"cost"`
}

// CostTotals aggregates the breakdown sections. Production covers assets and
// shots, which is what the story's stored total tracks; the grand total adds
// committed talent spend on top.
type CostTotals struct {
	Assets     float64 `json:"assets"`
	Shots      float64 `json:"shots"`
	Talent     float64 `json:"talent"`
	Production float64 `json:"production"`
	GrandTotal float64 `json:"grand_total"`
}

// CostBreakdownSections groups the line items of a story cost breakdown.
type CostBreakdownSections struct {
	Assets    []AssetCostLine    `json:"assets"`
	Shots     []ShotCostLine     `json:"shots"`
	Sequences []SequenceCostLine `json:"sequences"`
	Talent    []TalentCostLine   `json:"talent"`
}

// CostBreakdown is the full cost picture of a story, derived from the stored
// per-child estimates plus committed talent assignments.
type CostBreakdown struct {
	Breakdown   CostBreakdownSections `json:"breakdown"`
	Totals      CostTotals            `json:"totals"`
	BudgetRange string                `json:"budget_range"`
}

// CostService computes story cost breakdowns from persisted estimates.
type CostService struct {
	db *gorm.DB
}

// NewCostService constructs a CostService.
func NewCostService(db *gorm.DB) (*CostService, error) {
	if db == nil {
		return nil, errors.New("cost service: db is required")
	}
	return &CostService{db: db}, nil
}

// StoryBreakdown assembles the cost breakdown for a story. Asset, shot and
// sequence lines come straight from the stored estimates; talent lines cover
// confirmed-or-later assignments priced from the agreed rate or the talent's
// own rates.
func (s *CostService) StoryBreakdown(ctx context.Context, storyID string) (*CostBreakdown, error) {
	ctx = ensureContext(ctx)

	var story models.Story
	if err := s.db.WithContext(ctx).First(&story, "id = ?", storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, fmt.Errorf("cost service: find story: %w", err)
	}

	var assets []models.StoryAsset
	if err := s.db.WithContext(ctx).
		Where("story_id = ?", story.ID).
		Order("name ASC").
		Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("cost service: list assets: %w", err)
	}

	var sequences []models.Sequence
	if err := s.db.WithContext(ctx).
		Where("story_id = ?", story.ID).
		Order("sequence_number ASC").
		Find(&sequences).Error; err != nil {
		return nil, fmt.Errorf("cost service: list sequences: %w", err)
	}

	var shots []models.Shot
	if err := s.db.WithContext(ctx).
		Where("story_id = ?", story.ID).
		Order("shot_number ASC").
		Find(&shots).Error; err != nil {
		return nil, fmt.Errorf("cost service: list shots: %w", err)
	}

	var characters []models.Character
	if err := s.db.WithContext(ctx).
		Where("story_id = ?", story.ID).
		Find(&characters).Error; err != nil {
		return nil, fmt.Errorf("cost service: list characters: %w", err)
	}

	sequenceNumbersByID := make(map[string]int, len(sequences))
	for _, sequence := range sequences {
		sequenceNumbersByID[sequence.ID] = sequence.SequenceNumber
	}
	characterNamesByID := make(map[string]string, len(characters))
	for _, character := range characters {
		characterNamesByID[character.ID] = character.Name
	}
	assetNamesByID := make(map[string]string, len(assets))
	for _, asset := range assets {
		assetNamesByID[asset.ID] = asset.Name
	}
	shotNumbersByID := make(map[string]int, len(shots))
	for _, shot := range shots {
		shotNumbersByID[shot.ID] = shot.ShotNumber
	}

	breakdown := CostBreakdownSections{
		Assets:    []AssetCostLine{},
		Shots:     []ShotCostLine{},
		Sequences: []SequenceCostLine{},
		Talent:    []TalentCostLine{},
	}
	totals := CostTotals{}

	for _, asset := range assets {
		breakdown.Assets = append(breakdown.Assets, AssetCostLine{
			ID:            asset.ID,
			Name:          asset.Name,
			AssetType:     asset.AssetType,
			Complexity:    asset.Complexity,
			EstimatedCost: asset.EstimatedCost,
		})
		totals.Assets += asset.EstimatedCost
	}
	for _, shot := range shots {
		line := ShotCostLine{
			ID:            shot.ID,
			ShotNumber:    shot.ShotNumber,
			Complexity:    shot.Complexity,
			EstimatedTime: shot.EstimatedTime,
			EstimatedCost: shot.EstimatedCost,
		}
		if shot.SequenceID != nil {
			line.SequenceNumber = sequenceNumbersByID[*shot.SequenceID]
		}
		breakdown.Shots = append(breakdown.Shots, line)
		totals.Shots += shot.EstimatedCost
	}
	for _, sequence := range sequences {
		breakdown.Sequences = append(breakdown.Sequences, SequenceCostLine{
			ID:             sequence.ID,
			SequenceNumber: sequence.SequenceNumber,
			Title:          sequence.Title,
			TotalShots:     sequence.TotalShots,
			EstimatedCost:  sequence.EstimatedCost,
		})
	}

	characterAssignments, err := s.storyCharacterAssignments(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	for _, assignment := range characterAssignments {
		line := TalentCostLine{
			AssignmentID: assignment.ID,
			TalentID:     assignment.TalentID,
			EntityType:   "character",
			EntityID:     assignment.CharacterID,
			EntityName:   characterNamesByID[assignment.CharacterID],
			RoleType:     assignment.RoleType,
			Status:       assignment.Status,
			Cost:         assignmentCost(assignment.RateAgreed, nil, assignment.Talent),
		}
		if assignment.Talent != nil {
			line.TalentName = assignment.Talent.Name
		}
		breakdown.Talent = append(breakdown.Talent, line)
		totals.Talent += line.Cost
	}

	assetAssignments, err := s.storyAssetAssignments(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	for _, assignment := range assetAssignments {
		line := TalentCostLine{
			AssignmentID: assignment.ID,
			TalentID:     assignment.TalentID,
			EntityType:   "asset",
			EntityID:     assignment.AssetID,
			EntityName:   assetNamesByID[assignment.AssetID],
			RoleType:     assignment.RoleType,
			Status:       assignment.Status,
			Cost:         assignmentCost(assignment.RateAgreed, assignment.EstimatedHours, assignment.Talent),
		}
		if assignment.Talent != nil {
			line.TalentName = assignment.Talent.Name
		}
		breakdown.Talent = append(breakdown.Talent, line)
		totals.Talent += line.Cost
	}

	shotAssignments, err := s.storyShotAssignments(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	for _, assignment := range shotAssignments {
		line := TalentCostLine{
			AssignmentID: assignment.ID,
			TalentID:     assignment.TalentID,
			EntityType:   "shot",
			EntityID:     assignment.ShotID,
			EntityName:   fmt.Sprintf("Shot %d", shotNumbersByID[assignment.ShotID]),
			RoleType:     assignment.RoleType,
			Status:       assignment.Status,
			Cost:         assignmentCost(assignment.RateAgreed, assignment.EstimatedHours, assignment.Talent),
		}
		if assignment.Talent != nil {
			line.TalentName = assignment.Talent.Name
		}
		breakdown.Talent = append(breakdown.Talent, line)
		totals.Talent += line.Cost
	}

	totals.Production = totals.Assets + totals.Shots
	totals.GrandTotal = totals.Production + totals.Talent

	return &CostBreakdown{
		Breakdown:   breakdown,
		Totals:      totals,
		BudgetRange: costs.FormatBudgetRange(totals.GrandTotal),
	}, nil
}

func (s *CostService) storyCharacterAssignments(ctx context.Context, storyID string) ([]models.CharacterTalentAssignment, error) {
	var assignments []models.CharacterTalentAssignment
	err := s.db.WithContext(ctx).
		Joins("JOIN characters ON characters.id = character_talent_assignments.character_id").
		Where("characters.story_id = ? AND character_talent_assignments.status IN ?", storyID, costedAssignmentStatuses).
		Preload("Talent").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("cost service: list character assignments: %w", err)
	}
	return assignments, nil
}

func (s *CostService) storyAssetAssignments(ctx context.Context, storyID string) ([]models.AssetTalentAssignment, error) {
	var assignments []models.AssetTalentAssignment
	err := s.db.WithContext(ctx).
		Joins("JOIN story_assets ON story_assets.id = asset_talent_assignments.asset_id").
		Where("story_assets.story_id = ? AND asset_talent_assignments.status IN ?", storyID, costedAssignmentStatuses).
		Preload("Talent").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("cost service: list asset assignments: %w", err)
	}
	return assignments, nil
}

func (s *CostService) storyShotAssignments(ctx context.Context, storyID string) ([]models.ShotTalentAssignment, error) {
	var assignments []models.ShotTalentAssignment
	err := s.db.WithContext(ctx).
		Joins("JOIN shots ON shots.id = shot_talent_assignments.shot_id").
		Where("shots.story_id = ? AND shot_talent_assignments.status IN ?", storyID, costedAssignmentStatuses).
		Preload("Talent").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("cost service: list shot assignments: %w", err)
	}
	return assignments, nil
}

// assignmentCost prices a single assignment. With known hours the hourly rate
// applies (agreed rate first, then the talent's hourly rate, then a derived
// rate from the daily rate, then the default labor rate). Without hours the
// agreed rate is treated as a flat fee, falling back to one day of the
// talent's time.
func assignmentCost(rateAgreed *float64, estimatedHours *int, talent *models.Talent) float64 {
	hours := 0
	if estimatedHours != nil && *estimatedHours > 0 {
		hours = *estimatedHours
	}

	if hours > 0 {
		rate := 0.0
		switch {
		case rateAgreed != nil:
			rate = *rateAgreed
		case talent != nil && talent.HourlyRate != nil:
			rate = *talent.HourlyRate
		case talent != nil && talent.DailyRate != nil:
			rate = *talent.DailyRate / 8
		default:
			rate = costs.DefaultLaborRatePerHour
		}
		return rate * float64(hours)
	}

	switch {
	case rateAgreed != nil:
		return *rateAgreed
	case talent != nil && talent.DailyRate != nil:
		return *talent.DailyRate
	case talent != nil && talent.HourlyRate != nil:
		return *talent.HourlyRate * 8
	default:
		return costs.DefaultLaborRatePerHour * 8
	}
}
