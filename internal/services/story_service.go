package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/ai"
	"github.com/virtualstage/backlot/internal/costs"
	"github.com/virtualstage/backlot/internal/models"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/metrics"
)

var (
	// ErrStoryNotFound is returned when a story does not exist.
	ErrStoryNotFound = apperrors.New("STORY_NOT_FOUND", "Story not found", http.StatusNotFound)
	// ErrStoryNoRawText rejects regeneration of stories imported without text.
	ErrStoryNoRawText = apperrors.New("STORY_NO_RAW_TEXT", "Story has no raw text to regenerate", http.StatusBadRequest)
	// ErrParserNotConfigured is returned when no model API key is configured.
	ErrParserNotConfigured = apperrors.New("PARSER_NOT_CONFIGURED", "Story parsing is not configured", http.StatusServiceUnavailable)
	// ErrStoryParseFailed wraps upstream model failures.
	ErrStoryParseFailed = apperrors.New("STORY_PARSE_FAILED", "Story parsing failed", http.StatusBadGateway)

	ErrCharacterNotFound  = apperrors.New("CHARACTER_NOT_FOUND", "Character not found", http.StatusNotFound)
	ErrLocationNotFound   = apperrors.New("LOCATION_NOT_FOUND", "Location not found", http.StatusNotFound)
	ErrStoryAssetNotFound = apperrors.New("ASSET_NOT_FOUND", "Asset not found", http.StatusNotFound)
	ErrSequenceNotFound   = apperrors.New("SEQUENCE_NOT_FOUND", "Sequence not found", http.StatusNotFound)
	ErrShotNotFound       = apperrors.New("SHOT_NOT_FOUND", "Shot not found", http.StatusNotFound)
)

// StoryParser produces structured production breakdowns from raw script text.
// *ai.Parser satisfies it; tests substitute a stub.
type StoryParser interface {
	ParseStory(ctx context.Context, storyText string) (*ai.ParseResult, error)
	RegenerateStory(ctx context.Context, storyText string, current *ai.ParseResult) (*ai.ParseResult, error)
}

// UpdateCharacterInput applies a partial character edit. Nil fields stay
// untouched.
type UpdateCharacterInput struct {
	Name        *string
	Description *string
	Role        *string
	Appearances *int
}

// UpdateLocationInput applies a partial location edit.
type UpdateLocationInput struct {
	Name         *string
	Description  *string
	LocationType *string
	Scenes       *int
}

// UpdateStoryAssetInput applies a partial asset edit. Changing the type or
// complexity recomputes the stored cost estimate.
type UpdateStoryAssetInput struct {
	Name        *string
	AssetType   *string
	Description *string
	Complexity  *string
}

// UpdateSequenceInput applies a partial sequence edit. LocationID pointing at
// an empty string detaches the location.
type UpdateSequenceInput struct {
	Title         *string
	Description   *string
	EstimatedTime *string
	LocationID    *string
}

// StoryService owns the parse-persist-regenerate lifecycle of stories and
// their extracted children.
type StoryService struct {
	db           *gorm.DB
	parser       StoryParser
	auditService *AuditService
}

// NewStoryService constructs a StoryService. The parser may be nil when no
// model API key is configured; parse and regenerate calls then fail with a
// configuration error while the read paths keep working.
func NewStoryService(db *gorm.DB, parser StoryParser, auditService *AuditService) (*StoryService, error) {
	if db == nil {
		return nil, errors.New("story service: db is required")
	}
	return &StoryService{db: db, parser: parser, auditService: auditService}, nil
}

// ParseStory runs the model over the raw text and persists the story with all
// extracted children in one transaction. The stored parsed_data payload is
// enriched with the database IDs of each child plus the computed totals.
func (s *StoryService) ParseStory(ctx context.Context, userID, storyText string) (*models.Story, error) {
	ctx = ensureContext(ctx)

	storyText = strings.TrimSpace(storyText)
	if storyText == "" {
		return nil, apperrors.NewBadRequest("story_text is required")
	}
	if s.parser == nil {
		return nil, ErrParserNotConfigured
	}

	result, err := s.parser.ParseStory(ctx, storyText)
	if err != nil {
		metrics.StoryParses.WithLabelValues("failure").Inc()
		recordAudit(s.auditService, ctx, AuditEntry{
			UserID: &userID,
			Action: "story.parse",
			Result: "failure",
		})
		return nil, ErrStoryParseFailed.WithInternal(err)
	}
	metrics.StoryParses.WithLabelValues("success").Inc()

	story := models.Story{
		UserID:  userID,
		Title:   truncate(defaultIfEmpty(strings.TrimSpace(result.Summary), "Untitled Story"), 255),
		RawText: storyText,
		Summary: result.Summary,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&story).Error; err != nil {
			return fmt.Errorf("story service: create story: %w", err)
		}
		children, err := createStoryChildren(tx, story.ID, result)
		if err != nil {
			return err
		}
		return finalizeStory(tx, story.ID, result, children)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "story.parse",
		Resource: story.ID,
		Result:   "success",
	})

	return s.loadStory(ctx, story.ID)
}

// List returns the user's own stories plus stories shared with them directly
// or through their team, newest first.
func (s *StoryService) List(ctx context.Context, userID string) ([]models.Story, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", strings.TrimSpace(userID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("story service: find user: %w", err)
	}

	grantQuery := s.db.WithContext(ctx).
		Model(&models.StoryAccess{}).
		Where("can_view = ?", true)
	if user.TeamID != nil {
		grantQuery = grantQuery.Where("user_id = ? OR team_id = ?", user.ID, *user.TeamID)
	} else {
		grantQuery = grantQuery.Where("user_id = ?", user.ID)
	}

	var sharedIDs []string
	if err := grantQuery.Pluck("story_id", &sharedIDs).Error; err != nil {
		return nil, fmt.Errorf("story service: list grants: %w", err)
	}

	query := s.db.WithContext(ctx).Model(&models.Story{})
	if len(sharedIDs) > 0 {
		query = query.Where("user_id = ? OR id IN ?", user.ID, sharedIDs)
	} else {
		query = query.Where("user_id = ?", user.ID)
	}

	var stories []models.Story
	if err := query.
		Preload("Characters").
		Preload("Locations").
		Preload("Assets").
		Preload("Sequences").
		Preload("Shots").
		Order("created_at DESC").
		Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("story service: list stories: %w", err)
	}
	return stories, nil
}

// GetByID returns a story with the full nested payload. Visibility is the
// caller's concern.
func (s *StoryService) GetByID(ctx context.Context, storyID string) (*models.Story, error) {
	return s.loadStory(ensureContext(ctx), storyID)
}

// Delete removes a story and everything hanging off it: children, images,
// join rows, art control settings, department links, talent assignments and
// access grants.
func (s *StoryService) Delete(ctx context.Context, storyID, actorID string) error {
	ctx = ensureContext(ctx)

	var story models.Story
	if err := s.db.WithContext(ctx).First(&story, "id = ?", strings.TrimSpace(storyID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoryNotFound
		}
		return fmt.Errorf("story service: find story: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		characterIDs, err := pluckChildIDs(tx, &models.Character{}, story.ID)
		if err != nil {
			return err
		}
		locationIDs, err := pluckChildIDs(tx, &models.Location{}, story.ID)
		if err != nil {
			return err
		}
		assetIDs, err := pluckChildIDs(tx, &models.StoryAsset{}, story.ID)
		if err != nil {
			return err
		}
		sequenceIDs, err := pluckChildIDs(tx, &models.Sequence{}, story.ID)
		if err != nil {
			return err
		}
		shotIDs, err := pluckChildIDs(tx, &models.Shot{}, story.ID)
		if err != nil {
			return err
		}

		if len(shotIDs) > 0 {
			if err := tx.Exec("DELETE FROM shot_characters WHERE shot_id IN ?", shotIDs).Error; err != nil {
				return fmt.Errorf("story service: delete shot links: %w", err)
			}
			if err := deleteWhere(tx, &models.ShotTalentAssignment{}, "shot_id IN ?", shotIDs); err != nil {
				return err
			}
			if err := deleteWhere(tx, &models.ShotDepartmentAssignment{}, "shot_id IN ?", shotIDs); err != nil {
				return err
			}
			if err := deleteWhere(tx, &models.ArtControlSettings{}, "shot_id IN ?", shotIDs); err != nil {
				return err
			}
		}
		if len(sequenceIDs) > 0 {
			if err := tx.Exec("DELETE FROM sequence_characters WHERE sequence_id IN ?", sequenceIDs).Error; err != nil {
				return fmt.Errorf("story service: delete sequence links: %w", err)
			}
			if err := deleteWhere(tx, &models.ArtControlSettings{}, "sequence_id IN ?", sequenceIDs); err != nil {
				return err
			}
		}
		if len(characterIDs) > 0 {
			if err := deleteWhere(tx, &models.CharacterImage{}, "character_id IN ?", characterIDs); err != nil {
				return err
			}
			if err := deleteWhere(tx, &models.CharacterTalentAssignment{}, "character_id IN ?", characterIDs); err != nil {
				return err
			}
		}
		if len(locationIDs) > 0 {
			if err := deleteWhere(tx, &models.LocationImage{}, "location_id IN ?", locationIDs); err != nil {
				return err
			}
		}
		if len(assetIDs) > 0 {
			if err := deleteWhere(tx, &models.AssetImage{}, "asset_id IN ?", assetIDs); err != nil {
				return err
			}
			if err := deleteWhere(tx, &models.AssetTalentAssignment{}, "asset_id IN ?", assetIDs); err != nil {
				return err
			}
			if err := deleteWhere(tx, &models.AssetDepartmentAssignment{}, "asset_id IN ?", assetIDs); err != nil {
				return err
			}
		}

		for _, model := range []any{
			&models.ArtControlSettings{},
			&models.StoryDepartment{},
			&models.StoryAccess{},
			&models.Shot{},
			&models.Sequence{},
			&models.Character{},
			&models.Location{},
			&models.StoryAsset{},
		} {
			if err := deleteWhere(tx, model, "story_id = ?", story.ID); err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.Story{}, "id = ?", story.ID).Error; err != nil {
			return fmt.Errorf("story service: delete story: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   "story.delete",
		Resource: story.ID,
		Result:   "success",
		Metadata: map[string]any{"title": story.Title},
	})

	return nil
}

// Regenerate re-parses the stored raw text, seeding the prompt with the
// current children so manual edits survive, then merges the result back in
// place: name-matched children keep their IDs, new ones are created and
// absent ones are removed. Costs and totals are recomputed afterwards.
func (s *StoryService) Regenerate(ctx context.Context, storyID, actorID string) (*models.Story, error) {
	ctx = ensureContext(ctx)

	story, err := s.loadStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(story.RawText) == "" {
		return nil, ErrStoryNoRawText
	}
	if s.parser == nil {
		return nil, ErrParserNotConfigured
	}

	result, err := s.parser.RegenerateStory(ctx, story.RawText, snapshotParseResult(story))
	if err != nil {
		metrics.StoryParses.WithLabelValues("failure").Inc()
		recordAudit(s.auditService, ctx, AuditEntry{
			UserID:   &actorID,
			Action:   "story.regenerate",
			Resource: story.ID,
			Result:   "failure",
		})
		return nil, ErrStoryParseFailed.WithInternal(err)
	}
	metrics.StoryParses.WithLabelValues("success").Inc()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children, err := reconcileStoryChildren(tx, story, result)
		if err != nil {
			return err
		}
		return finalizeStory(tx, story.ID, result, children)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   "story.regenerate",
		Resource: story.ID,
		Result:   "success",
	})

	return s.loadStory(ctx, story.ID)
}

// GetCharacter returns a character scoped to its story.
func (s *StoryService) GetCharacter(ctx context.Context, storyID, characterID string) (*models.Character, error) {
	ctx = ensureContext(ctx)

	var character models.Character
	err := s.db.WithContext(ctx).
		Where("id = ? AND story_id = ?", strings.TrimSpace(characterID), strings.TrimSpace(storyID)).
		Preload("Images").
		First(&character).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("story service: find character: %w", err)
	}
	return &character, nil
}

// UpdateCharacter applies a partial edit to a character.
func (s *StoryService) UpdateCharacter(ctx context.Context, storyID, characterID string, input UpdateCharacterInput) (*models.Character, error) {
	ctx = ensureContext(ctx)

	character, err := s.GetCharacter(ctx, storyID, characterID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := truncate(strings.TrimSpace(*input.Name), 255)
		if name == "" {
			return nil, apperrors.NewBadRequest("character name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Role != nil {
		updates["role"] = truncate(strings.TrimSpace(*input.Role), 100)
	}
	if input.Appearances != nil {
		updates["appearances"] = *input.Appearances
	}
	if len(updates) == 0 {
		return character, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Character{}).
		Where("id = ?", character.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("story service: update character: %w", err)
	}
	return s.GetCharacter(ctx, storyID, characterID)
}

// GetLocation returns a location scoped to its story.
func (s *StoryService) GetLocation(ctx context.Context, storyID, locationID string) (*models.Location, error) {
	ctx = ensureContext(ctx)

	var location models.Location
	err := s.db.WithContext(ctx).
		Where("id = ? AND story_id = ?", strings.TrimSpace(locationID), strings.TrimSpace(storyID)).
		Preload("Images").
		First(&location).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("story service: find location: %w", err)
	}
	return &location, nil
}

// UpdateLocation applies a partial edit to a location.
func (s *StoryService) UpdateLocation(ctx context.Context, storyID, locationID string, input UpdateLocationInput) (*models.Location, error) {
	ctx = ensureContext(ctx)

	location, err := s.GetLocation(ctx, storyID, locationID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := truncate(strings.TrimSpace(*input.Name), 255)
		if name == "" {
			return nil, apperrors.NewBadRequest("location name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.LocationType != nil {
		updates["location_type"] = truncate(strings.TrimSpace(*input.LocationType), 100)
	}
	if input.Scenes != nil {
		updates["scenes"] = *input.Scenes
	}
	if len(updates) == 0 {
		return location, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Location{}).
		Where("id = ?", location.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("story service: update location: %w", err)
	}
	return s.GetLocation(ctx, storyID, locationID)
}

// GetStoryAsset returns an asset scoped to its story.
func (s *StoryService) GetStoryAsset(ctx context.Context, storyID, assetID string) (*models.StoryAsset, error) {
	ctx = ensureContext(ctx)

	var asset models.StoryAsset
	err := s.db.WithContext(ctx).
		Where("id = ? AND story_id = ?", strings.TrimSpace(assetID), strings.TrimSpace(storyID)).
		Preload("Images").
		First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoryAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("story service: find asset: %w", err)
	}
	return &asset, nil
}

// UpdateStoryAsset applies a partial edit to an asset. A type or complexity
// change recomputes the stored cost estimate.
func (s *StoryService) UpdateStoryAsset(ctx context.Context, storyID, assetID string, input UpdateStoryAssetInput) (*models.StoryAsset, error) {
	ctx = ensureContext(ctx)

	asset, err := s.GetStoryAsset(ctx, storyID, assetID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := truncate(strings.TrimSpace(*input.Name), 255)
		if name == "" {
			return nil, apperrors.NewBadRequest("asset name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	assetType := asset.AssetType
	complexity := asset.Complexity
	if input.AssetType != nil {
		assetType = truncate(defaultIfEmpty(strings.TrimSpace(*input.AssetType), "prop"), 50)
		updates["asset_type"] = assetType
	}
	if input.Complexity != nil {
		complexity = truncate(defaultIfEmpty(strings.TrimSpace(*input.Complexity), "medium"), 20)
		updates["complexity"] = complexity
	}
	if input.AssetType != nil || input.Complexity != nil {
		updates["estimated_cost"] = costs.AssetCost(assetType, complexity)
	}
	if len(updates) == 0 {
		return asset, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.StoryAsset{}).
		Where("id = ?", asset.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("story service: update asset: %w", err)
	}
	return s.GetStoryAsset(ctx, storyID, assetID)
}

// GetSequence returns a sequence scoped to its story, with its location,
// characters and shots.
func (s *StoryService) GetSequence(ctx context.Context, storyID, sequenceID string) (*models.Sequence, error) {
	ctx = ensureContext(ctx)

	var sequence models.Sequence
	err := s.db.WithContext(ctx).
		Where("id = ? AND story_id = ?", strings.TrimSpace(sequenceID), strings.TrimSpace(storyID)).
		Preload("Location").
		Preload("Characters").
		Preload("Shots", func(db *gorm.DB) *gorm.DB {
			return db.Order("shots.shot_number ASC")
		}).
		First(&sequence).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSequenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("story service: find sequence: %w", err)
	}
	return &sequence, nil
}

// UpdateSequence applies a partial edit to a sequence. The location, when
// given, must belong to the same story.
func (s *StoryService) UpdateSequence(ctx context.Context, storyID, sequenceID string, input UpdateSequenceInput) (*models.Sequence, error) {
	ctx = ensureContext(ctx)

	sequence, err := s.GetSequence(ctx, storyID, sequenceID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.EstimatedTime != nil {
		updates["estimated_time"] = strings.TrimSpace(*input.EstimatedTime)
	}
	if input.LocationID != nil {
		raw := strings.TrimSpace(*input.LocationID)
		if raw == "" {
			updates["location_id"] = nil
		} else {
			if _, err := s.GetLocation(ctx, storyID, raw); err != nil {
				return nil, err
			}
			updates["location_id"] = raw
		}
	}
	if len(updates) == 0 {
		return sequence, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Sequence{}).
		Where("id = ?", sequence.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("story service: update sequence: %w", err)
	}
	return s.GetSequence(ctx, storyID, sequenceID)
}

func (s *StoryService) loadStory(ctx context.Context, storyID string) (*models.Story, error) {
	var story models.Story
	err := s.db.WithContext(ctx).
		Preload("Characters").
		Preload("Characters.Images").
		Preload("Locations").
		Preload("Locations.Images").
		Preload("Assets").
		Preload("Assets.Images").
		Preload("Sequences", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequences.sequence_number ASC")
		}).
		Preload("Sequences.Location").
		Preload("Sequences.Characters").
		Preload("Shots", func(db *gorm.DB) *gorm.DB {
			return db.Order("shots.shot_number ASC")
		}).
		Preload("Shots.Characters").
		Preload("Shots.Location").
		First(&story, "id = ?", strings.TrimSpace(storyID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("story service: find story: %w", err)
	}
	return &story, nil
}

// storyChildren tracks the rows belonging to a story after a parse or
// regeneration pass, in the order the parser emitted them.
type storyChildren struct {
	characters []models.Character
	locations  []models.Location
	assets     []models.StoryAsset
	sequences  []models.Sequence
	shots      []models.Shot
	// shotKeys aligns with shots: "sequenceNumber/shotNumber" as parsed.
	shotKeys []string
}

func (c *storyChildren) characterForName(name string) *models.Character {
	name = strings.TrimSpace(name)
	for i := range c.characters {
		if c.characters[i].Name == name {
			return &c.characters[i]
		}
	}
	return nil
}

func (c *storyChildren) locationForName(name string) *models.Location {
	name = strings.TrimSpace(name)
	for i := range c.locations {
		if c.locations[i].Name == name {
			return &c.locations[i]
		}
	}
	return nil
}

func (c *storyChildren) assetForName(name string) *models.StoryAsset {
	name = strings.TrimSpace(name)
	for i := range c.assets {
		if c.assets[i].Name == name {
			return &c.assets[i]
		}
	}
	return nil
}

func (c *storyChildren) sequenceForNumber(number int) *models.Sequence {
	for i := range c.sequences {
		if c.sequences[i].SequenceNumber == number {
			return &c.sequences[i]
		}
	}
	return nil
}

func (c *storyChildren) shotForKey(key string) *models.Shot {
	for i := range c.shotKeys {
		if c.shotKeys[i] == key {
			return &c.shots[i]
		}
	}
	return nil
}

func (c *storyChildren) locationID(name string) *string {
	if loc := c.locationForName(name); loc != nil {
		return &loc.ID
	}
	return nil
}

func (c *storyChildren) sequenceID(number int) *string {
	if seq := c.sequenceForNumber(number); seq != nil {
		return &seq.ID
	}
	return nil
}

func (c *storyChildren) charactersNamed(names []string) []models.Character {
	var out []models.Character
	for _, name := range names {
		if ch := c.characterForName(name); ch != nil {
			out = append(out, *ch)
		}
	}
	return out
}

func shotReconcileKey(sequenceNumber, shotNumber int) string {
	return fmt.Sprintf("%d/%d", sequenceNumber, shotNumber)
}

// createStoryChildren persists a fresh set of children from a parse result.
// Blank and duplicate names are skipped; links between shots, sequences,
// locations and characters resolve by name the way the parser emits them.
func createStoryChildren(tx *gorm.DB, storyID string, result *ai.ParseResult) (*storyChildren, error) {
	children := &storyChildren{}

	seenNames := map[string]bool{}
	for _, pc := range result.Characters {
		name := truncate(strings.TrimSpace(pc.Name), 255)
		if name == "" || seenNames[name] {
			continue
		}
		seenNames[name] = true
		character := models.Character{
			StoryID:     storyID,
			Name:        name,
			Description: pc.Description,
			Role:        truncate(defaultIfEmpty(strings.TrimSpace(pc.Role), "supporting"), 100),
			Appearances: pc.Appearances,
		}
		if err := tx.Create(&character).Error; err != nil {
			return nil, fmt.Errorf("story service: create character: %w", err)
		}
		children.characters = append(children.characters, character)
	}

	seenNames = map[string]bool{}
	for _, pl := range result.Locations {
		name := truncate(strings.TrimSpace(pl.Name), 255)
		if name == "" || seenNames[name] {
			continue
		}
		seenNames[name] = true
		location := models.Location{
			StoryID:      storyID,
			Name:         name,
			Description:  pl.Description,
			LocationType: truncate(defaultIfEmpty(strings.TrimSpace(pl.Type), "outdoor"), 100),
			Scenes:       pl.Scenes,
		}
		if err := tx.Create(&location).Error; err != nil {
			return nil, fmt.Errorf("story service: create location: %w", err)
		}
		children.locations = append(children.locations, location)
	}

	seenNames = map[string]bool{}
	for _, pa := range result.Assets {
		name := truncate(strings.TrimSpace(pa.Name), 255)
		if name == "" || seenNames[name] {
			continue
		}
		seenNames[name] = true
		assetType := truncate(defaultIfEmpty(strings.TrimSpace(pa.Type), "prop"), 50)
		complexity := truncate(defaultIfEmpty(strings.TrimSpace(pa.Complexity), "medium"), 20)
		asset := models.StoryAsset{
			StoryID:       storyID,
			Name:          name,
			AssetType:     assetType,
			Description:   pa.Description,
			Complexity:    complexity,
			EstimatedCost: costs.AssetCost(assetType, complexity),
		}
		if err := tx.Create(&asset).Error; err != nil {
			return nil, fmt.Errorf("story service: create asset: %w", err)
		}
		children.assets = append(children.assets, asset)
	}

	seenNumbers := map[int]bool{}
	for _, ps := range result.Sequences {
		if ps.SequenceNumber <= 0 || seenNumbers[ps.SequenceNumber] {
			continue
		}
		seenNumbers[ps.SequenceNumber] = true
		sequence := models.Sequence{
			StoryID:        storyID,
			SequenceNumber: ps.SequenceNumber,
			Title:          ps.Title,
			Description:    ps.Description,
			LocationID:     children.locationID(ps.Location),
			EstimatedTime:  ps.EstimatedTime,
		}
		if err := tx.Create(&sequence).Error; err != nil {
			return nil, fmt.Errorf("story service: create sequence: %w", err)
		}
		if err := replaceCharacterLinks(tx, &sequence, children.charactersNamed(ps.Characters)); err != nil {
			return nil, err
		}
		children.sequences = append(children.sequences, sequence)
	}

	seenKeys := map[string]bool{}
	for _, psh := range result.Shots {
		number := psh.ShotNumber
		if number <= 0 {
			number = 1
		}
		key := shotReconcileKey(psh.SequenceNumber, number)
		if seenKeys[key] {
			continue
		}
		seenKeys[key] = true

		complexity := truncate(defaultIfEmpty(strings.TrimSpace(psh.Complexity), "medium"), 20)
		estimatedTime := truncate(psh.EstimatedTime, 100)
		shot := models.Shot{
			StoryID:       storyID,
			SequenceID:    children.sequenceID(psh.SequenceNumber),
			ShotNumber:    number,
			Description:   psh.Description,
			LocationID:    children.locationID(psh.Location),
			CameraAngle:   truncate(psh.CameraAngle, 100),
			Complexity:    complexity,
			EstimatedTime: estimatedTime,
			EstimatedCost: costs.ShotCost(complexity, estimatedTime),
		}
		if len(psh.SpecialRequirements) > 0 {
			encoded, err := encodeJSON(psh.SpecialRequirements)
			if err != nil {
				return nil, fmt.Errorf("story service: encode requirements: %w", err)
			}
			shot.SpecialRequirements = encoded
		}
		if err := tx.Create(&shot).Error; err != nil {
			return nil, fmt.Errorf("story service: create shot: %w", err)
		}
		if err := replaceCharacterLinks(tx, &shot, children.charactersNamed(psh.Characters)); err != nil {
			return nil, err
		}
		children.shots = append(children.shots, shot)
		children.shotKeys = append(children.shotKeys, key)
	}

	return children, nil
}

// reconcileStoryChildren merges a regeneration result into the existing rows.
// Characters, locations and assets match by name, sequences by number and
// shots by sequence/shot number pair. Matched rows are updated in place and
// keep their IDs, new entries are created, and rows absent from the result
// are removed together with their dependents.
func reconcileStoryChildren(tx *gorm.DB, story *models.Story, result *ai.ParseResult) (*storyChildren, error) {
	children := &storyChildren{}

	existingCharacters := make(map[string]models.Character, len(story.Characters))
	for _, character := range story.Characters {
		existingCharacters[character.Name] = character
	}
	seenNames := map[string]bool{}
	for _, pc := range result.Characters {
		name := truncate(strings.TrimSpace(pc.Name), 255)
		if name == "" || seenNames[name] {
			continue
		}
		seenNames[name] = true
		role := truncate(defaultIfEmpty(strings.TrimSpace(pc.Role), "supporting"), 100)
		if current, ok := existingCharacters[name]; ok {
			updates := map[string]any{
				"description": pc.Description,
				"role":        role,
				"appearances": pc.Appearances,
			}
			if err := tx.Model(&models.Character{}).Where("id = ?", current.ID).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("story service: update character: %w", err)
			}
			current.Description = pc.Description
			current.Role = role
			current.Appearances = pc.Appearances
			children.characters = append(children.characters, current)
			continue
		}
		character := models.Character{
			StoryID:     story.ID,
			Name:        name,
			Description: pc.Description,
			Role:        role,
			Appearances: pc.Appearances,
		}
		if err := tx.Create(&character).Error; err != nil {
			return nil, fmt.Errorf("story service: create character: %w", err)
		}
		children.characters = append(children.characters, character)
	}
	for name, current := range existingCharacters {
		if seenNames[name] {
			continue
		}
		if err := tx.Exec("DELETE FROM shot_characters WHERE character_id = ?", current.ID).Error; err != nil {
			return nil, fmt.Errorf("story service: unlink character: %w", err)
		}
		if err := tx.Exec("DELETE FROM sequence_characters WHERE character_id = ?", current.ID).Error; err != nil {
			return nil, fmt.Errorf("story service: unlink character: %w", err)
		}
		if err := deleteWhere(tx, &models.CharacterImage{}, "character_id = ?", current.ID); err != nil {
			return nil, err
		}
		if err := deleteWhere(tx, &models.CharacterTalentAssignment{}, "character_id = ?", current.ID); err != nil {
			return nil, err
		}
		if err := tx.Delete(&models.Character{}, "id = ?", current.ID).Error; err != nil {
			return nil, fmt.Errorf("story service: delete character: %w", err)
		}
	}

	existingLocations := make(map[string]models.Location, len(story.Locations))
	for _, location := range story.Locations {
		existingLocations[location.Name] = location
	}
	seenNames = map[string]bool{}
	for _, pl := range result.Locations {
		name := truncate(strings.TrimSpace(pl.Name), 255)
		if name == "" || seenNames[name] {
			continue
		}
		seenNames[name] = true
		locationType := truncate(defaultIfEmpty(strings.TrimSpace(pl.Type), "outdoor"), 100)
		if current, ok := existingLocations[name]; ok {
			updates := map[string]any{
				"description":   pl.Description,
				"location_type": locationType,
				"scenes":        pl.Scenes,
			}
			if err := tx.Model(&models.Location{}).Where("id = ?", current.ID).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("story service: update location: %w", err)
			}
			current.Description = pl.Description
			current.LocationType = locationType
			current.Scenes = pl.Scenes
			children.locations = append(children.locations, current)
			continue
		}
		location := models.Location{
			StoryID:      story.ID,
			Name:         name,
			Description:  pl.Description,
			LocationType: locationType,
			Scenes:       pl.Scenes,
		}
		if err := tx.Create(&location).Error; err != nil {
			return nil, fmt.Errorf("story service: create location: %w", err)
		}
		children.locations = append(children.locations, location)
	}
	for name, current := range existingLocations {
		if seenNames[name] {
			continue
		}
		if err := tx.Model(&models.Shot{}).Where("location_id = ?", current.ID).Update("location_id", nil).Error; err != nil {
			return nil, fmt.Errorf("story service: detach location: %w", err)
		}
		if err := tx.Model(&models.Sequence{}).Where("location_id = ?", current.ID).Update("location_id", nil).Error; err != nil {
			return nil, fmt.Errorf("story service: detach location: %w", err)
		}
		if err := deleteWhere(tx, &models.LocationImage{}, "location_id = ?", current.ID); err != nil {
			return nil, err
		}
		if err := tx.Delete(&models.Location{}, "id = ?", current.ID).Error; err != nil {
			return nil, fmt.Errorf("story service: delete location: %w", err)
		}
	}

	existingAssets := make(map[string]models.StoryAsset, len(story.Assets))
	for _, asset := range story.Assets {
		existingAssets[asset.Name] = asset
	}
	seenNames = map[string]bool{}
	for _, pa := range result.Assets {
		name := truncate(strings.TrimSpace(pa.Name), 255)
		if name == "" || seenNames[name] {
			continue
		}
		seenNames[name] = true
		assetType := truncate(defaultIfEmpty(strings.TrimSpace(pa.Type), "prop"), 50)
		complexity := truncate(defaultIfEmpty(strings.TrimSpace(pa.Complexity), "medium"), 20)
		cost := costs.AssetCost(assetType, complexity)
		if current, ok := existingAssets[name]; ok {
			updates := map[string]any{
				"description":    pa.Description,
				"asset_type":     assetType,
				"complexity":     complexity,
				"estimated_cost": cost,
			}
			if err := tx.Model(&models.StoryAsset{}).Where("id = ?", current.ID).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("story service: update asset: %w", err)
			}
			current.Description = pa.Description
			current.AssetType = assetType
			current.Complexity = complexity
			current.EstimatedCost = cost
			children.assets = append(children.assets, current)
			continue
		}
		asset := models.StoryAsset{
			StoryID:       story.ID,
			Name:          name,
			AssetType:     assetType,
			Description:   pa.Description,
			Complexity:    complexity,
			EstimatedCost: cost,
		}
		if err := tx.Create(&asset).Error; err != nil {
			return nil, fmt.Errorf("story service: create asset: %w", err)
		}
		children.assets = append(children.assets, asset)
	}
	for name, current := range existingAssets {
		if seenNames[name] {
			continue
		}
		if err := deleteWhere(tx, &models.AssetImage{}, "asset_id = ?", current.ID); err != nil {
			return nil, err
		}
		if err := deleteWhere(tx, &models.AssetTalentAssignment{}, "asset_id = ?", current.ID); err != nil {
			return nil, err
		}
		if err := deleteWhere(tx, &models.AssetDepartmentAssignment{}, "asset_id = ?", current.ID); err != nil {
			return nil, err
		}
		if err := tx.Delete(&models.StoryAsset{}, "id = ?", current.ID).Error; err != nil {
			return nil, fmt.Errorf("story service: delete asset: %w", err)
		}
	}

	sequenceNumbersByID := make(map[string]int, len(story.Sequences))
	existingSequences := make(map[int]models.Sequence, len(story.Sequences))
	for _, sequence := range story.Sequences {
		sequenceNumbersByID[sequence.ID] = sequence.SequenceNumber
		existingSequences[sequence.SequenceNumber] = sequence
	}
	seenNumbers := map[int]bool{}
	for _, ps := range result.Sequences {
		if ps.SequenceNumber <= 0 || seenNumbers[ps.SequenceNumber] {
			continue
		}
		seenNumbers[ps.SequenceNumber] = true
		locationID := children.locationID(ps.Location)
		linked := children.charactersNamed(ps.Characters)
		if current, ok := existingSequences[ps.SequenceNumber]; ok {
			updates := map[string]any{
				"title":          ps.Title,
				"description":    ps.Description,
				"estimated_time": ps.EstimatedTime,
				"location_id":    locationID,
			}
			if err := tx.Model(&models.Sequence{}).Where("id = ?", current.ID).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("story service: update sequence: %w", err)
			}
			current.Title = ps.Title
			current.Description = ps.Description
			current.EstimatedTime = ps.EstimatedTime
			current.LocationID = locationID
			if err := replaceCharacterLinks(tx, &current, linked); err != nil {
				return nil, err
			}
			children.sequences = append(children.sequences, current)
			continue
		}
		sequence := models.Sequence{
			StoryID:        story.ID,
			SequenceNumber: ps.SequenceNumber,
			Title:          ps.Title,
			Description:    ps.Description,
			LocationID:     locationID,
			EstimatedTime:  ps.EstimatedTime,
		}
		if err := tx.Create(&sequence).Error; err != nil {
			return nil, fmt.Errorf("story service: create sequence: %w", err)
		}
		if err := replaceCharacterLinks(tx, &sequence, linked); err != nil {
			return nil, err
		}
		children.sequences = append(children.sequences, sequence)
	}
	for number, current := range existingSequences {
		if seenNumbers[number] {
			continue
		}
		if err := tx.Model(&models.Shot{}).Where("sequence_id = ?", current.ID).Update("sequence_id", nil).Error; err != nil {
			return nil, fmt.Errorf("story service: detach sequence: %w", err)
		}
		if err := tx.Exec("DELETE FROM sequence_characters WHERE sequence_id = ?", current.ID).Error; err != nil {
			return nil, fmt.Errorf("story service: unlink sequence: %w", err)
		}
		if err := deleteWhere(tx, &models.ArtControlSettings{}, "sequence_id = ?", current.ID); err != nil {
			return nil, err
		}
		if err := tx.Delete(&models.Sequence{}, "id = ?", current.ID).Error; err != nil {
			return nil, fmt.Errorf("story service: delete sequence: %w", err)
		}
	}

	existingShots := make(map[string]models.Shot, len(story.Shots))
	for _, shot := range story.Shots {
		sequenceNumber := 0
		if shot.SequenceID != nil {
			sequenceNumber = sequenceNumbersByID[*shot.SequenceID]
		}
		existingShots[shotReconcileKey(sequenceNumber, shot.ShotNumber)] = shot
	}
	seenKeys := map[string]bool{}
	for _, psh := range result.Shots {
		number := psh.ShotNumber
		if number <= 0 {
			number = 1
		}
		key := shotReconcileKey(psh.SequenceNumber, number)
		if seenKeys[key] {
			continue
		}
		seenKeys[key] = true

		complexity := truncate(defaultIfEmpty(strings.TrimSpace(psh.Complexity), "medium"), 20)
		estimatedTime := truncate(psh.EstimatedTime, 100)
		cost := costs.ShotCost(complexity, estimatedTime)
		sequenceID := children.sequenceID(psh.SequenceNumber)
		locationID := children.locationID(psh.Location)
		linked := children.charactersNamed(psh.Characters)

		var requirements datatypes.JSON
		if len(psh.SpecialRequirements) > 0 {
			encoded, err := encodeJSON(psh.SpecialRequirements)
			if err != nil {
				return nil, fmt.Errorf("story service: encode requirements: %w", err)
			}
			requirements = encoded
		}

		if current, ok := existingShots[key]; ok {
			updates := map[string]any{
				"description":          psh.Description,
				"camera_angle":         truncate(psh.CameraAngle, 100),
				"complexity":           complexity,
				"estimated_time":       estimatedTime,
				"special_requirements": requirements,
				"sequence_id":          sequenceID,
				"location_id":          locationID,
				"estimated_cost":       cost,
			}
			if err := tx.Model(&models.Shot{}).Where("id = ?", current.ID).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("story service: update shot: %w", err)
			}
			current.Description = psh.Description
			current.CameraAngle = truncate(psh.CameraAngle, 100)
			current.Complexity = complexity
			current.EstimatedTime = estimatedTime
			current.SpecialRequirements = requirements
			current.SequenceID = sequenceID
			current.LocationID = locationID
			current.EstimatedCost = cost
			if err := replaceCharacterLinks(tx, &current, linked); err != nil {
				return nil, err
			}
			children.shots = append(children.shots, current)
			children.shotKeys = append(children.shotKeys, key)
			continue
		}

		shot := models.Shot{
			StoryID:             story.ID,
			SequenceID:          sequenceID,
			ShotNumber:          number,
			Description:         psh.Description,
			LocationID:          locationID,
			CameraAngle:         truncate(psh.CameraAngle, 100),
			Complexity:          complexity,
			EstimatedTime:       estimatedTime,
			SpecialRequirements: requirements,
			EstimatedCost:       cost,
		}
		if err := tx.Create(&shot).Error; err != nil {
			return nil, fmt.Errorf("story service: create shot: %w", err)
		}
		if err := replaceCharacterLinks(tx, &shot, linked); err != nil {
			return nil, err
		}
		children.shots = append(children.shots, shot)
		children.shotKeys = append(children.shotKeys, key)
	}
	for key, current := range existingShots {
		if seenKeys[key] {
			continue
		}
		if err := tx.Exec("DELETE FROM shot_characters WHERE shot_id = ?", current.ID).Error; err != nil {
			return nil, fmt.Errorf("story service: unlink shot: %w", err)
		}
		if err := deleteWhere(tx, &models.ShotTalentAssignment{}, "shot_id = ?", current.ID); err != nil {
			return nil, err
		}
		if err := deleteWhere(tx, &models.ShotDepartmentAssignment{}, "shot_id = ?", current.ID); err != nil {
			return nil, err
		}
		if err := deleteWhere(tx, &models.ArtControlSettings{}, "shot_id = ?", current.ID); err != nil {
			return nil, err
		}
		if err := tx.Delete(&models.Shot{}, "id = ?", current.ID).Error; err != nil {
			return nil, fmt.Errorf("story service: delete shot: %w", err)
		}
	}

	return children, nil
}

// finalizeStory recomputes per-sequence and story totals from the persisted
// children and writes the enriched parse payload onto the story row.
func finalizeStory(tx *gorm.DB, storyID string, result *ai.ParseResult, children *storyChildren) error {
	type sequenceTotals struct {
		count int
		cost  float64
	}
	totalsBySequence := map[string]*sequenceTotals{}

	var assetTotal float64
	for i := range children.assets {
		assetTotal += children.assets[i].EstimatedCost
	}

	var shotTotal float64
	for i := range children.shots {
		shot := &children.shots[i]
		shotTotal += shot.EstimatedCost
		if shot.SequenceID == nil {
			continue
		}
		totals := totalsBySequence[*shot.SequenceID]
		if totals == nil {
			totals = &sequenceTotals{}
			totalsBySequence[*shot.SequenceID] = totals
		}
		totals.count++
		totals.cost += shot.EstimatedCost
	}

	for i := range children.sequences {
		sequence := &children.sequences[i]
		count, cost := 0, 0.0
		if totals := totalsBySequence[sequence.ID]; totals != nil {
			count, cost = totals.count, totals.cost
		}
		if err := tx.Model(&models.Sequence{}).
			Where("id = ?", sequence.ID).
			Updates(map[string]any{"total_shots": count, "estimated_cost": cost}).Error; err != nil {
			return fmt.Errorf("story service: update sequence totals: %w", err)
		}
		sequence.TotalShots = count
		sequence.EstimatedCost = cost
	}

	totalCost := assetTotal + shotTotal
	budgetRange := costs.FormatBudgetRange(totalCost)
	totalShots := len(children.shots)

	payload, err := enrichParsePayload(result, children, totalShots, totalCost, budgetRange)
	if err != nil {
		return err
	}

	updates := map[string]any{
		"parsed_data":          payload,
		"summary":              result.Summary,
		"estimated_total_time": result.EstimatedTotalTime,
		"total_shots":          totalShots,
		"total_estimated_cost": totalCost,
		"budget_range":         budgetRange,
	}
	if err := tx.Model(&models.Story{}).Where("id = ?", storyID).Updates(updates).Error; err != nil {
		return fmt.Errorf("story service: update story totals: %w", err)
	}
	return nil
}

// enrichParsePayload injects the database IDs, computed costs and recomputed
// totals into the parser payload, matching entries the same way persistence
// did (name for characters/locations/assets, numbers for sequences/shots).
func enrichParsePayload(result *ai.ParseResult, children *storyChildren, totalShots int, totalCost float64, budgetRange string) (datatypes.JSON, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("story service: marshal parse result: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("story service: decode parse result: %w", err)
	}

	annotateList(payload, "characters", func(item map[string]any) {
		if character := children.characterForName(payloadString(item["name"])); character != nil {
			item["id"] = character.ID
		}
	})
	annotateList(payload, "locations", func(item map[string]any) {
		if location := children.locationForName(payloadString(item["name"])); location != nil {
			item["id"] = location.ID
		}
	})
	annotateList(payload, "assets", func(item map[string]any) {
		if asset := children.assetForName(payloadString(item["name"])); asset != nil {
			item["id"] = asset.ID
			item["estimated_cost"] = asset.EstimatedCost
		}
	})
	annotateList(payload, "sequences", func(item map[string]any) {
		if sequence := children.sequenceForNumber(payloadInt(item["sequence_number"])); sequence != nil {
			item["id"] = sequence.ID
			item["estimated_cost"] = sequence.EstimatedCost
			item["total_shots"] = sequence.TotalShots
		}
	})
	annotateList(payload, "shots", func(item map[string]any) {
		number := payloadInt(item["shot_number"])
		if number <= 0 {
			number = 1
		}
		key := shotReconcileKey(payloadInt(item["sequence_number"]), number)
		if shot := children.shotForKey(key); shot != nil {
			item["id"] = shot.ID
			item["estimated_cost"] = shot.EstimatedCost
		}
	})

	payload["total_shots"] = totalShots
	payload["total_sequences"] = len(children.sequences)
	payload["total_estimated_cost"] = totalCost
	payload["budget_range"] = budgetRange

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("story service: marshal payload: %w", err)
	}
	return datatypes.JSON(encoded), nil
}

// snapshotParseResult rebuilds a parse result from the persisted children so
// regeneration can seed the prompt with the current, possibly hand-edited,
// production data.
func snapshotParseResult(story *models.Story) *ai.ParseResult {
	result := &ai.ParseResult{
		Summary:            story.Summary,
		TotalSequences:     len(story.Sequences),
		TotalShots:         story.TotalShots,
		EstimatedTotalTime: story.EstimatedTotalTime,
	}

	for _, character := range story.Characters {
		result.Characters = append(result.Characters, ai.ParsedCharacter{
			Name:        character.Name,
			Description: character.Description,
			Role:        character.Role,
			Appearances: character.Appearances,
		})
	}
	for _, location := range story.Locations {
		result.Locations = append(result.Locations, ai.ParsedLocation{
			Name:        location.Name,
			Description: location.Description,
			Type:        location.LocationType,
			Scenes:      location.Scenes,
		})
	}
	for _, asset := range story.Assets {
		result.Assets = append(result.Assets, ai.ParsedAsset{
			Name:        asset.Name,
			Type:        asset.AssetType,
			Description: asset.Description,
			Complexity:  asset.Complexity,
		})
	}

	sequenceNumbersByID := make(map[string]int, len(story.Sequences))
	for _, sequence := range story.Sequences {
		sequenceNumbersByID[sequence.ID] = sequence.SequenceNumber
		parsed := ai.ParsedSequence{
			SequenceNumber: sequence.SequenceNumber,
			Title:          sequence.Title,
			Description:    sequence.Description,
			EstimatedTime:  sequence.EstimatedTime,
			TotalShots:     sequence.TotalShots,
		}
		if sequence.Location != nil {
			parsed.Location = sequence.Location.Name
		}
		for _, character := range sequence.Characters {
			parsed.Characters = append(parsed.Characters, character.Name)
		}
		result.Sequences = append(result.Sequences, parsed)
	}

	for _, shot := range story.Shots {
		parsed := ai.ParsedShot{
			ShotNumber:          shot.ShotNumber,
			Description:         shot.Description,
			CameraAngle:         shot.CameraAngle,
			Complexity:          shot.Complexity,
			EstimatedTime:       shot.EstimatedTime,
			SpecialRequirements: decodeJSONStrings(shot.SpecialRequirements),
		}
		if shot.SequenceID != nil {
			parsed.SequenceNumber = sequenceNumbersByID[*shot.SequenceID]
		}
		if shot.Location != nil {
			parsed.Location = shot.Location.Name
		}
		for _, character := range shot.Characters {
			parsed.Characters = append(parsed.Characters, character.Name)
		}
		result.Shots = append(result.Shots, parsed)
	}

	return result
}

func replaceCharacterLinks(tx *gorm.DB, owner any, characters []models.Character) error {
	association := tx.Model(owner).Association("Characters")
	if len(characters) == 0 {
		if err := association.Clear(); err != nil {
			return fmt.Errorf("story service: clear character links: %w", err)
		}
		return nil
	}
	if err := association.Replace(characters); err != nil {
		return fmt.Errorf("story service: replace character links: %w", err)
	}
	return nil
}

func annotateList(payload map[string]any, key string, annotate func(item map[string]any)) {
	items, ok := payload[key].([]any)
	if !ok {
		return
	}
	for _, raw := range items {
		if item, ok := raw.(map[string]any); ok {
			annotate(item)
		}
	}
}

func payloadString(value any) string {
	s, _ := value.(string)
	return s
}

func payloadInt(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func pluckChildIDs(tx *gorm.DB, model any, storyID string) ([]string, error) {
	var ids []string
	if err := tx.Model(model).Where("story_id = ?", storyID).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("story service: collect child ids: %w", err)
	}
	return ids, nil
}

func deleteWhere(tx *gorm.DB, model any, query string, args ...any) error {
	if err := tx.Where(query, args...).Delete(model).Error; err != nil {
		return fmt.Errorf("story service: delete dependents: %w", err)
	}
	return nil
}
