package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
)

// ErrArtControlExists rejects an explicit create when a row for the scope is
// already present.
var ErrArtControlExists = apperrors.New("ART_CONTROL_EXISTS", "Art control settings already exist for this scope", http.StatusBadRequest)

// ArtControlScope names the entity a settings row applies to. StoryID is
// always required; SequenceID or ShotID narrows the scope to that child.
type ArtControlScope struct {
	StoryID    string
	SequenceID string
	ShotID     string
}

// UpdateArtControlInput carries a partial settings edit. Nil fields stay
// untouched. The same struct seeds explicit creates.
type UpdateArtControlInput struct {
	PrimaryColors   []string
	ColorMood       *string
	ColorSaturation *string
	ColorContrast   *string
	ForbiddenColors []string

	CompositionStyle   *string
	PreferredShotTypes []string

	HandheldAllowed     *bool
	StableCameraAllowed *bool
	GimbalAllowed       *bool
	DroneAllowed        *bool
	StaticCameraAllowed *bool

	WideAngleAllowed      *bool
	StandardLensPreferred *bool
	TelephotoAllowed      *bool
	MacroAllowed          *bool
	FisheyeAllowed        *bool

	StaticShotsOnly   *bool
	PanningAllowed    *bool
	TrackingAllowed   *bool
	ZoomAllowed       *bool
	DollyShotsAllowed *bool

	ArtStyle      *string
	DetailLevel   *string
	LightingStyle *string

	AnimationType    *string
	MotionPreference *string

	StyleReferenceImages []string
	MoodBoardImages      []string

	FrameRate  *int
	Resolution *string

	AspectRatio       *string
	CustomAspectRatio *string

	Atmosphere   *string
	TimeOfDay    *string
	ShotDuration *string
}

// ArtControlService manages the per-scope visual guideline rows.
type ArtControlService struct {
	db *gorm.DB
}

// NewArtControlService constructs an ArtControlService.
func NewArtControlService(db *gorm.DB) (*ArtControlService, error) {
	if db == nil {
		return nil, errors.New("art control service: db is required")
	}
	return &ArtControlService{db: db}, nil
}

// GetOrCreate returns the settings row for the scope, creating one with
// defaults when none exists yet. The second return reports whether a row was
// created by this call.
func (s *ArtControlService) GetOrCreate(ctx context.Context, scope ArtControlScope, userID string) (*models.ArtControlSettings, bool, error) {
	ctx = ensureContext(ctx)

	if err := s.resolveScope(ctx, &scope); err != nil {
		return nil, false, err
	}

	settings, err := s.findForScope(ctx, scope)
	if err == nil {
		return settings, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("art control service: find settings: %w", err)
	}

	created, err := s.createForScope(ctx, scope, userID, UpdateArtControlInput{})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// Create makes a settings row for the scope with the given overrides applied
// on top of the defaults. A second row per scope is rejected.
func (s *ArtControlService) Create(ctx context.Context, scope ArtControlScope, userID string, input UpdateArtControlInput) (*models.ArtControlSettings, error) {
	ctx = ensureContext(ctx)

	if err := s.resolveScope(ctx, &scope); err != nil {
		return nil, err
	}

	_, err := s.findForScope(ctx, scope)
	if err == nil {
		return nil, ErrArtControlExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("art control service: find settings: %w", err)
	}

	return s.createForScope(ctx, scope, userID, input)
}

// Update applies a partial edit to the scope's settings, creating the row
// with defaults first when none exists.
func (s *ArtControlService) Update(ctx context.Context, scope ArtControlScope, userID string, input UpdateArtControlInput) (*models.ArtControlSettings, error) {
	ctx = ensureContext(ctx)

	settings, _, err := s.GetOrCreate(ctx, scope, userID)
	if err != nil {
		return nil, err
	}

	updates, err := artControlUpdates(input)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return settings, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.ArtControlSettings{}).
		Where("id = ?", settings.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("art control service: update settings: %w", err)
	}

	refreshed, err := s.findForScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("art control service: reload settings: %w", err)
	}
	return refreshed, nil
}

// Reset restores the scope's settings row to the defaults, keeping the row
// identity and who created it. A missing row is created fresh.
func (s *ArtControlService) Reset(ctx context.Context, scope ArtControlScope, userID string) (*models.ArtControlSettings, error) {
	ctx = ensureContext(ctx)

	settings, created, err := s.GetOrCreate(ctx, scope, userID)
	if err != nil {
		return nil, err
	}
	if created {
		return settings, nil
	}

	defaults := models.DefaultArtControlSettings()
	updates := map[string]any{
		"primary_colors":          nil,
		"color_mood":              defaults.ColorMood,
		"color_saturation":        defaults.ColorSaturation,
		"color_contrast":          defaults.ColorContrast,
		"forbidden_colors":        nil,
		"composition_style":       defaults.CompositionStyle,
		"preferred_shot_types":    nil,
		"handheld_allowed":        defaults.HandheldAllowed,
		"stable_camera_allowed":   defaults.StableCameraAllowed,
		"gimbal_allowed":          defaults.GimbalAllowed,
		"drone_allowed":           defaults.DroneAllowed,
		"static_camera_allowed":   defaults.StaticCameraAllowed,
		"wide_angle_allowed":      defaults.WideAngleAllowed,
		"standard_lens_preferred": defaults.StandardLensPreferred,
		"telephoto_allowed":       defaults.TelephotoAllowed,
		"macro_allowed":           defaults.MacroAllowed,
		"fisheye_allowed":         defaults.FisheyeAllowed,
		"static_shots_only":       defaults.StaticShotsOnly,
		"panning_allowed":         defaults.PanningAllowed,
		"tracking_allowed":        defaults.TrackingAllowed,
		"zoom_allowed":            defaults.ZoomAllowed,
		"dolly_shots_allowed":     defaults.DollyShotsAllowed,
		"art_style":               defaults.ArtStyle,
		"detail_level":            defaults.DetailLevel,
		"lighting_style":          defaults.LightingStyle,
		"animation_type":          defaults.AnimationType,
		"motion_preference":       defaults.MotionPreference,
		"style_reference_images":  nil,
		"mood_board_images":       nil,
		"frame_rate":              defaults.FrameRate,
		"resolution":              defaults.Resolution,
		"aspect_ratio":            defaults.AspectRatio,
		"custom_aspect_ratio":     "",
		"atmosphere":              "",
		"time_of_day":             "",
		"shot_duration":           "",
	}

	if err := s.db.WithContext(ctx).
		Model(&models.ArtControlSettings{}).
		Where("id = ?", settings.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("art control service: reset settings: %w", err)
	}

	refreshed, err := s.findForScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("art control service: reload settings: %w", err)
	}
	return refreshed, nil
}

// resolveScope verifies the scope entities exist and belong together.
func (s *ArtControlService) resolveScope(ctx context.Context, scope *ArtControlScope) error {
	scope.StoryID = strings.TrimSpace(scope.StoryID)
	scope.SequenceID = strings.TrimSpace(scope.SequenceID)
	scope.ShotID = strings.TrimSpace(scope.ShotID)

	if scope.SequenceID != "" && scope.ShotID != "" {
		return apperrors.NewBadRequest("scope must reference at most one of sequence_id or shot_id")
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("id = ?", scope.StoryID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("art control service: find story: %w", err)
	}
	if count == 0 {
		return ErrStoryNotFound
	}

	if scope.SequenceID != "" {
		if err := s.db.WithContext(ctx).
			Model(&models.Sequence{}).
			Where("id = ? AND story_id = ?", scope.SequenceID, scope.StoryID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("art control service: find sequence: %w", err)
		}
		if count == 0 {
			return ErrSequenceNotFound
		}
	}
	if scope.ShotID != "" {
		if err := s.db.WithContext(ctx).
			Model(&models.Shot{}).
			Where("id = ? AND story_id = ?", scope.ShotID, scope.StoryID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("art control service: find shot: %w", err)
		}
		if count == 0 {
			return ErrShotNotFound
		}
	}
	return nil
}

// findForScope loads the settings row keyed by exactly one scope column.
func (s *ArtControlService) findForScope(ctx context.Context, scope ArtControlScope) (*models.ArtControlSettings, error) {
	query := s.db.WithContext(ctx)
	switch {
	case scope.ShotID != "":
		query = query.Where("shot_id = ?", scope.ShotID)
	case scope.SequenceID != "":
		query = query.Where("sequence_id = ?", scope.SequenceID)
	default:
		query = query.Where("story_id = ? AND sequence_id IS NULL AND shot_id IS NULL", scope.StoryID)
	}

	var settings models.ArtControlSettings
	if err := query.First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *ArtControlService) createForScope(ctx context.Context, scope ArtControlScope, userID string, input UpdateArtControlInput) (*models.ArtControlSettings, error) {
	settings := models.DefaultArtControlSettings()
	switch {
	case scope.ShotID != "":
		settings.ShotID = &scope.ShotID
	case scope.SequenceID != "":
		settings.SequenceID = &scope.SequenceID
	default:
		settings.StoryID = &scope.StoryID
	}
	if userID = strings.TrimSpace(userID); userID != "" {
		settings.CreatedByID = &userID
	}
	if err := applyArtControlInput(&settings, input); err != nil {
		return nil, err
	}

	// Select("*") forces every column so overrides of default-true booleans
	// are not swallowed by the column defaults.
	if err := s.db.WithContext(ctx).Select("*").Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("art control service: create settings: %w", err)
	}
	return &settings, nil
}

func applyArtControlInput(settings *models.ArtControlSettings, input UpdateArtControlInput) error {
	if input.PrimaryColors != nil {
		encoded, err := encodeJSON(input.PrimaryColors)
		if err != nil {
			return fmt.Errorf("art control service: encode primary colors: %w", err)
		}
		settings.PrimaryColors = encoded
	}
	if input.ForbiddenColors != nil {
		encoded, err := encodeJSON(input.ForbiddenColors)
		if err != nil {
			return fmt.Errorf("art control service: encode forbidden colors: %w", err)
		}
		settings.ForbiddenColors = encoded
	}
	if input.PreferredShotTypes != nil {
		encoded, err := encodeJSON(input.PreferredShotTypes)
		if err != nil {
			return fmt.Errorf("art control service: encode shot types: %w", err)
		}
		settings.PreferredShotTypes = encoded
	}
	if input.StyleReferenceImages != nil {
		encoded, err := encodeJSON(input.StyleReferenceImages)
		if err != nil {
			return fmt.Errorf("art control service: encode reference images: %w", err)
		}
		settings.StyleReferenceImages = encoded
	}
	if input.MoodBoardImages != nil {
		encoded, err := encodeJSON(input.MoodBoardImages)
		if err != nil {
			return fmt.Errorf("art control service: encode mood board: %w", err)
		}
		settings.MoodBoardImages = encoded
	}

	if input.ColorMood != nil {
		settings.ColorMood = *input.ColorMood
	}
	if input.ColorSaturation != nil {
		settings.ColorSaturation = *input.ColorSaturation
	}
	if input.ColorContrast != nil {
		settings.ColorContrast = *input.ColorContrast
	}
	if input.CompositionStyle != nil {
		settings.CompositionStyle = *input.CompositionStyle
	}
	if input.HandheldAllowed != nil {
		settings.HandheldAllowed = *input.HandheldAllowed
	}
	if input.StableCameraAllowed != nil {
		settings.StableCameraAllowed = *input.StableCameraAllowed
	}
	if input.GimbalAllowed != nil {
		settings.GimbalAllowed = *input.GimbalAllowed
	}
	if input.DroneAllowed != nil {
		settings.DroneAllowed = *input.DroneAllowed
	}
	if input.StaticCameraAllowed != nil {
		settings.StaticCameraAllowed = *input.StaticCameraAllowed
	}
	if input.WideAngleAllowed != nil {
		settings.WideAngleAllowed = *input.WideAngleAllowed
	}
	if input.StandardLensPreferred != nil {
		settings.StandardLensPreferred = *input.StandardLensPreferred
	}
	if input.TelephotoAllowed != nil {
		settings.TelephotoAllowed = *input.TelephotoAllowed
	}
	if input.MacroAllowed != nil {
		settings.MacroAllowed = *input.MacroAllowed
	}
	if input.FisheyeAllowed != nil {
		settings.FisheyeAllowed = *input.FisheyeAllowed
	}
	if input.StaticShotsOnly != nil {
		settings.StaticShotsOnly = *input.StaticShotsOnly
	}
	if input.PanningAllowed != nil {
		settings.PanningAllowed = *input.PanningAllowed
	}
	if input.TrackingAllowed != nil {
		settings.TrackingAllowed = *input.TrackingAllowed
	}
	if input.ZoomAllowed != nil {
		settings.ZoomAllowed = *input.ZoomAllowed
	}
	if input.DollyShotsAllowed != nil {
		settings.DollyShotsAllowed = *input.DollyShotsAllowed
	}
	if input.ArtStyle != nil {
		settings.ArtStyle = *input.ArtStyle
	}
	if input.DetailLevel != nil {
		settings.DetailLevel = *input.DetailLevel
	}
	if input.LightingStyle != nil {
		settings.LightingStyle = *input.LightingStyle
	}
	if input.AnimationType != nil {
		settings.AnimationType = *input.AnimationType
	}
	if input.MotionPreference != nil {
		settings.MotionPreference = *input.MotionPreference
	}
	if input.FrameRate != nil {
		settings.FrameRate = *input.FrameRate
	}
	if input.Resolution != nil {
		settings.Resolution = *input.Resolution
	}
	if input.AspectRatio != nil {
		settings.AspectRatio = *input.AspectRatio
	}
	if input.CustomAspectRatio != nil {
		settings.CustomAspectRatio = *input.CustomAspectRatio
	}
	if input.Atmosphere != nil {
		settings.Atmosphere = *input.Atmosphere
	}
	if input.TimeOfDay != nil {
		settings.TimeOfDay = *input.TimeOfDay
	}
	if input.ShotDuration != nil {
		settings.ShotDuration = *input.ShotDuration
	}
	return nil
}

// artControlUpdates converts set fields into a column update map so false
// and empty values survive the write.
func artControlUpdates(input UpdateArtControlInput) (map[string]any, error) {
	updates := map[string]any{}

	setJSON := func(column string, values []string) error {
		if values == nil {
			return nil
		}
		encoded, err := encodeJSON(values)
		if err != nil {
			return fmt.Errorf("art control service: encode %s: %w", column, err)
		}
		updates[column] = encoded
		return nil
	}
	if err := setJSON("primary_colors", input.PrimaryColors); err != nil {
		return nil, err
	}
	if err := setJSON("forbidden_colors", input.ForbiddenColors); err != nil {
		return nil, err
	}
	if err := setJSON("preferred_shot_types", input.PreferredShotTypes); err != nil {
		return nil, err
	}
	if err := setJSON("style_reference_images", input.StyleReferenceImages); err != nil {
		return nil, err
	}
	if err := setJSON("mood_board_images", input.MoodBoardImages); err != nil {
		return nil, err
	}

	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	setBool := func(column string, value *bool) {
		if value != nil {
			updates[column] = *value
		}
	}

	setString("color_mood", input.ColorMood)
	setString("color_saturation", input.ColorSaturation)
	setString("color_contrast", input.ColorContrast)
	setString("composition_style", input.CompositionStyle)
	setBool("handheld_allowed", input.HandheldAllowed)
	setBool("stable_camera_allowed", input.StableCameraAllowed)
	setBool("gimbal_allowed", input.GimbalAllowed)
	setBool("drone_allowed", input.DroneAllowed)
	setBool("static_camera_allowed", input.StaticCameraAllowed)
	setBool("wide_angle_allowed", input.WideAngleAllowed)
	setBool("standard_lens_preferred", input.StandardLensPreferred)
	setBool("telephoto_allowed", input.TelephotoAllowed)
	setBool("macro_allowed", input.MacroAllowed)
	setBool("fisheye_allowed", input.FisheyeAllowed)
	setBool("static_shots_only", input.StaticShotsOnly)
	setBool("panning_allowed", input.PanningAllowed)
	setBool("tracking_allowed", input.TrackingAllowed)
	setBool("zoom_allowed", input.ZoomAllowed)
	setBool("dolly_shots_allowed", input.DollyShotsAllowed)
	setString("art_style", input.ArtStyle)
	setString("detail_level", input.DetailLevel)
	setString("lighting_style", input.LightingStyle)
	setString("animation_type", input.AnimationType)
	setString("motion_preference", input.MotionPreference)
	setString("resolution", input.Resolution)
	setString("aspect_ratio", input.AspectRatio)
	setString("custom_aspect_ratio", input.CustomAspectRatio)
	setString("atmosphere", input.Atmosphere)
	setString("time_of_day", input.TimeOfDay)
	setString("shot_duration", input.ShotDuration)
	if input.FrameRate != nil {
		updates["frame_rate"] = *input.FrameRate
	}

	return updates, nil
}
