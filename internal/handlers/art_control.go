package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/services"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/response"
)

// ArtControlHandler serves the per-scope visual guideline settings. The same
// four methods back the story, sequence and shot routes; the scope comes from
// whichever path params are present.
type ArtControlHandler struct {
	artControl *services.ArtControlService
}

func NewArtControlHandler(db *gorm.DB) (*ArtControlHandler, error) {
	artControl, err := services.NewArtControlService(db)
	if err != nil {
		return nil, err
	}
	return &ArtControlHandler{artControl: artControl}, nil
}

type artControlRequest struct {
	PrimaryColors   []string `json:"primary_colors"`
	ColorMood       *string  `json:"color_mood"`
	ColorSaturation *string  `json:"color_saturation"`
	ColorContrast   *string  `json:"color_contrast"`
	ForbiddenColors []string `json:"forbidden_colors"`

	CompositionStyle   *string  `json:"composition_style"`
	PreferredShotTypes []string `json:"preferred_shot_types"`

	HandheldAllowed     *bool `json:"handheld_allowed"`
	StableCameraAllowed *bool `json:"stable_camera_allowed"`
	GimbalAllowed       *bool `json:"gimbal_allowed"`
	DroneAllowed        *bool `json:"drone_allowed"`
	StaticCameraAllowed *bool `json:"static_camera_allowed"`

	WideAngleAllowed      *bool `json:"wide_angle_allowed"`
	StandardLensPreferred *bool `json:"standard_lens_preferred"`
	TelephotoAllowed      *bool `json:"telephoto_allowed"`
	MacroAllowed          *bool `json:"macro_allowed"`
	FisheyeAllowed        *bool `json:"fisheye_allowed"`

	StaticShotsOnly   *bool `json:"static_shots_only"`
	PanningAllowed    *bool `json:"panning_allowed"`
	TrackingAllowed   *bool `json:"tracking_allowed"`
	ZoomAllowed       *bool `json:"zoom_allowed"`
	DollyShotsAllowed *bool `json:"dolly_shots_allowed"`

	ArtStyle      *string `json:"art_style"`
	DetailLevel   *string `json:"detail_level"`
	LightingStyle *string `json:"lighting_style"`

	AnimationType    *string `json:"animation_type"`
	MotionPreference *string `json:"motion_preference"`

	StyleReferenceImages []string `json:"style_reference_images"`
	MoodBoardImages      []string `json:"mood_board_images"`

	FrameRate  *int    `json:"frame_rate" validate:"omitempty,min=1,max=240"`
	Resolution *string `json:"resolution" validate:"omitempty,max=32"`

	AspectRatio       *string `json:"aspect_ratio" validate:"omitempty,max=16"`
	CustomAspectRatio *string `json:"custom_aspect_ratio" validate:"omitempty,max=16"`

	Atmosphere   *string `json:"atmosphere" validate:"omitempty,max=255"`
	TimeOfDay    *string `json:"time_of_day" validate:"omitempty,max=100"`
	ShotDuration *string `json:"shot_duration" validate:"omitempty,max=100"`
}

func (r artControlRequest) toInput() services.UpdateArtControlInput {
	return services.UpdateArtControlInput{
		PrimaryColors:   r.PrimaryColors,
		ColorMood:       r.ColorMood,
		ColorSaturation: r.ColorSaturation,
		ColorContrast:   r.ColorContrast,
		ForbiddenColors: r.ForbiddenColors,

		CompositionStyle:   r.CompositionStyle,
		PreferredShotTypes: r.PreferredShotTypes,

		HandheldAllowed:     r.HandheldAllowed,
		StableCameraAllowed: r.StableCameraAllowed,
		GimbalAllowed:       r.GimbalAllowed,
		DroneAllowed:        r.DroneAllowed,
		StaticCameraAllowed: r.StaticCameraAllowed,

		WideAngleAllowed:      r.WideAngleAllowed,
		StandardLensPreferred: r.StandardLensPreferred,
		TelephotoAllowed:      r.TelephotoAllowed,
		MacroAllowed:          r.MacroAllowed,
		FisheyeAllowed:        r.FisheyeAllowed,

		StaticShotsOnly:   r.StaticShotsOnly,
		PanningAllowed:    r.PanningAllowed,
		TrackingAllowed:   r.TrackingAllowed,
		ZoomAllowed:       r.ZoomAllowed,
		DollyShotsAllowed: r.DollyShotsAllowed,

		ArtStyle:      r.ArtStyle,
		DetailLevel:   r.DetailLevel,
		LightingStyle: r.LightingStyle,

		AnimationType:    r.AnimationType,
		MotionPreference: r.MotionPreference,

		StyleReferenceImages: r.StyleReferenceImages,
		MoodBoardImages:      r.MoodBoardImages,

		FrameRate:  r.FrameRate,
		Resolution: r.Resolution,

		AspectRatio:       r.AspectRatio,
		CustomAspectRatio: r.CustomAspectRatio,

		Atmosphere:   r.Atmosphere,
		TimeOfDay:    r.TimeOfDay,
		ShotDuration: r.ShotDuration,
	}
}

func artControlScope(c *gin.Context) services.ArtControlScope {
	return services.ArtControlScope{
		StoryID:    c.Param("storyID"),
		SequenceID: c.Param("sequenceID"),
		ShotID:     c.Param("shotID"),
	}
}

// GET .../art-control — returns the settings for the scope, creating a
// default row on first read.
func (h *ArtControlHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	settings, created, err := h.artControl.GetOrCreate(requestContext(c), artControlScope(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings, "created": created})
}

// POST .../art-control — explicit create; 400 when the scope already has a row.
func (h *ArtControlHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req artControlRequest
	if !bindAndValidate(c, &req) {
		return
	}

	settings, err := h.artControl.Create(requestContext(c), artControlScope(c), userID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, settings)
}

// PUT .../art-control — partial update; absent fields keep their value.
func (h *ArtControlHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req artControlRequest
	if !bindAndValidate(c, &req) {
		return
	}

	settings, err := h.artControl.Update(requestContext(c), artControlScope(c), userID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// DELETE .../art-control (and .../art-control/reset for the story scope) —
// puts the row back to defaults and returns it.
func (h *ArtControlHandler) Reset(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	settings, err := h.artControl.Reset(requestContext(c), artControlScope(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":  "Art control settings reset to defaults",
		"settings": settings,
	})
}
