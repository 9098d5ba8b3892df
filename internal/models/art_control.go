package models

import "gorm.io/datatypes"

// ArtControlSettings pins down the visual language for a story, a sequence,
// or a single shot. Exactly one of the three scope keys is set per row.
type ArtControlSettings struct {
	BaseModel

	StoryID    *string `gorm:"type:uuid;index" json:"story_id"`
	Story      *Story  `json:"story,omitempty"`
	SequenceID *string `gorm:"type:uuid;index" json:"sequence_id"`
	ShotID     *string `gorm:"type:uuid;index" json:"shot_id"`

	// Color palette
	PrimaryColors   datatypes.JSON `json:"primary_colors"`
	ColorMood       string         `gorm:"default:'neutral'" json:"color_mood"`
	ColorSaturation string         `gorm:"default:'normal'" json:"color_saturation"`
	ColorContrast   string         `gorm:"default:'normal'" json:"color_contrast"`
	ForbiddenColors datatypes.JSON `json:"forbidden_colors"`

	// Composition
	CompositionStyle   string         `gorm:"default:'rule_of_thirds'" json:"composition_style"`
	PreferredShotTypes datatypes.JSON `json:"preferred_shot_types"`

	// Camera guidelines
	HandheldAllowed     bool `gorm:"default:true" json:"handheld_allowed"`
	StableCameraAllowed bool `gorm:"default:true" json:"stable_camera_allowed"`
	GimbalAllowed       bool `gorm:"default:true" json:"gimbal_allowed"`
	DroneAllowed        bool `gorm:"default:true" json:"drone_allowed"`
	StaticCameraAllowed bool `gorm:"default:true" json:"static_camera_allowed"`

	// Lens guidelines
	WideAngleAllowed      bool `gorm:"default:true" json:"wide_angle_allowed"`
	StandardLensPreferred bool `gorm:"default:true" json:"standard_lens_preferred"`
	TelephotoAllowed      bool `gorm:"default:true" json:"telephoto_allowed"`
	MacroAllowed          bool `gorm:"default:true" json:"macro_allowed"`
	FisheyeAllowed        bool `gorm:"default:false" json:"fisheye_allowed"`

	// Camera movement
	StaticShotsOnly   bool `gorm:"default:false" json:"static_shots_only"`
	PanningAllowed    bool `gorm:"default:true" json:"panning_allowed"`
	TrackingAllowed   bool `gorm:"default:true" json:"tracking_allowed"`
	ZoomAllowed       bool `gorm:"default:true" json:"zoom_allowed"`
	DollyShotsAllowed bool `gorm:"default:true" json:"dolly_shots_allowed"`

	// Visual style
	ArtStyle      string `gorm:"default:'realistic'" json:"art_style"`
	DetailLevel   string `gorm:"default:'medium'" json:"detail_level"`
	LightingStyle string `gorm:"default:'natural'" json:"lighting_style"`

	// Animation style
	AnimationType    string `gorm:"default:'3d'" json:"animation_type"`
	MotionPreference string `gorm:"default:'smooth'" json:"motion_preference"`

	// Reference images
	StyleReferenceImages datatypes.JSON `json:"style_reference_images"`
	MoodBoardImages      datatypes.JSON `json:"mood_board_images"`

	// Technical specifications (story level)
	FrameRate  int    `gorm:"default:24" json:"frame_rate"`
	Resolution string `gorm:"default:'1920x1080'" json:"resolution"`

	// Aspect ratio
	AspectRatio       string `gorm:"default:'16:9'" json:"aspect_ratio"`
	CustomAspectRatio string `json:"custom_aspect_ratio"`

	// Environment and timing (sequence/shot level)
	Atmosphere   string `json:"atmosphere"`
	TimeOfDay    string `json:"time_of_day"`
	ShotDuration string `json:"shot_duration"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id"`
}

// DefaultArtControlSettings returns a settings row populated with the
// defaults used on creation and after a reset.
func DefaultArtControlSettings() ArtControlSettings {
	return ArtControlSettings{
		ColorMood:             "neutral",
		ColorSaturation:       "normal",
		ColorContrast:         "normal",
		CompositionStyle:      "rule_of_thirds",
		HandheldAllowed:       true,
		StableCameraAllowed:   true,
		GimbalAllowed:         true,
		DroneAllowed:          true,
		StaticCameraAllowed:   true,
		WideAngleAllowed:      true,
		StandardLensPreferred: true,
		TelephotoAllowed:      true,
		MacroAllowed:          true,
		FisheyeAllowed:        false,
		StaticShotsOnly:       false,
		PanningAllowed:        true,
		TrackingAllowed:       true,
		ZoomAllowed:           true,
		DollyShotsAllowed:     true,
		ArtStyle:              "realistic",
		DetailLevel:           "medium",
		LightingStyle:         "natural",
		AnimationType:         "3d",
		MotionPreference:      "smooth",
		FrameRate:             24,
		Resolution:            "1920x1080",
		AspectRatio:           "16:9",
	}
}
