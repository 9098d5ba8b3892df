package models

// Reference images uploaded against story children. ObjectKey points into
// the media bucket; URL is the public form handed to clients.

type CharacterImage struct {
	BaseModel

	CharacterID string `gorm:"type:uuid;not null;index" json:"character_id"`

	ObjectKey   string `gorm:"not null" json:"-"`
	URL         string `json:"url"`
	ImageType   string `gorm:"default:'uploaded'" json:"image_type"`
	Description string `json:"description"`

	UploadedByID *string `gorm:"type:uuid" json:"uploaded_by_id"`
}

type LocationImage struct {
	BaseModel

	LocationID string `gorm:"type:uuid;not null;index" json:"location_id"`

	ObjectKey   string `gorm:"not null" json:"-"`
	URL         string `json:"url"`
	ImageType   string `gorm:"default:'uploaded'" json:"image_type"`
	Description string `json:"description"`

	UploadedByID *string `gorm:"type:uuid" json:"uploaded_by_id"`
}

type AssetImage struct {
	BaseModel

	AssetID string `gorm:"type:uuid;not null;index" json:"asset_id"`

	ObjectKey   string `gorm:"not null" json:"-"`
	URL         string `json:"url"`
	ImageType   string `gorm:"default:'uploaded'" json:"image_type"`
	Description string `json:"description"`

	UploadedByID *string `gorm:"type:uuid" json:"uploaded_by_id"`
}
