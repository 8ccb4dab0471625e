package model

import (
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type MediaType string

const (
	MediaTypeImage    MediaType = "IMAGE"
	MediaTypeVideo    MediaType = "VIDEO"
	MediaTypeDocument MediaType = "DOCUMENT"
)

type SizeTag string

const (
	SizeTag8K          SizeTag = "SIZE_8K"
	SizeTag4K          SizeTag = "SIZE_4K"
	SizeTag3K          SizeTag = "SIZE_3K"
	SizeTag2K          SizeTag = "SIZE_2K"
	SizeTag1K          SizeTag = "SIZE_1K"
	SizeTagVGA         SizeTag = "SIZE_VGA"
	SizeTagThumbLarge  SizeTag = "SIZE_THUMB_LARGE"
	SizeTagThumbMedium SizeTag = "SIZE_THUMB_MEDIUM"
	SizeTagThumbSmall  SizeTag = "SIZE_THUMB_SMALL"
)

// IsThumbnail reports whether t is one of the fixed thumbnail tags.
func (t SizeTag) IsThumbnail() bool {
	return t == SizeTagThumbLarge || t == SizeTagThumbMedium || t == SizeTagThumbSmall
}

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MediaItem wraps one original StoredFile.
type MediaItem struct {
	ID            uuid.UUID `json:"id"`
	StorageFileID uuid.UUID `json:"storage_file_id"`
	Title         string    `json:"title"`
	Type          MediaType `json:"type"`
	Description   string    `json:"description"`
	CreatedBy     string    `json:"created_by"`
	UpdatedBy     string    `json:"updated_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MediaImage holds the image details of a MediaItem, EXIF-derived fields included.
type MediaImage struct {
	ID               uuid.UUID  `json:"id"`
	MediaID          uuid.UUID  `json:"media_id"`
	SizeTag          SizeTag    `json:"size_tag"`
	Height           int        `json:"height"`
	Width            int        `json:"width"`
	Megapixels       float64    `json:"megapixels"`
	FocalLength      *float64   `json:"focal_length"`
	Aperture         *string    `json:"aperture"`
	FlashFired       *bool      `json:"flash_fired"`
	ISO              *int       `json:"iso"`
	OrientationAngle *int       `json:"orientation_angle"`
	IsFlipped        *bool      `json:"is_flipped"`
	Exposure         *string    `json:"exposure"`
	DatetimeTaken    *time.Time `json:"datetime_taken"`
	CameraMake       *string    `json:"camera_make"`
	CameraModel      *string    `json:"camera_model"`
	ExifWidth        *int       `json:"exif_width"`
	ExifHeight       *int       `json:"exif_height"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MediaImageSized is one resized rendition of a MediaImage.
type MediaImageSized struct {
	ID            uuid.UUID `json:"id"`
	MediaImageID  uuid.UUID `json:"media_image_id"`
	StorageFileID uuid.UUID `json:"storage_file_id"`
	SizeTag       SizeTag   `json:"size_tag"`
	Height        int       `json:"height"`
	Width         int       `json:"width"`
	Megapixels    float64   `json:"megapixels"`
	CreatedAt     time.Time `json:"created_at"`
}

// MediaThumbnail is one fixed-aspect thumbnail of a MediaItem.
type MediaThumbnail struct {
	ID            uuid.UUID `json:"id"`
	MediaID       uuid.UUID `json:"media_id"`
	StorageFileID uuid.UUID `json:"storage_file_id"`
	SizeTag       SizeTag   `json:"size_tag"`
	Height        int       `json:"height"`
	Width         int       `json:"width"`
	Megapixels    float64   `json:"megapixels"`
	CreatedAt     time.Time `json:"created_at"`
}
