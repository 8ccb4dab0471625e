package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/fhuszti/filemgr-ms-go/internal/validation"
)

var ErrInvalidConvertConfig = errors.New("invalid media convert configuration")

const (
	InfoBarTop    = "TOP"
	InfoBarBottom = "BOTTOM"

	DefaultInfoBarBackground  = "#11141A"
	DefaultInfoBarHeightRatio = 0.03
)

type OutputFormat string

const (
	OutputFormatJPEG OutputFormat = "JPEG"
	OutputFormatWEBP OutputFormat = "WEBP"
)

// MediaConvertConfig is the typed form of a storage's media_convert_configuration.
type MediaConvertConfig struct {
	ImageResizer *ImageResizerConfig `json:"image_resizer" validate:"required"`
	ImageInfoBar *InfoBarConfig      `json:"image_info_bar,omitempty"`
}

type ImageResizerConfig struct {
	Sizes  []string     `json:"sizes" validate:"required,dive,wxh"`
	Format OutputFormat `json:"format,omitempty" validate:"omitempty,oneof=JPEG WEBP"`

	targets []Dimensions
}

// Targets returns the parsed "WxH" sizes, in configuration order.
func (c *ImageResizerConfig) Targets() []Dimensions {
	return c.targets
}

// OutputFormat returns the configured rendition format, JPEG when unset.
func (c *ImageResizerConfig) OutputFormat() OutputFormat {
	if c.Format == "" {
		return OutputFormatJPEG
	}
	return c.Format
}

type InfoBarConfig struct {
	Position        string  `json:"position,omitempty" validate:"omitempty,oneof=TOP BOTTOM"`
	BackgroundColor string  `json:"background_color,omitempty" validate:"omitempty,hexcolor"`
	TextLeft        string  `json:"text_left,omitempty"`
	TextCenter      string  `json:"text_center,omitempty"`
	TextRight       string  `json:"text_right,omitempty"`
	HeightRatio     float64 `json:"height_ratio,omitempty" validate:"omitempty,gt=0,lt=1"`
}

func (b *InfoBarConfig) PositionOrDefault() string {
	if b.Position == "" {
		return InfoBarBottom
	}
	return b.Position
}

func (b *InfoBarConfig) BackgroundOrDefault() string {
	if b.BackgroundColor == "" {
		return DefaultInfoBarBackground
	}
	return b.BackgroundColor
}

func (b *InfoBarConfig) HeightRatioOrDefault() float64 {
	if b.HeightRatio == 0 {
		return DefaultInfoBarHeightRatio
	}
	return b.HeightRatio
}

var sizePattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// ParseSize parses a "WxH" string.
func ParseSize(s string) (Dimensions, error) {
	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return Dimensions{}, fmt.Errorf("%w: size %q is not of the form WxH", ErrInvalidConvertConfig, s)
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return Dimensions{}, fmt.Errorf("%w: size %q must have positive dimensions", ErrInvalidConvertConfig, s)
	}
	return Dimensions{Width: w, Height: h}, nil
}

// ParseMediaConvertConfig decodes and validates a raw configuration.
// A missing or empty document is rejected.
func ParseMediaConvertConfig(raw []byte) (*MediaConvertConfig, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: configuration is missing", ErrInvalidConvertConfig)
	}

	var cfg MediaConvertConfig
	if err := json.Unmarshal(trimmed, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConvertConfig, err)
	}
	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConvertConfig, err)
	}

	cfg.ImageResizer.targets = make([]Dimensions, 0, len(cfg.ImageResizer.Sizes))
	for _, s := range cfg.ImageResizer.Sizes {
		d, err := ParseSize(s)
		if err != nil {
			return nil, err
		}
		cfg.ImageResizer.targets = append(cfg.ImageResizer.targets, d)
	}

	return &cfg, nil
}
