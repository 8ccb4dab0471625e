package photo

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
)

const (
	overlayTextInset = 10
	overlayFontRatio = 0.8
	overlayDPI       = 72
)

var overlayTextColor = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Overlay draws the info bar configured on a storage onto renditions.
type Overlay struct {
	font *opentype.Font
	Now  func() time.Time
}

func NewOverlay() (*Overlay, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse overlay font: %w", err)
	}
	return &Overlay{font: f, Now: time.Now}, nil
}

// Apply draws the bar in place. A nil bar leaves img untouched.
func (o *Overlay) Apply(img draw.Image, bar *model.InfoBarConfig, metadata map[string]any) error {
	if bar == nil {
		return nil
	}

	b := img.Bounds()
	barHeight := int(math.Ceil(float64(b.Dy()) * bar.HeightRatioOrDefault()))
	if barHeight < 1 {
		barHeight = 1
	}
	rect := image.Rect(b.Min.X, b.Max.Y-barHeight, b.Max.X, b.Max.Y)
	if bar.PositionOrDefault() == model.InfoBarTop {
		rect = image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+barHeight)
	}

	bg, err := ParseHexColor(bar.BackgroundOrDefault())
	if err != nil {
		return err
	}
	draw.Draw(img, rect, image.NewUniform(bg), image.Point{}, draw.Src)

	if bar.TextLeft == "" && bar.TextCenter == "" && bar.TextRight == "" {
		return nil
	}

	face, err := opentype.NewFace(o.font, &opentype.FaceOptions{
		Size:    math.Ceil(overlayFontRatio * float64(barHeight)),
		DPI:     overlayDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create overlay font face: %w", err)
	}
	defer face.Close()

	m := face.Metrics()
	textHeight := (m.Ascent + m.Descent).Ceil()
	baseline := rect.Min.Y + (barHeight-textHeight)/2 + m.Ascent.Ceil()

	d := &font.Drawer{Dst: img, Src: image.NewUniform(overlayTextColor), Face: face}
	tags := o.tags(metadata)
	texts := []struct {
		text string
		x    func(tw int) int
	}{
		{bar.TextLeft, func(int) int { return rect.Min.X + overlayTextInset }},
		{bar.TextCenter, func(tw int) int { return rect.Min.X + (rect.Dx()-tw)/2 }},
		{bar.TextRight, func(tw int) int { return rect.Max.X - overlayTextInset - tw }},
	}
	for _, t := range texts {
		s := expandPlaceholders(t.text, tags)
		if s == "" {
			continue
		}
		tw := d.MeasureString(s).Ceil()
		d.Dot = fixed.P(t.x(tw), baseline)
		d.DrawString(s)
	}
	return nil
}

func (o *Overlay) tags(metadata map[string]any) map[string]string {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	t := now()
	tags := map[string]string{
		"YEAR":  strconv.Itoa(t.Year()),
		"MONTH": fmt.Sprintf("%02d", int(t.Month())),
		"DAY":   fmt.Sprintf("%02d", t.Day()),
	}
	for k, v := range metadata {
		tags["metadata."+k] = fmt.Sprint(v)
	}
	return tags
}

// expandPlaceholders replaces {key} with tags[key]. Unknown keys are kept as is.
func expandPlaceholders(text string, tags map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		if v, ok := tags[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// ParseHexColor accepts #RGB, #RGBA, #RRGGBB and #RRGGBBAA.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 || len(hex) == 4 {
		var sb strings.Builder
		for _, r := range hex {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		hex = sb.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if !strings.HasPrefix(s, "#") || len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
