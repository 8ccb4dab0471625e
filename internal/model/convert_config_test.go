package model

import (
	"errors"
	"testing"
)

func TestParseMediaConvertConfig_Success(t *testing.T) {
	raw := []byte(`{
		"image_resizer": {"sizes": ["1280x864", "800x600"]},
		"image_info_bar": {"position": "TOP", "background_color": "#000000", "text_left": "{metadata.author}"}
	}`)

	cfg, err := ParseMediaConvertConfig(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Dimensions{{1280, 864}, {800, 600}}
	got := cfg.ImageResizer.Targets()
	if len(got) != len(want) {
		t.Fatalf("targets = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target[%d] = %v; want %v", i, got[i], want[i])
		}
	}
	if cfg.ImageResizer.OutputFormat() != OutputFormatJPEG {
		t.Errorf("format = %q; want JPEG", cfg.ImageResizer.OutputFormat())
	}
	bar := cfg.ImageInfoBar
	if bar == nil {
		t.Fatal("expected info bar configuration")
	}
	if bar.PositionOrDefault() != InfoBarTop {
		t.Errorf("position = %q; want TOP", bar.PositionOrDefault())
	}
	if bar.HeightRatioOrDefault() != DefaultInfoBarHeightRatio {
		t.Errorf("height ratio = %v; want default", bar.HeightRatioOrDefault())
	}
}

func TestParseMediaConvertConfig_Defaults(t *testing.T) {
	cfg, err := ParseMediaConvertConfig([]byte(`{"image_resizer": {"sizes": [], "format": "WEBP"}, "image_info_bar": {}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.ImageResizer.Targets()) != 0 {
		t.Errorf("expected no targets, got %v", cfg.ImageResizer.Targets())
	}
	if cfg.ImageResizer.OutputFormat() != OutputFormatWEBP {
		t.Errorf("format = %q; want WEBP", cfg.ImageResizer.OutputFormat())
	}
	if cfg.ImageInfoBar.PositionOrDefault() != InfoBarBottom {
		t.Errorf("position = %q; want BOTTOM", cfg.ImageInfoBar.PositionOrDefault())
	}
	if cfg.ImageInfoBar.BackgroundOrDefault() != DefaultInfoBarBackground {
		t.Errorf("background = %q; want %q", cfg.ImageInfoBar.BackgroundOrDefault(), DefaultInfoBarBackground)
	}
}

func TestParseMediaConvertConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":            ``,
		"null":             `null`,
		"not json":         `{"image_resizer":`,
		"missing resizer":  `{"image_info_bar": {}}`,
		"missing sizes":    `{"image_resizer": {}}`,
		"bad size":         `{"image_resizer": {"sizes": ["big"]}}`,
		"zero size":        `{"image_resizer": {"sizes": ["0x10"]}}`,
		"bad format":       `{"image_resizer": {"sizes": [], "format": "GIF"}}`,
		"bad position":     `{"image_resizer": {"sizes": []}, "image_info_bar": {"position": "LEFT"}}`,
		"bad colour":       `{"image_resizer": {"sizes": []}, "image_info_bar": {"background_color": "red"}}`,
		"bad height ratio": `{"image_resizer": {"sizes": []}, "image_info_bar": {"height_ratio": 2}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMediaConvertConfig([]byte(raw))
			if !errors.Is(err, ErrInvalidConvertConfig) {
				t.Fatalf("expected ErrInvalidConvertConfig, got %v", err)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	d, err := ParseSize("1920x1080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Width != 1920 || d.Height != 1080 {
		t.Errorf("ParseSize = %v; want 1920x1080", d)
	}
	if _, err := ParseSize("1920 x 1080"); err == nil {
		t.Error("expected error for spaced size")
	}
}
