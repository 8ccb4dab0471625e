package photo

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
)

const (
	RenditionQuality = 90
	ThumbnailQuality = 75
)

// Open decodes the image stored at path.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %q: %w", path, err)
	}
	return img, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format model.OutputFormat, quality int) error {
	switch format {
	case model.OutputFormatWEBP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case model.OutputFormatJPEG, "":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func Extension(format model.OutputFormat) string {
	if format == model.OutputFormatWEBP {
		return ".webp"
	}
	return ".jpg"
}

func ContentType(format model.OutputFormat) string {
	if format == model.OutputFormatWEBP {
		return "image/webp"
	}
	return "image/jpeg"
}
