package photo

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const letterboxBlurRadius = 5

// Render resizes src to exactly w×h.
func Render(src image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(src, w, h, imaging.Lanczos)
}

// Thumbnail composes a w×h thumbnail of src. The whole source is kept and centred.
// When the proportions differ, the free space shows a blurred grayscale copy of the source.
func Thumbnail(src image.Image, w, h int) *image.NRGBA {
	ow, oh := src.Bounds().Dx(), src.Bounds().Dy()

	canvas := imaging.New(w, h, color.Black)
	if !SameProportion(ow, oh, w, h) {
		bw, bh := Fit(ow, oh, w, h)
		bg := imaging.Resize(src, bw, bh, imaging.Lanczos)
		bg = cropCenter(bg, w, h)
		bg = BoxBlur(bg, letterboxBlurRadius)
		canvas = imaging.Paste(canvas, imaging.Grayscale(bg), image.Pt(0, 0))
	}

	fg := imaging.Fit(src, w, h, imaging.Lanczos)
	box := CenterBox(w, h, fg.Bounds().Dx(), fg.Bounds().Dy())
	return imaging.Paste(canvas, fg, box.Min)
}

// cropCenter cuts a w×h window out of the centre of img, padding with black
// where img is smaller than the window.
func cropCenter(img *image.NRGBA, w, h int) *image.NRGBA {
	box := CenterBox(img.Bounds().Dx(), img.Bounds().Dy(), w, h)
	out := imaging.New(w, h, color.Black)
	return imaging.Paste(out, img, image.Pt(-box.Min.X, -box.Min.Y))
}

// BoxBlur averages every pixel over the (2r+1)×(2r+1) box around it.
// Edges are clamped.
func BoxBlur(img *image.NRGBA, radius int) *image.NRGBA {
	if radius <= 0 {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	src := imaging.Clone(img)
	tmp := image.NewNRGBA(image.Rect(0, 0, w, h))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	blurPass(src.Pix, tmp.Pix, src.Stride, w, h, radius, true)
	blurPass(tmp.Pix, dst.Pix, tmp.Stride, w, h, radius, false)
	return dst
}

func blurPass(src, dst []uint8, stride, w, h, radius int, horizontal bool) {
	lines, length := h, w
	if !horizontal {
		lines, length = w, h
	}
	offset := func(line, i int) int {
		if horizontal {
			return line*stride + i*4
		}
		return i*stride + line*4
	}
	clamp := func(i int) int {
		if i < 0 {
			return 0
		}
		if i >= length {
			return length - 1
		}
		return i
	}
	size := 2*radius + 1

	for line := 0; line < lines; line++ {
		var sum [4]int
		for i := -radius; i <= radius; i++ {
			o := offset(line, clamp(i))
			for c := 0; c < 4; c++ {
				sum[c] += int(src[o+c])
			}
		}
		for i := 0; i < length; i++ {
			o := offset(line, i)
			for c := 0; c < 4; c++ {
				dst[o+c] = uint8((sum[c] + size/2) / size)
			}
			out := offset(line, clamp(i-radius))
			in := offset(line, clamp(i+radius+1))
			for c := 0; c < 4; c++ {
				sum[c] += int(src[in+c]) - int(src[out+c])
			}
		}
	}
}
