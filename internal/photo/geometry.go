package photo

import (
	"image"
	"math"
)

// Fit scales ow×oh towards the tw×th box while keeping the aspect ratio.
// Portrait originals are scaled on width, landscape and square ones on height.
func Fit(ow, oh, tw, th int) (int, int) {
	var factor float64
	if oh > ow {
		factor = float64(tw) / float64(ow)
	} else {
		factor = float64(th) / float64(oh)
	}
	return int(math.RoundToEven(float64(ow) * factor)), int(math.RoundToEven(float64(oh) * factor))
}

// RequiresUpscale reports whether producing nw×nh from ow×oh would enlarge the original.
func RequiresUpscale(ow, oh, nw, nh int) bool {
	return ow < nw || oh < nh
}

// CenterBox returns the rectangle of size w×h centred on a W×H canvas.
func CenterBox(W, H, w, h int) image.Rectangle {
	left := floorHalf(W - w)
	top := floorHalf(H - h)
	return image.Rect(left, top, left+w, top+h)
}

func floorHalf(n int) int {
	if n < 0 && n%2 != 0 {
		return n/2 - 1
	}
	return n / 2
}

// SameProportion compares two aspect ratios rounded to 2 decimals.
func SameProportion(w1, h1, w2, h2 int) bool {
	return round(float64(w1)/float64(h1), 2) == round(float64(w2)/float64(h2), 2)
}

// Megapixels returns w*h in millions of pixels, rounded to 4 decimals.
func Megapixels(w, h int) float64 {
	return round(float64(w)*float64(h)/1e6, 4)
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}
