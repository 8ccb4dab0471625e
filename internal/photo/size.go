package photo

import "github.com/fhuszti/filemgr-ms-go/internal/model"

var sizeThresholds = []struct {
	tag           model.SizeTag
	width, height int
}{
	{model.SizeTag8K, 8192, 5472},
	{model.SizeTag4K, 4096, 2752},
	{model.SizeTag3K, 3200, 2144},
	{model.SizeTag2K, 2048, 1376},
	{model.SizeTag1K, 1280, 864},
}

// Classify returns the size tag of an image of w×h pixels.
// Thresholds are checked from the largest down, VGA is the fallback.
func Classify(w, h int) model.SizeTag {
	for _, t := range sizeThresholds {
		if w >= t.width && h >= t.height {
			return t.tag
		}
	}
	return model.SizeTagVGA
}

var sizeRanks = map[model.SizeTag]int{
	model.SizeTagThumbSmall:  -3,
	model.SizeTagThumbMedium: -2,
	model.SizeTagThumbLarge:  -1,
	model.SizeTagVGA:         0,
	model.SizeTag1K:          1,
	model.SizeTag2K:          2,
	model.SizeTag3K:          3,
	model.SizeTag4K:          4,
	model.SizeTag8K:          5,
}

// Rank orders size tags, the bigger the better.
func Rank(tag model.SizeTag) int {
	return sizeRanks[tag]
}

// ThumbnailSpec is one fixed thumbnail format.
type ThumbnailSpec struct {
	Tag    model.SizeTag
	Width  int
	Height int
}

// Thumbnails is the fixed set of thumbnails produced for every image.
var Thumbnails = []ThumbnailSpec{
	{Tag: model.SizeTagThumbLarge, Width: 960, Height: 720},
	{Tag: model.SizeTagThumbMedium, Width: 480, Height: 360},
	{Tag: model.SizeTagThumbSmall, Width: 240, Height: 180},
}
