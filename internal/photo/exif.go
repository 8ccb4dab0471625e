package photo

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/fhuszti/filemgr-ms-go/internal/logger"
)

var ErrFileNotFound = errors.New("image file not found")

const (
	DefaultOrientationTag = "Flash"
	exifDateLayout        = "2006:01:02 15:04:05"
)

var rationalPattern = regexp.MustCompile(`^\((\d+),\s*(\d+)\)$`)

// Extractor reads EXIF metadata out of image files.
type Extractor struct {
	// OrientationTag names the tag the orientation getters read.
	OrientationTag string
}

func NewExtractor(orientationTag string) *Extractor {
	if orientationTag == "" {
		orientationTag = DefaultOrientationTag
	}
	return &Extractor{OrientationTag: orientationTag}
}

// Extract opens the image at path and collects its pixel size and EXIF tags.
// A file without EXIF data yields a record holding only width and height.
func (e *Extractor) Extract(ctx context.Context, path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read image size of %q: %w", path, err)
	}

	rec := NewRecord(e.OrientationTag)
	rec.ctx = ctx
	rec.values["width"] = cfg.Width
	rec.values["height"] = cfg.Height

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind %q: %w", path, err)
	}
	x, err := exif.Decode(f)
	if x == nil {
		logger.Debugf(ctx, "no exif data in %s: %v", path, err)
		return rec, nil
	}
	if err != nil {
		logger.Warnf(ctx, "⚠️ partial exif data in %s: %v", path, err)
	}
	if err := x.Walk(recordWalker{rec}); err != nil {
		logger.Warnf(ctx, "⚠️ failed to walk exif data of %s: %v", path, err)
	}
	return rec, nil
}

type recordWalker struct{ rec *Record }

func (w recordWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	w.rec.add(string(name), tag)
	return nil
}

// Record is the normalised EXIF metadata of one image.
// Getters return nil when the value is missing or cannot be parsed.
type Record struct {
	// ctx carries the caller attributes of parse warnings.
	ctx            context.Context
	values         map[string]any
	rationals      map[string][2]int64
	orientationTag string
}

func NewRecord(orientationTag string) *Record {
	if orientationTag == "" {
		orientationTag = DefaultOrientationTag
	}
	return &Record{
		ctx:            context.Background(),
		values:         make(map[string]any),
		rationals:      make(map[string][2]int64),
		orientationTag: orientationTag,
	}
}

// Set stores a raw value, as read from a tag.
func (r *Record) Set(key string, v any) {
	r.values[key] = v
}

// SetRational stores a single rational value along with its float form.
func (r *Record) SetRational(key string, num, den int64) {
	r.rationals[key] = [2]int64{num, den}
	if den != 0 {
		r.values[key] = float64(num) / float64(den)
	}
}

func (r *Record) add(name string, tag *tiff.Tag) {
	count := int(tag.Count)
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return
		}
		r.values[name] = strings.TrimSpace(strings.TrimRight(s, "\x00"))
		return
	case tiff.UndefVal, tiff.OtherVal:
		s := strings.ToValidUTF8(string(tag.Val), "\uFFFD")
		r.values[name] = strings.TrimSpace(strings.TrimRight(s, "\x00"))
		return
	case tiff.RatVal:
		if count == 1 {
			if num, den, err := tag.Rat2(0); err == nil {
				r.SetRational(name, num, den)
			}
			return
		}
	}

	vals := make([]any, 0, count)
	for i := 0; i < count; i++ {
		if v, ok := tagValue(tag, i); ok {
			vals = append(vals, v)
		}
	}
	switch len(vals) {
	case 0:
	case 1:
		r.values[name] = vals[0]
	default:
		r.values[name] = vals
	}
}

func tagValue(tag *tiff.Tag, i int) (any, bool) {
	switch tag.Format() {
	case tiff.IntVal:
		v, err := tag.Int64(i)
		return v, err == nil
	case tiff.FloatVal:
		v, err := tag.Float(i)
		return v, err == nil
	case tiff.RatVal:
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return nil, false
		}
		return float64(num) / float64(den), true
	}
	return nil, false
}

// Values returns the JSON-able map stored as the file's exif metadata.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Get returns the raw value of key, or def when absent.
func (r *Record) Get(key string, def any) any {
	if v, ok := r.values[key]; ok && v != nil {
		return v
	}
	return def
}

func (r *Record) String(key string) *string {
	v, ok := r.values[key]
	if !ok {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []any:
		if len(t) == 0 {
			return nil
		}
		s = fmt.Sprint(t[0])
	default:
		s = fmt.Sprint(t)
	}
	if s == "" {
		return nil
	}
	return &s
}

func (r *Record) Int(key string) *int {
	v, ok := r.values[key]
	if !ok {
		return nil
	}
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		v = list[0]
	}
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		n = int(t)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			logger.Warnf(r.ctx, "⚠️ unable to parse integer exif value %s: %q", key, t)
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

// rational returns the num/den pair of key, parsing "(num, den)" strings when needed.
func (r *Record) rational(key, label string) (int64, int64, bool) {
	if p, ok := r.rationals[key]; ok {
		if p[1] == 0 {
			logger.Warnf(r.ctx, "⚠️ unable to parse %s: %d/%d", label, p[0], p[1])
			return 0, 0, false
		}
		return p[0], p[1], true
	}
	v, ok := r.values[key]
	if !ok {
		return 0, 0, false
	}
	s, ok := v.(string)
	m := rationalPattern.FindStringSubmatch(s)
	if !ok || m == nil {
		logger.Warnf(r.ctx, "⚠️ unable to parse %s: %v", label, v)
		return 0, 0, false
	}
	num, errN := strconv.ParseInt(m[1], 10, 64)
	den, errD := strconv.ParseInt(m[2], 10, 64)
	if errN != nil || errD != nil || den == 0 {
		logger.Warnf(r.ctx, "⚠️ unable to parse %s: %v", label, v)
		return 0, 0, false
	}
	return num, den, true
}

func (r *Record) FocalLength() *float64 {
	num, den, ok := r.rational("FocalLength", "focal length")
	if !ok {
		return nil
	}
	v := float64(num) / float64(den)
	return &v
}

func (r *Record) Aperture() *string {
	num, den, ok := r.rational("FNumber", "aperture")
	if !ok {
		return nil
	}
	s := fmt.Sprintf("f/%.1f", float64(num)/float64(den))
	return &s
}

// Exposure returns the exposure time as an unreduced "num/den" fraction.
func (r *Record) Exposure() *string {
	num, den, ok := r.rational("ExposureTime", "exposure time")
	if !ok {
		return nil
	}
	s := fmt.Sprintf("%d/%d", num, den)
	return &s
}

func (r *Record) FlashFired() *bool {
	v := r.Int("Flash")
	if v == nil {
		return nil
	}
	fired := *v&1 == 1
	return &fired
}

func (r *Record) OrientationAngle() *int {
	v := r.Int(r.orientationTag)
	if v == nil {
		return nil
	}
	angle := orientationAngle(*v)
	return &angle
}

func (r *Record) IsFlipped() *bool {
	v := r.Int(r.orientationTag)
	if v == nil {
		return nil
	}
	flipped := orientationFlipped(*v)
	return &flipped
}

func orientationAngle(v int) int {
	switch v {
	case 0, 1:
		return 0
	case 3, 4:
		return 180
	case 5, 6:
		return 90
	default:
		return 270
	}
}

func orientationFlipped(v int) bool {
	switch v {
	case 2, 4, 5, 7:
		return true
	}
	return false
}

func (r *Record) ISO() *int {
	return r.Int("ISOSpeedRatings")
}

func (r *Record) CameraMake() *string {
	return r.String("Make")
}

func (r *Record) CameraModel() *string {
	return r.String("Model")
}

func (r *Record) DatetimeTaken() *time.Time {
	s := r.String("DateTimeOriginal")
	if s == nil {
		return nil
	}
	t, err := time.Parse(exifDateLayout, *s)
	if err != nil {
		logger.Warnf(r.ctx, "⚠️ unable to parse capture datetime: %q", *s)
		return nil
	}
	return &t
}

func (r *Record) ExifWidth() *int {
	if v := r.Int("PixelXDimension"); v != nil {
		return v
	}
	return r.Int("ImageWidth")
}

func (r *Record) ExifHeight() *int {
	if v := r.Int("PixelYDimension"); v != nil {
		return v
	}
	return r.Int("ImageLength")
}

// Width and Height are the decoder's pixel size.
func (r *Record) Width() int {
	if v := r.Int("width"); v != nil {
		return *v
	}
	return 0
}

func (r *Record) Height() int {
	if v := r.Int("height"); v != nil {
		return *v
	}
	return 0
}

func (r *Record) Megapixels() float64 {
	return Megapixels(r.Width(), r.Height())
}
