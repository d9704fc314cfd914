// Package video holds the codec-independent parts of video output: encoder
// fallback, overlay colours and output naming. The OpenCV bindings are in
// the opencv subpackage.
package video

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/monitoring"
)

// ErrNoEncoder is returned when none of the codecs could open a writer.
var ErrNoEncoder = errors.New("video: could not open video writer with any codec")

// Overlay colours.
var (
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// StatusColor is the text colour for a measurement: green when GOOD, red
// otherwise.
func StatusColor(m clearance.Measurement) color.RGBA {
	if m.Status == clearance.StatusGood {
		return Green
	}
	return Red
}

// OpenWithFallback tries each codec in order and returns the first writer
// that opens, with the codec used. If every codec fails the error wraps
// ErrNoEncoder and each attempt's failure.
func OpenWithFallback[W any](codecs []string, open func(codec string) (W, error)) (W, string, error) {
	var zero W
	if len(codecs) == 0 {
		return zero, "", fmt.Errorf("%w: no codecs configured", ErrNoEncoder)
	}

	var errs []error
	for i, codec := range codecs {
		w, err := open(codec)
		if err == nil {
			return w, codec, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", codec, err))
		if i+1 < len(codecs) {
			monitoring.Logf("Warning: %s codec failed, trying %s...", codec, codecs[i+1])
		}
	}
	return zero, "", fmt.Errorf("%w: %w", ErrNoEncoder, errors.Join(errs...))
}

// DefaultOutputPath names the annotated video next to the input:
// dir/name.ext becomes dir/name_guidance.mp4.
func DefaultOutputPath(input string) string {
	dir, base := filepath.Split(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = "output"
	}
	return filepath.Join(dir, name+"_guidance.mp4")
}

// Info describes an opened input video.
type Info struct {
	Width  int
	Height int
	FPS    float64
	// Frames is the container's frame count; 0 when unknown.
	Frames int
}

func (i Info) String() string {
	return fmt.Sprintf("%dx%d @ %.2f fps, %d frames", i.Width, i.Height, i.FPS, i.Frames)
}

// Validate rejects inputs whose frame size could not be read.
func (i Info) Validate() error {
	if i.Width <= 0 || i.Height <= 0 {
		return fmt.Errorf("video: invalid frame size %dx%d", i.Width, i.Height)
	}
	return nil
}
