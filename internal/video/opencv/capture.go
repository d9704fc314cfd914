package opencv

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/banshee-data/laneguide/internal/video"
)

// Capture reads frames from a video file.
type Capture struct {
	vc   *gocv.VideoCapture
	info video.Info
}

// OpenCapture opens path and reads its frame size and rate.
func OpenCapture(path string) (*Capture, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open video %s: failed to open video", path)
	}

	info := video.Info{
		Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    vc.Get(gocv.VideoCaptureFPS),
		Frames: int(vc.Get(gocv.VideoCaptureFrameCount)),
	}
	if err := info.Validate(); err != nil {
		vc.Close()
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	return &Capture{vc: vc, info: info}, nil
}

// Info returns the frame size and rate reported by the container.
func (c *Capture) Info() video.Info { return c.info }

// FPS returns the container frame rate, 0 when unknown.
func (c *Capture) FPS() float64 { return c.info.FPS }

// Read decodes the next frame into dst. It returns false at end of stream
// or on a decode failure.
func (c *Capture) Read(dst *gocv.Mat) bool {
	return c.vc.Read(dst) && !dst.Empty()
}

// Close releases the capture.
func (c *Capture) Close() error {
	return c.vc.Close()
}
