package opencv

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/banshee-data/laneguide/internal/video"
)

// Writer encodes annotated frames to a video file.
type Writer struct {
	vw    *gocv.VideoWriter
	path  string
	codec string
}

// OpenWriter opens path for frames of the given size, trying codecs in
// order. The error wraps video.ErrNoEncoder when no codec works.
func OpenWriter(path string, codecs []string, fps float64, width, height int) (*Writer, error) {
	vw, codec, err := video.OpenWithFallback(codecs, func(codec string) (*gocv.VideoWriter, error) {
		vw, err := gocv.VideoWriterFile(path, codec, fps, width, height, true)
		if err != nil {
			return nil, err
		}
		if !vw.IsOpened() {
			vw.Close()
			return nil, fmt.Errorf("writer did not open")
		}
		return vw, nil
	})
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", path, err)
	}
	return &Writer{vw: vw, path: path, codec: codec}, nil
}

// Path returns the output file path.
func (w *Writer) Path() string { return w.path }

// Codec returns the FourCC the writer opened with.
func (w *Writer) Codec() string { return w.codec }

// Write appends one frame.
func (w *Writer) Write(frame *gocv.Mat) error {
	return w.vw.Write(*frame)
}

// Close finalises the file.
func (w *Writer) Close() error {
	return w.vw.Close()
}
