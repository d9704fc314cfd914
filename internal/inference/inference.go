// Package inference turns raw model outputs into lane class maps. The
// OpenCV-backed network that produces those outputs lives in
// internal/video/opencv.
package inference

import (
	"errors"
	"fmt"

	"github.com/banshee-data/laneguide/internal/lanemask"
)

var (
	// ErrEmptyModel is returned when the model file could not be loaded.
	ErrEmptyModel = errors.New("inference: model could not be loaded")
	// ErrNoLaneOutput is returned when the configured lane output does not
	// exist in the model.
	ErrNoLaneOutput = errors.New("inference: lane output not found")
)

// Config describes how to run the segmentation model.
type Config struct {
	ModelPath   string
	InputWidth  int
	InputHeight int
	// LaneOutput names the lane logits output; empty selects by index.
	LaneOutput      string
	LaneOutputIndex int
}

// Blob input normalisation: pixels scaled to [0,1], channels swapped from
// BGR to RGB, no mean subtraction and no crop.
const (
	BlobScale  = 1.0 / 255.0
	BlobSwapRB = true
	BlobCrop   = false
)

// Validate checks the config before any resource is opened.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("inference: model path is empty")
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		return fmt.Errorf("inference: input size must be positive, got %dx%d", c.InputWidth, c.InputHeight)
	}
	if c.LaneOutput == "" && c.LaneOutputIndex < 0 {
		return fmt.Errorf("inference: lane output index must be non-negative, got %d", c.LaneOutputIndex)
	}
	return nil
}

// SelectOutput resolves the lane output among the model's outputs. A set
// name wins; when the model has no output of that name, index is used
// instead. A negative index disables the positional fallback.
func SelectOutput(outputs []string, name string, index int) (string, error) {
	if name != "" {
		for _, o := range outputs {
			if o == name {
				return o, nil
			}
		}
		if index < 0 {
			return "", fmt.Errorf("%w: no output named %q in %v", ErrNoLaneOutput, name, outputs)
		}
	}
	if index < 0 || index >= len(outputs) {
		return "", fmt.Errorf("%w: index %d out of range, model has %d outputs", ErrNoLaneOutput, index, len(outputs))
	}
	return outputs[index], nil
}

// DecodeLaneLogits reduces a lane logits tensor to a class map. shape is
// [1, C, H, W] or [C, H, W]; data is the tensor in row-major order.
func DecodeLaneLogits(shape []int, data []float32) (lanemask.ClassMap, error) {
	switch len(shape) {
	case 4:
		if shape[0] != 1 {
			return lanemask.ClassMap{}, fmt.Errorf("%w: batch size %d, want 1", lanemask.ErrInvalidTensor, shape[0])
		}
		shape = shape[1:]
	case 3:
	default:
		return lanemask.ClassMap{}, fmt.Errorf("%w: rank %d, want 3 or 4", lanemask.ErrInvalidTensor, len(shape))
	}
	return lanemask.ArgMax(data, shape[0], shape[1], shape[2])
}
