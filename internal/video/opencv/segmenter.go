package opencv

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/banshee-data/laneguide/internal/inference"
	"github.com/banshee-data/laneguide/internal/lanemask"
	"github.com/banshee-data/laneguide/internal/monitoring"
)

// Segmenter runs the lane segmentation model through the OpenCV DNN module.
type Segmenter struct {
	net    gocv.Net
	size   image.Point
	output string
}

// NewSegmenter loads the ONNX model and resolves its lane output.
func NewSegmenter(cfg inference.Config) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// OpenCV aborts on unreadable model files instead of returning.
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %w", inference.ErrEmptyModel, err)
	}
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("%w: %s", inference.ErrEmptyModel, cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	outputs := outputNames(&net)
	output, err := inference.SelectOutput(outputs, cfg.LaneOutput, cfg.LaneOutputIndex)
	if err != nil {
		net.Close()
		return nil, err
	}
	monitoring.Logf("model %s: outputs %v", cfg.ModelPath, outputs)

	return &Segmenter{
		net:    net,
		size:   image.Pt(cfg.InputWidth, cfg.InputHeight),
		output: output,
	}, nil
}

func outputNames(net *gocv.Net) []string {
	ids := net.GetUnconnectedOutLayers()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		layer := net.GetLayer(id)
		names = append(names, layer.GetName())
		layer.Close()
	}
	return names
}

// Output returns the name of the lane logits output.
func (s *Segmenter) Output() string { return s.output }

// Segment resizes frame to the model input, runs the network and reduces
// the lane logits to a class map at model resolution.
func (s *Segmenter) Segment(frame *gocv.Mat) (lanemask.ClassMap, error) {
	blob := gocv.BlobFromImage(*frame, inference.BlobScale, s.size,
		gocv.NewScalar(0, 0, 0, 0), inference.BlobSwapRB, inference.BlobCrop)
	defer blob.Close()

	s.net.SetInput(blob, "")
	out := s.net.Forward(s.output)
	defer out.Close()
	if out.Empty() {
		return lanemask.ClassMap{}, fmt.Errorf("forward %s: empty output", s.output)
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return lanemask.ClassMap{}, fmt.Errorf("forward %s: %w", s.output, err)
	}
	return inference.DecodeLaneLogits(out.Size(), data)
}

// Close releases the network.
func (s *Segmenter) Close() error {
	return s.net.Close()
}
