package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/laneguide/internal/calibration"
	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/inference"
)

// DefaultConfigPath is the path to the canonical guidance defaults file.
const DefaultConfigPath = "config/guidance.defaults.json"

// Model defaults.
const (
	DefaultModelPath      = "weights/yolop-640-640.onnx"
	DefaultInputWidth     = 640
	DefaultInputHeight    = 640
	DefaultLaneOutput     = "lane_line_seg"
	DefaultLaneOutputIdx  = 2
	DefaultPreviewTitle   = "YOLOP Lane Guidance (Band Offset)"
	maxConfigFileSize     = 1 * 1024 * 1024 // 1MB
	maxModelInputEdge     = 4096
	maxSegmentationLabels = 256
)

// DefaultCodecs is the encoder preference order for the annotated video.
var DefaultCodecs = []string{"avc1", "mp4v"}

// GuidanceConfig is the tuning file for a guidance run. Every field is
// optional; the Get* methods supply the defaults for omitted fields so
// partial files are safe.
type GuidanceConfig struct {
	// Model
	ModelPath   *string `json:"model_path,omitempty"`
	InputWidth  *int    `json:"input_width,omitempty"`
	InputHeight *int    `json:"input_height,omitempty"`
	LaneClassID *int    `json:"lane_class_id,omitempty"`
	// LaneOutput names the lane logits layer. Empty selects the output at
	// lane_output_index of the network's unconnected outputs.
	LaneOutput      *string `json:"lane_output,omitempty"`
	LaneOutputIndex *int    `json:"lane_output_index,omitempty"`

	// Band and evaluation
	BaseLookaheadCenter *float64 `json:"base_lookahead_center,omitempty"`
	LookaheadHalfHeight *float64 `json:"lookahead_half_height,omitempty"`
	MinLineClearancePx  *int     `json:"min_line_clearance_px,omitempty"`
	RowStride           *int     `json:"row_stride,omitempty"`
	PointStride         *int     `json:"point_stride,omitempty"`

	// Calibration. Command-line flags take precedence.
	VehicleCenterRatio *float64 `json:"vehicle_center_ratio,omitempty"`
	BandYOffset        *float64 `json:"band_y_offset,omitempty"`

	// Output
	Codecs       []string `json:"codecs,omitempty"`
	PreviewTitle *string  `json:"preview_title,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyGuidanceConfig returns a GuidanceConfig with all fields unset.
func EmptyGuidanceConfig() *GuidanceConfig {
	return &GuidanceConfig{}
}

// DefaultGuidanceConfig returns a config with every field populated with
// its default, matching config/guidance.defaults.json.
func DefaultGuidanceConfig() *GuidanceConfig {
	return &GuidanceConfig{
		ModelPath:           ptrString(DefaultModelPath),
		InputWidth:          ptrInt(DefaultInputWidth),
		InputHeight:         ptrInt(DefaultInputHeight),
		LaneClassID:         ptrInt(int(clearance.DefaultLaneClassID)),
		LaneOutput:          ptrString(DefaultLaneOutput),
		LaneOutputIndex:     ptrInt(DefaultLaneOutputIdx),
		BaseLookaheadCenter: ptrFloat64(clearance.DefaultBaseLookaheadCenter),
		LookaheadHalfHeight: ptrFloat64(clearance.DefaultLookaheadHalfHeight),
		MinLineClearancePx:  ptrInt(clearance.DefaultMinLineClearance),
		RowStride:           ptrInt(clearance.DefaultRowStride),
		PointStride:         ptrInt(clearance.DefaultPointStride),
		VehicleCenterRatio:  ptrFloat64(calibration.DefaultVehicleCenterRatio),
		BandYOffset:         ptrFloat64(calibration.DefaultBandYOffset),
		Codecs:              append([]string(nil), DefaultCodecs...),
		PreviewTitle:        ptrString(DefaultPreviewTitle),
	}
}

// LoadGuidanceConfig loads a GuidanceConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadGuidanceConfig(path string) (*GuidanceConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyGuidanceConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching parent
// directories so it works from package test directories. Panics on failure;
// intended for test setup.
func MustLoadDefaultConfig() *GuidanceConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadGuidanceConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *GuidanceConfig) Validate() error {
	if c.InputWidth != nil && (*c.InputWidth < 1 || *c.InputWidth > maxModelInputEdge) {
		return fmt.Errorf("input_width must be between 1 and %d, got %d", maxModelInputEdge, *c.InputWidth)
	}
	if c.InputHeight != nil && (*c.InputHeight < 1 || *c.InputHeight > maxModelInputEdge) {
		return fmt.Errorf("input_height must be between 1 and %d, got %d", maxModelInputEdge, *c.InputHeight)
	}
	if c.LaneClassID != nil && (*c.LaneClassID < 0 || *c.LaneClassID >= maxSegmentationLabels) {
		return fmt.Errorf("lane_class_id must be between 0 and %d, got %d", maxSegmentationLabels-1, *c.LaneClassID)
	}
	if c.LaneOutputIndex != nil && *c.LaneOutputIndex < 0 {
		return fmt.Errorf("lane_output_index must be non-negative, got %d", *c.LaneOutputIndex)
	}

	if c.BaseLookaheadCenter != nil {
		v := *c.BaseLookaheadCenter
		if v < clearance.MinBandCenter || v > clearance.MaxBandCenter {
			return fmt.Errorf("base_lookahead_center must be between %.1f and %.1f, got %f",
				clearance.MinBandCenter, clearance.MaxBandCenter, v)
		}
	}
	if c.LookaheadHalfHeight != nil {
		if v := *c.LookaheadHalfHeight; v <= 0 || v > 0.5 {
			return fmt.Errorf("lookahead_half_height must be in (0, 0.5], got %f", v)
		}
	}
	if c.MinLineClearancePx != nil && *c.MinLineClearancePx < 0 {
		return fmt.Errorf("min_line_clearance_px must be non-negative, got %d", *c.MinLineClearancePx)
	}
	if c.RowStride != nil && *c.RowStride < 1 {
		return fmt.Errorf("row_stride must be at least 1, got %d", *c.RowStride)
	}
	if c.PointStride != nil && *c.PointStride < 1 {
		return fmt.Errorf("point_stride must be at least 1, got %d", *c.PointStride)
	}

	cal := calibration.Default()
	if c.VehicleCenterRatio != nil {
		cal.VehicleCenterRatio = *c.VehicleCenterRatio
	}
	if c.BandYOffset != nil {
		cal.BandYOffset = *c.BandYOffset
	}
	if err := cal.Validate(); err != nil {
		return err
	}

	for i, codec := range c.Codecs {
		if len(codec) != 4 {
			return fmt.Errorf("codecs[%d] must be a four character code, got %q", i, codec)
		}
	}

	return nil
}

// GetModelPath returns the model_path value or the default.
func (c *GuidanceConfig) GetModelPath() string {
	if c.ModelPath == nil || *c.ModelPath == "" {
		return DefaultModelPath
	}
	return *c.ModelPath
}

// GetInputWidth returns the input_width value or the default.
func (c *GuidanceConfig) GetInputWidth() int {
	if c.InputWidth == nil {
		return DefaultInputWidth
	}
	return *c.InputWidth
}

// GetInputHeight returns the input_height value or the default.
func (c *GuidanceConfig) GetInputHeight() int {
	if c.InputHeight == nil {
		return DefaultInputHeight
	}
	return *c.InputHeight
}

// GetLaneClassID returns the lane_class_id value or the default.
func (c *GuidanceConfig) GetLaneClassID() uint8 {
	if c.LaneClassID == nil {
		return clearance.DefaultLaneClassID
	}
	return uint8(*c.LaneClassID)
}

// GetLaneOutput returns the lane_output layer name or the default. An
// explicit empty string selects by index only.
func (c *GuidanceConfig) GetLaneOutput() string {
	if c.LaneOutput == nil {
		return DefaultLaneOutput
	}
	return *c.LaneOutput
}

// GetLaneOutputIndex returns the lane_output_index value or the default.
func (c *GuidanceConfig) GetLaneOutputIndex() int {
	if c.LaneOutputIndex == nil {
		return DefaultLaneOutputIdx
	}
	return *c.LaneOutputIndex
}

// GetBaseLookaheadCenter returns the base_lookahead_center value or the default.
func (c *GuidanceConfig) GetBaseLookaheadCenter() float64 {
	if c.BaseLookaheadCenter == nil {
		return clearance.DefaultBaseLookaheadCenter
	}
	return *c.BaseLookaheadCenter
}

// GetLookaheadHalfHeight returns the lookahead_half_height value or the default.
func (c *GuidanceConfig) GetLookaheadHalfHeight() float64 {
	if c.LookaheadHalfHeight == nil {
		return clearance.DefaultLookaheadHalfHeight
	}
	return *c.LookaheadHalfHeight
}

// GetMinLineClearancePx returns the min_line_clearance_px value or the default.
func (c *GuidanceConfig) GetMinLineClearancePx() int {
	if c.MinLineClearancePx == nil {
		return clearance.DefaultMinLineClearance
	}
	return *c.MinLineClearancePx
}

// GetRowStride returns the row_stride value or the default.
func (c *GuidanceConfig) GetRowStride() int {
	if c.RowStride == nil {
		return clearance.DefaultRowStride
	}
	return *c.RowStride
}

// GetPointStride returns the point_stride value or the default.
func (c *GuidanceConfig) GetPointStride() int {
	if c.PointStride == nil {
		return clearance.DefaultPointStride
	}
	return *c.PointStride
}

// GetCodecs returns the codec preference list or the default.
func (c *GuidanceConfig) GetCodecs() []string {
	if len(c.Codecs) == 0 {
		return append([]string(nil), DefaultCodecs...)
	}
	return append([]string(nil), c.Codecs...)
}

// GetPreviewTitle returns the preview window title or the default.
func (c *GuidanceConfig) GetPreviewTitle() string {
	if c.PreviewTitle == nil || *c.PreviewTitle == "" {
		return DefaultPreviewTitle
	}
	return *c.PreviewTitle
}

// Calibration returns the ratios set in the file, and whether the file set
// either of them.
func (c *GuidanceConfig) Calibration() (calibration.Calibration, bool) {
	cal := calibration.Default()
	if c.VehicleCenterRatio != nil {
		cal.VehicleCenterRatio = *c.VehicleCenterRatio
	}
	if c.BandYOffset != nil {
		cal.BandYOffset = *c.BandYOffset
	}
	return cal, c.VehicleCenterRatio != nil || c.BandYOffset != nil
}

// EvaluatorParams returns the clearance evaluator settings.
func (c *GuidanceConfig) EvaluatorParams() clearance.Params {
	return clearance.Params{
		RowStride:        c.GetRowStride(),
		PointStride:      c.GetPointStride(),
		MinLineClearance: c.GetMinLineClearancePx(),
	}
}

// Geometry derives the run geometry for a frame size and calibration.
func (c *GuidanceConfig) Geometry(width, height int, cal calibration.Calibration) clearance.Geometry {
	return clearance.NewGeometry(width, height,
		cal.VehicleCenterRatio, cal.BandYOffset,
		c.GetBaseLookaheadCenter(), c.GetLookaheadHalfHeight())
}

// InferenceConfig returns the model settings.
func (c *GuidanceConfig) InferenceConfig() inference.Config {
	return inference.Config{
		ModelPath:       c.GetModelPath(),
		InputWidth:      c.GetInputWidth(),
		InputHeight:     c.GetInputHeight(),
		LaneOutput:      c.GetLaneOutput(),
		LaneOutputIndex: c.GetLaneOutputIndex(),
	}
}
