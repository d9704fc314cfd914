package inference

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/laneguide/internal/lanemask"
	"github.com/banshee-data/laneguide/internal/testutil"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{ModelPath: "m.onnx", InputWidth: 640, InputHeight: 640, LaneOutputIndex: 2}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"no model", func(c *Config) { c.ModelPath = "" }},
		{"zero width", func(c *Config) { c.InputWidth = 0 }},
		{"negative height", func(c *Config) { c.InputHeight = -1 }},
		{"negative index", func(c *Config) { c.LaneOutputIndex = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mod(&c)
			assert.Error(t, c.Validate())
		})
	}

	named := valid
	named.LaneOutput = "lane_line_seg"
	named.LaneOutputIndex = -1
	assert.NoError(t, named.Validate(), "index is ignored when a name is set")
}

func TestSelectOutput(t *testing.T) {
	outputs := []string{"det_out", "drive_area_seg", "lane_line_seg"}

	got, err := SelectOutput(outputs, "", 2)
	require.NoError(t, err)
	assert.Equal(t, "lane_line_seg", got)

	got, err = SelectOutput(outputs, "drive_area_seg", 2)
	require.NoError(t, err)
	assert.Equal(t, "drive_area_seg", got)

	got, err = SelectOutput([]string{"output0", "output1", "output2"}, "lane_line_seg", 2)
	require.NoError(t, err, "unknown name falls back to the index")
	assert.Equal(t, "output2", got)

	_, err = SelectOutput(outputs, "missing", -1)
	assert.True(t, errors.Is(err, ErrNoLaneOutput))
	_, err = SelectOutput(outputs, "missing", 5)
	assert.True(t, errors.Is(err, ErrNoLaneOutput))
	_, err = SelectOutput(outputs, "", 3)
	assert.True(t, errors.Is(err, ErrNoLaneOutput))
	_, err = SelectOutput(nil, "", 0)
	assert.True(t, errors.Is(err, ErrNoLaneOutput))
}

func TestDecodeLaneLogits(t *testing.T) {
	data := testutil.LaneLogits(8, 6, image.Pt(3, 2), image.Pt(7, 5))

	for _, shape := range [][]int{{1, 2, 6, 8}, {2, 6, 8}} {
		cm, err := DecodeLaneLogits(shape, data)
		require.NoError(t, err, "shape %v", shape)
		assert.Equal(t, 8, cm.Width)
		assert.Equal(t, 6, cm.Height)
		assert.Equal(t, uint8(1), cm.Labels[2*8+3])
		assert.Equal(t, uint8(1), cm.Labels[5*8+7])
		assert.Equal(t, uint8(0), cm.Labels[0])
		assert.Equal(t, 2, cm.Count(1))
	}
}

func TestDecodeLaneLogitsRejectsBadShapes(t *testing.T) {
	data := testutil.LaneLogits(4, 4)
	tests := []struct {
		name  string
		shape []int
	}{
		{"batch of two", []int{2, 2, 4, 4}},
		{"rank 2", []int{4, 4}},
		{"rank 5", []int{1, 1, 2, 4, 4}},
		{"too few values", []int{1, 3, 4, 4}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeLaneLogits(tc.shape, data)
			assert.True(t, errors.Is(err, lanemask.ErrInvalidTensor), "err = %v", err)
		})
	}
}
