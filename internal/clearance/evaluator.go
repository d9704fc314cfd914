package clearance

import (
	"fmt"
	"image"

	"github.com/banshee-data/laneguide/internal/lanemask"
)

// Status classifies a frame.
type Status string

const (
	StatusGood   Status = "GOOD"
	StatusOnLine Status = "BAD - ON LINE"
	StatusNoLane Status = "NO LANE"
)

// Evaluation defaults.
const (
	DefaultRowStride         = 4
	DefaultPointStride       = 5
	DefaultMinLineClearance  = 30
	DefaultLaneClassID uint8 = lanemask.DefaultLaneClassID
)

// Params are the sampling and threshold settings of the evaluator.
type Params struct {
	RowStride        int // sample every RowStride-th band row
	PointStride      int // draw every PointStride-th lane pixel; visual only
	MinLineClearance int // clearance below this many pixels is BAD
}

// DefaultParams returns the stock sampling settings.
func DefaultParams() Params {
	return Params{
		RowStride:        DefaultRowStride,
		PointStride:      DefaultPointStride,
		MinLineClearance: DefaultMinLineClearance,
	}
}

func (p Params) normalised() Params {
	if p.RowStride < 1 {
		p.RowStride = 1
	}
	if p.PointStride < 1 {
		p.PointStride = 1
	}
	return p
}

// Measurement is the per-frame result.
type Measurement struct {
	Status Status
	// ClearancePx is the minimum horizontal distance from the vehicle column
	// to any sampled lane pixel. Only meaningful when Measured is true.
	ClearancePx int
	Measured    bool

	RowsSampled  int // band rows visited
	RowsWithLane int // visited rows that had at least one lane pixel
}

// Text is the status line drawn on the frame.
func (m Measurement) Text() string {
	if !m.Measured {
		return string(StatusNoLane)
	}
	return fmt.Sprintf("Clearance: %dpx | %s", m.ClearancePx, m.Status)
}

// OnLine reports whether the vehicle was too close to a lane line.
func (m Measurement) OnLine() bool {
	return m.Status == StatusOnLine
}

// Evaluator computes clearance for frames that share one geometry.
type Evaluator struct {
	geom   Geometry
	params Params
}

// NewEvaluator binds the evaluator to a run's geometry.
func NewEvaluator(geom Geometry, params Params) *Evaluator {
	return &Evaluator{geom: geom, params: params.normalised()}
}

// Geometry returns the run geometry the evaluator was built with.
func (e *Evaluator) Geometry() Geometry { return e.geom }

// Params returns the effective sampling settings.
func (e *Evaluator) Params() Params { return e.params }

// Evaluate samples band rows with the row stride and reduces them to the
// closest lane pixel anywhere in the band (minimum of per-row minimums).
// A single near row is enough to classify the frame as on-line.
func (e *Evaluator) Evaluate(mask lanemask.Mask) Measurement {
	m := Measurement{Status: StatusNoLane}
	vx := e.geom.VehicleX

	for y := e.geom.Band.RowStart; y < e.geom.Band.RowEnd; y += e.params.RowStride {
		if y < 0 || y >= mask.Height {
			continue
		}
		m.RowsSampled++

		rowMin, ok := nearestInRow(mask.Row(y), vx)
		if !ok {
			continue
		}
		m.RowsWithLane++
		if !m.Measured || rowMin < m.ClearancePx {
			m.ClearancePx = rowMin
			m.Measured = true
		}
	}

	if !m.Measured {
		return m
	}
	if m.ClearancePx < e.params.MinLineClearance {
		m.Status = StatusOnLine
	} else {
		m.Status = StatusGood
	}
	return m
}

// nearestInRow returns min |x - vx| over set cells of the row.
func nearestInRow(row []bool, vx int) (int, bool) {
	best := -1
	for x, set := range row {
		if !set {
			continue
		}
		d := x - vx
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best, best >= 0
}

// SamplePoints lists the lane pixels to draw: on each sampled band row, every
// PointStride-th lane column in left-to-right order.
func (e *Evaluator) SamplePoints(mask lanemask.Mask) []image.Point {
	var pts []image.Point
	for y := e.geom.Band.RowStart; y < e.geom.Band.RowEnd; y += e.params.RowStride {
		if y < 0 || y >= mask.Height {
			continue
		}
		n := 0
		for x, set := range mask.Row(y) {
			if !set {
				continue
			}
			if n%e.params.PointStride == 0 {
				pts = append(pts, image.Pt(x, y))
			}
			n++
		}
	}
	return pts
}

// Overlay bundles what the annotator draws for one frame.
type Overlay struct {
	Points      []image.Point
	VehicleX    int
	Band        Band
	Width       int
	Height      int
	Text        string
	Measurement Measurement
}

// Overlay evaluates the mask and returns the drawing instructions together
// with the measurement.
func (e *Evaluator) Overlay(mask lanemask.Mask) Overlay {
	m := e.Evaluate(mask)
	return Overlay{
		Points:      e.SamplePoints(mask),
		VehicleX:    e.geom.VehicleX,
		Band:        e.geom.Band,
		Width:       e.geom.Width,
		Height:      e.geom.Height,
		Text:        m.Text(),
		Measurement: m,
	}
}
