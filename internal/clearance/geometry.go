package clearance

import (
	"fmt"
	"math"
)

// Band geometry defaults.
const (
	DefaultBaseLookaheadCenter = 0.75
	DefaultLookaheadHalfHeight = 0.08

	// The band centre is clamped to this range after applying the offset.
	MinBandCenter = 0.2
	MaxBandCenter = 0.9
)

// Band is the half-open row interval [RowStart, RowEnd) checked for clearance.
type Band struct {
	Center   float64 // band centre as a fraction of frame height, after clamping
	RowStart int
	RowEnd   int
}

// Rows returns the number of rows covered by the band.
func (b Band) Rows() int {
	return b.RowEnd - b.RowStart
}

func (b Band) String() string {
	return fmt.Sprintf("rows [%d,%d) center=%.3f", b.RowStart, b.RowEnd, b.Center)
}

// BandFor derives the lookahead band for a frame of the given height.
//
// center = clip(baseCenter+offset, 0.2, 0.9); rows are floor(h*(center±halfHeight)).
// For very small frames the floors can coincide; the band is then widened to
// a single row so RowStart < RowEnd always holds.
func BandFor(height int, baseCenter, halfHeight, offset float64) Band {
	center := clamp(baseCenter+offset, MinBandCenter, MaxBandCenter)
	h := float64(height)

	b := Band{
		Center:   center,
		RowStart: int(math.Floor(h * (center - halfHeight))),
		RowEnd:   int(math.Floor(h * (center + halfHeight))),
	}

	if b.RowStart < 0 {
		b.RowStart = 0
	}
	if b.RowEnd > height {
		b.RowEnd = height
	}
	if b.RowEnd <= b.RowStart {
		b.RowEnd = b.RowStart + 1
		if b.RowEnd > height && height > 0 {
			b.RowStart = height - 1
			b.RowEnd = height
		}
	}
	return b
}

// VehicleXFor maps the vehicle centre ratio to a pixel column, floor(w*ratio),
// kept inside [0, width).
func VehicleXFor(width int, ratio float64) int {
	x := int(math.Floor(float64(width) * ratio))
	if x >= width {
		x = width - 1
	}
	if x < 0 {
		x = 0
	}
	return x
}

// Geometry holds the run-wide constants computed once from calibration and
// the frame size. It is passed by value into the frame loop and never mutated.
type Geometry struct {
	Width    int
	Height   int
	VehicleX int
	Band     Band
}

// NewGeometry computes the vehicle column and lookahead band for a run.
func NewGeometry(width, height int, vehicleCenterRatio, bandYOffset, baseCenter, halfHeight float64) Geometry {
	return Geometry{
		Width:    width,
		Height:   height,
		VehicleX: VehicleXFor(width, vehicleCenterRatio),
		Band:     BandFor(height, baseCenter, halfHeight, bandYOffset),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
