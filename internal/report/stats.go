package report

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/laneguide/internal/clearance"
)

// Stats summarises clearance over a run. Clearance figures cover measured
// frames only and are zero when nothing was measured.
type Stats struct {
	Frames       int `json:"frames"`
	Measured     int `json:"measured"`
	GoodFrames   int `json:"goodFrames"`
	OnLineFrames int `json:"onLineFrames"`
	NoLaneFrames int `json:"noLaneFrames"`

	MeanClearancePx   float64 `json:"meanClearancePx"`
	StdDevClearancePx float64 `json:"stdDevClearancePx"`
	MinClearancePx    float64 `json:"minClearancePx"`
	MedianClearancePx float64 `json:"medianClearancePx"`
	P10ClearancePx    float64 `json:"p10ClearancePx"`

	// OnLineFraction is on-line frames over measured frames.
	OnLineFraction float64 `json:"onLineFraction"`
	// Coverage is measured frames over all frames.
	Coverage float64 `json:"coverage"`
}

// ComputeStats tallies statuses and clearance distribution.
func ComputeStats(records []clearance.Record) Stats {
	s := Stats{Frames: len(records)}
	xs := make([]float64, 0, len(records))

	for _, r := range records {
		switch r.Measurement.Status {
		case clearance.StatusGood:
			s.GoodFrames++
		case clearance.StatusOnLine:
			s.OnLineFrames++
		default:
			s.NoLaneFrames++
		}
		if r.Measurement.Measured {
			xs = append(xs, float64(r.Measurement.ClearancePx))
		}
	}
	s.Measured = len(xs)
	if s.Frames > 0 {
		s.Coverage = float64(s.Measured) / float64(s.Frames)
	}
	if s.Measured == 0 {
		return s
	}

	sort.Float64s(xs)
	s.MeanClearancePx, s.StdDevClearancePx = stat.MeanStdDev(xs, nil)
	if s.Measured < 2 {
		s.StdDevClearancePx = 0
	}
	s.MinClearancePx = xs[0]
	s.MedianClearancePx = stat.Quantile(0.5, stat.Empirical, xs, nil)
	s.P10ClearancePx = stat.Quantile(0.1, stat.Empirical, xs, nil)
	s.OnLineFraction = float64(s.OnLineFrames) / float64(s.Measured)
	return s
}
