package report

import "github.com/banshee-data/laneguide/internal/clearance"

// Severity ranks an on-line segment by how close the vehicle got to the line.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// Segment is a maximal run of consecutive on-line frames.
type Segment struct {
	StartFrame       int      `json:"startFrame"`
	EndFrame         int      `json:"endFrame"` // inclusive
	StartTime        float64  `json:"startTime"`
	EndTime          float64  `json:"endTime"`
	Duration         float64  `json:"duration"`
	WorstClearancePx int      `json:"worstClearancePx"`
	Severity         Severity `json:"severity"`
}

// Frames returns the number of frames in the segment.
func (s Segment) Frames() int { return s.EndFrame - s.StartFrame + 1 }

// SeverityFor grades the closest approach against the clearance threshold:
// under a third of it is high, under two thirds moderate, otherwise low.
func SeverityFor(worstPx, threshold int) Severity {
	switch {
	case threshold <= 0:
		return SeverityLow
	case worstPx*3 < threshold:
		return SeverityHigh
	case worstPx*3 < threshold*2:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// Segments groups consecutive on-line records. Any other status, or a gap
// in frame numbering, closes the open segment. Records must be in frame
// order.
func Segments(records []clearance.Record, fps float64, threshold int) []Segment {
	var out []Segment
	var cur *Segment

	closeSeg := func() {
		if cur == nil {
			return
		}
		if fps > 0 {
			cur.Duration = float64(cur.Frames()) / fps
		}
		cur.EndTime = cur.StartTime + cur.Duration
		cur.Severity = SeverityFor(cur.WorstClearancePx, threshold)
		out = append(out, *cur)
		cur = nil
	}

	for _, r := range records {
		if !r.Measurement.OnLine() {
			closeSeg()
			continue
		}
		if cur != nil && r.Frame != cur.EndFrame+1 {
			closeSeg()
		}
		if cur == nil {
			cur = &Segment{
				StartFrame:       r.Frame,
				EndFrame:         r.Frame,
				StartTime:        r.TimestampSec,
				WorstClearancePx: r.Measurement.ClearancePx,
			}
			continue
		}
		cur.EndFrame = r.Frame
		if r.Measurement.ClearancePx < cur.WorstClearancePx {
			cur.WorstClearancePx = r.Measurement.ClearancePx
		}
	}
	closeSeg()
	return out
}
