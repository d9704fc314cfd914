package report

import (
	"fmt"
	"math"

	"github.com/banshee-data/laneguide/internal/clearance"
)

// EventTypeLaneDiscipline is the event type for on-line segments.
const EventTypeLaneDiscipline = "lane_discipline"

// Deduction weights. Each segment costs a fixed amount by severity, and the
// share of measured time spent on a line costs up to OnLineFractionWeight.
var (
	SegmentPoints = map[Severity]int{
		SeverityLow:      2,
		SeverityModerate: 4,
		SeverityHigh:     8,
	}
	OnLineFractionWeight = 40.0
)

// Event is one scored driving event.
type Event struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Timestamp   float64  `json:"timestamp"`
	Duration    float64  `json:"duration"`
	Severity    Severity `json:"severity"`
	Points      int      `json:"points"` // negative: points deducted
	Description string   `json:"description"`
}

// Report is the assessment of one run.
type Report struct {
	VideoDuration float64   `json:"videoDuration"`
	Threshold     int       `json:"minLineClearancePx"`
	Assessed      bool      `json:"assessed"`
	Score         int       `json:"score"`
	Grade         Grade     `json:"grade"`
	Summary       string    `json:"summary"`
	Events        []Event   `json:"events"`
	Segments      []Segment `json:"onLineSegments"`
	Stats         Stats     `json:"stats"`
}

// Build assesses a run from its records in frame order. threshold is the
// clearance threshold the records were classified with.
func Build(records []clearance.Record, fps float64, threshold int) Report {
	r := Report{
		Threshold: threshold,
		Stats:     ComputeStats(records),
		Segments:  Segments(records, fps, threshold),
		Events:    []Event{},
	}
	if fps > 0 {
		r.VideoDuration = float64(len(records)) / fps
	}
	if r.Segments == nil {
		r.Segments = []Segment{}
	}
	r.Assessed = r.Stats.Measured > 0

	deducted := 0
	for i, seg := range r.Segments {
		pts := SegmentPoints[seg.Severity]
		deducted += pts
		r.Events = append(r.Events, Event{
			ID:          fmt.Sprintf("evt_%d", i+1),
			Type:        EventTypeLaneDiscipline,
			Timestamp:   seg.StartTime,
			Duration:    seg.Duration,
			Severity:    seg.Severity,
			Points:      -pts,
			Description: fmt.Sprintf("Vehicle came within %dpx of a lane line for %.1fs", seg.WorstClearancePx, seg.Duration),
		})
	}
	deducted += int(math.Round(r.Stats.OnLineFraction * OnLineFractionWeight))

	r.Score = max(0, min(100, 100-deducted))
	r.Grade = GradeFor(r.Score)
	r.Summary = summaryFor(r)
	return r
}

func summaryFor(r Report) string {
	if !r.Assessed {
		return "No lane markings were detected in the lookahead band, so lane discipline could not be assessed."
	}
	switch {
	case r.Score >= 90:
		return "Excellent lane discipline. The vehicle kept a safe distance from lane lines throughout."
	case r.Score >= 80:
		return fmt.Sprintf("Good lane discipline with %d brief moment(s) close to a lane line.", len(r.Segments))
	case r.Score >= 70:
		return fmt.Sprintf("Average lane discipline. The vehicle drifted onto lane lines %d time(s); focus on staying centred.", len(r.Segments))
	case r.Score >= 60:
		return fmt.Sprintf("Poor lane discipline. %.0f%% of measured time was spent on or near a lane line.", r.Stats.OnLineFraction*100)
	default:
		return fmt.Sprintf("Failing lane discipline. The vehicle was on a lane line for %.0f%% of measured time across %d segment(s).",
			r.Stats.OnLineFraction*100, len(r.Segments))
	}
}

// Accumulator is a measurement sink that keeps every record for Build.
type Accumulator struct {
	FPS       float64
	Threshold int

	records []clearance.Record
	closed  bool
}

// NewAccumulator returns an empty accumulator for a run.
func NewAccumulator(fps float64, threshold int) *Accumulator {
	return &Accumulator{FPS: fps, Threshold: threshold}
}

// Record keeps r.
func (a *Accumulator) Record(r clearance.Record) error {
	if a.closed {
		return fmt.Errorf("report: record after close")
	}
	a.records = append(a.records, r)
	return nil
}

// Close marks the run finished. Records remain available.
func (a *Accumulator) Close() error {
	a.closed = true
	return nil
}

// Records returns the records collected so far.
func (a *Accumulator) Records() []clearance.Record { return a.records }

// Report builds the assessment of the collected records.
func (a *Accumulator) Report() Report {
	return Build(a.records, a.FPS, a.Threshold)
}
