package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/lanemask"
	"github.com/banshee-data/laneguide/internal/monitoring"
	"github.com/banshee-data/laneguide/internal/sink"
	"github.com/banshee-data/laneguide/internal/timeutil"
)

// Source yields frames in order. Read fills dst and returns false at end of
// sequence or on a read failure; both end the run normally.
type Source[F any] interface {
	Read(dst F) bool
	FPS() float64
}

// Segmenter runs the perception model on a frame and returns the lane class
// map at model resolution.
type Segmenter[F any] interface {
	Segment(frame F) (lanemask.ClassMap, error)
}

// Annotator draws an overlay onto the frame in place.
type Annotator[F any] interface {
	Annotate(frame F, ov clearance.Overlay)
}

// Writer persists one annotated frame.
type Writer[F any] interface {
	Write(frame F) error
}

// Preview shows an annotated frame. It returns true when the user asked to
// stop.
type Preview[F any] interface {
	Show(frame F) bool
}

// StopReason says why a run ended.
type StopReason string

const (
	StopEndOfInput  StopReason = "end_of_input"
	StopInterrupted StopReason = "interrupted"
	StopPreview     StopReason = "preview_closed"
	StopError       StopReason = "error"
)

// Summary describes a completed run.
type Summary struct {
	Frames   int
	Good     int
	OnLine   int
	NoLane   int
	FPS      float64
	Stopped  StopReason
	Duration time.Duration
}

// Seconds is the video time covered by the processed frames.
func (s Summary) Seconds() float64 {
	if s.FPS <= 0 {
		return 0
	}
	return float64(s.Frames) / s.FPS
}

// Runner holds the collaborators of one run. Source, Segmenter and
// Evaluator are required; the rest are optional.
type Runner[F any] struct {
	Source    Source[F]
	Segmenter Segmenter[F]
	Evaluator *clearance.Evaluator
	// LaneClassID is the class map label treated as lane boundary.
	LaneClassID uint8

	Annotator Annotator[F]
	Writer    Writer[F]
	Preview   Preview[F]
	Sink      sink.Sink
	Progress  *monitoring.Progress
	Clock     timeutil.Clock // defaults to the wall clock

	// Frame is the reusable buffer passed to Source.Read.
	Frame F
}

// ErrMissingCollaborator is returned by Run when a required field is unset.
var ErrMissingCollaborator = errors.New("pipeline: missing required collaborator")

// Run processes frames until the source is exhausted, ctx is cancelled, the
// preview asks to stop, or a stage fails. Cancellation is checked between
// frames, so the in-flight frame is always finished and written. Run never
// closes collaborators.
func (r *Runner[F]) Run(ctx context.Context) (Summary, error) {
	if r.Source == nil || r.Segmenter == nil || r.Evaluator == nil {
		return Summary{Stopped: StopError}, ErrMissingCollaborator
	}

	clock := r.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	geom := r.Evaluator.Geometry()
	sum := Summary{FPS: r.Source.FPS()}
	start := clock.Now()

	opsf("run start: %dx%d vehicle_x=%d band=%s fps=%.2f",
		geom.Width, geom.Height, geom.VehicleX, geom.Band, sum.FPS)

	for frame := 0; ; frame++ {
		if ctx.Err() != nil {
			sum.Stopped = StopInterrupted
			break
		}
		if !r.Source.Read(r.Frame) {
			sum.Stopped = StopEndOfInput
			break
		}

		stop, err := r.step(frame, geom, &sum)
		if err != nil {
			sum.Stopped = StopError
			sum.Duration = clock.Since(start)
			opsf("run aborted at frame %d: %v", frame, err)
			return sum, err
		}
		if stop {
			sum.Stopped = StopPreview
			break
		}
	}

	sum.Duration = clock.Since(start)
	opsf("run end: %d frames (%d good, %d on-line, %d no lane) stopped=%s in %v",
		sum.Frames, sum.Good, sum.OnLine, sum.NoLane, sum.Stopped, sum.Duration)
	return sum, nil
}

func (r *Runner[F]) step(frame int, geom clearance.Geometry, sum *Summary) (bool, error) {
	classes, err := r.Segmenter.Segment(r.Frame)
	if err != nil {
		return false, fmt.Errorf("frame %d: inference: %w", frame, err)
	}

	mask := lanemask.Build(classes, geom.Width, geom.Height, r.LaneClassID)
	if traceLogger != nil {
		tracef("frame %d: %d lane labels, mask empty=%v", frame, classes.Count(r.LaneClassID), mask.Empty())
	}
	ov := r.Evaluator.Overlay(mask)
	m := ov.Measurement

	sum.Frames++
	switch m.Status {
	case clearance.StatusGood:
		sum.Good++
	case clearance.StatusOnLine:
		sum.OnLine++
	default:
		sum.NoLane++
	}
	tracef("frame %d: %s (rows %d/%d)", frame, ov.Text, m.RowsWithLane, m.RowsSampled)

	if r.Annotator != nil {
		r.Annotator.Annotate(r.Frame, ov)
	}
	if r.Writer != nil {
		if err := r.Writer.Write(r.Frame); err != nil {
			return false, fmt.Errorf("frame %d: write video: %w", frame, err)
		}
	}
	if r.Sink != nil {
		if err := r.Sink.Record(clearance.NewRecord(frame, sum.FPS, m)); err != nil {
			return false, fmt.Errorf("frame %d: record: %w", frame, err)
		}
	}
	if r.Progress != nil {
		r.Progress.Frame(frame, sum.OnLine)
	}
	if r.Preview != nil {
		return r.Preview.Show(r.Frame), nil
	}
	return false, nil
}
