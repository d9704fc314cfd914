// Package report turns a run's per-frame measurements into a lane discipline
// assessment: on-line segments, clearance statistics, a 0-100 score with a
// letter grade, driving events, and timeline charts.
//
// Key types: Accumulator (a measurement sink), Report, Segment, Stats.
package report
