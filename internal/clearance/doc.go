// Package clearance decides, per frame, whether the vehicle reference column
// is laterally too close to a detected lane boundary inside the lookahead band.
//
// Responsibilities: run-wide geometry (vehicle column, band rows) derived once
// from calibration, the per-frame clearance evaluation, and the overlay that
// describes what to draw for a frame.
// Key types: Geometry, Band, Params, Evaluator, Measurement, Record.
//
// The evaluator keeps no state between calls; the same mask and geometry
// always produce the same measurement.
package clearance
