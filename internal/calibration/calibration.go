// Package calibration resolves the two run-wide ratios that position the
// vehicle reference column and the lookahead band.
//
// Invalid input never fails a run: it is replaced by the documented default
// and reported through the returned warning.
package calibration

import (
	"fmt"
	"strconv"
	"strings"
)

// Defaults and accepted ranges.
const (
	DefaultVehicleCenterRatio = 0.50
	DefaultBandYOffset        = 0.0

	MinVehicleCenterRatio = 0.0
	MaxVehicleCenterRatio = 1.0
	MinBandYOffset        = -0.2
	MaxBandYOffset        = 0.2
)

// Calibration holds the user-supplied ratios for a run.
type Calibration struct {
	// VehicleCenterRatio is the vehicle reference column as a fraction of
	// frame width. Below 0.5 means the vehicle sits right of image centre.
	VehicleCenterRatio float64 `json:"vehicle_center_ratio"`
	// BandYOffset shifts the lookahead band; positive moves it down.
	BandYOffset float64 `json:"band_y_offset"`
}

// Default returns the calibration used when nothing is supplied.
func Default() Calibration {
	return Calibration{
		VehicleCenterRatio: DefaultVehicleCenterRatio,
		BandYOffset:        DefaultBandYOffset,
	}
}

// Validate reports whether both ratios are inside their ranges.
func (c Calibration) Validate() error {
	if !inRange(c.VehicleCenterRatio, MinVehicleCenterRatio, MaxVehicleCenterRatio) {
		return fmt.Errorf("vehicle_center_ratio must be between %.2f and %.2f, got %v",
			MinVehicleCenterRatio, MaxVehicleCenterRatio, c.VehicleCenterRatio)
	}
	if !inRange(c.BandYOffset, MinBandYOffset, MaxBandYOffset) {
		return fmt.Errorf("band_y_offset must be between %.2f and %.2f, got %v",
			MinBandYOffset, MaxBandYOffset, c.BandYOffset)
	}
	return nil
}

// Sanitize replaces any out-of-range ratio with its default and returns the
// warnings that would have been shown for it.
func (c Calibration) Sanitize() (Calibration, []string) {
	var warnings []string
	if !inRange(c.VehicleCenterRatio, MinVehicleCenterRatio, MaxVehicleCenterRatio) {
		c.VehicleCenterRatio = DefaultVehicleCenterRatio
		warnings = append(warnings, vehicleWarning)
	}
	if !inRange(c.BandYOffset, MinBandYOffset, MaxBandYOffset) {
		c.BandYOffset = DefaultBandYOffset
		warnings = append(warnings, bandWarning)
	}
	return c, warnings
}

const (
	vehicleWarning = "Invalid input, using 0.50"
	bandWarning    = "Invalid input, using 0.00"
)

// ResolveVehicleCenterRatio parses raw user input. Empty input selects the
// default silently; unparsable or out-of-range input selects the default and
// returns a non-empty warning.
func ResolveVehicleCenterRatio(raw string) (float64, string) {
	return resolve(raw, DefaultVehicleCenterRatio, MinVehicleCenterRatio, MaxVehicleCenterRatio, vehicleWarning)
}

// ResolveBandYOffset parses raw user input with the same policy as
// ResolveVehicleCenterRatio.
func ResolveBandYOffset(raw string) (float64, string) {
	return resolve(raw, DefaultBandYOffset, MinBandYOffset, MaxBandYOffset, bandWarning)
}

func resolve(raw string, def, lo, hi float64, warning string) (float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, ""
	}
	if !isDecimal(raw) {
		return def, warning
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !inRange(v, lo, hi) {
		return def, warning
	}
	return v, ""
}

// isDecimal rejects the hex float forms ParseFloat accepts.
func isDecimal(raw string) bool {
	s := strings.TrimLeft(raw, "+-")
	return !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X")
}

// inRange is false for NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
