package main

import (
	"fmt"
	"io"

	"github.com/banshee-data/laneguide/internal/calibration"
	"github.com/banshee-data/laneguide/internal/config"
)

// resolveCalibration picks each ratio from, in order: its flag, the tuning
// file, an interactive prompt, the default. Invalid flag or file values fall
// back to the default with a warning on out.
func resolveCalibration(o *runOptions, cfg *config.GuidanceConfig, in io.Reader, out io.Writer) (calibration.Calibration, error) {
	cal := calibration.Default()
	p := calibration.NewPrompter(in, out)
	prompt := !o.noPrompt

	if prompt && o.vehicleX == "" && o.bandOffset == "" && cfg.VehicleCenterRatio == nil && cfg.BandYOffset == nil {
		return p.Calibration()
	}

	switch {
	case o.vehicleX != "":
		v, warning := calibration.ResolveVehicleCenterRatio(o.vehicleX)
		warn(out, warning)
		cal.VehicleCenterRatio = v
	case cfg.VehicleCenterRatio != nil:
		cal.VehicleCenterRatio = *cfg.VehicleCenterRatio
	case prompt:
		v, err := p.VehicleCenterRatio()
		if err != nil {
			return cal, err
		}
		cal.VehicleCenterRatio = v
	}

	switch {
	case o.bandOffset != "":
		v, warning := calibration.ResolveBandYOffset(o.bandOffset)
		warn(out, warning)
		cal.BandYOffset = v
	case cfg.BandYOffset != nil:
		cal.BandYOffset = *cfg.BandYOffset
	case prompt:
		v, err := p.BandYOffset()
		if err != nil {
			return cal, err
		}
		cal.BandYOffset = v
	}

	cal, warnings := cal.Sanitize()
	for _, w := range warnings {
		warn(out, w)
	}
	return cal, nil
}

func warn(out io.Writer, msg string) {
	if msg != "" {
		fmt.Fprintln(out, msg)
	}
}
