package calibration

import (
	"bufio"
	"fmt"
	"io"
)

// Prompter asks for the calibration ratios on an interactive terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts and warnings to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// VehicleCenterRatio prompts for the vehicle reference column.
func (p *Prompter) VehicleCenterRatio() (float64, error) {
	fmt.Fprintln(p.out, "\nVehicle X calibration")
	fmt.Fprintln(p.out, "0.50 = image center (default)")
	fmt.Fprintln(p.out, "<0.50 = vehicle is right of image center")
	fmt.Fprintln(p.out, ">0.50 = vehicle is left of image center")
	return p.ask("Vehicle center X ratio (Enter = 0.50): ", ResolveVehicleCenterRatio)
}

// BandYOffset prompts for the lookahead band offset.
func (p *Prompter) BandYOffset() (float64, error) {
	fmt.Fprintln(p.out, "\nBounding band Y offset (NOT camera)")
	fmt.Fprintln(p.out, "0.00 = default")
	fmt.Fprintln(p.out, "+ moves band DOWN")
	fmt.Fprintln(p.out, "- moves band UP")
	return p.ask("Bounding band Y offset ratio (e.g. 0.03): ", ResolveBandYOffset)
}

// Calibration runs both prompts in order.
func (p *Prompter) Calibration() (Calibration, error) {
	vx, err := p.VehicleCenterRatio()
	if err != nil {
		return Calibration{}, err
	}
	off, err := p.BandYOffset()
	if err != nil {
		return Calibration{}, err
	}
	return Calibration{VehicleCenterRatio: vx, BandYOffset: off}, nil
}

// ask treats EOF like an empty answer so piped or closed stdin falls back
// to defaults.
func (p *Prompter) ask(prompt string, resolve func(string) (float64, string)) (float64, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("read calibration input: %w", err)
	}
	v, warning := resolve(line)
	if warning != "" {
		fmt.Fprintln(p.out, warning)
	}
	return v, nil
}
