package opencv

import "gocv.io/x/gocv"

const keyEsc = 27

// Preview shows frames in a window and watches for ESC.
type Preview struct {
	win *gocv.Window
}

// NewPreview opens a window with the given title.
func NewPreview(title string) *Preview {
	return &Preview{win: gocv.NewWindow(title)}
}

// Show displays frame and returns true when ESC was pressed.
func (p *Preview) Show(frame *gocv.Mat) bool {
	p.win.IMShow(*frame)
	return p.win.WaitKey(1) == keyEsc
}

// Close destroys the window.
func (p *Preview) Close() error {
	return p.win.Close()
}
