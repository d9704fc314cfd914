package opencv

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/video"
)

// Overlay drawing parameters.
const (
	pointRadius     = 1
	vehicleLineThk  = 2
	bandRectThk     = 1
	textScale       = 1.0
	textThickness   = 2
	filledThickness = -1
)

var textOrigin = image.Pt(30, 40)

// Annotator draws the clearance overlay onto frames in place.
type Annotator struct{}

// Annotate draws the sampled lane points, the vehicle line, the band and
// the status text.
func (Annotator) Annotate(frame *gocv.Mat, ov clearance.Overlay) {
	for _, p := range ov.Points {
		gocv.Circle(frame, p, pointRadius, video.Green, filledThickness)
	}
	gocv.Line(frame, image.Pt(ov.VehicleX, 0), image.Pt(ov.VehicleX, ov.Height), video.Red, vehicleLineThk)
	gocv.Rectangle(frame, image.Rect(0, ov.Band.RowStart, ov.Width, ov.Band.RowEnd), video.White, bandRectThk)
	gocv.PutText(frame, ov.Text, textOrigin, gocv.FontHersheySimplex, textScale,
		video.StatusColor(ov.Measurement), textThickness)
}
