package clearance

// Record is one processed frame as handed to measurement sinks.
type Record struct {
	Frame        int
	TimestampSec float64
	Measurement  Measurement
}

// TimestampFor returns frame/fps, or 0 when the frame rate is unknown.
func TimestampFor(frame int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frame) / fps
}

// NewRecord stamps a measurement with its frame index and time.
func NewRecord(frame int, fps float64, m Measurement) Record {
	return Record{
		Frame:        frame,
		TimestampSec: TimestampFor(frame, fps),
		Measurement:  m,
	}
}
