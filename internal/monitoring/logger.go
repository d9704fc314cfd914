package monitoring

import (
	"log"
	"time"

	"github.com/banshee-data/laneguide/internal/timeutil"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Progress logs a line every Every frames with the processing rate since
// the previous line.
type Progress struct {
	Every int
	Total int // expected frame count; 0 when unknown

	clock     timeutil.Clock
	last      time.Time
	lastFrame int
}

// NewProgress returns a Progress that reports every n frames.
func NewProgress(every, total int) *Progress {
	return NewProgressWithClock(every, total, timeutil.RealClock{})
}

// NewProgressWithClock is NewProgress with an injected clock.
func NewProgressWithClock(every, total int, clock timeutil.Clock) *Progress {
	return &Progress{Every: every, Total: total, clock: clock, last: clock.Now()}
}

// Frame records that frame (0-based) has been processed.
func (p *Progress) Frame(frame int, onLine int) {
	if p.Every <= 0 || (frame+1)%p.Every != 0 {
		return
	}
	now := p.clock.Now()
	rate := 0.0
	if dt := now.Sub(p.last).Seconds(); dt > 0 {
		rate = float64(frame+1-p.lastFrame) / dt
	}
	p.last, p.lastFrame = now, frame+1

	if p.Total > 0 {
		Logf("processed %d/%d frames (%.1f fps, %d on-line)", frame+1, p.Total, rate, onLine)
		return
	}
	Logf("processed %d frames (%.1f fps, %d on-line)", frame+1, rate, onLine)
}
