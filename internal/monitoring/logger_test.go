package monitoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/banshee-data/laneguide/internal/timeutil"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}

func TestProgress(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	clock := timeutil.NewMockClock(time.Unix(0, 0))
	p := NewProgressWithClock(10, 30, clock)

	for f := 0; f < 25; f++ {
		clock.Advance(100 * time.Millisecond)
		p.Frame(f, 2)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 progress lines, got %d: %v", len(lines), lines)
	}
	if want := "processed 10/30 frames (10.0 fps, 2 on-line)"; lines[0] != want {
		t.Errorf("line 0 = %q, want %q", lines[0], want)
	}
	if want := "processed 20/30 frames (10.0 fps, 2 on-line)"; lines[1] != want {
		t.Errorf("line 1 = %q, want %q", lines[1], want)
	}
}

func TestProgressUnknownTotalAndDisabled(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	p := NewProgress(1, 0)
	p.Frame(0, 0)
	if len(lines) != 1 || lines[0][:19] != "processed 1 frames " {
		t.Errorf("unexpected lines: %v", lines)
	}

	lines = nil
	NewProgress(0, 0).Frame(9, 0)
	if len(lines) != 0 {
		t.Errorf("disabled progress logged: %v", lines)
	}
}
