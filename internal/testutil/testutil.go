// Package testutil provides shared test fixtures for lane masks, class maps
// and HTTP handlers.
package testutil

import (
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/laneguide/internal/lanemask"
)

// MaskWithPoints returns a width×height mask with only the given pixels set.
func MaskWithPoints(width, height int, pts ...image.Point) lanemask.Mask {
	m := lanemask.NewMask(width, height)
	for _, p := range pts {
		m.Set(p.X, p.Y, true)
	}
	return m
}

// MaskWithColumns sets the given columns on every row in [rowStart, rowEnd).
func MaskWithColumns(width, height, rowStart, rowEnd int, cols ...int) lanemask.Mask {
	m := lanemask.NewMask(width, height)
	for y := rowStart; y < rowEnd; y++ {
		for _, x := range cols {
			m.Set(x, y, true)
		}
	}
	return m
}

// LaneLogits builds a 2-class CHW logits volume where the listed pixels score
// higher for the lane class than for background.
func LaneLogits(width, height int, lane ...image.Point) []float32 {
	plane := width * height
	logits := make([]float32, 2*plane)
	for i := 0; i < plane; i++ {
		logits[i] = 1
	}
	for _, p := range lane {
		logits[plane+p.Y*width+p.X] = 2
	}
	return logits
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Serve runs a request through the handler and returns the recorder.
func Serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
