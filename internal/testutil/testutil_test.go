package testutil

import (
	"image"
	"net/http"
	"testing"

	"github.com/banshee-data/laneguide/internal/lanemask"
)

func TestMaskWithPoints(t *testing.T) {
	m := MaskWithPoints(10, 5, image.Pt(3, 2), image.Pt(9, 4))
	if !m.Row(2)[3] || !m.Row(4)[9] {
		t.Fatal("expected listed pixels to be set")
	}
	count := 0
	for _, b := range m.Bits {
		if b {
			count++
		}
	}
	if count != 2 {
		t.Errorf("set pixels = %d, want 2", count)
	}
}

func TestMaskWithColumns(t *testing.T) {
	m := MaskWithColumns(8, 6, 2, 4, 1, 6)
	for y := 0; y < 6; y++ {
		inBand := y >= 2 && y < 4
		row := m.Row(y)
		if row[1] != inBand || row[6] != inBand {
			t.Errorf("row %d: got %v/%v, want %v", y, row[1], row[6], inBand)
		}
	}
}

func TestLaneLogitsArgMax(t *testing.T) {
	logits := LaneLogits(4, 3, image.Pt(2, 1))
	cm, err := lanemask.ArgMax(logits, 2, 3, 4)
	AssertNoError(t, err)
	if cm.Count(1) != 1 || cm.Labels[1*4+2] != 1 {
		t.Errorf("lane label not where expected: %v", cm.Labels)
	}
}

func TestServe(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := Serve(h, http.MethodGet, "/x")
	AssertStatusCode(t, rec.Code, http.StatusTeapot)
}
