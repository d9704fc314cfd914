package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/fsutil"
)

const fps = 10.0

// run builds records from a compact script: a number is a measured
// clearance classified against threshold 30, -1 is NO LANE.
func run(px ...int) []clearance.Record {
	recs := make([]clearance.Record, 0, len(px))
	for i, v := range px {
		m := clearance.Measurement{Status: clearance.StatusNoLane}
		if v >= 0 {
			m = clearance.Measurement{Status: clearance.StatusGood, ClearancePx: v, Measured: true}
			if v < 30 {
				m.Status = clearance.StatusOnLine
			}
		}
		recs = append(recs, clearance.NewRecord(i, fps, m))
	}
	return recs
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		want  Grade
	}{
		{100, GradeA}, {95, GradeA}, {94, GradeAMinus}, {90, GradeAMinus},
		{89, GradeBPlus}, {87, GradeBPlus}, {86, GradeB}, {83, GradeB},
		{82, GradeBMinus}, {80, GradeBMinus}, {79, GradeCPlus}, {77, GradeCPlus},
		{76, GradeC}, {73, GradeC}, {72, GradeCMinus}, {70, GradeCMinus},
		{69, GradeDPlus}, {67, GradeDPlus}, {66, GradeD}, {63, GradeD},
		{62, GradeDMinus}, {60, GradeDMinus}, {59, GradeF}, {0, GradeF},
	}
	for _, tc := range tests {
		assert.Equalf(t, tc.want, GradeFor(tc.score), "score %d", tc.score)
	}
	assert.Equal(t, "Excellent", GradeA.Label())
	assert.Equal(t, "Failing", GradeF.Label())
	assert.Equal(t, "", Grade("Z").Label())
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, SeverityHigh, SeverityFor(0, 30))
	assert.Equal(t, SeverityHigh, SeverityFor(9, 30))
	assert.Equal(t, SeverityModerate, SeverityFor(10, 30))
	assert.Equal(t, SeverityModerate, SeverityFor(19, 30))
	assert.Equal(t, SeverityLow, SeverityFor(20, 30))
	assert.Equal(t, SeverityLow, SeverityFor(29, 30))
	assert.Equal(t, SeverityLow, SeverityFor(5, 0))
}

func TestSegmentsGroupConsecutiveOnLineFrames(t *testing.T) {
	recs := run(50, 25, 12, 28, 50, -1, 5, -1, 21)

	got := Segments(recs, fps, 30)
	want := []Segment{
		{StartFrame: 1, EndFrame: 3, StartTime: 0.1, EndTime: 0.4, Duration: 0.3, WorstClearancePx: 12, Severity: SeverityModerate},
		{StartFrame: 6, EndFrame: 6, StartTime: 0.6, EndTime: 0.7, Duration: 0.1, WorstClearancePx: 5, Severity: SeverityHigh},
		{StartFrame: 8, EndFrame: 8, StartTime: 0.8, EndTime: 0.9, Duration: 0.1, WorstClearancePx: 21, Severity: SeverityLow},
	}
	approx := cmp.Comparer(func(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 })
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, got[0].Frames())
}

func TestSegmentsSplitOnFrameGap(t *testing.T) {
	recs := run(10, 10)
	recs[1].Frame = 5

	got := Segments(recs, fps, 30)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[1].StartFrame)
}

func TestSegmentsNone(t *testing.T) {
	assert.Empty(t, Segments(run(50, 60, -1), fps, 30))
	assert.Empty(t, Segments(nil, fps, 30))
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(run(10, 20, 30, 40, -1))

	assert.Equal(t, 5, s.Frames)
	assert.Equal(t, 4, s.Measured)
	assert.Equal(t, 2, s.GoodFrames)
	assert.Equal(t, 2, s.OnLineFrames)
	assert.Equal(t, 1, s.NoLaneFrames)
	assert.InDelta(t, 25.0, s.MeanClearancePx, 1e-9)
	assert.InDelta(t, 12.909944, s.StdDevClearancePx, 1e-6)
	assert.Equal(t, 10.0, s.MinClearancePx)
	assert.Equal(t, 20.0, s.MedianClearancePx)
	assert.Equal(t, 10.0, s.P10ClearancePx)
	assert.InDelta(t, 0.5, s.OnLineFraction, 1e-9)
	assert.InDelta(t, 0.8, s.Coverage, 1e-9)
}

func TestComputeStatsSingleAndEmpty(t *testing.T) {
	one := ComputeStats(run(42))
	assert.Equal(t, 42.0, one.MeanClearancePx)
	assert.Zero(t, one.StdDevClearancePx)

	none := ComputeStats(run(-1, -1))
	assert.Zero(t, none.Measured)
	assert.Zero(t, none.MeanClearancePx)
	assert.Zero(t, none.Coverage)
}

func TestBuildCleanRun(t *testing.T) {
	r := Build(run(50, 55, 60, 45), fps, 30)

	assert.True(t, r.Assessed)
	assert.Equal(t, 100, r.Score)
	assert.Equal(t, GradeA, r.Grade)
	assert.Empty(t, r.Events)
	assert.NotNil(t, r.Events)
	assert.NotNil(t, r.Segments)
	assert.InDelta(t, 0.4, r.VideoDuration, 1e-9)
	assert.Contains(t, r.Summary, "Excellent")
}

func TestBuildDeductions(t *testing.T) {
	// 10 measured frames, 4 on line across two segments (moderate, high).
	r := Build(run(50, 15, 15, 50, 50, 5, 5, 50, 50, 50), fps, 30)

	require.Len(t, r.Events, 2)
	assert.Equal(t, "evt_1", r.Events[0].ID)
	assert.Equal(t, EventTypeLaneDiscipline, r.Events[0].Type)
	assert.Equal(t, -4, r.Events[0].Points)
	assert.Equal(t, -8, r.Events[1].Points)
	assert.InDelta(t, 0.5, r.Events[1].Timestamp, 1e-9)
	assert.Equal(t, "Vehicle came within 5px of a lane line for 0.2s", r.Events[1].Description)

	// 100 - 4 - 8 - round(0.4*40)=16 -> 72
	assert.Equal(t, 72, r.Score)
	assert.Equal(t, GradeCMinus, r.Grade)
	assert.Contains(t, r.Summary, "2 time(s)")
}

func TestBuildScoreFloorsAtZero(t *testing.T) {
	px := make([]int, 0, 40)
	for i := 0; i < 20; i++ {
		px = append(px, 1, 50)
	}
	r := Build(run(px...), fps, 30)
	assert.Equal(t, 0, r.Score)
	assert.Equal(t, GradeF, r.Grade)
	assert.Contains(t, r.Summary, "Failing")
}

func TestBuildNotAssessed(t *testing.T) {
	r := Build(run(-1, -1, -1), fps, 30)
	assert.False(t, r.Assessed)
	assert.Contains(t, r.Summary, "could not be assessed")
}

func TestAccumulator(t *testing.T) {
	a := NewAccumulator(fps, 30)
	for _, rec := range run(50, 10) {
		require.NoError(t, a.Record(rec))
	}
	require.NoError(t, a.Close())
	assert.Error(t, a.Record(clearance.Record{}))

	assert.Len(t, a.Records(), 2)
	rep := a.Report()
	assert.Len(t, rep.Segments, 1)
	assert.Equal(t, 30, rep.Threshold)
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, run(50, 10, -1, 40), 30, "test run"))
	require.Greater(t, buf.Len(), 8)
	assert.Equal(t, "\x89PNG\r\n\x1a\n", buf.String()[:8])
}

func TestWritePNGNoRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, nil, 30, "empty"))
	assert.NotZero(t, buf.Len())
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, run(50, 10, -1), 30, "Run abc", "frames=3"))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Run abc")
	assert.Contains(t, html, "clearance_px")
	assert.Contains(t, html, "0.100")
}

func TestSaveArtifacts(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	recs := run(50, 10)

	require.NoError(t, SaveArtifacts(mfs, "out/plot.png", "out/chart.html", recs, 30, "run"))
	assert.Equal(t, []string{"out/chart.html", "out/plot.png"}, mfs.Names())

	html, err := mfs.ReadFile("out/chart.html")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(html), "frames=2 threshold=30px"))

	mfs2 := fsutil.NewMemoryFileSystem()
	require.NoError(t, SaveArtifacts(mfs2, "", "", recs, 30, "run"))
	assert.Empty(t, mfs2.Names())
}
