package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/banshee-data/laneguide/internal/inference"
	"github.com/banshee-data/laneguide/internal/pipeline"
	"github.com/banshee-data/laneguide/internal/report"
	"github.com/banshee-data/laneguide/internal/video/opencv"
)

// writeClip records a short black MJPG clip, skipping when the local
// OpenCV build cannot encode one.
func writeClip(t *testing.T, path string) {
	t.Helper()
	w, err := opencv.OpenWriter(path, []string{"MJPG"}, 10, 64, 48)
	if err != nil {
		t.Skipf("no MJPG encoder in this OpenCV build: %v", err)
	}
	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Write(&frame))
	}
	require.NoError(t, w.Close())
}

func TestRunGuidanceBadModelLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.avi")
	writeClip(t, input)
	outPath := filepath.Join(dir, "annotated.avi")

	o := &runOptions{
		video:     input,
		out:       outPath,
		model:     filepath.Join(dir, "missing.onnx"),
		noPrompt:  true,
		noPreview: true,
	}
	err := runGuidance(o, nil, io.Discard)
	require.ErrorIs(t, err, inference.ErrEmptyModel)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "output video must not be created, stat err = %v", statErr)
}

func TestWriteSummary(t *testing.T) {
	var out bytes.Buffer
	sum := pipeline.Summary{Frames: 30, Stopped: pipeline.StopEndOfInput, Duration: 1500 * time.Millisecond}
	rep := report.Report{Assessed: true, Score: 96, Grade: report.GradeA, Summary: "Excellent lane discipline."}

	writeSummary(&out, sum, rep, "out.mp4", "", "run.csv")

	assert.Equal(t, "Processed 30 frames in 1.5s (end_of_input)\n"+
		"Score: 96 (A, Excellent) Excellent lane discipline.\n"+
		"Saved: out.mp4\n"+
		"Saved: run.csv\n", out.String())

	out.Reset()
	writeSummary(&out, sum, report.Report{Summary: "not assessed"})
	assert.Equal(t, "Processed 30 frames in 1.5s (end_of_input)\nnot assessed\n", out.String())
}
