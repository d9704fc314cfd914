package main

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRunFlagsDefaults(t *testing.T) {
	o, err := parseRunFlags([]string{"-video", "drive.mp4"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "drive.mp4", o.video)
	assert.Equal(t, "", o.out)
	assert.Equal(t, 100, o.progress)
	assert.False(t, o.noPrompt)
	assert.False(t, o.noPreview)
	assert.Equal(t, "", o.dbPath)
}

func TestParseRunFlagsAll(t *testing.T) {
	o, err := parseRunFlags([]string{
		"-video", "in.mp4", "-out", "out.mp4", "-csv", "c.csv", "-db", "runs.db",
		"-vehicle-x", "0.45", "-band-offset", "-0.05", "-no-prompt", "-no-preview",
		"-progress", "0", "-plot", "p.png", "-chart", "c.html", "-metrics-addr", ":9100",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "out.mp4", o.out)
	assert.Equal(t, "c.csv", o.csvPath)
	assert.Equal(t, "runs.db", o.dbPath)
	assert.Equal(t, "0.45", o.vehicleX)
	assert.Equal(t, "-0.05", o.bandOffset)
	assert.True(t, o.noPrompt)
	assert.True(t, o.noPreview)
	assert.Equal(t, 0, o.progress)
	assert.Equal(t, "p.png", o.plotPath)
	assert.Equal(t, "c.html", o.chartPath)
	assert.Equal(t, ":9100", o.metricsAddr)
}

func TestParseRunFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing video", nil},
		{"positional argument", []string{"-video", "a.mp4", "extra"}},
		{"negative progress", []string{"-video", "a.mp4", "-progress", "-1"}},
		{"unknown flag", []string{"-video", "a.mp4", "-bogus"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseRunFlags(tc.args, io.Discard)
			if !errors.Is(err, errUsage) {
				t.Errorf("expected usage error, got %v", err)
			}
		})
	}
}

func TestParseRunFlagsVersionSkipsVideo(t *testing.T) {
	o, err := parseRunFlags([]string{"-version"}, io.Discard)
	require.NoError(t, err)
	assert.True(t, o.version)
}

func TestParseRunFlagsHelp(t *testing.T) {
	var buf bytes.Buffer
	_, err := parseRunFlags([]string{"-h"}, &buf)
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, buf.String(), "-vehicle-x")
}

func TestParseServeFlags(t *testing.T) {
	o, err := parseServeFlags(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, ":8080", o.listen)
	assert.Equal(t, defaultDBFile, o.dbPath)

	_, err = parseServeFlags([]string{"-listen", ""}, io.Discard)
	assert.ErrorIs(t, err, errUsage)
}

func TestParseMigrateFlags(t *testing.T) {
	o, err := parseMigrateFlags([]string{"-db", "x.db", "-dev", "version", "2"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "x.db", o.dbPath)
	assert.True(t, o.dev)
	assert.Equal(t, []string{"version", "2"}, o.args)
}
