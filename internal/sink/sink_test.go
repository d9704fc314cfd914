package sink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/fsutil"
)

func good(px int) clearance.Measurement {
	return clearance.Measurement{Status: clearance.StatusGood, ClearancePx: px, Measured: true}
}

func TestCSVWritesHeaderAndRows(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	s, err := NewCSV(mfs, "out/log.csv")
	require.NoError(t, err)

	require.NoError(t, s.Record(clearance.NewRecord(0, 30, good(42))))
	require.NoError(t, s.Record(clearance.NewRecord(1, 30, clearance.Measurement{
		Status: clearance.StatusOnLine, ClearancePx: 12, Measured: true,
	})))
	require.NoError(t, s.Record(clearance.NewRecord(2, 30, clearance.Measurement{Status: clearance.StatusNoLane})))
	assert.True(t, mfs.IsOpen("out/log.csv"))
	require.NoError(t, s.Close())

	data, err := mfs.ReadFile("out/log.csv")
	require.NoError(t, err)
	want := "frame,timestamp_sec,clearance_px,status\n" +
		"0,0.000,42,GOOD\n" +
		"1,0.033,12,BAD - ON LINE\n" +
		"2,0.067,,NO LANE\n"
	assert.Equal(t, want, string(data))
	assert.Equal(t, 3, s.Rows())
	assert.Equal(t, "out/log.csv", s.Path())
}

func TestCSVHeaderOnlyWhenNoFrames(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	s, err := NewCSV(mfs, "empty.csv")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, _ := mfs.ReadFile("empty.csv")
	assert.Equal(t, "frame,timestamp_sec,clearance_px,status\n", string(data))
}

func TestRowUnknownFPS(t *testing.T) {
	row := Row(clearance.NewRecord(90, 0, good(30)))
	assert.Equal(t, []string{"90", "0.000", "30", "GOOD"}, row)
}

type recordingSink struct {
	records []clearance.Record
	closed  bool
	failRec error
	failCls error
}

func (r *recordingSink) Record(rec clearance.Record) error {
	if r.failRec != nil {
		return r.failRec
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingSink) Close() error {
	r.closed = true
	return r.failCls
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := Multi{a, b}

	require.NoError(t, m.Record(clearance.NewRecord(0, 25, good(50))))
	require.NoError(t, m.Close())

	assert.Len(t, a.records, 1)
	assert.Len(t, b.records, 1)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestMultiStopsOnRecordErrorAndClosesAll(t *testing.T) {
	boom := errors.New("disk full")
	a := &recordingSink{failRec: boom, failCls: errors.New("close a")}
	b := &recordingSink{}
	m := Multi{a, b}

	err := m.Record(clearance.NewRecord(0, 25, good(50)))
	require.ErrorIs(t, err, boom)
	assert.Empty(t, b.records)

	err = m.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close a")
	assert.True(t, b.closed)
}
