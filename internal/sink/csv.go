package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/fsutil"
)

// CSVHeader is the first row of every clearance log.
var CSVHeader = []string{"frame", "timestamp_sec", "clearance_px", "status"}

// CSV writes one row per frame: frame index, timestamp with millisecond
// precision, clearance (empty for NO LANE) and status.
type CSV struct {
	path string
	f    io.WriteCloser
	w    *csv.Writer
	rows int
}

// NewCSV creates path on fsys and writes the header row.
func NewCSV(fsys fsutil.FileSystem, path string) (*CSV, error) {
	f, err := fsys.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv %s: %w", path, err)
	}
	s := &CSV{path: path, f: f, w: csv.NewWriter(f)}
	if err := s.w.Write(CSVHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return s, nil
}

// Path returns the output file path.
func (s *CSV) Path() string { return s.path }

// Rows returns the number of data rows written.
func (s *CSV) Rows() int { return s.rows }

// Record appends one data row.
func (s *CSV) Record(r clearance.Record) error {
	if err := s.w.Write(Row(r)); err != nil {
		return fmt.Errorf("write csv row %d: %w", r.Frame, err)
	}
	s.rows++
	return nil
}

// Close flushes buffered rows and closes the file.
func (s *CSV) Close() error {
	s.w.Flush()
	flushErr := s.w.Error()
	closeErr := s.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flush csv %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close csv %s: %w", s.path, closeErr)
	}
	return nil
}

// Row formats a record as CSV fields.
func Row(r clearance.Record) []string {
	px := ""
	if r.Measurement.Measured {
		px = strconv.Itoa(r.Measurement.ClearancePx)
	}
	return []string{
		strconv.Itoa(r.Frame),
		strconv.FormatFloat(r.TimestampSec, 'f', 3, 64),
		px,
		string(r.Measurement.Status),
	}
}
