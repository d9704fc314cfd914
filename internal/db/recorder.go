package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/banshee-data/laneguide/internal/clearance"
)

// DefaultFrameBatch is the number of frames written per transaction.
const DefaultFrameBatch = 256

var errRecorderClosed = errors.New("frame recorder closed")

// FrameRecorder is a measurement sink that stores frame records of one run,
// batching inserts into transactions.
type FrameRecorder struct {
	db      *DB
	runID   string
	batch   int
	pending []clearance.Record
	written int
	closed  bool
}

// NewFrameRecorder returns a recorder for runID. batch <= 0 uses
// DefaultFrameBatch.
func (db *DB) NewFrameRecorder(runID string, batch int) *FrameRecorder {
	if batch <= 0 {
		batch = DefaultFrameBatch
	}
	return &FrameRecorder{db: db, runID: runID, batch: batch}
}

// Record queues r and flushes when the batch is full.
func (fr *FrameRecorder) Record(r clearance.Record) error {
	if fr.closed {
		return errRecorderClosed
	}
	fr.pending = append(fr.pending, r)
	if len(fr.pending) >= fr.batch {
		return fr.Flush()
	}
	return nil
}

// Written returns the number of frames committed so far.
func (fr *FrameRecorder) Written() int { return fr.written }

// Flush writes all queued records in one transaction.
func (fr *FrameRecorder) Flush() error {
	if len(fr.pending) == 0 {
		return nil
	}
	tx, err := fr.db.Begin()
	if err != nil {
		return fmt.Errorf("record frames: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO run_frames (run_id, frame, timestamp_sec, clearance_px, status, rows_sampled, rows_with_lane)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("record frames: %w", err)
	}
	defer stmt.Close()

	for _, r := range fr.pending {
		m := r.Measurement
		px := sql.NullInt64{Int64: int64(m.ClearancePx), Valid: m.Measured}
		if _, err := stmt.Exec(fr.runID, r.Frame, r.TimestampSec, px, string(m.Status),
			m.RowsSampled, m.RowsWithLane); err != nil {
			return fmt.Errorf("record frame %d: %w", r.Frame, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record frames: %w", err)
	}
	fr.written += len(fr.pending)
	fr.pending = fr.pending[:0]
	return nil
}

// Close flushes the remaining records. Further Records fail.
func (fr *FrameRecorder) Close() error {
	if fr.closed {
		return nil
	}
	fr.closed = true
	return fr.Flush()
}
