package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/report"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the lifecycle state of a stored run.
type RunStatus string

const (
	RunRunning     RunStatus = "running"
	RunComplete    RunStatus = "complete"
	RunInterrupted RunStatus = "interrupted"
	RunFailed      RunStatus = "failed"
)

// DefaultListLimit is the number of runs ListRuns returns for limit <= 0.
const DefaultListLimit = 25

// Run is one processed video.
type Run struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	VideoPath  string `json:"videoPath"`
	OutputPath string `json:"outputPath,omitempty"`
	CSVPath    string `json:"csvPath,omitempty"`
	ModelPath  string `json:"modelPath,omitempty"`

	Width              int     `json:"width"`
	Height             int     `json:"height"`
	FPS                float64 `json:"fps"`
	VehicleCenterRatio float64 `json:"vehicleCenterRatio"`
	BandYOffset        float64 `json:"bandYOffset"`
	VehicleX           int     `json:"vehicleX"`
	RowStart           int     `json:"rowStart"`
	RowEnd             int     `json:"rowEnd"`
	MinLineClearancePx int     `json:"minLineClearancePx"`
	RowStride          int     `json:"rowStride"`

	Status       RunStatus `json:"status"`
	StopReason   string    `json:"stopReason,omitempty"`
	Frames       int       `json:"frames"`
	GoodFrames   int       `json:"goodFrames"`
	OnLineFrames int       `json:"onLineFrames"`
	NoLaneFrames int       `json:"noLaneFrames"`
	Score        *int      `json:"score,omitempty"`
	Grade        string    `json:"grade,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Error        string    `json:"error,omitempty"`

	// Report is only loaded by GetRun.
	Report *report.Report `json:"report,omitempty"`
}

// SetGeometry copies the run-wide geometry into r.
func (r *Run) SetGeometry(g clearance.Geometry) {
	r.Width = g.Width
	r.Height = g.Height
	r.VehicleX = g.VehicleX
	r.RowStart = g.Band.RowStart
	r.RowEnd = g.Band.RowEnd
}

// RunResult is what CompleteRun stores when a run ends.
type RunResult struct {
	Status       RunStatus
	StopReason   string
	Frames       int
	GoodFrames   int
	OnLineFrames int
	NoLaneFrames int
	Report       *report.Report // nil for failed runs
	Err          error
}

// CreateRun inserts r with status running. An empty ID is replaced by a new
// UUID and a zero CreatedAt by the current time.
func (db *DB) CreateRun(r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.Status = RunRunning

	_, err := db.Exec(`
		INSERT INTO runs (
			run_id, created_unix_nanos, video_path, output_path, csv_path, model_path,
			width, height, fps, vehicle_center_ratio, band_y_offset,
			vehicle_x, row_start, row_end, min_line_clearance_px, row_stride, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UnixNano(), r.VideoPath, r.OutputPath, r.CSVPath, r.ModelPath,
		r.Width, r.Height, r.FPS, r.VehicleCenterRatio, r.BandYOffset,
		r.VehicleX, r.RowStart, r.RowEnd, r.MinLineClearancePx, r.RowStride, string(r.Status),
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// CompleteRun records the outcome of a run together with its on-line
// segments in one transaction.
func (db *DB) CompleteRun(id string, res RunResult) error {
	var (
		score      sql.NullInt64
		grade      string
		summary    string
		reportJSON sql.NullString
		errText    string
	)
	if res.Report != nil {
		score = sql.NullInt64{Int64: int64(res.Report.Score), Valid: res.Report.Assessed}
		if res.Report.Assessed {
			grade = string(res.Report.Grade)
		}
		summary = res.Report.Summary
		b, err := json.Marshal(res.Report)
		if err != nil {
			return fmt.Errorf("complete run %s: marshal report: %w", id, err)
		}
		reportJSON = sql.NullString{String: string(b), Valid: true}
	}
	if res.Err != nil {
		errText = res.Err.Error()
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("complete run %s: %w", id, err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE runs SET
			completed_unix_nanos = ?, status = ?, stop_reason = ?,
			frames = ?, good_frames = ?, on_line_frames = ?, no_lane_frames = ?,
			score = ?, grade = ?, summary = ?, report_json = ?, error = ?
		WHERE run_id = ?`,
		time.Now().UnixNano(), string(res.Status), res.StopReason,
		res.Frames, res.GoodFrames, res.OnLineFrames, res.NoLaneFrames,
		score, grade, summary, reportJSON, errText, id,
	)
	if err != nil {
		return fmt.Errorf("complete run %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("complete run %s: %w", id, ErrRunNotFound)
	}

	if _, err := tx.Exec(`DELETE FROM run_segments WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("complete run %s: clear segments: %w", id, err)
	}
	if res.Report != nil {
		for i, seg := range res.Report.Segments {
			_, err := tx.Exec(`
				INSERT INTO run_segments (
					run_id, seq, start_frame, end_frame, start_time, end_time,
					duration, worst_clearance_px, severity
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, i, seg.StartFrame, seg.EndFrame, seg.StartTime, seg.EndTime,
				seg.Duration, seg.WorstClearancePx, string(seg.Severity),
			)
			if err != nil {
				return fmt.Errorf("complete run %s: segment %d: %w", id, i, err)
			}
		}
	}
	return tx.Commit()
}

const runColumns = `
	run_id, created_unix_nanos, completed_unix_nanos, video_path, output_path, csv_path, model_path,
	width, height, fps, vehicle_center_ratio, band_y_offset,
	vehicle_x, row_start, row_end, min_line_clearance_px, row_stride,
	status, stop_reason, frames, good_frames, on_line_frames, no_lane_frames,
	score, grade, summary, error`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner, extra ...any) (*Run, error) {
	var (
		r         Run
		created   int64
		completed sql.NullInt64
		score     sql.NullInt64
		status    string
	)
	dest := []any{
		&r.ID, &created, &completed, &r.VideoPath, &r.OutputPath, &r.CSVPath, &r.ModelPath,
		&r.Width, &r.Height, &r.FPS, &r.VehicleCenterRatio, &r.BandYOffset,
		&r.VehicleX, &r.RowStart, &r.RowEnd, &r.MinLineClearancePx, &r.RowStride,
		&status, &r.StopReason, &r.Frames, &r.GoodFrames, &r.OnLineFrames, &r.NoLaneFrames,
		&score, &r.Grade, &r.Summary, &r.Error,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, created)
	if completed.Valid {
		t := time.Unix(0, completed.Int64)
		r.CompletedAt = &t
	}
	if score.Valid {
		v := int(score.Int64)
		r.Score = &v
	}
	r.Status = RunStatus(status)
	return &r, nil
}

// GetRun loads one run including its stored report.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`SELECT `+runColumns+`, report_json FROM runs WHERE run_id = ?`, id)

	var reportJSON sql.NullString
	r, err := scanRun(row, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	if reportJSON.Valid && reportJSON.String != "" {
		var rep report.Report
		if err := json.Unmarshal([]byte(reportJSON.String), &rep); err != nil {
			return nil, fmt.Errorf("get run %s: decode report: %w", id, err)
		}
		r.Report = &rep
	}
	return r, nil
}

// ListRuns returns the most recent runs first, without reports.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs ORDER BY created_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and, through the foreign keys, its frames and
// segments.
func (db *DB) DeleteRun(id string) error {
	res, err := db.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// RunFrames returns the stored per-frame records of a run in frame order.
func (db *DB) RunFrames(id string) ([]clearance.Record, error) {
	rows, err := db.Query(`
		SELECT frame, timestamp_sec, clearance_px, status, rows_sampled, rows_with_lane
		FROM run_frames WHERE run_id = ? ORDER BY frame`, id)
	if err != nil {
		return nil, fmt.Errorf("run frames %s: %w", id, err)
	}
	defer rows.Close()

	recs := []clearance.Record{}
	for rows.Next() {
		var (
			rec    clearance.Record
			px     sql.NullInt64
			status string
		)
		if err := rows.Scan(&rec.Frame, &rec.TimestampSec, &px, &status,
			&rec.Measurement.RowsSampled, &rec.Measurement.RowsWithLane); err != nil {
			return nil, fmt.Errorf("run frames %s: %w", id, err)
		}
		rec.Measurement.Status = clearance.Status(status)
		if px.Valid {
			rec.Measurement.ClearancePx = int(px.Int64)
			rec.Measurement.Measured = true
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// RunSegments returns the on-line segments stored for a run.
func (db *DB) RunSegments(id string) ([]report.Segment, error) {
	rows, err := db.Query(`
		SELECT start_frame, end_frame, start_time, end_time, duration, worst_clearance_px, severity
		FROM run_segments WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("run segments %s: %w", id, err)
	}
	defer rows.Close()

	segs := []report.Segment{}
	for rows.Next() {
		var (
			s   report.Segment
			sev string
		)
		if err := rows.Scan(&s.StartFrame, &s.EndFrame, &s.StartTime, &s.EndTime,
			&s.Duration, &s.WorstClearancePx, &sev); err != nil {
			return nil, fmt.Errorf("run segments %s: %w", id, err)
		}
		s.Severity = report.Severity(sev)
		segs = append(segs, s)
	}
	return segs, rows.Err()
}
