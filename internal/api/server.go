package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/db"
	"github.com/banshee-data/laneguide/internal/httputil"
	"github.com/banshee-data/laneguide/internal/metrics"
	"github.com/banshee-data/laneguide/internal/monitoring"
	"github.com/banshee-data/laneguide/internal/report"
	"github.com/banshee-data/laneguide/internal/timeutil"
	"github.com/banshee-data/laneguide/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// MaxListLimit caps the limit query parameter of /api/runs.
const MaxListLimit = 500

// Server serves stored runs over HTTP.
type Server struct {
	db      *db.DB
	metrics *metrics.Metrics
	clock   timeutil.Clock
}

// NewServer returns a server over store. m may be nil, in which case
// /metrics is not mounted.
func NewServer(store *db.DB, m *metrics.Metrics) *Server {
	return &Server{db: store, metrics: m, clock: timeutil.RealClock{}}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms %s",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
			w.Header().Get(httputil.RequestIDHeader),
		)
	})
}

// ServeMux registers the API routes on a new mux.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.health)
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/{id}", s.run)
	mux.HandleFunc("/api/runs/{id}/frames", s.runFrames)
	mux.HandleFunc("/api/runs/{id}/segments", s.runSegments)
	mux.HandleFunc("/api/runs/{id}/chart", s.runChart)
	mux.HandleFunc("/api/runs/{id}/plot.png", s.runPlot)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// Handler wraps mux with request ids, access logging and request counting.
func (s *Server) Handler(mux http.Handler) http.Handler {
	h := mux
	if s.metrics != nil {
		h = s.metrics.Instrument(h)
	}
	return httputil.RequestID(LoggingMiddleware(h))
}

// HealthResponse is the body of /api/health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Time    string `json:"time"`
	Version string `json:"version"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, HealthResponse{
		OK:      true,
		Time:    s.clock.Now().UTC().Format(time.RFC3339),
		Version: version.String(),
	})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	limit := db.DefaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 || parsed > MaxListLimit {
			httputil.BadRequest(w, fmt.Sprintf("Invalid 'limit' parameter (1-%d)", MaxListLimit))
			return
		}
		limit = parsed
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to list runs: %v", err))
		return
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		run, err := s.db.GetRun(id)
		if err != nil {
			s.writeStoreError(w, id, err)
			return
		}
		httputil.WriteJSONOK(w, run)
	case http.MethodDelete:
		if err := s.db.DeleteRun(id); err != nil {
			s.writeStoreError(w, id, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		httputil.MethodNotAllowed(w)
	}
}

// FrameResponse is one frame as served by /frames. ClearancePx is null for
// frames without lane pixels in the band.
type FrameResponse struct {
	Frame        int     `json:"frame"`
	TimestampSec float64 `json:"timestampSec"`
	ClearancePx  *int    `json:"clearancePx"`
	Status       string  `json:"status"`
}

func (s *Server) runFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id := r.PathValue("id")
	if _, err := s.db.GetRun(id); err != nil {
		s.writeStoreError(w, id, err)
		return
	}
	recs, err := s.db.RunFrames(id)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to read frames: %v", err))
		return
	}

	out := make([]FrameResponse, len(recs))
	for i, rec := range recs {
		out[i] = FrameResponse{
			Frame:        rec.Frame,
			TimestampSec: rec.TimestampSec,
			Status:       string(rec.Measurement.Status),
		}
		if rec.Measurement.Measured {
			px := rec.Measurement.ClearancePx
			out[i].ClearancePx = &px
		}
	}
	httputil.WriteJSONOK(w, out)
}

func (s *Server) runSegments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id := r.PathValue("id")
	if _, err := s.db.GetRun(id); err != nil {
		s.writeStoreError(w, id, err)
		return
	}
	segs, err := s.db.RunSegments(id)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to read segments: %v", err))
		return
	}
	httputil.WriteJSONOK(w, segs)
}

func (s *Server) runChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	run, recs, ok := s.loadFrames(w, r.PathValue("id"))
	if !ok {
		return
	}
	subtitle := fmt.Sprintf("%s, %d frames", run.CreatedAt.UTC().Format(time.RFC3339), run.Frames)
	if run.Score != nil {
		subtitle += fmt.Sprintf(", score %d (%s)", *run.Score, run.Grade)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderHTML(w, recs, run.MinLineClearancePx, run.VideoPath, subtitle); err != nil {
		monitoring.Logf("chart %s: %v", run.ID, err)
	}
}

func (s *Server) runPlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	run, recs, ok := s.loadFrames(w, r.PathValue("id"))
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WritePNG(&buf, recs, run.MinLineClearancePx, run.VideoPath); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to render plot: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := buf.WriteTo(w); err != nil {
		monitoring.Logf("plot %s: %v", run.ID, err)
	}
}

func (s *Server) loadFrames(w http.ResponseWriter, id string) (*db.Run, []clearance.Record, bool) {
	run, err := s.db.GetRun(id)
	if err != nil {
		s.writeStoreError(w, id, err)
		return nil, nil, false
	}
	recs, err := s.db.RunFrames(id)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to read frames: %v", err))
		return nil, nil, false
	}
	return run, recs, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, fmt.Sprintf("run %s not found", id))
		return
	}
	httputil.InternalServerError(w, err.Error())
}
