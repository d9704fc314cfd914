package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gocv.io/x/gocv"

	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/config"
	"github.com/banshee-data/laneguide/internal/db"
	"github.com/banshee-data/laneguide/internal/fsutil"
	"github.com/banshee-data/laneguide/internal/metrics"
	"github.com/banshee-data/laneguide/internal/monitoring"
	"github.com/banshee-data/laneguide/internal/pipeline"
	"github.com/banshee-data/laneguide/internal/report"
	"github.com/banshee-data/laneguide/internal/security"
	"github.com/banshee-data/laneguide/internal/sink"
	"github.com/banshee-data/laneguide/internal/video"
	"github.com/banshee-data/laneguide/internal/video/opencv"
)

// loadConfig reads the tuning file, or returns an empty config so every
// setting takes its default and calibration is prompted for.
func loadConfig(o *runOptions) (*config.GuidanceConfig, error) {
	cfg := config.EmptyGuidanceConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadGuidanceConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.model != "" {
		cfg.ModelPath = &o.model
	}
	return cfg, nil
}

// runStatus maps how the frame loop ended to the stored run status.
func runStatus(sum pipeline.Summary, err error) db.RunStatus {
	switch {
	case err != nil:
		return db.RunFailed
	case sum.Stopped == pipeline.StopInterrupted, sum.Stopped == pipeline.StopPreview:
		return db.RunInterrupted
	default:
		return db.RunComplete
	}
}

func runGuidance(o *runOptions, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cal, err := resolveCalibration(o, cfg, in, out)
	if err != nil {
		return fmt.Errorf("calibration: %w", err)
	}

	capture, err := opencv.OpenCapture(o.video)
	if err != nil {
		return err
	}
	defer capture.Close()
	info := capture.Info()
	log.Printf("input %s: %s", o.video, info)

	geom := cfg.Geometry(info.Width, info.Height, cal)
	fmt.Fprintf(out, "Vehicle X = %dpx\n", geom.VehicleX)
	fmt.Fprintf(out, "Bounding band center = %.3f\n", geom.Band.Center)
	log.Printf("lookahead band %s (%d rows)", geom.Band, geom.Band.Rows())

	outPath := o.out
	if outPath == "" {
		outPath = video.DefaultOutputPath(o.video)
	}
	if err := security.ValidateOutputPaths(o.video, outPath, o.csvPath, o.plotPath, o.chartPath, o.dbPath); err != nil {
		return err
	}
	// The model is loaded before the writer creates the output file.
	segmenter, err := opencv.NewSegmenter(cfg.InferenceConfig())
	if err != nil {
		return err
	}
	defer segmenter.Close()
	log.Printf("model %s: lane output %q", cfg.GetModelPath(), segmenter.Output())

	writer, err := opencv.OpenWriter(outPath, cfg.GetCodecs(), info.FPS, info.Width, info.Height)
	if err != nil {
		return err
	}
	defer writer.Close()
	log.Printf("writing %s with codec %s", writer.Path(), writer.Codec())

	threshold := cfg.GetMinLineClearancePx()
	m := metrics.New()
	acc := report.NewAccumulator(info.FPS, threshold)
	sinks := sink.Multi{acc, m}

	var csv *sink.CSV
	if o.csvPath != "" {
		if csv, err = sink.NewCSV(fsutil.OSFileSystem{}, o.csvPath); err != nil {
			return err
		}
		sinks = append(sinks, csv)
	}

	var store *db.DB
	var record *db.Run
	if o.dbPath != "" {
		if store, err = db.NewDB(o.dbPath); err != nil {
			sinks.Close()
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		record = &db.Run{
			VideoPath:          o.video,
			OutputPath:         outPath,
			CSVPath:            o.csvPath,
			ModelPath:          cfg.GetModelPath(),
			FPS:                info.FPS,
			VehicleCenterRatio: cal.VehicleCenterRatio,
			BandYOffset:        cal.BandYOffset,
			MinLineClearancePx: threshold,
			RowStride:          cfg.GetRowStride(),
		}
		record.SetGeometry(geom)
		if err := store.CreateRun(record); err != nil {
			sinks.Close()
			return fmt.Errorf("create run: %w", err)
		}
		sinks = append(sinks, store.NewFrameRecorder(record.ID, db.DefaultFrameBatch))
	}
	// Closed explicitly after the run.
	sinksClosed := false
	defer func() {
		if !sinksClosed {
			sinks.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if o.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srvCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := serveHTTP(srvCtx, &http.Server{Addr: o.metricsAddr, Handler: mux}); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	runner := &pipeline.Runner[*gocv.Mat]{
		Source:      capture,
		Segmenter:   segmenter,
		Evaluator:   clearance.NewEvaluator(geom, cfg.EvaluatorParams()),
		LaneClassID: cfg.GetLaneClassID(),
		Annotator:   opencv.Annotator{},
		Writer:      writer,
		Sink:        sinks,
	}
	if o.progress > 0 {
		runner.Progress = monitoring.NewProgress(o.progress, info.Frames)
	}
	if o.debug {
		pipeline.SetLogWriters(os.Stderr, os.Stderr)
	} else {
		pipeline.SetLogWriters(os.Stderr, nil)
	}
	if !o.noPreview {
		preview := opencv.NewPreview(cfg.GetPreviewTitle())
		defer preview.Close()
		runner.Preview = preview
	}

	frame := gocv.NewMat()
	defer frame.Close()
	runner.Frame = &frame

	fmt.Fprintln(out, "Processing video...")
	sum, runErr := runner.Run(ctx)

	sinksClosed = true
	if err := sinks.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close outputs: %w", err)
	}
	if csv != nil {
		log.Printf("csv %s: %d rows", csv.Path(), csv.Rows())
	}

	rep := acc.Report()
	if runErr == nil {
		if err := report.SaveArtifacts(fsutil.OSFileSystem{}, o.plotPath, o.chartPath, acc.Records(), threshold, "Lane clearance: "+o.video); err != nil {
			runErr = err
		}
	}

	if store != nil {
		res := db.RunResult{
			Status:       runStatus(sum, runErr),
			StopReason:   string(sum.Stopped),
			Frames:       sum.Frames,
			GoodFrames:   sum.Good,
			OnLineFrames: sum.OnLine,
			NoLaneFrames: sum.NoLane,
			Err:          runErr,
		}
		if runErr == nil {
			res.Report = &rep
		}
		if err := store.CompleteRun(record.ID, res); err != nil {
			log.Printf("failed to store run %s: %v", record.ID, err)
		}
	}
	if runErr != nil {
		m.RunsFailed.Add(1)
		return runErr
	}
	m.RunsCompleted.Add(1)

	writeSummary(out, sum, rep, writer.Path(), o.csvPath, o.plotPath, o.chartPath)
	if record != nil {
		fmt.Fprintf(out, "Run: %s\n", record.ID)
	}
	return nil
}

// writeSummary prints the run outcome and every file written. Empty paths
// are skipped.
func writeSummary(out io.Writer, sum pipeline.Summary, rep report.Report, saved ...string) {
	fmt.Fprintf(out, "Processed %d frames in %v (%s)\n", sum.Frames, sum.Duration.Round(time.Millisecond), sum.Stopped)
	if rep.Assessed {
		fmt.Fprintf(out, "Score: %d (%s, %s) %s\n", rep.Score, rep.Grade, rep.Grade.Label(), rep.Summary)
	} else {
		fmt.Fprintln(out, rep.Summary)
	}
	for _, p := range saved {
		if p != "" {
			fmt.Fprintf(out, "Saved: %s\n", p)
		}
	}
}
