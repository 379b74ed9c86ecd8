package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/LdDl/kicksense/config"
	"github.com/LdDl/kicksense/export"
	"github.com/LdDl/kicksense/pipeline"
	"github.com/LdDl/kicksense/report"
	"github.com/LdDl/kicksense/storage"
	"github.com/LdDl/kicksense/team"
	"github.com/LdDl/kicksense/tracks"
	"github.com/LdDl/kicksense/videoio"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		videoPath    string
		configPath   string
		outDir       string
		snapshotPath string
		dbPath       string
		matchID      string
		maxFrames    int
		logLevel     string
		dumpConfig   string
	)
	flag.StringVar(&videoPath, "video", "", "input video file or stream")
	flag.StringVar(&configPath, "config", "", "path to JSON configuration, defaults are used when empty")
	flag.StringVar(&outDir, "out", "output", "directory for CSV files and reports")
	flag.StringVar(&snapshotPath, "snapshot", "", "track store snapshot: loaded when it exists (tracking is skipped), written otherwise")
	flag.StringVar(&dbPath, "db", "", "SQLite database for tracking data, overrides configuration")
	flag.StringVar(&matchID, "match", "", "match identifier stored in database, overrides configuration")
	flag.IntVar(&maxFrames, "max-frames", -1, "stop after this many frames, overrides configuration")
	flag.StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	flag.StringVar(&dumpConfig, "dump-config", "", "write default configuration to this path and exit")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.WithError(err).Fatal("Bad log level")
	}
	logrus.SetLevel(level)
	logger := logrus.NewEntry(logrus.StandardLogger())

	if dumpConfig != "" {
		if err := config.DefaultConfig().Save(dumpConfig); err != nil {
			logger.WithError(err).Fatal("Can't write configuration")
		}
		logger.WithField("path", dumpConfig).Info("Default configuration written")
		return
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			logger.WithError(err).WithField("path", configPath).Fatal("Can't load configuration")
		}
	}
	if dbPath != "" {
		cfg.DatabasePath = &dbPath
	}
	if matchID != "" {
		cfg.MatchID = &matchID
	}
	if maxFrames >= 0 {
		cfg.MaxFrames = &maxFrames
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, videoPath, outDir, snapshotPath, logger); err != nil {
		logger.WithError(err).Fatal("Analysis failed")
	}
}

func run(ctx context.Context, cfg *config.Config, videoPath, outDir, snapshotPath string, logger *logrus.Entry) error {
	startedAt := time.Now()
	opts, err := pipeline.OptionsFrom(cfg, logger)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(err, "can't create output directory")
	}

	processor, err := track(ctx, cfg, opts, videoPath, snapshotPath, logger)
	if err != nil {
		return err
	}
	store := processor.Store()

	post, err := processor.PostProcess(ctx)
	if err != nil {
		return errors.Wrap(err, "post-processing")
	}
	logger.WithFields(logrus.Fields{
		"transformed": post.Homography.Transformed,
		"smoothed":    post.Smoothing.Smoothed,
		"clamped":     post.Kinematics.Clamped,
		"possessions": post.Possessions,
	}).Info("Post-processing done")

	analysis := processor.Analyze(pipeline.AnalysisOptionsFrom(cfg))
	if err := writeOutputs(outDir, store, analysis); err != nil {
		return err
	}

	if path := cfg.GetDatabasePath(); path != "" {
		if err := persist(ctx, cfg, path, videoPath, store, analysis, startedAt, logger); err != nil {
			return err
		}
	}
	logger.WithFields(logrus.Fields{
		"out":        outDir,
		"identities": len(analysis.Stats),
		"elapsed":    time.Since(startedAt).Round(time.Second),
	}).Info("Done")
	return nil
}

// track runs the tracking pass or restores it from snapshot
func track(ctx context.Context, cfg *config.Config, opts pipeline.Options, videoPath, snapshotPath string, logger *logrus.Entry) (*pipeline.Processor, error) {
	if snapshotPath != "" {
		if f, err := os.Open(snapshotPath); err == nil {
			defer f.Close()
			store, err := tracks.Load(f)
			if err != nil {
				return nil, errors.Wrapf(err, "can't load snapshot %s", snapshotPath)
			}
			logger.WithFields(logrus.Fields{
				"path":   snapshotPath,
				"frames": store.Meta.ProcessedFrames,
			}).Info("Tracking restored from snapshot")
			processor := pipeline.NewProcessor(opts)
			processor.UseStore(store)
			return processor, nil
		}
	}
	if videoPath == "" {
		return nil, errors.New("no input video")
	}

	capture, err := videoio.OpenCapture(videoPath)
	if err != nil {
		return nil, err
	}
	defer capture.Close()
	detector, err := videoio.NewYOLODetector(videoio.DetectorConfig{
		ModelPath:     cfg.GetModelPath(),
		InputWidth:    cfg.GetInputWidth(),
		InputHeight:   cfg.GetInputHeight(),
		ConfThreshold: cfg.GetConfThreshold(),
		NMSThreshold:  cfg.GetNMSThreshold(),
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	defer detector.Close()
	tracker, err := pipeline.NewMOTTracker(pipeline.TrackerConfigFrom(cfg, logger))
	if err != nil {
		return nil, err
	}
	flow := videoio.NewOpticalFlow(cfg.GetCameraMinMotion())
	defer flow.Close()

	opts.Source = capture
	opts.Detector = detector
	opts.Tracker = tracker
	opts.Motion = flow
	opts.Teams = team.NewColorClassifier(cfg.GetTeamMinSamples(), logger)
	meta := capture.Meta()
	logger.WithFields(logrus.Fields{
		"video":  videoPath,
		"fps":    meta.FPS,
		"width":  meta.Width,
		"height": meta.Height,
		"frames": meta.TotalFrames,
	}).Info("Tracking started")

	processor := pipeline.NewProcessor(opts)
	if err := processor.Run(ctx); err != nil {
		return nil, err
	}
	if snapshotPath != "" {
		if err := saveSnapshot(snapshotPath, processor.Store()); err != nil {
			return nil, err
		}
		logger.WithField("path", snapshotPath).Info("Snapshot written")
	}
	return processor, nil
}

func saveSnapshot(path string, store *tracks.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "can't create snapshot")
	}
	if err := store.Save(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "can't close snapshot")
}

func writeOutputs(outDir string, store *tracks.Store, analysis pipeline.Analysis) error {
	files := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"stats.csv", func(f *os.File) error { return export.WriteStats(f, analysis.Stats) }},
		{"frames.csv", func(f *os.File) error { return export.WriteFrames(f, store) }},
		{"report.html", func(f *os.File) error {
			return report.WriteHTML(f, analysis.Stats, analysis.Cohesion, report.Options{Title: "Match report"})
		}},
		{"trajectories.png", func(f *os.File) error { return report.WriteTrajectoriesPNG(f, store, "Smoothed trajectories") }},
	}
	for _, file := range files {
		path := filepath.Join(outDir, file.name)
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "can't create %s", path)
		}
		if err := file.write(f); err != nil {
			f.Close()
			return errors.Wrapf(err, "can't write %s", path)
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "can't close %s", path)
		}
	}
	return nil
}

func persist(ctx context.Context, cfg *config.Config, path, videoPath string, store *tracks.Store, analysis pipeline.Analysis, startedAt time.Time, logger *logrus.Entry) error {
	db, err := storage.Open(path, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	matchID := cfg.GetMatchID()
	if matchID == "" {
		matchID = startedAt.UTC().Format("20060102T150405")
	}
	err = db.SaveRun(ctx, storage.Run{
		MatchID:     matchID,
		Source:      videoPath,
		FPS:         store.Meta.FPS,
		Width:       store.Meta.Width,
		Height:      store.Meta.Height,
		TotalFrames: store.Meta.ProcessedFrames,
		StartedAt:   startedAt,
	})
	if err != nil {
		return err
	}
	if _, err := db.SaveTracking(ctx, matchID, store, startedAt, cfg.GetSprintKmh(), cfg.GetBatchSize()); err != nil {
		return err
	}
	return db.SaveStats(ctx, matchID, analysis.Stats)
}
