package pipeline

import (
	"github.com/LdDl/kicksense/config"
	"github.com/LdDl/kicksense/foul"
	"github.com/LdDl/kicksense/homography"
	"github.com/LdDl/kicksense/kinematics"
	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/possession"
	"github.com/LdDl/kicksense/reid"
	"github.com/LdDl/kicksense/smoothing"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TrackerConfigFrom maps tracker section of the configuration
func TrackerConfigFrom(cfg *config.Config, logger *logrus.Entry) TrackerConfig {
	tc := DefaultTrackerConfig()
	tc.Kind = cfg.GetTracker()
	tc.ByteTrack = mot.ByteTrackerOptions{
		MaxDisappeared: cfg.GetMaxDisappeared(),
		MinIoU:         cfg.GetMinIoU(),
		HighThresh:     cfg.GetHighThresh(),
		LowThresh:      cfg.GetLowThresh(),
		Algorithm:      mot.MatchingAlgorithmHungarian,
		Logger:         logger,
	}
	tc.HitsToConfirm = cfg.GetHitsToConfirm()
	return tc
}

// HomographyFrom calibrates model with every configured keyframe
func HomographyFrom(cfg *config.Config) (*homography.Model, error) {
	model := homography.NewModel()
	for _, cal := range cfg.Calibration {
		if err := model.AddKeyframe(cal.Frame, cal.Pixels()); err != nil {
			return nil, errors.Wrap(err, "calibration")
		}
	}
	return model, nil
}

// SmootherFrom builds trajectory smoother with configured filter
func SmootherFrom(cfg *config.Config, logger *logrus.Entry) (*smoothing.Smoother, error) {
	var filter smoothing.Filter
	switch cfg.GetSmoothingFilter() {
	case "savgol":
		sg, err := smoothing.NewSavitzkyGolay(cfg.GetSmoothingWindow(), cfg.GetSmoothingOrder())
		if err != nil {
			return nil, err
		}
		filter = sg
	case "moving_average":
		filter = smoothing.MovingAverage{Window: cfg.GetSmoothingWindow()}
	default:
		return nil, errors.Errorf("unknown smoothing filter '%s'", cfg.GetSmoothingFilter())
	}
	return smoothing.New(
		smoothing.WithFilter(filter),
		smoothing.WithMinPoints(cfg.GetSmoothingMinPoints()),
		smoothing.WithLogger(logger),
	)
}

// ReidConfigFrom maps re-identification thresholds, FPS is left to the source
func ReidConfigFrom(cfg *config.Config) reid.Config {
	rc := reid.DefaultConfig(0)
	rc.MaxInactiveSeconds = cfg.GetMaxInactiveSeconds()
	rc.MinScore = cfg.GetReidMinScore()
	rc.BaseGate = cfg.GetReidBaseGate()
	rc.MaxSpeedPxPerFrame = cfg.GetReidMaxSpeedPx()
	rc.PositionPenalty = cfg.GetReidPosPenalty()
	rc.HistBins = cfg.GetHistBins()
	return rc
}

// OptionsFrom fills every Options field derived from configuration. Source, detector, tracker,
// motion estimator and team classifier are left to the caller.
func OptionsFrom(cfg *config.Config, logger *logrus.Entry) (Options, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	model, err := HomographyFrom(cfg)
	if err != nil {
		return Options{}, err
	}
	smoother, err := SmootherFrom(cfg, logger)
	if err != nil {
		return Options{}, err
	}
	resolver := possession.NewResolver()
	resolver.MaxDistancePx = cfg.GetPossessionMaxPx()
	resolver.IncludeReferees = cfg.GetPossessionRefs()
	resolver.Logger = logger.WithField("component", "possession")
	return Options{
		DetectEvery:         cfg.GetDetectEvery(),
		MaxFrames:           cfg.GetMaxFrames(),
		BallMaxGap:          cfg.GetBallMaxGap(),
		TeamReclassifyEvery: cfg.GetTeamReclassifyEach(),
		Reid:                ReidConfigFrom(cfg),
		Homography:          model,
		Smoother:            smoother,
		Kinematics: kinematics.NewEstimator(kinematics.Config{
			Window:      cfg.GetSpeedWindow(),
			MaxSpeedKmh: cfg.GetMaxSpeedKmh(),
			MinSpeedKmh: cfg.GetMinSpeedKmh(),
		}, logger),
		Possession: resolver,
		Logger:     logger,
	}, nil
}

// AnalysisOptionsFrom maps thresholds of derived statistics
func AnalysisOptionsFrom(cfg *config.Config) AnalysisOptions {
	opts := DefaultAnalysisOptions()
	opts.Summary = kinematics.SummaryConfig{
		MinDistanceM: cfg.GetMinDistanceM(),
		SprintKmh:    cfg.GetSprintKmh(),
	}
	opts.Foul = foul.DefaultConfig(0)
	opts.Foul.ContactDistanceM = cfg.GetContactDistanceM()
	opts.CohesionEvery = cfg.GetCohesionEvery()
	return opts
}
