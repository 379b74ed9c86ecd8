package pipeline

import (
	"context"

	"github.com/LdDl/kicksense/cohesion"
	"github.com/LdDl/kicksense/export"
	"github.com/LdDl/kicksense/foul"
	"github.com/LdDl/kicksense/homography"
	"github.com/LdDl/kicksense/kinematics"
	"github.com/LdDl/kicksense/smoothing"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PostReport collects reports of post-processing stages
type PostReport struct {
	Homography homography.ApplyReport
	Smoothing  smoothing.Report
	Kinematics kinematics.Report
	// Frames with an assigned ball after re-resolution
	Possessions int
}

// PostProcess runs homography, smoothing and kinematics in this order and re-resolves possession
// on the final positions. Nothing is modified when there is no homography keyframe.
func (p *Processor) PostProcess(ctx context.Context) (PostReport, error) {
	var report PostReport
	if p.opts.Homography == nil {
		return report, homography.ErrNoKeyframes
	}
	var err error
	report.Homography, err = p.opts.Homography.Apply(p.store)
	if err != nil {
		return report, errors.Wrap(err, "perspective transform")
	}
	p.logger.WithFields(logrus.Fields{
		"transformed": report.Homography.Transformed,
		"skipped":     report.Homography.Skipped,
	}).Info("Perspective transform applied")

	if p.opts.Smoother != nil {
		report.Smoothing, err = p.opts.Smoother.Apply(ctx, p.store)
		if err != nil {
			return report, err
		}
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.Kinematics, err = p.opts.Kinematics.Apply(p.store)
	if err != nil {
		return report, errors.Wrap(err, "kinematics")
	}

	report.Possessions = p.opts.Possession.ResolveAll(p.store)
	return report, nil
}

// AnalysisOptions tunes derived statistics
type AnalysisOptions struct {
	Summary kinematics.SummaryConfig
	// FPS is taken from the store when zero
	Foul foul.Config
	// Every n-th frame is scored for cohesion
	CohesionEvery int
}

// DefaultAnalysisOptions returns default thresholds, foul FPS is left to the store
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		Summary:       kinematics.DefaultSummaryConfig(),
		Foul:          foul.DefaultConfig(0),
		CohesionEvery: 5,
	}
}

// Analysis is what is derived from the finished store
type Analysis struct {
	Stats    []export.StatsRow
	Risks    []foul.Risk
	Cohesion map[int][]cohesion.Sample
}

// Analyze summarizes kinematics and estimates foul risk and cohesion. PostProcess must be done.
func (p *Processor) Analyze(opts AnalysisOptions) Analysis {
	foulCfg := opts.Foul
	if foulCfg.FPS <= 0 {
		foulCfg.FPS = p.store.Meta.FPS
	}
	stats := kinematics.Summarize(p.store, p.store.Classes, opts.Summary)
	risks := foul.NewEstimator(foulCfg).Estimate(p.store)
	analysis := Analysis{
		Stats:    export.MergeStats(stats, risks),
		Risks:    risks,
		Cohesion: cohesion.Timeline(p.store, opts.CohesionEvery),
	}
	p.logger.WithFields(logrus.Fields{
		"identities": len(analysis.Stats),
		"risks":      len(risks),
		"teams":      len(analysis.Cohesion),
	}).Info("Analysis done")
	return analysis
}
