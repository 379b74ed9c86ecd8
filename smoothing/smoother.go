// Package smoothing removes frame-to-frame jitter from metric trajectories before kinematics are derived.
package smoothing

import (
	"context"
	"runtime"

	"github.com/LdDl/kicksense/tracks"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWindow    = 7
	DefaultOrder     = 2
	DefaultMinPoints = 7
)

// Report of one Apply call
type Report struct {
	Smoothed int
	Skipped  int
}

// Smoother applies Filter to X and Y of every non-ball trajectory independently
type Smoother struct {
	filter    Filter
	minPoints int
	workers   int
	logger    *logrus.Entry
}

type Option func(*Smoother)

func WithFilter(f Filter) Option {
	return func(s *Smoother) { s.filter = f }
}

// WithMinPoints sets the shortest trajectory (in transformed samples) which gets smoothed
func WithMinPoints(n int) Option {
	return func(s *Smoother) { s.minPoints = n }
}

func WithWorkers(n int) Option {
	return func(s *Smoother) { s.workers = n }
}

func WithLogger(logger *logrus.Entry) Option {
	return func(s *Smoother) { s.logger = logger }
}

// New creates Smoother. Savitzky-Golay filter (window 7, order 2) is used unless WithFilter is given.
func New(opts ...Option) (*Smoother, error) {
	s := &Smoother{
		minPoints: DefaultMinPoints,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.filter == nil {
		sg, err := NewSavitzkyGolay(DefaultWindow, DefaultOrder)
		if err != nil {
			return nil, err
		}
		s.filter = sg
	}
	if s.logger == nil {
		s.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	s.workers = max(s.workers, 1)
	return s, nil
}

// Apply smooths transformed positions in place. Only records having a transformed position take part
// and each keeps its own frame. Trajectories shorter than the minimal length are left as they are.
func (s *Smoother) Apply(ctx context.Context, store *tracks.Store) (Report, error) {
	var report Report
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, cat := range tracks.Categories {
		if cat == tracks.Ball {
			continue
		}
		for _, samples := range store.Trajectories(cat) {
			records := make([]*tracks.Record, 0, len(samples))
			for _, sample := range samples {
				if sample.Record.PositionTransformed != nil {
					records = append(records, sample.Record)
				}
			}
			if len(records) < s.minPoints {
				report.Skipped++
				continue
			}
			report.Smoothed++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				s.smoothTrajectory(records)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return report, errors.Wrap(err, "smoothing interrupted")
	}
	s.logger.WithFields(logrus.Fields{
		"smoothed": report.Smoothed,
		"skipped":  report.Skipped,
	}).Info("Trajectories smoothed")
	return report, nil
}

func (s *Smoother) smoothTrajectory(records []*tracks.Record) {
	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	for i, rec := range records {
		xs[i] = rec.PositionTransformed.X
		ys[i] = rec.PositionTransformed.Y
	}
	xs = s.filter.Smooth(xs)
	ys = s.filter.Smooth(ys)
	for i, rec := range records {
		rec.PositionTransformed.X = xs[i]
		rec.PositionTransformed.Y = ys[i]
		rec.Stage |= tracks.StageSmoothed
	}
}
