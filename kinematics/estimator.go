// Package kinematics derives windowed speed and cumulative distance from metric trajectories.
package kinematics

import (
	"sort"

	"github.com/LdDl/kicksense/tracks"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrBadFPS = errors.New("fps must be positive")
)

// Categories which get kinematics. Ball and referees are never measured.
var Categories = []tracks.Category{tracks.Players, tracks.Goalkeepers}

// Config of Estimator
type Config struct {
	// Number of trajectory samples spanned by one speed window
	Window int
	// Window speed above this value is treated as a tracking glitch: speed and distance are zeroed
	MaxSpeedKmh float64
	// Window speed below this value is treated as standing still. Zero disables the floor.
	MinSpeedKmh float64
}

func DefaultConfig() Config {
	return Config{
		Window:      5,
		MaxSpeedKmh: 40,
	}
}

// Report of one Apply call
type Report struct {
	Identities int
	Windows    int
	// Windows dropped by MaxSpeedKmh
	Clamped int
	// Windows zeroed by MinSpeedKmh
	Floored int
}

type Estimator struct {
	cfg    Config
	logger *logrus.Entry
}

// NewEstimator creates estimator. Logger may be nil.
func NewEstimator(cfg Config, logger *logrus.Entry) *Estimator {
	if cfg.Window < 1 {
		cfg.Window = 1
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Estimator{
		cfg:    cfg,
		logger: logger.WithField("component", "kinematics"),
	}
}

// Apply stamps Speed (km/h) and Distance (m, cumulative) on every record of players and goalkeepers
// which has a transformed position. Both categories form one trajectory per identity.
//
// Trajectory samples are cut into windows of cfg.Window steps sharing their endpoints, so the
// cumulative distance never decreases. The window speed is the straight line distance between
// endpoints over the elapsed time.
func (e *Estimator) Apply(store *tracks.Store) (Report, error) {
	var report Report
	fps := store.Meta.FPS
	if fps <= 0 {
		return report, ErrBadFPS
	}
	byID := trajectories(store)
	ids := make([]tracks.ID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		samples := measurable(byID[id])
		if len(samples) == 0 {
			continue
		}
		report.Identities++
		e.applyTrajectory(samples, fps, &report)
	}
	e.logger.WithFields(logrus.Fields{
		"identities": report.Identities,
		"windows":    report.Windows,
		"clamped":    report.Clamped,
		"floored":    report.Floored,
	}).Info("Kinematics estimated")
	return report, nil
}

// trajectories merges samples of every measured category by identity, ordered by frame. An identity
// whose class is refined (player to goalkeeper) keeps one continuous path.
func trajectories(store *tracks.Store) map[tracks.ID][]tracks.Sample {
	byID := make(map[tracks.ID][]tracks.Sample)
	for _, cat := range Categories {
		for id, samples := range store.Trajectories(cat) {
			byID[id] = append(byID[id], samples...)
		}
	}
	for _, samples := range byID {
		sort.SliceStable(samples, func(i, j int) bool {
			return samples[i].Frame < samples[j].Frame
		})
	}
	return byID
}

func measurable(samples []tracks.Sample) []tracks.Sample {
	out := samples[:0:0]
	for _, sample := range samples {
		if sample.Record.PositionTransformed != nil {
			out = append(out, sample)
		}
	}
	return out
}

func (e *Estimator) applyTrajectory(samples []tracks.Sample, fps float64, report *Report) {
	n := len(samples)
	if n == 1 {
		samples[0].Record.SetKinematics(0, 0)
		return
	}
	total := 0.0
	for start := 0; start < n-1; start += e.cfg.Window {
		last := min(start+e.cfg.Window, n-1)
		first := samples[start]
		end := samples[last]
		distance := first.Record.PositionTransformed.DistanceTo(*end.Record.PositionTransformed)
		elapsed := float64(end.Frame-first.Frame) / fps
		speed := 0.0
		if elapsed > 0 {
			speed = distance / elapsed * 3.6
		}
		switch {
		case speed > e.cfg.MaxSpeedKmh:
			speed, distance = 0, 0
			report.Clamped++
		case e.cfg.MinSpeedKmh > 0 && speed < e.cfg.MinSpeedKmh:
			speed, distance = 0, 0
			report.Floored++
		}
		report.Windows++
		total += distance
		// endpoint belongs to the next window unless it is the final sample
		stop := last
		if last == n-1 {
			stop = n
		}
		for i := start; i < stop; i++ {
			samples[i].Record.SetKinematics(speed, total)
		}
	}
}
