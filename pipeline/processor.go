package pipeline

import (
	"context"
	"image"
	"math"

	"github.com/LdDl/kicksense/homography"
	"github.com/LdDl/kicksense/kinematics"
	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/possession"
	"github.com/LdDl/kicksense/reid"
	"github.com/LdDl/kicksense/smoothing"
	"github.com/LdDl/kicksense/team"
	"github.com/LdDl/kicksense/tracks"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoSource is returned by Run when processor has no frame source, detector or tracker
	ErrNoSource = errors.New("pipeline: frame source, detector and tracker are required")
)

// Options of Processor. Only the tracking pass needs Source, Detector and Tracker.
type Options struct {
	Source   FrameSource
	Detector Detector
	Tracker  ProvisionalTracker
	// Defaults to StaticCamera
	Motion MotionEstimator
	// Optional, records get no team without it
	Teams team.Classifier

	// Detector runs on every n-th frame, detections are reused in between
	DetectEvery int
	// Stop after this many frames, zero means whole stream
	MaxFrames int
	// Ball filter bridges this many frames without ball detection
	BallMaxGap int
	// Known players are re-classified every n-th frame
	TeamReclassifyEvery int
	// FPS is taken from the source when zero
	Reid reid.Config

	Homography *homography.Model
	Smoother   *smoothing.Smoother
	Kinematics *kinematics.Estimator
	Possession *possession.Resolver

	Logger *logrus.Entry
}

// Processor owns the track store of one match
type Processor struct {
	opts   Options
	logger *logrus.Entry

	store      *tracks.Store
	reid       *reid.Manager
	ball       *mot.BallFilter
	cached     []Detection
	cachedBall []*mot.BoxBlob
	classified map[tracks.ID]int
}

func NewProcessor(opts Options) *Processor {
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.Motion == nil {
		opts.Motion = StaticCamera{}
	}
	opts.DetectEvery = max(opts.DetectEvery, 1)
	opts.TeamReclassifyEvery = max(opts.TeamReclassifyEvery, 1)
	if opts.Possession == nil {
		opts.Possession = possession.NewResolver()
	}
	if opts.Kinematics == nil {
		opts.Kinematics = kinematics.NewEstimator(kinematics.DefaultConfig(), opts.Logger)
	}
	meta := tracks.Meta{}
	if opts.Source != nil {
		meta = opts.Source.Meta()
	}
	return &Processor{
		opts:       opts,
		logger:     opts.Logger.WithField("component", "pipeline"),
		store:      tracks.NewStore(meta),
		ball:       mot.NewBallFilter(opts.BallMaxGap),
		classified: make(map[tracks.ID]int),
	}
}

// Store returns the track store
func (p *Processor) Store() *tracks.Store {
	return p.store
}

// UseStore replaces the track store, e.g. with a snapshot of an earlier tracking pass
func (p *Processor) UseStore(store *tracks.Store) {
	p.store = store
}

// ReidStats returns re-identification counters of the latest Run
func (p *Processor) ReidStats() reid.Stats {
	if p.reid == nil {
		return reid.Stats{}
	}
	return p.reid.Stats()
}

// Run reads the whole source into the store. On cancellation the frames processed so far stay
// in the store and ctx.Err() is returned.
func (p *Processor) Run(ctx context.Context) error {
	if p.opts.Source == nil || p.opts.Detector == nil || p.opts.Tracker == nil {
		return ErrNoSource
	}
	cfg := p.opts.Reid
	if cfg.FPS <= 0 {
		cfg.FPS = p.store.Meta.FPS
	}
	p.reid = reid.NewManager(cfg, p.logger)

	frameIdx := 0
	for ; p.opts.MaxFrames <= 0 || frameIdx < p.opts.MaxFrames; frameIdx++ {
		if err := ctx.Err(); err != nil {
			p.logger.WithField("frames", frameIdx).Warn("Tracking interrupted")
			return err
		}
		frame, ok, err := p.opts.Source.Next()
		if err != nil {
			return errors.Wrapf(err, "can't read frame %d", frameIdx)
		}
		if !ok {
			break
		}
		if err := p.step(frame, frameIdx); err != nil {
			return errors.Wrapf(err, "frame %d", frameIdx)
		}
		p.store.Meta.ProcessedFrames = frameIdx + 1
		if frameIdx%100 == 0 {
			p.logger.WithFields(logrus.Fields{
				"frame":      frameIdx,
				"total":      p.store.Meta.TotalFrames,
				"identities": p.reid.Len(),
			}).Debug("Tracking progress")
		}
	}
	stats := p.reid.Stats()
	p.logger.WithFields(logrus.Fields{
		"frames":    frameIdx,
		"minted":    stats.Minted,
		"rematched": stats.Rematched,
		"ambiguous": stats.Ambiguous,
		"pruned":    stats.Pruned,
	}).Info("Tracking complete")
	return nil
}

func (p *Processor) step(frame image.Image, frameIdx int) error {
	dx, dy, err := p.opts.Motion.Estimate(frame)
	if err != nil {
		p.logger.WithError(err).WithField("frame", frameIdx).Warn("Can't estimate camera motion")
		dx, dy = 0, 0
	}
	shift := mot.NewPoint(dx, dy)

	if frameIdx%p.opts.DetectEvery == 0 {
		detections, err := p.opts.Detector.Detect(frame)
		if err != nil {
			return errors.Wrap(err, "detection")
		}
		p.cached = p.cached[:0]
		p.cachedBall = p.cachedBall[:0]
		for _, det := range detections {
			if det.Class == mot.ClassBall {
				p.cachedBall = append(p.cachedBall, mot.NewBoxBlob(det.BBox, det.Class, det.Confidence))
				continue
			}
			p.cached = append(p.cached, det)
		}
	}

	if bbox, state := p.ball.Step(p.cachedBall); state != mot.BallMissing {
		p.store.Put(tracks.Ball, frameIdx, tracks.BallID, tracks.NewRecord(bbox, shift))
	}

	provisional, err := p.opts.Tracker.Update(p.cached, frame)
	if err != nil {
		return errors.Wrap(err, "provisional tracking")
	}
	seen := make(map[uuid.UUID]struct{}, len(provisional))
	for _, track := range provisional {
		if !track.Confirmed {
			continue
		}
		seen[track.ID] = struct{}{}
		p.observe(frame, frameIdx, track, shift)
	}
	p.reid.Cleanup(seen, frameIdx)
	p.opts.Possession.Resolve(p.store, frameIdx)
	return nil
}

// observe stores confirmed provisional track under its persistent identity
func (p *Processor) observe(frame image.Image, frameIdx int, track ProvisionalTrack, shift mot.Point) {
	bbox := track.BBox
	if p.store.Meta.Width > 0 && p.store.Meta.Height > 0 {
		if clamped, ok := bbox.Clamp(p.store.Meta.Width, p.store.Meta.Height); ok {
			bbox = clamped
		}
	}
	id := p.reid.Assign(track.ID, frame, bbox, bbox.FootPoint(), frameIdx)
	class := p.store.Classes.Observe(id, p.nearestClass(bbox, id))
	cat := tracks.CategoryOf(class)
	rec := tracks.NewRecord(bbox, shift)
	p.store.Put(cat, frameIdx, id, rec)

	if p.opts.Teams == nil {
		return
	}
	if cat == tracks.Referees {
		p.opts.Teams.Forget(id)
		delete(p.classified, id)
		return
	}
	label, known := p.classified[id]
	if !known || frameIdx%p.opts.TeamReclassifyEvery == 0 {
		p.opts.Teams.AddSample(frame, bbox, id)
		if predicted, ok := p.opts.Teams.Predict(frame, bbox, id); ok {
			label, known = predicted, true
			p.classified[id] = label
		}
	}
	if known {
		rec.SetTeam(label)
	}
}

// nearestClass takes class of the cached detection closest to the box. Identity keeps its
// known class (or becomes a player) when there is nothing detected.
func (p *Processor) nearestClass(bbox mot.Rectangle, id tracks.ID) mot.Class {
	center := bbox.Center()
	best := -1
	bestDist := math.Inf(1)
	for i, det := range p.cached {
		if d := det.BBox.Center().DistanceTo(center); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		return p.cached[best].Class
	}
	return p.store.Classes.Get(id)
}
