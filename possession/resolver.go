// Package possession assigns the ball of a frame to the nearest person.
package possession

import (
	"math"
	"sort"

	"github.com/LdDl/kicksense/tracks"
	"github.com/sirupsen/logrus"
)

const DefaultMaxDistancePx = 70.0

// Resolver finds the ball holder by pixel distance between camera compensated foot points
type Resolver struct {
	// Ball farther than this from everybody is loose
	MaxDistancePx float64
	// Referees are ignored unless set
	IncludeReferees bool
	Logger          *logrus.Entry
}

func NewResolver() *Resolver {
	return &Resolver{MaxDistancePx: DefaultMaxDistancePx}
}

func (r *Resolver) groups() []tracks.Category {
	groups := []tracks.Category{tracks.Goalkeepers, tracks.Players}
	if r.IncludeReferees {
		groups = append(groups, tracks.Referees)
	}
	return groups
}

// Resolve assigns the ball of frameIdx. HasBall flags of the frame are cleared first, so calling
// it again after positions changed gives a consistent result. Returns holder identity if any.
func (r *Resolver) Resolve(store *tracks.Store, frameIdx int) (tracks.ID, bool) {
	for _, cat := range tracks.Categories {
		if cat == tracks.Ball {
			continue
		}
		for _, rec := range store.Frame(cat, frameIdx) {
			rec.HasBall = false
		}
	}
	ball, ok := store.Get(tracks.Ball, frameIdx, tracks.BallID)
	if !ok {
		return 0, false
	}
	ball.Assigned = nil
	ballPos := ball.PixelPosition()

	var (
		holder     *tracks.Record
		assignment tracks.Assignment
	)
	best := math.Inf(1)
	for _, cat := range r.groups() {
		frame := store.Frame(cat, frameIdx)
		ids := make([]tracks.ID, 0, len(frame))
		for id := range frame {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			rec := frame[id]
			dist := ballPos.DistanceTo(rec.PixelPosition())
			if dist < best {
				best = dist
				holder = rec
				assignment = tracks.Assignment{ID: id, Category: cat, Distance: dist}
			}
		}
	}
	if holder == nil || best > r.MaxDistancePx {
		return 0, false
	}
	holder.HasBall = true
	ball.Assigned = &assignment
	return assignment.ID, true
}

// ResolveAll resolves every frame having a ball record and returns number of frames with a holder
func (r *Resolver) ResolveAll(store *tracks.Store) int {
	assigned := 0
	frames := store.Frames(tracks.Ball)
	for _, frameIdx := range frames {
		if _, ok := r.Resolve(store, frameIdx); ok {
			assigned++
		}
	}
	if r.Logger != nil {
		r.Logger.WithFields(logrus.Fields{
			"ball_frames": len(frames),
			"assigned":    assigned,
		}).Info("Ball possession resolved")
	}
	return assigned
}
