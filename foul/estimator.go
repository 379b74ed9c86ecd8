// Package foul scores physical contacts between opponents and turns them into card likelihoods.
//
// It is a heuristic: two players of different teams closer than the contact distance in
// consecutive frames form a contact event. Each frame of the event is scored from proximity,
// speed of the faster player and the harder deceleration; the event keeps its peak score.
package foul

import (
	"math"
	"sort"

	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
)

// Card is a predicted referee decision
type Card string

const (
	CardNone   Card = "None"
	CardYellow Card = "Yellow"
	CardRed    Card = "Red"
)

// Config of Estimator
type Config struct {
	FPS float64
	// Opponents closer than this are in contact (meters)
	ContactDistanceM float64
	// Contact near the ball gets boosted (meters)
	BallDistanceM float64
	// Speed of the faster player mapping to full impact
	SpeedRefKmh float64
	// Deceleration mapping to full score, km/h per second
	DecelRefKmhPerS float64
	// Contacts shorter or equal to this number of frames are treated as jitter
	MinEventFrames int
}

func DefaultConfig(fps float64) Config {
	return Config{
		FPS:              fps,
		ContactDistanceM: 1.2,
		BallDistanceM:    2.0,
		SpeedRefKmh:      25.0,
		DecelRefKmhPerS:  6.0,
		MinEventFrames:   2,
	}
}

// Risk is per identity result
type Risk struct {
	ID               tracks.ID `json:"track_id"`
	Risk             float64   `json:"foul_risk"`
	YellowLikelihood float64   `json:"yellow_likelihood"`
	RedLikelihood    float64   `json:"red_likelihood"`
	Card             Card      `json:"card_prediction"`
	ContactEvents    int       `json:"contact_events"`
	FramesSeen       int       `json:"frames_seen"`
}

// NewRisk maps a peak contact score to risk and card likelihoods
func NewRisk(id tracks.ID, peak float64) Risk {
	risk := math.Min(1, peak/0.8)
	r := Risk{
		ID:               id,
		Risk:             risk,
		YellowLikelihood: clamp01((risk - 0.4) / 0.4),
		RedLikelihood:    clamp01((risk - 0.75) / 0.25),
		Card:             CardNone,
	}
	switch {
	case risk >= 0.8:
		r.Card = CardRed
	case risk >= 0.5:
		r.Card = CardYellow
	}
	return r
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

type Estimator struct {
	cfg Config
	fps float64
}

func NewEstimator(cfg Config) *Estimator {
	return &Estimator{
		cfg: cfg,
		fps: math.Max(1, math.Trunc(cfg.FPS)),
	}
}

type pair [2]tracks.ID

func newPair(a, b tracks.ID) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a, b}
}

type contact struct {
	peak   float64
	frames int
}

type event struct {
	pair pair
	peak float64
}

type observed struct {
	id        tracks.ID
	team      int
	hasTeam   bool
	pos       mot.Point
	speed     float64
	accel     float64
	ballClose bool
}

// Estimate scores every player and goalkeeper having metric positions. Speeds come from kinematics,
// missing speed counts as zero. Result is sorted by identity.
func (e *Estimator) Estimate(store *tracks.Store) []Risk {
	groups := []tracks.Category{tracks.Players, tracks.Goalkeepers}
	frameSet := make(map[int]struct{})
	for _, cat := range groups {
		for _, f := range store.Frames(cat) {
			frameSet[f] = struct{}{}
		}
	}
	frames := make([]int, 0, len(frameSet))
	for f := range frameSet {
		frames = append(frames, f)
	}
	sort.Ints(frames)

	framesSeen := make(map[tracks.ID]int)
	prevSpeed := make(map[tracks.ID]float64)
	active := make(map[pair]*contact)
	var finished []event

	closeEvent := func(p pair, c *contact) {
		if c.frames > e.cfg.MinEventFrames {
			finished = append(finished, event{pair: p, peak: c.peak})
		}
	}

	for _, frameIdx := range frames {
		var ballPos *mot.Point
		if ball, ok := store.Get(tracks.Ball, frameIdx, tracks.BallID); ok {
			ballPos = ball.PositionTransformed
		}

		people := make([]observed, 0, 32)
		for _, cat := range groups {
			frame := store.Frame(cat, frameIdx)
			ids := make([]tracks.ID, 0, len(frame))
			for id := range frame {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			for _, id := range ids {
				rec := frame[id]
				if rec.PositionTransformed == nil {
					continue
				}
				framesSeen[id]++
				speed := rec.SpeedOrZero()
				accel := 0.0
				if prev, ok := prevSpeed[id]; ok {
					accel = (speed - prev) * e.fps
				}
				prevSpeed[id] = speed
				team, hasTeam := rec.Team()
				pos := *rec.PositionTransformed
				ballClose := rec.HasBall
				if ballPos != nil && pos.DistanceTo(*ballPos) <= e.cfg.BallDistanceM {
					ballClose = true
				}
				people = append(people, observed{
					id: id, team: team, hasTeam: hasTeam, pos: pos,
					speed: speed, accel: accel, ballClose: ballClose,
				})
			}
		}

		current := make(map[pair]struct{})
		for i := 0; i < len(people); i++ {
			for j := i + 1; j < len(people); j++ {
				p1, p2 := people[i], people[j]
				if !p1.hasTeam || !p2.hasTeam || p1.team == p2.team {
					continue
				}
				d := p1.pos.DistanceTo(p2.pos)
				if d > e.cfg.ContactDistanceM {
					continue
				}
				key := newPair(p1.id, p2.id)
				current[key] = struct{}{}
				score := e.frameScore(d, p1, p2)
				if c, ok := active[key]; ok {
					c.peak = math.Max(c.peak, score)
					c.frames++
				} else {
					active[key] = &contact{peak: score, frames: 1}
				}
			}
		}
		for key, c := range active {
			if _, ok := current[key]; ok {
				continue
			}
			closeEvent(key, c)
			delete(active, key)
		}
	}
	for key, c := range active {
		closeEvent(key, c)
	}

	peaks := make(map[tracks.ID]float64)
	events := make(map[tracks.ID]int)
	for _, ev := range finished {
		for _, id := range ev.pair {
			peaks[id] = math.Max(peaks[id], ev.peak)
			events[id]++
		}
	}

	result := make([]Risk, 0, len(framesSeen))
	for id, seen := range framesSeen {
		r := NewRisk(id, peaks[id])
		r.ContactEvents = events[id]
		r.FramesSeen = seen
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (e *Estimator) frameScore(d float64, p1, p2 observed) float64 {
	proximity := math.Max(0, 1-d/e.cfg.ContactDistanceM)
	impact := math.Min(1, math.Max(p1.speed, p2.speed)/e.cfg.SpeedRefKmh)
	decel := math.Min(1, math.Max(0, math.Max(-p1.accel, -p2.accel))/e.cfg.DecelRefKmhPerS)
	score := 0.4*proximity + 0.4*impact + 0.2*decel
	if p1.ballClose || p2.ballClose {
		score *= 1.2
	}
	return score
}
