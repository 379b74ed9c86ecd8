// Package cohesion measures how compact a team is on the pitch.
package cohesion

import (
	"math"
	"sort"

	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
)

const (
	// MaxIndex caps the index, reached by perfectly compact (degenerate) shapes
	MaxIndex = 100.0
	// MinPlayers needed to form a shape
	MinPlayers = 3
)

// Score of one team in one frame
type Score struct {
	Index       float64 `json:"cohesion_index"`
	HullArea    float64 `json:"convex_hull_area"`
	AvgDistance float64 `json:"avg_distance"`
	Players     int     `json:"num_players"`
}

// Compute scores metric positions of a team. ok is false for fewer than MinPlayers positions.
// Index is the mean of 1000/area and 1000/average pairwise distance capped by MaxIndex.
func Compute(positions []mot.Point) (Score, bool) {
	if len(positions) < MinPlayers {
		return Score{}, false
	}
	area := HullArea(positions)
	avg := averagePairwise(positions)
	areaScore, distScore := MaxIndex, MaxIndex
	if area > 0 {
		areaScore = 1000 / area
	}
	if avg > 0 {
		distScore = 1000 / avg
	}
	return Score{
		Index:       math.Min((areaScore+distScore)/2, MaxIndex),
		HullArea:    area,
		AvgDistance: avg,
		Players:     len(positions),
	}, true
}

func averagePairwise(positions []mot.Point) float64 {
	sum := 0.0
	n := 0
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			sum += positions[i].DistanceTo(positions[j])
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func cross(o, a, b mot.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// HullArea returns area of convex hull (Andrew's monotone chain). Collinear or repeated
// points give zero.
func HullArea(positions []mot.Point) float64 {
	if len(positions) < 3 {
		return 0
	}
	pts := append([]mot.Point(nil), positions...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	hull := make([]mot.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]
	if len(hull) < 3 {
		return 0
	}
	// shoelace
	area := 0.0
	for i := range hull {
		j := (i + 1) % len(hull)
		area += hull[i].X*hull[j].Y - hull[j].X*hull[i].Y
	}
	return math.Abs(area) / 2
}

// Sample is a team score at a frame
type Sample struct {
	Frame int
	Score Score
}

// Timeline scores every team at every n-th frame of players. Team comes from the record,
// records without team or metric position are ignored.
func Timeline(store *tracks.Store, every int) map[int][]Sample {
	every = max(every, 1)
	timeline := make(map[int][]Sample)
	frames := store.Frames(tracks.Players)
	for i := 0; i < len(frames); i += every {
		frameIdx := frames[i]
		byTeam := make(map[int][]mot.Point)
		for _, rec := range store.Frame(tracks.Players, frameIdx) {
			team, ok := rec.Team()
			if !ok || rec.PositionTransformed == nil {
				continue
			}
			byTeam[team] = append(byTeam[team], *rec.PositionTransformed)
		}
		for team, positions := range byTeam {
			if score, ok := Compute(positions); ok {
				timeline[team] = append(timeline[team], Sample{Frame: frameIdx, Score: score})
			}
		}
	}
	return timeline
}
