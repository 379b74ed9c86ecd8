package kinematics

import (
	"sort"

	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
)

// Stats is per identity summary of a match
type Stats struct {
	ID          tracks.ID `json:"track_id"`
	Class       mot.Class `json:"class"`
	MaxSpeedKmh float64   `json:"max_speed_kmh"`
	AvgSpeedKmh float64   `json:"avg_speed_kmh"`
	DistanceM   float64   `json:"total_distance_m"`
	// Number of separate runs above SprintKmh
	Sprints int `json:"sprint_count"`
}

// SummaryConfig filters and classifies summaries
type SummaryConfig struct {
	// Identities which covered less are considered ghost tracks and dropped
	MinDistanceM float64
	SprintKmh    float64
}

func DefaultSummaryConfig() SummaryConfig {
	return SummaryConfig{
		MinDistanceM: 5,
		SprintKmh:    20,
	}
}

// Summarize aggregates stamped records of players and goalkeepers. Result is sorted by
// max speed descending, ties by identity.
func Summarize(store *tracks.Store, classes tracks.ClassMap, cfg SummaryConfig) []Stats {
	byID := trajectories(store)
	result := make([]Stats, 0, len(byID))
	for id, samples := range byID {
		st := Stats{ID: id, Class: classes.Get(id)}
		sum := 0.0
		stamped := 0
		sprinting := false
		for _, sample := range samples {
			rec := sample.Record
			if !rec.Stage.Has(tracks.StageKinematics) {
				continue
			}
			speed := *rec.Speed
			stamped++
			sum += speed
			st.MaxSpeedKmh = max(st.MaxSpeedKmh, speed)
			// cumulative over the merged trajectory
			st.DistanceM = *rec.Distance
			if speed > cfg.SprintKmh {
				if !sprinting {
					st.Sprints++
				}
				sprinting = true
			} else {
				sprinting = false
			}
		}
		if stamped == 0 || st.DistanceM < cfg.MinDistanceM {
			continue
		}
		st.AvgSpeedKmh = sum / float64(stamped)
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MaxSpeedKmh != result[j].MaxSpeedKmh {
			return result[i].MaxSpeedKmh > result[j].MaxSpeedKmh
		}
		return result[i].ID < result[j].ID
	})
	return result
}
