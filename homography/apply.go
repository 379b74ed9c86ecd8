package homography

import (
	"github.com/LdDl/kicksense/tracks"
)

// ApplyReport counts records touched by Apply
type ApplyReport struct {
	Transformed int
	Skipped     int
}

// Apply writes metric position of every record of every category from its foot point.
// Records whose pixel cannot be transformed keep nil metric position and are skipped downstream.
func (m *Model) Apply(store *tracks.Store) (ApplyReport, error) {
	report := ApplyReport{}
	if len(m.keyframes) == 0 {
		return report, ErrNoKeyframes
	}
	for _, cat := range tracks.Categories {
		store.ForEach(cat, func(frameIdx int, _ tracks.ID, rec *tracks.Record) {
			metric, err := m.TransformPoint(rec.Position, frameIdx)
			if err != nil {
				report.Skipped++
				return
			}
			rec.SetTransformed(metric)
			report.Transformed++
		})
	}
	return report, nil
}
