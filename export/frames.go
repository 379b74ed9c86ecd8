package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/LdDl/kicksense/tracks"
	"github.com/pkg/errors"
)

var framesHeader = []string{
	"frame", "category", "track_id", "team_id", "x_px", "y_px", "x_m", "y_m", "speed_kmh", "distance_m", "has_ball",
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

// WriteFrames writes every record of the store ordered by category, frame and identity.
// Values which were not computed are left empty.
func WriteFrames(w io.Writer, store *tracks.Store) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(framesHeader); err != nil {
		return errors.Wrap(err, "can't write header")
	}
	var writeErr error
	for _, cat := range tracks.Categories {
		store.ForEach(cat, func(frameIdx int, id tracks.ID, rec *tracks.Record) {
			if writeErr != nil {
				return
			}
			team := ""
			if t, ok := rec.Team(); ok {
				team = strconv.Itoa(t)
			}
			var xm, ym *float64
			if rec.PositionTransformed != nil {
				xm, ym = &rec.PositionTransformed.X, &rec.PositionTransformed.Y
			}
			pos := rec.PixelPosition()
			writeErr = cw.Write([]string{
				strconv.Itoa(frameIdx),
				string(cat),
				strconv.Itoa(int(id)),
				team,
				strconv.FormatFloat(pos.X, 'f', 1, 64),
				strconv.FormatFloat(pos.Y, 'f', 1, 64),
				optional(xm),
				optional(ym),
				optional(rec.Speed),
				optional(rec.Distance),
				strconv.FormatBool(rec.HasBall),
			})
		})
	}
	if writeErr != nil {
		return errors.Wrap(writeErr, "can't write frame record")
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "can't flush frames")
}
