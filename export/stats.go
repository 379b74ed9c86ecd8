// Package export writes analysis results as CSV files.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/LdDl/kicksense/foul"
	"github.com/LdDl/kicksense/kinematics"
	"github.com/LdDl/kicksense/tracks"
	"github.com/pkg/errors"
)

// StatsRow is a per identity line of the match report
type StatsRow struct {
	kinematics.Stats
	FoulRisk         float64   `json:"foul_risk"`
	YellowLikelihood float64   `json:"yellow_likelihood"`
	RedLikelihood    float64   `json:"red_likelihood"`
	Card             foul.Card `json:"card_prediction"`
	ContactEvents    int       `json:"contact_events"`
}

// MergeStats joins kinematic summaries with foul risk. Order of stats is kept, identities
// without foul estimation get zero risk.
func MergeStats(stats []kinematics.Stats, risks []foul.Risk) []StatsRow {
	byID := make(map[tracks.ID]foul.Risk, len(risks))
	for _, r := range risks {
		byID[r.ID] = r
	}
	rows := make([]StatsRow, 0, len(stats))
	for _, st := range stats {
		row := StatsRow{Stats: st, Card: foul.CardNone}
		if r, ok := byID[st.ID]; ok {
			row.FoulRisk = r.Risk
			row.YellowLikelihood = r.YellowLikelihood
			row.RedLikelihood = r.RedLikelihood
			row.Card = r.Card
			row.ContactEvents = r.ContactEvents
		}
		rows = append(rows, row)
	}
	return rows
}

var statsHeader = []string{
	"track_id", "class", "max_speed_kmh", "avg_speed_kmh", "total_distance_m", "sprint_count",
	"foul_risk", "yellow_likelihood", "red_likelihood", "card_prediction", "contact_events",
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteStats writes rows with header
func WriteStats(w io.Writer, rows []StatsRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(statsHeader); err != nil {
		return errors.Wrap(err, "can't write header")
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(int(row.ID)),
			row.Class.String(),
			fmtFloat(row.MaxSpeedKmh),
			fmtFloat(row.AvgSpeedKmh),
			fmtFloat(row.DistanceM),
			strconv.Itoa(row.Sprints),
			fmtFloat(row.FoulRisk),
			fmtFloat(row.YellowLikelihood),
			fmtFloat(row.RedLikelihood),
			string(row.Card),
			strconv.Itoa(row.ContactEvents),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "can't write track %d", row.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "can't flush stats")
}
