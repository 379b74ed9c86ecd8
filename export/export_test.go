package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/LdDl/kicksense/foul"
	"github.com/LdDl/kicksense/kinematics"
	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStats(t *testing.T) {
	t.Parallel()
	stats := []kinematics.Stats{
		{ID: 7, Class: mot.ClassPlayer, MaxSpeedKmh: 31.256, AvgSpeedKmh: 12, DistanceM: 850.5, Sprints: 3},
		{ID: 1, Class: mot.ClassGoalkeeper, MaxSpeedKmh: 18, AvgSpeedKmh: 4.5, DistanceM: 120},
	}
	risks := []foul.Risk{yellowRisk(7)}
	rows := MergeStats(stats, risks)
	require.Len(t, rows, 2)
	assert.Equal(t, foul.CardYellow, rows[0].Card)
	assert.Equal(t, foul.CardNone, rows[1].Card)

	var buf bytes.Buffer
	require.NoError(t, WriteStats(&buf, rows))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, statsHeader, records[0])
	assert.Equal(t, []string{"7", "Player", "31.26", "12.00", "850.50", "3", "0.50", "0.25", "0.00", "Yellow", "1"}, records[1])
	assert.Equal(t, "Goalkeeper", records[2][1])
}

// yellowRisk builds a yellow card level risk with one contact
func yellowRisk(id tracks.ID) foul.Risk {
	r := foul.NewRisk(id, 0.4)
	r.ContactEvents = 1
	return r
}

func TestWriteFrames(t *testing.T) {
	t.Parallel()
	store := tracks.NewStore(tracks.Meta{FPS: 25})
	rec := tracks.NewRecord(mot.NewRect(100, 100, 20, 60), mot.NewPoint(10, 0))
	rec.SetTransformed(mot.NewPoint(12.5, -3.25))
	rec.SetKinematics(14.4, 2)
	rec.SetTeam(1)
	rec.HasBall = true
	store.Put(tracks.Players, 3, 5, rec)
	store.Put(tracks.Ball, 3, tracks.BallID, tracks.NewRecord(mot.NewRect(120, 150, 6, 6), mot.Point{}))

	var buf bytes.Buffer
	require.NoError(t, WriteFrames(&buf, store))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(framesHeader, ","), lines[0])
	assert.Equal(t, "3,players,5,1,100.0,160.0,12.500,-3.250,14.400,2.000,true", lines[1])
	assert.Equal(t, "3,ball,-1,,123.0,156.0,,,,,false", lines[2])
}
