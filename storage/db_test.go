package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/LdDl/kicksense/export"
	"github.com/LdDl/kicksense/foul"
	"github.com/LdDl/kicksense/kinematics"
	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kicksense.db")
	db, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestMigrations(t *testing.T) {
	t.Parallel()
	db, path := openTemp(t)
	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
	require.NoError(t, db.Close())

	// reopening an up to date database is a no-op
	again, err := Open(path, nil)
	require.NoError(t, err)
	defer again.Close()
	version, _, err = again.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func sampleStore() *tracks.Store {
	store := tracks.NewStore(tracks.Meta{FPS: 25})
	for f := 0; f < 3; f++ {
		for id, team := range map[tracks.ID]int{1: 1, 2: 3} {
			rec := tracks.NewRecord(mot.NewRect(0, 0, 10, 10), mot.Point{})
			rec.SetTransformed(mot.NewPoint(float64(f), float64(id)))
			rec.SetKinematics(10*float64(f)+float64(id), 0)
			rec.SetTeam(team)
			store.Put(tracks.Players, f, id, rec)
		}
	}
	// no metric position, not stored
	store.Put(tracks.Goalkeepers, 0, 9, tracks.NewRecord(mot.NewRect(0, 0, 10, 10), mot.Point{}))
	return store
}

func TestSaveTracking(t *testing.T) {
	t.Parallel()
	db, _ := openTemp(t)
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	require.NoError(t, db.SaveRun(ctx, Run{MatchID: "m1", Source: "match.mp4", FPS: 25, Width: 1920, Height: 1080, TotalFrames: 3, StartedAt: start}))

	written, err := db.SaveTracking(ctx, "m1", sampleStore(), start, 20, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, written)

	rows, err := db.Tracking(ctx, "m1", 2)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, 0, row.TeamID, "unknown team label is stored as 0")
		assert.InDelta(t, float64(i), row.X, 1e-9)
		assert.True(t, start.Add(time.Duration(i)*40*time.Millisecond).Equal(row.Time), "row %d time %s", i, row.Time)
	}
	assert.False(t, rows[1].IsSprinting)
	assert.True(t, rows[2].IsSprinting)

	rows, err = db.Tracking(ctx, "m1", 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].TeamID)
}

func TestTrackingWriterBatches(t *testing.T) {
	t.Parallel()
	db, _ := openTemp(t)
	ctx := context.Background()
	tw := db.NewTrackingWriter("m2", 2)
	now := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, tw.Add(ctx, TrackingRow{Time: now.Add(time.Duration(i) * time.Second), TrackID: 4}))
	}
	assert.Equal(t, 2, tw.Written())
	require.NoError(t, tw.Flush(ctx))
	assert.Equal(t, 3, tw.Written())
}

func TestSaveStats(t *testing.T) {
	t.Parallel()
	db, _ := openTemp(t)
	ctx := context.Background()
	rows := export.MergeStats([]kinematics.Stats{
		{ID: 3, Class: mot.ClassPlayer, MaxSpeedKmh: 28, DistanceM: 400, Sprints: 2},
		{ID: 8, Class: mot.ClassGoalkeeper, MaxSpeedKmh: 31, DistanceM: 150},
	}, []foul.Risk{foul.NewRisk(8, 0.7)})
	require.NoError(t, db.SaveStats(ctx, "m3", rows))
	// saving again replaces
	require.NoError(t, db.SaveStats(ctx, "m3", rows))

	stored, err := db.Stats(ctx, "m3")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 8, stored[0].TrackID)
	assert.Equal(t, "Goalkeeper", stored[0].Class)
	assert.Equal(t, "Red", stored[0].Card)
	assert.Equal(t, 3, stored[1].TrackID)
	assert.Equal(t, 2, stored[1].Sprints)
	assert.Equal(t, "None", stored[1].Card)
}
