package tracks

import (
	"bytes"
	"testing"

	"github.com/LdDl/kicksense/mot"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	store := NewStore(Meta{FPS: 25, Width: 1920, Height: 1080, TotalFrames: 10, ProcessedFrames: 3})
	store.Classes.Observe(1, mot.ClassPlayer)
	store.Classes.Observe(2, mot.ClassReferee)

	rec := NewRecord(mot.NewRect(10, 20, 30, 80), mot.Point{X: 1, Y: 1})
	rec.SetTeam(0)
	rec.SetTransformed(mot.Point{X: -3.5, Y: 7})
	rec.SetKinematics(21.3, 5.5)
	rec.HasBall = true
	store.Put(Players, 0, 1, rec)
	store.Put(Referees, 1, 2, NewRecord(mot.NewRect(400, 20, 30, 80), mot.Point{}))
	ball := NewRecord(mot.NewRect(50, 90, 8, 8), mot.Point{})
	ball.Assigned = &Assignment{ID: 1, Category: Players, Distance: 12}
	store.Put(Ball, 2, BallID, ball)

	var buf bytes.Buffer
	require.NoError(t, store.Save(&buf))
	loaded, err := Load(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(store.Meta, loaded.Meta); diff != "" {
		t.Errorf("meta mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(store.Classes, loaded.Classes); diff != "" {
		t.Errorf("classes mismatch (-want +got):\n%s", diff)
	}
	for _, cat := range Categories {
		require.Equal(t, store.Frames(cat), loaded.Frames(cat), cat)
		if diff := cmp.Diff(store.Trajectories(cat), loaded.Trajectories(cat)); diff != "" {
			t.Errorf("%s records mismatch (-want +got):\n%s", cat, diff)
		}
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Parallel()
	_, err := Load(bytes.NewReader([]byte{0xc1, 0x00}))
	require.Error(t, err)
}
