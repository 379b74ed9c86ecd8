package tracks

import (
	"testing"

	"github.com/LdDl/kicksense/mot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x, y float64) mot.Rectangle {
	return mot.NewRect(x, y, 20, 60)
}

func TestStoreKeepsChronologicalOrder(t *testing.T) {
	t.Parallel()
	store := NewStore(Meta{FPS: 25})
	for _, frameIdx := range []int{3, 1, 7, 5, 1} {
		store.Put(Players, frameIdx, 1, NewRecord(box(float64(frameIdx), 0), mot.Point{}))
	}
	assert.Equal(t, []int{1, 3, 5, 7}, store.Frames(Players))
	assert.Equal(t, 4, store.Len(Players))

	traj := store.Trajectory(Players, 1)
	require.Len(t, traj, 4)
	for i := 1; i < len(traj); i++ {
		assert.Less(t, traj[i-1].Frame, traj[i].Frame)
	}
}

func TestStorePutReplaces(t *testing.T) {
	t.Parallel()
	store := NewStore(Meta{})
	store.Put(Players, 0, 4, NewRecord(box(0, 0), mot.Point{}))
	store.Put(Players, 0, 4, NewRecord(box(100, 0), mot.Point{}))
	rec, ok := store.Get(Players, 0, 4)
	require.True(t, ok)
	assert.Equal(t, 100.0, rec.BBox.X)
	assert.Len(t, store.Frame(Players, 0), 1)
}

func TestStoreIdentitiesAndForEach(t *testing.T) {
	t.Parallel()
	store := NewStore(Meta{})
	store.Put(Goalkeepers, 2, 9, NewRecord(box(0, 0), mot.Point{}))
	store.Put(Goalkeepers, 1, 3, NewRecord(box(0, 0), mot.Point{}))
	store.Put(Goalkeepers, 2, 3, NewRecord(box(0, 0), mot.Point{}))
	assert.Equal(t, []ID{3, 9}, store.Identities(Goalkeepers))
	assert.Empty(t, store.Identities(Referees))

	var visited [][2]int
	store.ForEach(Goalkeepers, func(frameIdx int, id ID, _ *Record) {
		visited = append(visited, [2]int{frameIdx, int(id)})
	})
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {2, 9}}, visited)

	trajs := store.Trajectories(Goalkeepers)
	assert.Len(t, trajs[3], 2)
	assert.Len(t, trajs[9], 1)
}

func TestNewRecord(t *testing.T) {
	t.Parallel()
	rec := NewRecord(mot.NewRectFromCorners(100, 200, 121, 260), mot.Point{X: 3, Y: -2})
	assert.Equal(t, mot.Point{X: 110, Y: 260}, rec.Position)
	assert.Equal(t, mot.Point{X: 107, Y: 262}, rec.PixelPosition())
	assert.True(t, rec.Stage.Has(StageRaw))
	assert.False(t, rec.Stage.Has(StageTransformed))
	assert.Nil(t, rec.PositionTransformed)

	rec.PositionAdjusted = nil
	assert.Equal(t, rec.Position, rec.PixelPosition())

	rec.SetTransformed(mot.Point{X: 1, Y: 2})
	rec.SetKinematics(12.5, 40)
	assert.True(t, rec.Stage.Has(StageRaw|StageTransformed|StageKinematics))
	assert.Equal(t, 12.5, rec.SpeedOrZero())

	_, ok := rec.Team()
	assert.False(t, ok)
	rec.SetTeam(1)
	team, ok := rec.Team()
	assert.True(t, ok)
	assert.Equal(t, 1, team)
}

func TestCategoryAndClasses(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Ball, CategoryOf(mot.ClassBall))
	assert.Equal(t, Goalkeepers, CategoryOf(mot.ClassGoalkeeper))
	assert.Equal(t, Referees, CategoryOf(mot.ClassReferee))
	assert.Equal(t, Players, CategoryOf(mot.ClassPlayer))
	assert.Equal(t, Players, CategoryOf(mot.Class(11)))

	classes := make(ClassMap)
	assert.Equal(t, mot.ClassPlayer, classes.Get(5))
	classes.Observe(5, mot.ClassPlayer)
	classes.Observe(5, mot.ClassGoalkeeper)
	classes.Observe(5, mot.ClassPlayer)
	assert.Equal(t, mot.ClassGoalkeeper, classes.Get(5))
}
