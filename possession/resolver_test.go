package possession

import (
	"testing"

	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// person puts a record whose foot point is (x, y)
func person(store *tracks.Store, cat tracks.Category, frameIdx int, id tracks.ID, x, y float64) *tracks.Record {
	rec := tracks.NewRecord(mot.NewRect(x-10, y-50, 20, 50), mot.Point{})
	store.Put(cat, frameIdx, id, rec)
	return rec
}

func TestNearestPlayerGetsBall(t *testing.T) {
	t.Parallel()
	store := tracks.NewStore(tracks.Meta{FPS: 25})
	near := person(store, tracks.Players, 0, 3, 130, 200)
	far := person(store, tracks.Players, 0, 4, 300, 200)
	ball := person(store, tracks.Ball, 0, tracks.BallID, 100, 200)

	resolver := NewResolver()
	holder, ok := resolver.Resolve(store, 0)
	require.True(t, ok)
	assert.Equal(t, tracks.ID(3), holder)
	assert.True(t, near.HasBall)
	assert.False(t, far.HasBall)
	require.NotNil(t, ball.Assigned)
	assert.Equal(t, tracks.Assignment{ID: 3, Category: tracks.Players, Distance: 30}, *ball.Assigned)
}

func TestThresholdAndReferees(t *testing.T) {
	t.Parallel()
	store := tracks.NewStore(tracks.Meta{FPS: 25})
	ref := person(store, tracks.Referees, 0, 9, 105, 200)
	player := person(store, tracks.Players, 0, 2, 150, 200)
	person(store, tracks.Ball, 0, tracks.BallID, 100, 200)

	resolver := NewResolver()
	holder, ok := resolver.Resolve(store, 0)
	require.True(t, ok)
	assert.Equal(t, tracks.ID(2), holder)
	assert.False(t, ref.HasBall)

	resolver.IncludeReferees = true
	holder, ok = resolver.Resolve(store, 0)
	require.True(t, ok)
	assert.Equal(t, tracks.ID(9), holder)
	assert.True(t, ref.HasBall)
	assert.False(t, player.HasBall, "previous holder must be cleared")

	resolver = &Resolver{MaxDistancePx: 40}
	_, ok = resolver.Resolve(store, 0)
	assert.False(t, ok)
	assert.False(t, player.HasBall)
	ball, _ := store.Get(tracks.Ball, 0, tracks.BallID)
	assert.Nil(t, ball.Assigned)
}

func TestStaleFlagsCleared(t *testing.T) {
	t.Parallel()
	store := tracks.NewStore(tracks.Meta{FPS: 25})
	var stale []*tracks.Record
	for i, cat := range tracks.Categories {
		if cat == tracks.Ball {
			continue
		}
		rec := person(store, cat, 0, tracks.ID(i+1), 100+50*float64(i), 200)
		rec.HasBall = true
		stale = append(stale, rec)
	}
	require.Len(t, stale, 3)

	// no ball in the frame and referees are not eligible, still nobody keeps a flag
	_, ok := NewResolver().Resolve(store, 0)
	assert.False(t, ok)
	for _, rec := range stale {
		assert.False(t, rec.HasBall)
	}
}

func TestCameraCompensatedPositions(t *testing.T) {
	t.Parallel()
	store := tracks.NewStore(tracks.Meta{FPS: 25})
	shift := mot.NewPoint(40, 0)
	rec := tracks.NewRecord(mot.NewRect(150, 150, 20, 50), shift) // adjusted foot (120, 200)
	store.Put(tracks.Goalkeepers, 0, 1, rec)
	ball := tracks.NewRecord(mot.NewRect(55, 190, 10, 10), shift) // adjusted foot (20, 200)
	store.Put(tracks.Ball, 0, tracks.BallID, ball)

	_, ok := NewResolver().Resolve(store, 0)
	assert.False(t, ok)

	rec.PositionAdjusted = nil // raw foot (160, 200) vs (20, 200) is still too far
	_, ok = NewResolver().Resolve(store, 0)
	assert.False(t, ok)

	ball.PositionAdjusted = nil
	ball.Position = mot.NewPoint(100, 200)
	holder, ok := NewResolver().Resolve(store, 0)
	require.True(t, ok)
	assert.Equal(t, tracks.ID(1), holder)
	assert.Equal(t, tracks.Goalkeepers, ball.Assigned.Category)
}

func TestResolveAll(t *testing.T) {
	t.Parallel()
	store := tracks.NewStore(tracks.Meta{FPS: 25})
	for f := 0; f < 5; f++ {
		person(store, tracks.Players, f, 1, 100, 200)
	}
	person(store, tracks.Ball, 1, tracks.BallID, 110, 200)
	person(store, tracks.Ball, 3, tracks.BallID, 400, 200)
	assert.Equal(t, 1, NewResolver().ResolveAll(store))

	rec, _ := store.Get(tracks.Players, 1, 1)
	assert.True(t, rec.HasBall)
	rec, _ = store.Get(tracks.Players, 3, 1)
	assert.False(t, rec.HasBall)
	_, ok := NewResolver().Resolve(store, 4)
	assert.False(t, ok)
}
