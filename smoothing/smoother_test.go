package smoothing

import (
	"context"
	"testing"

	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavitzkyGolayCoefficients(t *testing.T) {
	t.Parallel()
	sg, err := NewSavitzkyGolay(7, 2)
	require.NoError(t, err)
	expected := []float64{-2, 3, 6, 7, 6, 3, -2}
	coeffs := sg.Coefficients()
	require.Len(t, coeffs, len(expected))
	for i := range expected {
		assert.InDelta(t, expected[i]/21.0, coeffs[i], 1e-9, "coefficient %d", i)
	}

	_, err = NewSavitzkyGolay(6, 2)
	assert.Error(t, err)
	_, err = NewSavitzkyGolay(5, 5)
	assert.Error(t, err)
}

func TestFiltersKeepLinearMotion(t *testing.T) {
	t.Parallel()
	sg, err := NewSavitzkyGolay(7, 2)
	require.NoError(t, err)
	filters := map[string]Filter{
		"moving average": MovingAverage{Window: 5},
		"savitzky-golay": sg,
	}
	values := make([]float64, 15)
	for i := range values {
		values[i] = 3.0 + 0.5*float64(i)
	}
	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			out := filter.Smooth(values)
			require.Len(t, out, len(values))
			for i := range values {
				assert.InDelta(t, values[i], out[i], 1e-9)
			}
		})
	}
}

func TestMovingAverageEdges(t *testing.T) {
	t.Parallel()
	out := MovingAverage{Window: 3}.Smooth([]float64{0, 3, 0, 3})
	assert.Equal(t, []float64{0, 1, 2, 3}, out)
	assert.Empty(t, MovingAverage{Window: 3}.Smooth(nil))
}

func jitteryStore(frames int) *tracks.Store {
	store := tracks.NewStore(tracks.Meta{FPS: 25})
	for f := 0; f < frames; f++ {
		jitter := 0.4
		if f%2 == 1 {
			jitter = -0.4
		}
		for _, cat := range []tracks.Category{tracks.Players, tracks.Ball} {
			rec := tracks.NewRecord(mot.NewRect(float64(f), 0, 10, 20), mot.Point{})
			rec.SetTransformed(mot.NewPoint(float64(f)*0.2, 10+jitter))
			store.Put(cat, f, 1, rec)
		}
	}
	short := tracks.NewRecord(mot.NewRect(0, 0, 10, 20), mot.Point{})
	short.SetTransformed(mot.NewPoint(1, 1+0.4))
	store.Put(tracks.Players, 0, 2, short)
	return store
}

func TestSmootherApply(t *testing.T) {
	t.Parallel()
	store := jitteryStore(20)
	smoother, err := New(WithWorkers(2))
	require.NoError(t, err)

	report, err := smoother.Apply(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Smoothed)
	assert.Equal(t, 1, report.Skipped)

	traj := store.Trajectory(tracks.Players, 1)
	require.Len(t, traj, 20)
	for i, sample := range traj {
		assert.Equal(t, i, sample.Frame)
		assert.True(t, sample.Record.Stage.Has(tracks.StageSmoothed|tracks.StageTransformed))
		assert.InDelta(t, float64(i)*0.2, sample.Record.PositionTransformed.X, 1e-9)
		if i >= 3 && i < 17 {
			assert.Less(t, abs(sample.Record.PositionTransformed.Y-10), 0.4)
		}
	}

	short, ok := store.Get(tracks.Players, 0, 2)
	require.True(t, ok)
	assert.InDelta(t, 1.4, short.PositionTransformed.Y, 1e-12)
	assert.False(t, short.Stage.Has(tracks.StageSmoothed))

	ball, ok := store.Get(tracks.Ball, 1, 1)
	require.True(t, ok)
	assert.InDelta(t, 9.6, ball.PositionTransformed.Y, 1e-12)
}

func TestSmootherCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	smoother, err := New(WithFilter(MovingAverage{Window: 3}), WithMinPoints(3))
	require.NoError(t, err)
	_, err = smoother.Apply(ctx, jitteryStore(10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSmootherKeepsIdentitiesApart(t *testing.T) {
	t.Parallel()
	store := tracks.NewStore(tracks.Meta{FPS: 25})
	put := func(id tracks.ID, f int, x, y float64) {
		rec := tracks.NewRecord(mot.NewRect(float64(f), 0, 10, 20), mot.Point{})
		rec.SetTransformed(mot.NewPoint(x, y))
		store.Put(tracks.Players, f, id, rec)
	}
	// two overlapping runners 60 m apart
	for f := 0; f < 12; f++ {
		jitter := 0.4
		if f%2 == 1 {
			jitter = -0.4
		}
		put(1, f, 0.5*float64(f), 10+jitter)
		put(2, f, 60+0.5*float64(f), 50-jitter)
	}
	// a runner lost for a few frames twice
	gapped := []int{0, 1, 2, 5, 6, 9, 10, 11}
	for _, f := range gapped {
		put(3, f, 30+0.5*float64(f), 30)
	}

	smoother, err := New()
	require.NoError(t, err)
	report, err := smoother.Apply(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Smoothed)
	assert.Zero(t, report.Skipped)

	bounds := map[tracks.ID][4]float64{
		1: {0, 5.5, 9.6, 10.4},
		2: {60, 65.5, 49.6, 50.4},
		3: {30, 35.5, 30, 30},
	}
	for id, b := range bounds {
		for _, sample := range store.Trajectory(tracks.Players, id) {
			pos := sample.Record.PositionTransformed
			require.NotNil(t, pos)
			assert.True(t, sample.Record.Stage.Has(tracks.StageSmoothed))
			assert.InDelta(t, (b[0]+b[1])/2, pos.X, (b[1]-b[0])/2+1, "identity %d frame %d", id, sample.Frame)
			assert.InDelta(t, (b[2]+b[3])/2, pos.Y, (b[3]-b[2])/2+1, "identity %d frame %d", id, sample.Frame)
		}
	}

	traj := store.Trajectory(tracks.Players, 3)
	require.Len(t, traj, len(gapped))
	for i, sample := range traj {
		assert.Equal(t, gapped[i], sample.Frame)
	}
	_, ok := store.Get(tracks.Players, 3, 3)
	assert.False(t, ok)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
