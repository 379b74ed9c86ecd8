package postproc

import (
	"testing"

	"github.com/LdDl/kicksense/mot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tensor builds [attributes][anchors] output from per anchor rows
func tensor(rows [][]float32) []float32 {
	attributes, anchors := len(rows[0]), len(rows)
	data := make([]float32, attributes*anchors)
	for i, row := range rows {
		for a, v := range row {
			data[a*anchors+i] = v
		}
	}
	return data
}

func TestDecodeYOLO(t *testing.T) {
	t.Parallel()
	data := tensor([][]float32{
		// cx, cy, w, h, ball, goalkeeper, player, referee
		{320, 180, 20, 40, 0.01, 0.05, 0.9, 0.1},
		{100, 50, 8, 8, 0.7, 0, 0, 0},
		{10, 10, 4, 4, 0.1, 0.2, 0.3, 0.2},
	})
	got, err := DecodeYOLO(data, 8, 3, 2, 3, 0.4)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, mot.ClassPlayer, got[0].Class)
	assert.InDelta(t, 0.9, got[0].Confidence, 1e-6)
	assert.Equal(t, mot.NewRect(620, 480, 40, 120), got[0].BBox)
	assert.Equal(t, mot.ClassBall, got[1].Class)
	assert.Equal(t, mot.NewRect(192, 138, 16, 24), got[1].BBox)
}

func TestDecodeYOLOShape(t *testing.T) {
	t.Parallel()
	_, err := DecodeYOLO(make([]float32, 10), 4, 2, 1, 1, 0.5)
	assert.Error(t, err)
	_, err = DecodeYOLO(make([]float32, 10), 8, 2, 1, 1, 0.5)
	assert.Error(t, err)
}

func TestLargestShift(t *testing.T) {
	t.Parallel()
	prev := []mot.Point{{X: 5, Y: 10}, {X: 630, Y: 200}, {X: 8, Y: 300}}
	next := []mot.Point{{X: 7, Y: 10}, {X: 622, Y: 194}, {X: 100, Y: 300}}
	// third feature was lost by the flow
	dx, dy, moved := LargestShift(prev, next, []bool{true, true, false}, 5)
	assert.True(t, moved)
	assert.Equal(t, 8.0, dx)
	assert.Equal(t, 6.0, dy)

	_, _, moved = LargestShift(prev[:1], next[:1], nil, 5)
	assert.False(t, moved)
}

func TestNearEdges(t *testing.T) {
	t.Parallel()
	pts := []mot.Point{{X: 3}, {X: 320}, {X: 625}, {X: 19.9}, {X: 620}}
	assert.Equal(t, []mot.Point{{X: 3}, {X: 625}, {X: 19.9}, {X: 620}}, NearEdges(pts, 640, 20))
}
