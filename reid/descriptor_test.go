package reid

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/LdDl/kicksense/mot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	grass = color.RGBA{R: 40, G: 120, B: 40, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func pitchFrame(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: grass}, image.Point{}, draw.Src)
	return img
}

func paint(img *image.RGBA, bbox mot.Rectangle, c color.Color) {
	draw.Draw(img, bbox.Image(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func TestDescriptorSolidJersey(t *testing.T) {
	t.Parallel()
	img := pitchFrame(320, 240)
	bbox := mot.NewRect(100, 60, 40, 80)
	paint(img, bbox, red)

	desc := ComputeDescriptor(img, bbox, 16, 8)
	require.Len(t, desc, 256)
	// pure red: hue 0, saturation 1
	assert.InDelta(t, 1.0, desc[15], 1e-9)

	similarity, ok := Cosine(desc, desc)
	require.True(t, ok)
	assert.InDelta(t, 1.0, similarity, 1e-6)

	paint(img, bbox, blue)
	other := ComputeDescriptor(img, bbox, 16, 8)
	require.NotNil(t, other)
	similarity, ok = Cosine(desc, other)
	require.True(t, ok)
	assert.InDelta(t, 0.0, similarity, 1e-9)
}

func TestDescriptorMissing(t *testing.T) {
	t.Parallel()
	img := pitchFrame(320, 240)
	cases := []struct {
		name string
		bbox mot.Rectangle
	}{
		{"tiny crop", mot.NewRect(10, 10, 6, 30)},
		{"outside frame", mot.NewRect(400, 300, 40, 80)},
		{"clipped below minimal size", mot.NewRect(315, 100, 40, 80)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Nil(t, ComputeDescriptor(img, tc.bbox, 16, 8))
		})
	}
	assert.Nil(t, ComputeDescriptor(nil, mot.NewRect(0, 0, 40, 80), 16, 8))

	_, ok := Cosine(nil, Descriptor{1})
	assert.False(t, ok)
}
