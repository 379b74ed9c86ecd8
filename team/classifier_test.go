package team

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kitFrame(kits map[mot.Rectangle]color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 640, 360))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{G: 140, A: 255}}, image.Point{}, draw.Src)
	for bbox, c := range kits {
		draw.Draw(img, bbox.Image(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
	return img
}

func TestMeanColor(t *testing.T) {
	t.Parallel()
	bbox := mot.NewRect(100, 100, 40, 80)
	img := kitFrame(map[mot.Rectangle]color.RGBA{bbox: {R: 255, G: 255, B: 255, A: 255}})
	c, ok := MeanColor(img, bbox)
	require.True(t, ok)
	assert.Equal(t, "#ffffff", c.Hex())

	_, ok = MeanColor(img, mot.NewRect(700, 400, 40, 80))
	assert.False(t, ok)
	_, ok = MeanColor(nil, bbox)
	assert.False(t, ok)
}

func TestColorClassifier(t *testing.T) {
	t.Parallel()
	dark := mot.NewRect(100, 100, 40, 80)
	light := mot.NewRect(300, 100, 40, 80)
	classifier := NewColorClassifier(24, nil)

	for i := 0; i < 12; i++ {
		shade := uint8(i)
		img := kitFrame(map[mot.Rectangle]color.RGBA{
			dark:  {R: 20 + shade, G: 20, B: 90, A: 255},
			light: {R: 240 - shade, G: 240, B: 235, A: 255},
		})
		_, ok := classifier.Predict(img, dark, 1)
		assert.False(t, ok, "not fitted yet")
		classifier.AddSample(img, dark, 1)
		classifier.AddSample(img, light, 2)
	}
	require.True(t, classifier.Fitted())
	require.Len(t, classifier.Colors(), Teams)

	img := kitFrame(map[mot.Rectangle]color.RGBA{
		dark:  {R: 25, G: 22, B: 85, A: 255},
		light: {R: 250, G: 250, B: 250, A: 255},
	})
	label, ok := classifier.Predict(img, dark, 1)
	require.True(t, ok)
	assert.Equal(t, 0, label)
	label, ok = classifier.Predict(img, light, 2)
	require.True(t, ok)
	assert.Equal(t, 1, label)

	// box left the frame: last label is kept until forgotten
	label, ok = classifier.Predict(img, mot.NewRect(900, 900, 10, 10), 2)
	require.True(t, ok)
	assert.Equal(t, 1, label)
	classifier.Forget(tracks.ID(2))
	_, ok = classifier.Predict(img, mot.NewRect(900, 900, 10, 10), 2)
	assert.False(t, ok)
}
