package reid

import (
	"image"
	"math"

	"github.com/LdDl/kicksense/mot"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
)

// Descriptor is an L2-normalized, flattened hue x saturation histogram of a torso crop
type Descriptor []float64

// torso band of the person box, relative to its size
const (
	torsoTop    = 0.1
	torsoBottom = 0.6
	torsoSide   = 0.15
)

// ComputeDescriptor builds appearance descriptor of the box. Returns nil when the box,
// clipped to the frame, is smaller than minCrop pixels on any side.
func ComputeDescriptor(frame image.Image, bbox mot.Rectangle, bins, minCrop int) Descriptor {
	if frame == nil || bins <= 0 {
		return nil
	}
	bounds := frame.Bounds()
	shifted := bbox
	shifted.X -= float64(bounds.Min.X)
	shifted.Y -= float64(bounds.Min.Y)
	clipped, ok := shifted.Clamp(bounds.Dx(), bounds.Dy())
	if !ok {
		return nil
	}
	crop := clipped.Image().Add(bounds.Min)
	if crop.Dx() < minCrop || crop.Dy() < minCrop {
		return nil
	}
	torso := image.Rect(
		crop.Min.X+int(float64(crop.Dx())*torsoSide),
		crop.Min.Y+int(float64(crop.Dy())*torsoTop),
		crop.Max.X-int(float64(crop.Dx())*torsoSide),
		crop.Min.Y+int(math.Ceil(float64(crop.Dy())*torsoBottom)),
	)
	if torso.Empty() {
		torso = crop
	}

	hist := make(Descriptor, bins*bins)
	for y := torso.Min.Y; y < torso.Max.Y; y++ {
		for x := torso.Min.X; x < torso.Max.X; x++ {
			c, ok := colorful.MakeColor(frame.At(x, y))
			if !ok {
				continue
			}
			h, s, _ := c.Hsv()
			hBin := min(int(h/360.0*float64(bins)), bins-1)
			sBin := min(int(s*float64(bins)), bins-1)
			hist[hBin*bins+sBin]++
		}
	}
	norm := floats.Norm(hist, 2)
	if norm == 0 {
		return nil
	}
	floats.Scale(1/norm, hist)
	return hist
}

// Cosine returns cosine similarity of two descriptors. ok is false when either is missing.
func Cosine(a, b Descriptor) (float64, bool) {
	if a == nil || b == nil || len(a) != len(b) {
		return 0, false
	}
	denom := floats.Norm(a, 2)*floats.Norm(b, 2) + 1e-8
	return floats.Dot(a, b) / denom, true
}
