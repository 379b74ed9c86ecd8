package smoothing

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Filter smooths one coordinate sequence. Output has the same length as input.
type Filter interface {
	Smooth(values []float64) []float64
}

// MovingAverage is a centred moving average. Near the edges the window shrinks symmetrically
// so that every output stays centred on its own sample.
type MovingAverage struct {
	Window int
}

func (ma MovingAverage) Smooth(values []float64) []float64 {
	half := max(ma.Window, 1) / 2
	out := make([]float64, len(values))
	for i := range values {
		out[i] = centredMean(values, i, half)
	}
	return out
}

func centredMean(values []float64, i, half int) float64 {
	reach := min(half, i, len(values)-1-i)
	sum := 0.0
	for j := i - reach; j <= i+reach; j++ {
		sum += values[j]
	}
	return sum / float64(2*reach+1)
}

// SavitzkyGolay fits a polynomial of given order to every full window by least squares and
// takes its value at the centre. Samples without a full window fall back to MovingAverage.
type SavitzkyGolay struct {
	window int
	order  int
	coeffs []float64
}

// NewSavitzkyGolay prepares convolution coefficients. Window must be odd and greater than order.
func NewSavitzkyGolay(window, order int) (*SavitzkyGolay, error) {
	if window < 3 || window%2 == 0 {
		return nil, errors.Errorf("window must be odd and at least 3, got %d", window)
	}
	if order < 0 || order >= window {
		return nil, errors.Errorf("order must be in [0, %d), got %d", window, order)
	}
	half := window / 2
	// Vandermonde matrix over offsets -half..half
	vander := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		v := 1.0
		for j := 0; j <= order; j++ {
			vander.Set(i, j, v)
			v *= x
		}
	}
	identity := mat.NewDense(window, window, nil)
	for i := 0; i < window; i++ {
		identity.Set(i, i, 1)
	}
	// Least squares pseudo-inverse, row 0 evaluates the fitted polynomial at offset 0
	var pinv mat.Dense
	if err := pinv.Solve(vander, identity); err != nil {
		return nil, errors.Wrap(err, "can't fit Savitzky-Golay polynomial")
	}
	return &SavitzkyGolay{
		window: window,
		order:  order,
		coeffs: mat.Row(nil, 0, &pinv),
	}, nil
}

// Coefficients returns copy of the convolution kernel
func (sg *SavitzkyGolay) Coefficients() []float64 {
	return append([]float64(nil), sg.coeffs...)
}

func (sg *SavitzkyGolay) Smooth(values []float64) []float64 {
	half := sg.window / 2
	out := make([]float64, len(values))
	for i := range values {
		if i < half || i+half >= len(values) {
			out[i] = centredMean(values, i, half)
			continue
		}
		sum := 0.0
		for k, c := range sg.coeffs {
			sum += c * values[i-half+k]
		}
		out[i] = sum
	}
	return out
}
