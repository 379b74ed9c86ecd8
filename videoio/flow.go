package videoio

import (
	"image"

	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/videoio/postproc"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	DefaultMinMotion  = 5.0
	DefaultEdgeMargin = 20.0
	maxCorners        = 100
	cornerQuality     = 0.3
	cornerMinDistance = 3.0
)

// OpticalFlow estimates camera pan with Lucas-Kanade flow of corner features found near the
// left and right frame borders. Features are re-detected once the camera moved by more than
// MinMotion pixels.
type OpticalFlow struct {
	MinMotion  float64
	EdgeMargin float64

	prevGray gocv.Mat
	features []mot.Point
	started  bool
}

func NewOpticalFlow(minMotion float64) *OpticalFlow {
	return &OpticalFlow{
		MinMotion:  minMotion,
		EdgeMargin: DefaultEdgeMargin,
	}
}

// Estimate returns shift of the frame relative to the previous one, zero for the first frame
func (of *OpticalFlow) Estimate(frame image.Image) (float64, float64, error) {
	img, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return 0, 0, errors.Wrap(err, "can't convert frame")
	}
	defer img.Close()
	gray := gocv.NewMat()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	if !of.started || len(of.features) == 0 {
		of.replace(gray)
		of.features = of.detect(gray)
		of.started = true
		return 0, 0, nil
	}

	prevPts := pointsMat(of.features)
	defer prevPts.Close()
	nextPts := gocv.NewMat()
	defer nextPts.Close()
	status := gocv.NewMat()
	defer status.Close()
	flowErr := gocv.NewMat()
	defer flowErr.Close()
	gocv.CalcOpticalFlowPyrLK(of.prevGray, gray, prevPts, nextPts, &status, &flowErr)

	next := make([]mot.Point, nextPts.Rows())
	tracked := make([]bool, nextPts.Rows())
	for i := range next {
		v := nextPts.GetVecfAt(i, 0)
		next[i] = mot.NewPoint(float64(v[0]), float64(v[1]))
		tracked[i] = i < status.Rows() && status.GetUCharAt(i, 0) == 1
	}
	dx, dy, moved := postproc.LargestShift(of.features, next, tracked, of.MinMotion)
	if moved {
		of.features = of.detect(gray)
	}
	of.replace(gray)
	return dx, dy, nil
}

func (of *OpticalFlow) replace(gray gocv.Mat) {
	if of.started {
		of.prevGray.Close()
	}
	of.prevGray = gray
}

func (of *OpticalFlow) detect(gray gocv.Mat) []mot.Point {
	corners := gocv.NewMat()
	defer corners.Close()
	gocv.GoodFeaturesToTrack(gray, &corners, maxCorners, cornerQuality, cornerMinDistance)
	points := make([]mot.Point, 0, corners.Rows())
	for i := 0; i < corners.Rows(); i++ {
		v := corners.GetVecfAt(i, 0)
		points = append(points, mot.NewPoint(float64(v[0]), float64(v[1])))
	}
	return postproc.NearEdges(points, gray.Cols(), of.EdgeMargin)
}

func pointsMat(points []mot.Point) gocv.Mat {
	m := gocv.NewMatWithSize(len(points), 1, gocv.MatTypeCV32FC2)
	for i, p := range points {
		m.SetFloatAt(i, 0, float32(p.X))
		m.SetFloatAt(i, 1, float32(p.Y))
	}
	return m
}

func (of *OpticalFlow) Close() error {
	if of.started {
		return of.prevGray.Close()
	}
	return nil
}
