// Package videoio implements pipeline collaborators on top of OpenCV (gocv):
// video decoding, ONNX detector and camera motion estimation.
package videoio

import (
	"image"

	"github.com/LdDl/kicksense/tracks"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Capture reads frames of a video file or stream
type Capture struct {
	vc   *gocv.VideoCapture
	img  gocv.Mat
	meta tracks.Meta
}

func OpenCapture(uri string) (*Capture, error) {
	vc, err := gocv.VideoCaptureFile(uri)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open video '%s'", uri)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.Errorf("video '%s' is not opened", uri)
	}
	fps := vc.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = 25
	}
	return &Capture{
		vc:  vc,
		img: gocv.NewMat(),
		meta: tracks.Meta{
			FPS:         fps,
			Width:       int(vc.Get(gocv.VideoCaptureFrameWidth)),
			Height:      int(vc.Get(gocv.VideoCaptureFrameHeight)),
			TotalFrames: int(vc.Get(gocv.VideoCaptureFrameCount)),
		},
	}, nil
}

func (c *Capture) Meta() tracks.Meta {
	return c.meta
}

// Next decodes the next frame. End of stream is reported as ok false without error.
func (c *Capture) Next() (image.Image, bool, error) {
	if !c.vc.Read(&c.img) || c.img.Empty() {
		return nil, false, nil
	}
	frame, err := c.img.ToImage()
	if err != nil {
		return nil, false, errors.Wrap(err, "can't convert frame")
	}
	return frame, true, nil
}

func (c *Capture) Close() error {
	c.img.Close()
	return c.vc.Close()
}
