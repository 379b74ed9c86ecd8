package videoio

import (
	"image"
	"sync"

	"github.com/LdDl/kicksense/pipeline"
	"github.com/LdDl/kicksense/videoio/postproc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// DetectorConfig of YOLODetector
type DetectorConfig struct {
	ModelPath     string
	InputWidth    int
	InputHeight   int
	ConfThreshold float64
	NMSThreshold  float64
	Logger        *logrus.Entry
}

// YOLODetector runs YOLOv8 ONNX model trained on ball, goalkeeper, player and referee classes
type YOLODetector struct {
	mu     sync.Mutex
	net    gocv.Net
	cfg    DetectorConfig
	logger *logrus.Entry
}

func NewYOLODetector(cfg DetectorConfig) (*YOLODetector, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, errors.Errorf("can't read network '%s'", cfg.ModelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "can't set backend")
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "can't set target")
	}
	return &YOLODetector{
		net:    net,
		cfg:    cfg,
		logger: cfg.Logger.WithField("component", "detector"),
	}, nil
}

// Detect runs the network on the frame resized to the input size. Boxes are returned in frame
// pixels after non maximum suppression.
func (d *YOLODetector) Detect(frame image.Image) ([]pipeline.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, errors.Wrap(err, "can't convert frame")
	}
	defer img.Close()

	blob := gocv.BlobFromImage(img, 1.0/255.0, image.Pt(d.cfg.InputWidth, d.cfg.InputHeight), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()
	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	sizes := output.Size()
	if len(sizes) != 3 {
		return nil, errors.Errorf("unexpected output shape %v", sizes)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "can't read output")
	}
	sx := float64(img.Cols()) / float64(d.cfg.InputWidth)
	sy := float64(img.Rows()) / float64(d.cfg.InputHeight)
	candidates, err := postproc.DecodeYOLO(data, sizes[1], sizes[2], sx, sy, d.cfg.ConfThreshold)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	rects := make([]image.Rectangle, len(candidates))
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		rects[i] = c.BBox.Image()
		scores[i] = float32(c.Confidence)
	}
	keep := gocv.NMSBoxes(rects, scores, float32(d.cfg.ConfThreshold), float32(d.cfg.NMSThreshold))
	detections := make([]pipeline.Detection, 0, len(keep))
	for _, idx := range keep {
		c := candidates[idx]
		detections = append(detections, pipeline.Detection{BBox: c.BBox, Class: c.Class, Confidence: c.Confidence})
	}
	d.logger.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"kept":       len(detections),
	}).Trace("Frame detected")
	return detections, nil
}

func (d *YOLODetector) Close() error {
	return d.net.Close()
}
