// Package postproc holds the parts of video processing which need no OpenCV:
// decoding of detector output and selection of camera shift from tracked features.
package postproc

import (
	"github.com/LdDl/kicksense/mot"
	"github.com/pkg/errors"
)

// Candidate is a decoded box before non maximum suppression
type Candidate struct {
	BBox       mot.Rectangle
	Class      mot.Class
	Confidence float64
}

// DecodeYOLO decodes YOLOv8 output tensor of shape [1, 4+classes, anchors], each anchor holding
// cx, cy, w, h in network input pixels followed by per class scores. Boxes are scaled by sx, sy
// to frame pixels, anchors with best score below minConf are dropped.
func DecodeYOLO(data []float32, attributes, anchors int, sx, sy, minConf float64) ([]Candidate, error) {
	if attributes < 5 {
		return nil, errors.Errorf("yolo output has %d attributes, expected at least 5", attributes)
	}
	if len(data) < attributes*anchors {
		return nil, errors.Errorf("yolo output has %d values, expected %d", len(data), attributes*anchors)
	}
	at := func(attr, anchor int) float64 {
		return float64(data[attr*anchors+anchor])
	}
	var out []Candidate
	for i := 0; i < anchors; i++ {
		class := -1
		best := 0.0
		for c := 4; c < attributes; c++ {
			if score := at(c, i); score > best {
				best, class = score, c-4
			}
		}
		if class < 0 || best < minConf {
			continue
		}
		w, h := at(2, i)*sx, at(3, i)*sy
		out = append(out, Candidate{
			BBox:       mot.NewRect(at(0, i)*sx-w/2, at(1, i)*sy-h/2, w, h),
			Class:      mot.Class(class),
			Confidence: best,
		})
	}
	return out, nil
}
