// Package team splits outfield players into two teams by jersey colour.
package team

import (
	"image"
	"sort"
	"sync"

	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Teams is the number of clusters
const Teams = 2

// Classifier assigns team labels (0 or 1) to player boxes
type Classifier interface {
	// AddSample collects appearance of a player before the model is fitted
	AddSample(frame image.Image, bbox mot.Rectangle, id tracks.ID)
	// Predict returns team label. ok is false while the model is not fitted and the identity
	// has never been labelled.
	Predict(frame image.Image, bbox mot.Rectangle, id tracks.ID) (int, bool)
	// Forget drops cached label
	Forget(id tracks.ID)
}

// ColorClassifier clusters mean jersey colours in CIE L*a*b* space with k-means.
// Labels are ordered by cluster lightness, so the darker kit is always team 0.
type ColorClassifier struct {
	mu         sync.Mutex
	minSamples int
	samples    clusters.Observations
	centers    []colorful.Color
	fitted     clusters.Clusters
	order      []int
	labels     map[tracks.ID]int
	logger     *logrus.Entry
}

// NewColorClassifier creates classifier fitting itself after minSamples samples
func NewColorClassifier(minSamples int, logger *logrus.Entry) *ColorClassifier {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ColorClassifier{
		minSamples: max(minSamples, Teams),
		labels:     make(map[tracks.ID]int),
		logger:     logger.WithField("component", "team"),
	}
}

// MeanColor returns average colour of the central part of the box. ok is false when nothing
// of the box is inside the frame.
func MeanColor(frame image.Image, bbox mot.Rectangle) (colorful.Color, bool) {
	if frame == nil {
		return colorful.Color{}, false
	}
	bounds := frame.Bounds()
	rect := bbox.Image().Intersect(bounds)
	// inner half of the box avoids grass and neighbours
	inner := image.Rect(
		rect.Min.X+rect.Dx()/4, rect.Min.Y+rect.Dy()/4,
		rect.Max.X-rect.Dx()/4, rect.Max.Y-rect.Dy()/4,
	)
	if inner.Empty() {
		inner = rect
	}
	if inner.Empty() {
		return colorful.Color{}, false
	}
	var r, g, b float64
	n := 0
	for y := inner.Min.Y; y < inner.Max.Y; y++ {
		for x := inner.Min.X; x < inner.Max.X; x++ {
			c, ok := colorful.MakeColor(frame.At(x, y))
			if !ok {
				continue
			}
			r += c.R
			g += c.G
			b += c.B
			n++
		}
	}
	if n == 0 {
		return colorful.Color{}, false
	}
	return colorful.Color{R: r / float64(n), G: g / float64(n), B: b / float64(n)}, true
}

func observation(c colorful.Color) clusters.Coordinates {
	l, a, b := c.Lab()
	return clusters.Coordinates{l, a, b}
}

func (cc *ColorClassifier) AddSample(frame image.Image, bbox mot.Rectangle, id tracks.ID) {
	c, ok := MeanColor(frame, bbox)
	if !ok {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.fitted != nil {
		return
	}
	cc.samples = append(cc.samples, observation(c))
	if len(cc.samples) >= cc.minSamples {
		if err := cc.fit(); err != nil {
			cc.logger.WithError(err).Warn("Can't fit team colours, collecting more samples")
		}
	}
}

func (cc *ColorClassifier) fit() error {
	km := kmeans.New()
	partition, err := km.Partition(cc.samples, Teams)
	if err != nil {
		return errors.Wrap(err, "k-means")
	}
	if len(partition) != Teams {
		return errors.Errorf("expected %d clusters, got %d", Teams, len(partition))
	}
	order := make([]int, Teams)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return partition[order[i]].Center[0] < partition[order[j]].Center[0]
	})
	// order maps label -> cluster, inverse it for lookups
	cc.order = make([]int, Teams)
	cc.centers = make([]colorful.Color, Teams)
	for label, cluster := range order {
		cc.order[cluster] = label
		center := partition[cluster].Center
		cc.centers[label] = colorful.Lab(center[0], center[1], center[2]).Clamped()
	}
	cc.fitted = partition
	cc.samples = nil
	cc.logger.WithFields(logrus.Fields{
		"team_0": cc.centers[0].Hex(),
		"team_1": cc.centers[1].Hex(),
	}).Info("Team colours fitted")
	return nil
}

// Fitted reports whether the colour model is ready
func (cc *ColorClassifier) Fitted() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.fitted != nil
}

// Colors returns kit colour of each label, nil before the model is fitted
func (cc *ColorClassifier) Colors() []colorful.Color {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return append([]colorful.Color(nil), cc.centers...)
}

func (cc *ColorClassifier) Predict(frame image.Image, bbox mot.Rectangle, id tracks.ID) (int, bool) {
	c, colorOK := MeanColor(frame, bbox)
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.fitted == nil || !colorOK {
		label, ok := cc.labels[id]
		return label, ok
	}
	label := cc.order[cc.fitted.Nearest(observation(c))]
	cc.labels[id] = label
	return label, true
}

func (cc *ColorClassifier) Forget(id tracks.ID) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.labels, id)
}
