package report

import (
	"fmt"
	"image/color"
	"io"

	"github.com/LdDl/kicksense/tracks"
	"github.com/muesli/gamut"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var baseColor = color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff}

// Palette returns n colours spread around the hue circle
func Palette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		out[i] = gamut.HueOffset(baseColor, i*360/max(n, 1))
	}
	return out
}

// TrajectoryPlot draws metric trajectories of players and goalkeepers. Identities with less
// than two metric positions are skipped.
func TrajectoryPlot(store *tracks.Store, title string) (*plot.Plot, int, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	type series struct {
		label string
		pts   plotter.XYs
	}
	var all []series
	for _, cat := range []tracks.Category{tracks.Goalkeepers, tracks.Players} {
		for _, id := range store.Identities(cat) {
			traj := store.Trajectory(cat, id)
			pts := make(plotter.XYs, 0, len(traj))
			for _, s := range traj {
				if s.Record.PositionTransformed == nil {
					continue
				}
				pts = append(pts, plotter.XY{X: s.Record.PositionTransformed.X, Y: s.Record.PositionTransformed.Y})
			}
			if len(pts) < 2 {
				continue
			}
			all = append(all, series{label: fmt.Sprintf("%s #%d", cat, id), pts: pts})
		}
	}
	palette := Palette(len(all))
	for i, s := range all {
		l, err := plotter.NewLine(s.pts)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "can't build line %s", s.label)
		}
		l.Color = palette[i]
		l.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(s.label, l)
	}
	p.Legend.Top = true
	return p, len(all), nil
}

// WriteTrajectoriesPNG renders trajectory plot as PNG
func WriteTrajectoriesPNG(w io.Writer, store *tracks.Store, title string) error {
	p, _, err := TrajectoryPlot(store, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(14*vg.Inch, 9*vg.Inch, "png")
	if err != nil {
		return errors.Wrap(err, "can't create png writer")
	}
	_, err = wt.WriteTo(w)
	return errors.Wrap(err, "can't write png")
}

// SaveTrajectories writes plot to file, format is taken from the extension
func SaveTrajectories(path string, store *tracks.Store, title string) error {
	p, _, err := TrajectoryPlot(store, title)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(14*vg.Inch, 9*vg.Inch, path), "can't save %s", path)
}
