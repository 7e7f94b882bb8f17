// Package plot renders cable path length curves and calibration fits as PNG images
package plot

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/PCIGITI/elbow-driver/calibration"
	"github.com/PCIGITI/elbow-driver/geometry"
)

const (
	DefaultSamples = 361

	widthIn  = 8.0
	heightIn = 6.0
	dpi      = 150
)

var (
	posColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	negColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PathLengths plots both cable lengths of a routing from fromDeg to toDeg
func PathLengths(title string, model geometry.PathModel, fromDeg, toDeg float64, samples int) (*gonumplot.Plot, error) {
	if samples < 2 {
		return nil, errors.New("need at least two samples")
	}

	angles := floats.Span(make([]float64, samples), fromDeg, toDeg)
	pos := make(plotter.XYs, samples)
	neg := make(plotter.XYs, samples)
	for i, a := range angles {
		l1, l2 := model.Lengths(a)
		pos[i] = plotter.XY{X: a, Y: l1}
		neg[i] = plotter.XY{X: a, Y: l2}
	}

	p := gonumplot.New()
	p.Title.Text = title
	p.X.Label.Text = "joint angle (deg)"
	p.Y.Label.Text = "cable length (mm)"
	p.Add(plotter.NewGrid())

	for _, series := range []struct {
		name  string
		xys   plotter.XYs
		color color.Color
	}{
		{"positive side", pos, posColor},
		{"negative side", neg, negColor},
	} {
		line, err := plotter.NewLine(series.xys)
		if err != nil {
			return nil, fmt.Errorf("error creating %s line: %w", series.name, err)
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = series.color
		p.Add(line)
		p.Legend.Add(series.name, line)
	}

	return p, nil
}

// CalibrationFit plots the cleaned samples of a model's dataset and its fitted polynomial
func CalibrationFit(m *calibration.Model) (*gonumplot.Plot, error) {
	poly, ok := m.Polynomial()
	if !ok {
		return nil, fmt.Errorf("model %s is unavailable: %w", m.Name(), m.Err())
	}

	cfg := m.Config()
	raw, err := calibration.LoadDataset(m.FS(), cfg.File)
	if err != nil {
		return nil, err
	}
	clean := raw.Filter(cfg.XRange, cfg.YRange).RejectOutliers()

	samples := make(plotter.XYs, clean.Len())
	for i := range clean.X {
		samples[i] = plotter.XY{X: clean.X[i], Y: clean.Y[i]}
	}

	xs := floats.Span(make([]float64, DefaultSamples), floats.Min(clean.X), floats.Max(clean.X))
	fit := make(plotter.XYs, len(xs))
	for i, x := range xs {
		fit[i] = plotter.XY{X: x, Y: poly.Eval(x)}
	}

	p := gonumplot.New()
	p.Title.Text = m.Name()
	p.X.Label.Text = "driving joint (rad)"
	p.Y.Label.Text = "driven joint (rad)"
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(samples)
	if err != nil {
		return nil, fmt.Errorf("error creating sample scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Color = posColor

	line, err := plotter.NewLine(fit)
	if err != nil {
		return nil, fmt.Errorf("error creating fit line: %w", err)
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = negColor

	p.Add(scatter, line)
	p.Legend.Add(fmt.Sprintf("samples (%d)", clean.Len()), scatter)
	p.Legend.Add(fmt.Sprintf("degree %d fit", len(poly.Coeffs)-1), line)

	return p, nil
}

// WritePNG draws p onto a PNG canvas and writes it to w
func WritePNG(p *gonumplot.Plot, w io.Writer) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}

// SavePNG writes p to filename, creating its directory
func SavePNG(p *gonumplot.Plot, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WritePNG(p, bw); err != nil {
		return err
	}
	return bw.Flush()
}
