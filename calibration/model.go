package calibration

import (
	"fmt"
	"io/fs"
	"sync"

	"go.uber.org/zap"
)

// Predictor predicts the angle a coupled joint is dragged through when the driving joint moves
// from x to x+dx. All angles are radians
type Predictor interface {
	PredictDelta(x, dx float64) float64
	Available() bool
}

// Unavailable is the predictor used for couplings without a model. It always predicts zero
var Unavailable Predictor = unavailable{}

type unavailable struct{}

func (unavailable) PredictDelta(float64, float64) float64 { return 0 }
func (unavailable) Available() bool                       { return false }

// LayerConfig describes one dataset and the ranges its samples must fall in
type LayerConfig struct {
	File   string `yaml:"file"`
	XRange Range  `yaml:"x_range"`
	YRange *Range `yaml:"y_range,omitempty"`
	Degree int    `yaml:"degree,omitempty"`
}

// Model is a single polynomial coupling model. It is built from its dataset on first use and
// the result, including failure, is kept for the life of the process
type Model struct {
	name   string
	fsys   fs.FS
	cfg    LayerConfig
	logger *zap.Logger

	once sync.Once
	poly *Polynomial
	err  error
}

var _ Predictor = (*Model)(nil)

// NewModel does not touch fsys until the model is first queried
func NewModel(name string, fsys fs.FS, cfg LayerConfig, logger *zap.Logger) *Model {
	if cfg.Degree == 0 {
		cfg.Degree = DefaultDegree
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		name:   name,
		fsys:   fsys,
		cfg:    cfg,
		logger: logger.With(zap.String("model", name)),
	}
}

func (m *Model) Name() string {
	return m.name
}

func (m *Model) init() {
	m.once.Do(func() {
		poly, err := m.build()
		if err != nil {
			m.err = err
			m.logger.Warn("calibration model unavailable, coupling compensation disabled",
				zap.String("file", m.cfg.File), zap.Error(err))
			return
		}
		m.poly = &poly
		m.logger.Info("calibration model initialized", zap.String("file", m.cfg.File))
	})
}

func (m *Model) build() (Polynomial, error) {
	if m.fsys == nil {
		return Polynomial{}, fmt.Errorf("no data directory for %q", m.cfg.File)
	}

	raw, err := LoadDataset(m.fsys, m.cfg.File)
	if err != nil {
		return Polynomial{}, err
	}

	ranged := raw.Filter(m.cfg.XRange, m.cfg.YRange)
	clean := ranged.RejectOutliers()
	m.logger.Debug("cleaned calibration data",
		zap.Int("raw", raw.Len()),
		zap.Int("out_of_range", raw.Len()-ranged.Len()),
		zap.Int("outliers", ranged.Len()-clean.Len()),
	)

	return Fit(clean, m.cfg.Degree)
}

// Available builds the model if needed and reports whether it succeeded
func (m *Model) Available() bool {
	m.init()
	return m.poly != nil
}

// Err is the reason the model is unavailable, or nil
func (m *Model) Err() error {
	m.init()
	return m.err
}

// Polynomial returns the fitted polynomial when available
func (m *Model) Polynomial() (Polynomial, bool) {
	m.init()
	if m.poly == nil {
		return Polynomial{}, false
	}
	return *m.poly, true
}

// Config returns the dataset configuration of the model
func (m *Model) Config() LayerConfig {
	return m.cfg
}

// FS returns the filesystem the dataset is read from
func (m *Model) FS() fs.FS {
	return m.fsys
}

// PredictDelta is P(x+dx) − P(x), or zero when dx is zero or the model is unavailable
func (m *Model) PredictDelta(x, dx float64) float64 {
	if dx == 0 || !m.Available() {
		return 0
	}
	return m.poly.Eval(x+dx) - m.poly.Eval(x)
}

// Layered adds a residual correction model on top of a primary model. Without the primary
// nothing is predicted; without the residual only the primary contributes
type Layered struct {
	Primary  Predictor
	Residual Predictor
}

var _ Predictor = Layered{}

func (l Layered) Available() bool {
	return l.Primary != nil && l.Primary.Available()
}

func (l Layered) PredictDelta(x, dx float64) float64 {
	if dx == 0 || !l.Available() {
		return 0
	}
	total := l.Primary.PredictDelta(x, dx)
	if l.Residual != nil {
		total += l.Residual.PredictDelta(x, dx)
	}
	return total
}
