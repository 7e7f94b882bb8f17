package calibration

import (
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"

	elbowdriver "github.com/PCIGITI/elbow-driver"
)

// Coupling names the joint that moves and the joint it drags along
type Coupling struct {
	Driver elbowdriver.Joint
	Driven elbowdriver.Joint
}

func (c Coupling) String() string {
	return c.Driver.String() + "->" + c.Driven.String()
}

// CouplingConfig declares a model for one driving joint. The same model serves every listed
// driven joint
type CouplingConfig struct {
	Driver   elbowdriver.Joint   `yaml:"driver"`
	Driven   []elbowdriver.Joint `yaml:"driven"`
	Primary  LayerConfig         `yaml:"primary"`
	Residual *LayerConfig        `yaml:"residual,omitempty"`
}

// Registry owns every calibration model, keyed by coupling pair. It is built once and handed
// to the joint mappers
type Registry struct {
	predictors map[Coupling]Predictor
	models     []*Model
}

func NewRegistry() *Registry {
	return &Registry{predictors: map[Coupling]Predictor{}}
}

// Build creates lazy models for each coupling. Datasets are read from fsys on first use
func Build(fsys fs.FS, couplings []CouplingConfig, logger *zap.Logger) (*Registry, error) {
	r := NewRegistry()
	for _, cc := range couplings {
		if !cc.Driver.Valid() {
			return nil, fmt.Errorf("%w: coupling driver %d", elbowdriver.ErrUnknownJoint, int(cc.Driver))
		}
		if len(cc.Driven) == 0 {
			return nil, fmt.Errorf("coupling from %s has no driven joint", cc.Driver)
		}

		name := cc.Driver.String()
		for _, d := range cc.Driven {
			name += "-" + d.String()
		}

		primary := NewModel(name, fsys, cc.Primary, logger)
		r.models = append(r.models, primary)

		var p Predictor = primary
		if cc.Residual != nil {
			residual := NewModel(name+"-residual", fsys, *cc.Residual, logger)
			r.models = append(r.models, residual)
			p = Layered{Primary: primary, Residual: residual}
		}

		for _, d := range cc.Driven {
			if !d.Valid() {
				return nil, fmt.Errorf("%w: coupling driven %d", elbowdriver.ErrUnknownJoint, int(d))
			}
			c := Coupling{Driver: cc.Driver, Driven: d}
			if _, exists := r.predictors[c]; exists {
				return nil, fmt.Errorf("duplicate coupling %s", c)
			}
			r.predictors[c] = p
		}
	}
	return r, nil
}

// Register adds or replaces the predictor for a coupling
func (r *Registry) Register(c Coupling, p Predictor) {
	r.predictors[c] = p
	if m, ok := p.(*Model); ok {
		r.models = append(r.models, m)
	}
}

// Lookup returns the predictor for a coupling, or Unavailable
func (r *Registry) Lookup(driver, driven elbowdriver.Joint) Predictor {
	if r == nil {
		return Unavailable
	}
	p, ok := r.predictors[Coupling{Driver: driver, Driven: driven}]
	if !ok {
		return Unavailable
	}
	return p
}

// Couplings lists registered couplings in joint order
func (r *Registry) Couplings() []Coupling {
	out := make([]Coupling, 0, len(r.predictors))
	for c := range r.predictors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Driver != out[j].Driver {
			return out[i].Driver < out[j].Driver
		}
		return out[i].Driven < out[j].Driven
	})
	return out
}

// Models returns every underlying polynomial model, including residual layers
func (r *Registry) Models() []*Model {
	return r.models
}

// Warm forces every model to load so failures are reported at startup instead of on the
// first move. It returns the availability of each coupling
func (r *Registry) Warm() map[Coupling]bool {
	out := map[Coupling]bool{}
	for _, m := range r.models {
		m.Available()
	}
	for c, p := range r.predictors {
		out[c] = p.Available()
	}
	return out
}
