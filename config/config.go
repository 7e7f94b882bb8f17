// Package config loads the physical constants of the mechanism from a YAML file and builds the
// joint mappers from them
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/calibration"
	"github.com/PCIGITI/elbow-driver/hysteresis"
	"github.com/PCIGITI/elbow-driver/mapper"
)

// Constants is the contents of the constants file. Anything left out of the file keeps its
// default value
type Constants struct {
	Mechanism   mapper.Params `yaml:"mechanism"`
	Backlash    Backlash      `yaml:"backlash"`
	Calibration Calibration   `yaml:"calibration"`
}

// Backlash configures cable slack compensation. Offsets are in steps
type Backlash struct {
	Enabled bool               `yaml:"enabled"`
	Offsets hysteresis.Offsets `yaml:"offsets"`
}

// Calibration lists the coupling models. DataDir is resolved relative to the constants file
type Calibration struct {
	DataDir   string                       `yaml:"data_dir"`
	Couplings []calibration.CouplingConfig `yaml:"couplings"`
}

// Default returns the constants of the current mechanism
func Default() Constants {
	return Constants{
		Mechanism: mapper.DefaultParams(),
		Backlash: Backlash{
			Enabled: true,
			Offsets: hysteresis.Offsets{
				elbowdriver.ElbowPitch: 20,
				elbowdriver.ElbowYaw:   20,
				elbowdriver.WristPitch: 30,
				elbowdriver.LeftJaw:    24,
				elbowdriver.RightJaw:   24,
				elbowdriver.Roll:       0,
			},
		},
		Calibration: Calibration{
			DataDir:   ".",
			Couplings: DefaultCouplings(),
		},
	}
}

// DefaultCouplings are the elbow pitch to wrist pitch and elbow yaw to jaw models measured on
// 29 August
func DefaultCouplings() []calibration.CouplingConfig {
	return []calibration.CouplingConfig{
		{
			Driver: elbowdriver.ElbowPitch,
			Driven: []elbowdriver.Joint{elbowdriver.WristPitch},
			Primary: calibration.LayerConfig{
				File:   "q1q3-angles-29-aug.txt",
				XRange: calibration.Range{Min: 0, Max: 3},
			},
		},
		{
			Driver: elbowdriver.ElbowYaw,
			Driven: []elbowdriver.Joint{elbowdriver.LeftJaw, elbowdriver.RightJaw},
			Primary: calibration.LayerConfig{
				File:   "q2q4-angles-29-aug.txt",
				XRange: calibration.Range{Min: 0, Max: 3},
				YRange: &calibration.Range{Min: 0, Max: 4},
			},
			Residual: &calibration.LayerConfig{
				File:   "q2-q4-comp.txt",
				XRange: calibration.Range{Min: 0, Max: 3},
				YRange: &calibration.Range{Min: 0, Max: 3},
			},
		},
	}
}

// Load reads the constants file at path. An empty path returns the defaults with data files
// looked up in the working directory
func Load(path string) (Constants, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Constants{}, fmt.Errorf("error opening constants file: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return Constants{}, fmt.Errorf("error reading %s: %w", path, err)
	}

	if !filepath.IsAbs(c.Calibration.DataDir) {
		c.Calibration.DataDir = filepath.Join(filepath.Dir(path), c.Calibration.DataDir)
	}

	return c, nil
}

// Decode parses YAML on top of the defaults. Unknown keys are errors
func Decode(r io.Reader) (Constants, error) {
	c := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return Constants{}, fmt.Errorf("error decoding constants: %w", err)
	}

	c.applyDefaults()

	return c, nil
}

// applyDefaults fills values a file zeroed out explicitly
func (c *Constants) applyDefaults() {
	d := Default()

	if c.Mechanism.LeadScrew.StepsPerRev == 0 || c.Mechanism.LeadScrew.PitchMM == 0 {
		c.Mechanism.LeadScrew = d.Mechanism.LeadScrew
	}
	if c.Mechanism.Capstan.StepsPerRev == 0 || c.Mechanism.Capstan.RadiusMM == 0 {
		c.Mechanism.Capstan = d.Mechanism.Capstan
	}
	if c.Mechanism.Roll.StepsPerRev == 0 || c.Mechanism.Roll.RadiusMM == 0 {
		c.Mechanism.Roll = d.Mechanism.Roll
	}
	if c.Mechanism.Radius == nil {
		c.Mechanism.Radius = map[elbowdriver.Joint]float64{}
	}
	for j, r := range d.Mechanism.Radius {
		if c.Mechanism.Radius[j] == 0 {
			c.Mechanism.Radius[j] = r
		}
	}
	if c.Mechanism.PitchJawRadius == 0 {
		c.Mechanism.PitchJawRadius = d.Mechanism.PitchJawRadius
	}
	if c.Backlash.Offsets == nil {
		c.Backlash.Offsets = d.Backlash.Offsets
	}
	if c.Calibration.DataDir == "" {
		c.Calibration.DataDir = d.Calibration.DataDir
	}
}

// Encode writes c as YAML. It is used to generate a starting constants file
func (c Constants) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(c)
	if err != nil {
		return fmt.Errorf("error encoding constants: %w", err)
	}
	return enc.Close()
}

func (c Constants) String() string {
	var buf bytes.Buffer
	_ = c.Encode(&buf)
	return buf.String()
}

// Tracker returns the backlash compensation for the configured offsets
func (c Constants) Tracker() *hysteresis.Tracker {
	return &hysteresis.Tracker{Offsets: c.Backlash.Offsets, Enabled: c.Backlash.Enabled}
}

// Registry builds the calibration models over DataDir. Datasets are not read until first use
func (c Constants) Registry(logger *zap.Logger) (*calibration.Registry, error) {
	return c.RegistryFS(os.DirFS(c.Calibration.DataDir), logger)
}

// RegistryFS builds the calibration models over fsys
func (c Constants) RegistryFS(fsys fs.FS, logger *zap.Logger) (*calibration.Registry, error) {
	r, err := calibration.Build(fsys, c.Calibration.Couplings, logger)
	if err != nil {
		return nil, fmt.Errorf("error building calibration registry: %w", err)
	}
	return r, nil
}

// Build creates everything a controller needs from the constants
func (c Constants) Build(logger *zap.Logger) (mapper.Set, *calibration.Registry, *hysteresis.Tracker, error) {
	return c.BuildFS(os.DirFS(c.Calibration.DataDir), logger)
}

// BuildFS is Build with calibration data read from fsys
func (c Constants) BuildFS(fsys fs.FS, logger *zap.Logger) (mapper.Set, *calibration.Registry, *hysteresis.Tracker, error) {
	registry, err := c.RegistryFS(fsys, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	tracker := c.Tracker()

	set, err := mapper.NewSet(c.Mechanism, registry, tracker)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error building joint mappers: %w", err)
	}

	return set, registry, tracker, nil
}
