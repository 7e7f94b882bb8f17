package calibration

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"sort"
	"strconv"
	"strings"
)

var ErrEmptyDataset = errors.New("dataset has no samples")

// Dataset is an ordered set of (independent, dependent) angle samples in radians
type Dataset struct {
	X []float64
	Y []float64
}

func (d Dataset) Len() int {
	return len(d.X)
}

// Range is a closed interval used to keep samples inside the valid operating range
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains is true when Min <= v <= Max
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ReadDataset parses two-column comma-separated rows. Lines starting with # are ignored
func ReadDataset(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var d Dataset
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("error reading dataset: %w", err)
		}

		x, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return Dataset{}, fmt.Errorf("invalid independent angle %q: %w", record[0], err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return Dataset{}, fmt.Errorf("invalid dependent angle %q: %w", record[1], err)
		}

		d.X = append(d.X, x)
		d.Y = append(d.Y, y)
	}

	if d.Len() == 0 {
		return Dataset{}, ErrEmptyDataset
	}

	return d, nil
}

// LoadDataset reads the named file from fsys
func LoadDataset(fsys fs.FS, name string) (Dataset, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return Dataset{}, fmt.Errorf("error opening dataset: %w", err)
	}
	defer f.Close()

	return ReadDataset(f)
}

// Filter keeps samples whose x is inside xr and, when yr is set, whose y is inside yr
func (d Dataset) Filter(xr Range, yr *Range) Dataset {
	var out Dataset
	for i := range d.X {
		if !xr.Contains(d.X[i]) {
			continue
		}
		if yr != nil && !yr.Contains(d.Y[i]) {
			continue
		}
		out.X = append(out.X, d.X[i])
		out.Y = append(out.Y, d.Y[i])
	}
	return out
}

// RejectOutliers drops samples whose x lies outside [Q1 − 1.5·IQR, Q3 + 1.5·IQR]
func (d Dataset) RejectOutliers() Dataset {
	if d.Len() == 0 {
		return d
	}

	sorted := append([]float64(nil), d.X...)
	sort.Float64s(sorted)

	q1 := Percentile(sorted, 25)
	q3 := Percentile(sorted, 75)
	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr

	var out Dataset
	for i, x := range d.X {
		if x < lower || x > upper {
			continue
		}
		out.X = append(out.X, x)
		out.Y = append(out.Y, d.Y[i])
	}
	return out
}

// Percentile linearly interpolates between the closest ranks of sorted, placing p at rank
// p/100*(n-1)
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
