package motion

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	elbowdriver "github.com/PCIGITI/elbow-driver"
)

// ParseDeltas reads a list of joint moves separated by spaces or commas. Each move is a joint
// code followed by a signed angle in degrees ("EP+10.3", "WP-5") or "NAME=value" ("EP=10.3")
func ParseDeltas(s string) (Deltas, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no moves in %q", elbowdriver.ErrInvalidDelta, s)
	}

	deltas := Deltas{}
	for _, f := range fields {
		name, value, err := splitMove(f)
		if err != nil {
			return nil, err
		}

		j, err := elbowdriver.ParseJoint(name)
		if err != nil {
			return nil, err
		}
		if _, ok := deltas[j]; ok {
			return nil, fmt.Errorf("%w: %s given more than once", elbowdriver.ErrInvalidDelta, j)
		}

		d, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", elbowdriver.ErrInvalidDelta, f, err)
		}
		deltas[j] = d
	}

	return deltas, nil
}

func splitMove(f string) (string, string, error) {
	if name, value, ok := strings.Cut(f, "="); ok {
		return name, value, nil
	}

	i := strings.IndexAny(f, "+-")
	if i <= 0 {
		return "", "", fmt.Errorf("%w: %q has no signed angle", elbowdriver.ErrInvalidDelta, f)
	}
	return f[:i], f[i:], nil
}

// String formats deltas in the same form ParseDeltas reads, in joint order
func (d Deltas) String() string {
	joints := make([]elbowdriver.Joint, 0, len(d))
	for j := range d {
		joints = append(joints, j)
	}
	sort.Slice(joints, func(a, b int) bool { return joints[a] < joints[b] })

	parts := make([]string, 0, len(joints))
	for _, j := range joints {
		sign := ""
		if d[j] >= 0 {
			sign = "+"
		}
		parts = append(parts, j.String()+sign+strconv.FormatFloat(d[j], 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}
