package issues

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"labelaudit/internal/auditerr"
)

// Flag is one suspected label error.
type Flag struct {
	Index          int     `json:"index"`
	SelfConfidence float64 `json:"self_confidence"`
	// ConfidentClass is the other class with the highest probability among
	// those that cleared their threshold.
	ConfidentClass int `json:"confident_class"`
}

// Detection is the ranked output of Detect.
type Detection struct {
	Flags      []Flag
	Thresholds []float64
}

// Indices returns the ranked global indices.
func (d *Detection) Indices() []int {
	if d == nil {
		return nil
	}
	out := make([]int, len(d.Flags))
	for i, f := range d.Flags {
		out[i] = f.Index
	}
	return out
}

// Thresholds returns the mean self-confidence per class. A class without
// labelled examples gets threshold 0.
func Thresholds(p mat.Matrix, y []int) ([]float64, error) {
	k, err := check(p, y)
	if err != nil {
		return nil, err
	}
	sums := make([]float64, k)
	counts := make([]int, k)
	for i, label := range y {
		sums[label] += p.At(i, label)
		counts[label]++
	}
	for c := range sums {
		if counts[c] > 0 {
			sums[c] /= float64(counts[c])
		}
	}
	return sums, nil
}

// Detect flags tokens whose given label looks wrong. Fewer than two classes
// or no tokens yields an empty Detection.
func Detect(p mat.Matrix, y []int) (*Detection, error) {
	k, err := check(p, y)
	if err != nil {
		return nil, err
	}
	if k < 2 || len(y) == 0 {
		return &Detection{Flags: []Flag{}, Thresholds: make([]float64, k)}, nil
	}
	thresholds, err := Thresholds(p, y)
	if err != nil {
		return nil, err
	}

	flags := make([]Flag, 0)
	for i, given := range y {
		self := p.At(i, given)
		if self >= thresholds[given] {
			continue
		}
		best := -1
		for c := 0; c < k; c++ {
			if c == given {
				continue
			}
			v := p.At(i, c)
			if v > thresholds[c] && (best < 0 || v > p.At(i, best)) {
				best = c
			}
		}
		if best >= 0 {
			flags = append(flags, Flag{Index: i, SelfConfidence: self, ConfidentClass: best})
		}
	}
	sort.SliceStable(flags, func(a, b int) bool {
		if flags[a].SelfConfidence != flags[b].SelfConfidence {
			return flags[a].SelfConfidence < flags[b].SelfConfidence
		}
		return flags[a].Index < flags[b].Index
	})
	return &Detection{Flags: flags, Thresholds: thresholds}, nil
}

// ConfidentJoint counts (given label, confident class) pairs. The confident
// class of a token is its most probable class among those reaching their
// threshold; tokens where no class qualifies are not counted.
func ConfidentJoint(p mat.Matrix, y []int, thresholds []float64) (*mat.Dense, error) {
	k, err := check(p, y)
	if err != nil {
		return nil, err
	}
	if len(thresholds) != k {
		return nil, fmt.Errorf("%w: %d thresholds for %d classes", auditerr.ErrAlignmentMismatch, len(thresholds), k)
	}
	if k == 0 {
		return &mat.Dense{}, nil
	}
	joint := mat.NewDense(k, k, nil)
	for i, given := range y {
		best := -1
		for c := 0; c < k; c++ {
			v := p.At(i, c)
			if v >= thresholds[c] && (best < 0 || v > p.At(i, best)) {
				best = c
			}
		}
		if best >= 0 {
			joint.Set(given, best, joint.At(given, best)+1)
		}
	}
	return joint, nil
}

func check(p mat.Matrix, y []int) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: nil probability matrix", auditerr.ErrAlignmentMismatch)
	}
	rows, k := p.Dims()
	if rows != len(y) {
		return 0, fmt.Errorf("%w: %d probability rows, %d labels", auditerr.ErrAlignmentMismatch, rows, len(y))
	}
	for i, label := range y {
		if label < 0 || label >= k {
			return 0, fmt.Errorf("%w: label id %d at index %d outside [0,%d)", auditerr.ErrUnknownLabel, label, i, k)
		}
		for c := 0; c < k; c++ {
			if v := p.At(i, c); math.IsNaN(v) || v < 0 || v > 1 {
				return 0, fmt.Errorf("%w: row %d column %d is %v", auditerr.ErrInvalidProbabilities, i, c, v)
			}
		}
	}
	return k, nil
}
