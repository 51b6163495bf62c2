// Package vocab maps label strings to dense class ids and back.
package vocab

import (
	"fmt"
	"sort"

	"labelaudit/internal/auditerr"
)

// Vocabulary is an immutable bijection between observed labels and ids
// 0..K-1. Ids follow the alphabetical order of the labels.
type Vocabulary struct {
	labels []string
	ids    map[string]int
}

// New builds a vocabulary from every label in labels. Duplicates collapse.
func New(labels []string) *Vocabulary {
	ids := make(map[string]int, 16)
	unique := make([]string, 0, 16)
	for _, label := range labels {
		if _, ok := ids[label]; ok {
			continue
		}
		ids[label] = 0
		unique = append(unique, label)
	}
	sort.Strings(unique)
	for id, label := range unique {
		ids[label] = id
	}
	return &Vocabulary{labels: unique, ids: ids}
}

// Len returns the number of classes.
func (v *Vocabulary) Len() int {
	return len(v.labels)
}

// Encode returns the class id of label.
func (v *Vocabulary) Encode(label string) (int, error) {
	id, ok := v.ids[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", auditerr.ErrUnknownLabel, label)
	}
	return id, nil
}

// EncodeAll encodes labels in order, failing on the first unknown label.
func (v *Vocabulary) EncodeAll(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, label := range labels {
		id, err := v.Encode(label)
		if err != nil {
			return nil, fmt.Errorf("encode label at index %d: %w", i, err)
		}
		out[i] = id
	}
	return out, nil
}

// Decode returns the label for class id.
func (v *Vocabulary) Decode(id int) (string, error) {
	if id < 0 || id >= len(v.labels) {
		return "", fmt.Errorf("%w: class id %d outside [0,%d)", auditerr.ErrUnknownLabel, id, len(v.labels))
	}
	return v.labels[id], nil
}

// Classes returns the labels ordered by id.
func (v *Vocabulary) Classes() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}
