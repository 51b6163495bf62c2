package crossval

import (
	"fmt"
	"math/rand/v2"

	"labelaudit/internal/auditerr"
)

// foldStreamSeed decorrelates the fold shuffle from the per-fold model seeds.
const foldStreamSeed = 0x9e3779b97f4a7c15

// Folds assigns every index to one of the configured folds so that each
// class is spread as evenly as possible. classes names the label ids and is
// only used to build error messages; len(classes) fixes K.
func (e *Estimator) Folds(y []int, classes []string) ([]int, error) {
	return assignFolds(y, classes, e.cfg.Folds, e.cfg.Seed)
}

func assignFolds(y []int, classes []string, folds int, seed uint64) ([]int, error) {
	k := len(classes)
	members := make([][]int, k)
	for i, label := range y {
		if label < 0 || label >= k {
			return nil, fmt.Errorf("%w: label id %d at index %d outside [0,%d)", auditerr.ErrUnknownLabel, label, i, k)
		}
		members[label] = append(members[label], i)
	}
	for c, idx := range members {
		if len(idx) > 0 && len(idx) < folds {
			return nil, &auditerr.InsufficientClassSamplesError{Class: classes[c], Count: len(idx), Folds: folds}
		}
	}

	rng := rand.New(rand.NewPCG(seed, foldStreamSeed))
	assignment := make([]int, len(y))
	offset := 0
	for _, idx := range members {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for j, index := range idx {
			assignment[index] = (offset + j) % folds
		}
		offset = (offset + len(idx)) % folds
	}
	return assignment, nil
}
