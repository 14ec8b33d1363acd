package dataset

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Split shuffles rows with the given seed and cuts them into train and test
// sets. The split is deterministic for a seed and leaves at least one row on
// each side.
func Split(rows []Encounter, testFraction float64, seed int64) (train, test []Encounter, err error) {
	if len(rows) < 2 {
		return nil, nil, errors.Errorf("need at least 2 rows to split, have %d", len(rows))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.Errorf("test fraction must be in (0, 1), got %f", testFraction)
	}

	n := int(float64(len(rows)) * testFraction)
	if n < 1 {
		n = 1
	}
	if n >= len(rows) {
		n = len(rows) - 1
	}
	return SplitN(rows, n, seed)
}

// SplitN shuffles rows with the given seed and takes exactly testRows rows as
// the test set. Reproducing a recorded split goes through this form: the cut
// comes from the stored row count, never from re-deriving a fraction whose
// truncation could land a row off.
func SplitN(rows []Encounter, testRows int, seed int64) (train, test []Encounter, err error) {
	if len(rows) < 2 {
		return nil, nil, errors.Errorf("need at least 2 rows to split, have %d", len(rows))
	}
	if testRows < 1 || testRows >= len(rows) {
		return nil, nil, errors.Errorf("test rows must be in [1, %d], got %d", len(rows)-1, testRows)
	}

	shuffled := make([]Encounter, len(rows))
	copy(shuffled, rows)

	rnd := rand.New(rand.NewSource(seed))
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[testRows:], shuffled[:testRows], nil
}
