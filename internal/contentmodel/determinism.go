package contentmodel

import "fmt"

// PositionOverlapFunc reports whether two positions can match the same element.
type PositionOverlapFunc func(left, right Position) bool

// AmbiguityError names two positions of one state that overlap.
type AmbiguityError struct {
	Left  Position
	Right Position
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("content model is not deterministic: particles %d and %d overlap", e.Left.Particle, e.Right.Particle)
}

// CheckDeterminism returns an *AmbiguityError if the first set or any follow
// set contains two overlapping positions.
func CheckDeterminism(glu *Glushkov, overlap PositionOverlapFunc) error {
	if glu == nil || overlap == nil || len(glu.Positions) == 0 {
		return nil
	}
	overlaps := buildOverlapSets(glu.Positions, overlap)
	if overlaps == nil {
		return nil
	}
	if err := checkSetDeterminism(glu.first, glu.Positions, overlaps); err != nil {
		return err
	}
	for _, state := range glu.follow {
		if err := checkSetDeterminism(state, glu.Positions, overlaps); err != nil {
			return err
		}
	}
	return nil
}

// buildOverlapSets evaluates overlap once per unordered pair; the relation
// is stored symmetrically.
func buildOverlapSets(positions []Position, overlap PositionOverlapFunc) []*bitset {
	var overlaps []*bitset
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			if !overlap(positions[i], positions[j]) {
				continue
			}
			if overlaps == nil {
				overlaps = make([]*bitset, len(positions))
			}
			if overlaps[i] == nil {
				overlaps[i] = newBitset(len(positions))
			}
			if overlaps[j] == nil {
				overlaps[j] = newBitset(len(positions))
			}
			overlaps[i].set(j)
			overlaps[j].set(i)
		}
	}
	return overlaps
}

func checkSetDeterminism(state *bitset, positions []Position, overlaps []*bitset) error {
	if state == nil || state.empty() {
		return nil
	}
	var err error
	state.forEach(func(pos int) {
		if err != nil || overlaps[pos] == nil {
			return
		}
		overlaps[pos].forEach(func(other int) {
			if err == nil && other > pos && state.has(other) {
				err = &AmbiguityError{Left: positions[pos], Right: positions[other]}
			}
		})
	})
	return err
}
