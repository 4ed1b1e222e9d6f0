// Package condition maintains the running mean of user-contributed shelter condition scores.
package condition

import "math"

const (
	// DefaultMin is the lowest accepted condition score.
	DefaultMin = 0.0
	// DefaultMax is the highest accepted condition score.
	DefaultMax = 3.0
)

// Aggregate is the stored pair of mean score and contribution count.
type Aggregate struct {
	Condition                float64
	NumContributedConditions int
}

// Bounds is the closed interval accepted for a contributed score.
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds returns [0, 3].
func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMin, Max: DefaultMax}
}

// Validate returns true iff x is a finite real number inside the bounds.
func (b Bounds) Validate(x float64) bool {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return false
	}

	return x >= b.Min && x <= b.Max
}

// Initialize starts a new aggregate from a single score.
func Initialize(score float64) Aggregate {
	return Aggregate{Condition: score, NumContributedConditions: 1}
}

// Accumulate folds one more contribution into the mean. A nil current value,
// or a non-positive count, restarts the aggregate from the contribution.
func Accumulate(current *float64, count int, contributed float64) Aggregate {
	if current == nil || count <= 0 {
		return Initialize(contributed)
	}

	return Aggregate{
		Condition:                (*current*float64(count) + contributed) / float64(count+1),
		NumContributedConditions: count + 1,
	}
}
