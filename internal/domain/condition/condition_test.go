package condition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	agg := Initialize(2.0)
	assert.Equal(t, 2.0, agg.Condition)
	assert.Equal(t, 1, agg.NumContributedConditions)
}

func TestAccumulate_WithoutCurrentStartsFresh(t *testing.T) {
	agg := Accumulate(nil, 0, 1.5)
	assert.Equal(t, Initialize(1.5), agg)

	agg = Accumulate(nil, 7, 1.5)
	assert.Equal(t, Initialize(1.5), agg)
}

func TestAccumulate_RunningMean(t *testing.T) {
	current := 2.0
	agg := Accumulate(&current, 1, 3.0)
	assert.Equal(t, 2.5, agg.Condition)
	assert.Equal(t, 2, agg.NumContributedConditions)
}

func TestAccumulate_EqualsArithmeticMean(t *testing.T) {
	contributions := []float64{0, 3, 1.25, 2.75, 0.5, 3, 1, 2.2, 0.1, 1.9, 2.6}

	var current *float64
	count := 0
	sum := 0.0
	for _, c := range contributions {
		agg := Accumulate(current, count, c)
		value := agg.Condition
		current = &value
		count = agg.NumContributedConditions
		sum += c
	}

	assert.Equal(t, len(contributions), count)
	assert.InDelta(t, sum/float64(len(contributions)), *current, 1e-9)
}

func TestBounds_Validate(t *testing.T) {
	b := DefaultBounds()

	tests := []struct {
		name  string
		value float64
		want  bool
	}{
		{name: "lower bound", value: 0, want: true},
		{name: "upper bound", value: 3, want: true},
		{name: "inside", value: 1.7, want: true},
		{name: "negative", value: -0.01, want: false},
		{name: "above", value: 3.01, want: false},
		{name: "nan", value: math.NaN(), want: false},
		{name: "inf", value: math.Inf(1), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Validate(tt.value))
		})
	}
}
