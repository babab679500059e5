package similarity

import "math"

// WeightedAverage computes Σ(v·w)/Σw over paired values.
// Extra values or weights are ignored and a non-positive weight sum yields 0.
func WeightedAverage(values, weights []float64) float64 {
	n := min(len(values), len(weights))
	sum, total := 0.0, 0.0
	for i := 0; i < n; i++ {
		v, w := values[i], weights[i]
		if math.IsNaN(v) || math.IsNaN(w) || w <= 0 {
			continue
		}
		sum += v * w
		total += w
	}
	if total <= 0 {
		return 0
	}
	return sum / total
}

// Clamp01 bounds x to [0,1]; NaN becomes 0
func Clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// RoundScore maps a [0,1] value to an integer percentage
func RoundScore(x float64) int {
	return int(math.Round(Clamp01(x) * 100))
}

// Component is a named value with a weight, used for composite scores
type Component struct {
	Name   string
	Value  float64
	Weight float64
}

// Blend returns the weighted average of the components
func Blend(components ...Component) float64 {
	values := make([]float64, len(components))
	weights := make([]float64, len(components))
	for i, c := range components {
		values[i] = Clamp01(c.Value)
		weights[i] = c.Weight
	}
	return WeightedAverage(values, weights)
}
