package errmag

import "gonum.org/v1/gonum/mat"

type (
	ScaleKey  string // experimental condition, e.g. "0.5"
	MethodKey string // estimation technique being evaluated
)

// Results holds measured positions per scale and method. Each leaf is D x N:
// one row per spatial dimension, one column per sample.
type Results map[ScaleKey]map[MethodKey]*mat.Dense

// Magnitudes mirrors Results with each leaf replaced by its N per-sample distances.
type Magnitudes map[ScaleKey]map[MethodKey][]float64

type LeafSummary struct {
	Scale   ScaleKey
	Method  MethodKey
	Samples int
	Mean    float64
	StdDev  float64
	Median  float64
	RMSE    float64
	Max     float64
}
