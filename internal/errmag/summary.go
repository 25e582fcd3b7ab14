package errmag

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summarize reduces each leaf of m to summary statistics, ordered by scale then method.
func Summarize(m Magnitudes) []LeafSummary {
	var rows []LeafSummary
	for _, scale := range SortedScales(m) {
		for _, method := range SortedMethods(m[scale]) {
			rows = append(rows, SummarizeLeaf(scale, method, m[scale][method]))
		}
	}
	return rows
}

func SummarizeLeaf(scale ScaleKey, method MethodKey, distances []float64) LeafSummary {
	row := LeafSummary{Scale: scale, Method: method, Samples: len(distances)}
	if len(distances) == 0 {
		return row
	}

	row.Mean, row.StdDev = stat.MeanStdDev(distances, nil)
	if len(distances) < 2 || math.IsNaN(row.StdDev) {
		row.StdDev = 0.0
	}

	row.Median = median(distances)

	row.RMSE = floats.Norm(distances, 2) / math.Sqrt(float64(len(distances)))
	row.Max = floats.Max(distances)

	return row
}

// median averages the two middle values for an even count. distances is not reordered.
func median(distances []float64) float64 {
	sorted := make([]float64, len(distances))
	copy(sorted, distances)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
