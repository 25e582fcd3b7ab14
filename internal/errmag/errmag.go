// Package errmag computes per-sample Euclidean error between measured and reference positions
package errmag

import (
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ComputeErrorMagnitude replaces every [D, N] leaf of results with the column-wise L2 norm
// of (leaf - transpose(reference)), where reference is [N, D].
// The returned Magnitudes shares no memory with results or reference.
func ComputeErrorMagnitude(results Results, reference *mat.Dense) (Magnitudes, error) {
	return NewComputer().Compute(results, reference)
}

// ColumnDistances returns, for each column i of measurement, the Euclidean distance between
// that column and row i of reference.
func ColumnDistances(measurement, reference *mat.Dense) ([]float64, error) {
	if err := checkReference(reference); err != nil {
		return nil, err
	}
	return columnDistances("", "", measurement, reference)
}

func checkReference(reference *mat.Dense) error {
	if reference == nil {
		return &TypeMismatchError{Reason: "reference is nil"}
	}
	if reference.IsEmpty() {
		return &TypeMismatchError{Reason: "reference is empty"}
	}
	return nil
}

func columnDistances(scale ScaleKey, method MethodKey, measurement, reference *mat.Dense) ([]float64, error) {
	if measurement == nil {
		return nil, &TypeMismatchError{Scale: scale, Method: method, Reason: "measurement is nil"}
	}
	if measurement.IsEmpty() {
		return nil, &TypeMismatchError{Scale: scale, Method: method, Reason: "measurement is empty"}
	}

	dims, samples := measurement.Dims()
	refSamples, refDims := reference.Dims()
	if dims != refDims || samples != refSamples {
		return nil, &ShapeMismatchError{
			Scale:       scale,
			Method:      method,
			Measurement: [2]int{dims, samples},
			Reference:   [2]int{refDims, refSamples},
		}
	}

	var diff mat.Dense
	diff.Sub(measurement, reference.T())

	distances := make([]float64, samples)
	col := make([]float64, dims)
	for i := range samples {
		mat.Col(col, i, &diff)
		distances[i] = floats.Norm(col, 2)
	}

	log.Trace().Str("scale", string(scale)).Str("method", string(method)).
		Int("dims", dims).Int("samples", samples).Msg("computed column distances")
	return distances, nil
}

func computeSequential(jobs []leafJob, reference *mat.Dense) ([][]float64, error) {
	startTime := time.Now()
	out := make([][]float64, len(jobs))
	for idx, j := range jobs {
		distances, err := columnDistances(j.scale, j.method, j.leaf, reference)
		if err != nil {
			log.Debug().Err(err).Msgf("Aborting after %d of %d leaves", idx, len(jobs))
			return nil, err
		}
		out[idx] = distances
	}
	log.Debug().Msgf("Computed %d leaves sequentially in %v", len(jobs), time.Since(startTime))
	return out, nil
}
