package errmag

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/errmag/internal/utils/logger"
)

type Computer struct {
	Parallelism int
}

type ComputerOption func(*Computer)

// WithParallelism bounds the number of leaves computed concurrently. Values below 2 keep
// the computation on the calling goroutine.
func WithParallelism(n int) ComputerOption {
	return func(c *Computer) {
		c.Parallelism = n
	}
}

func NewComputer(opts ...ComputerOption) *Computer {
	c := &Computer{
		Parallelism: 1,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type leafJob struct {
	scale  ScaleKey
	method MethodKey
	leaf   *mat.Dense
}

// Compute is all-or-nothing: the first failing leaf aborts the call and no partial
// Magnitudes is returned. The reference is only read when there is at least one leaf.
func (c *Computer) Compute(results Results, reference *mat.Dense) (Magnitudes, error) {
	magnitudes := make(Magnitudes, len(results))
	for scale, methods := range results {
		magnitudes[scale] = make(map[MethodKey][]float64, len(methods))
	}

	jobs := collectJobs(results)
	if len(jobs) == 0 {
		log.Debug().Int("scales", len(results)).Msg("Empty results, nothing to compute")
		return magnitudes, nil
	}

	if err := checkReference(reference); err != nil {
		return nil, err
	}
	logger.Sugar().Debugw("Computing error magnitudes", "scales", len(results), "leaves", len(jobs), "parallelism", c.Parallelism)

	var (
		distances [][]float64
		err       error
	)
	if c.Parallelism > 1 && len(jobs) > 1 {
		distances, err = computeParallel(jobs, reference, c.Parallelism)
	} else {
		distances, err = computeSequential(jobs, reference)
	}
	if err != nil {
		return nil, err
	}

	for idx, j := range jobs {
		magnitudes[j.scale][j.method] = distances[idx]
	}

	return magnitudes, nil
}

// collectJobs flattens results in scale then method order so the sequential path reports
// the same first failure on every run.
func collectJobs(results Results) []leafJob {
	var jobs []leafJob
	for _, scale := range SortedScales(results) {
		methods := results[scale]
		for _, method := range sortedKeys(methods) {
			jobs = append(jobs, leafJob{scale: scale, method: method, leaf: methods[method]})
		}
	}
	return jobs
}

func computeParallel(jobs []leafJob, reference *mat.Dense, parallelism int) ([][]float64, error) {
	startTime := time.Now()
	out := make([][]float64, len(jobs))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(parallelism)
	for idx, j := range jobs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			distances, err := columnDistances(j.scale, j.method, j.leaf, reference)
			if err != nil {
				return err
			}
			out[idx] = distances
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Debug().Err(err).Msg("Aborting parallel computation")
		return nil, err
	}

	log.Debug().Msgf("Computed %d leaves with parallelism %d in %v", len(jobs), parallelism, time.Since(startTime))
	return out, nil
}

// SortedScales returns the scale keys of results in ascending order.
func SortedScales[V any](results map[ScaleKey]V) []ScaleKey {
	return sortedKeys(results)
}

// SortedMethods returns the method keys of one scale in ascending order.
func SortedMethods[V any](methods map[MethodKey]V) []MethodKey {
	return sortedKeys(methods)
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}
