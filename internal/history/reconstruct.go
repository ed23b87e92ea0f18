// Package history turns irregular census samples into a daily weighted score
// series for trend audits.
package history

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
	"github.com/danielpatrickdp/census-maximizer/internal/weights"
)

// #region reconstructor
// Reconstructor resamples census history onto a uniform axis.
type Reconstructor struct {
	Step        int64
	Corrections []Correction
}

// NewReconstructor returns a daily reconstructor with the default corrections.
func NewReconstructor() *Reconstructor {
	return &Reconstructor{Step: Day, Corrections: DefaultCorrections()}
}

// Reconstruct interpolates every scale onto an axis running from the earliest
// sample up to, but excluding, the latest one, weighs it and sums the scales.
// Outside a scale's own sample range the nearest endpoint value is used.
func (r *Reconstructor) Reconstruct(samples map[census.Dimension][]Sample, w *weights.Model) (Series, error) {
	if r.Step <= 0 {
		return Series{}, fmt.Errorf("reconstruct: step must be positive, got %d", r.Step)
	}

	var minTS, maxTS int64
	found := false
	for _, pts := range samples {
		for _, p := range pts {
			if !found || p.Timestamp < minTS {
				minTS = p.Timestamp
			}
			if !found || p.Timestamp > maxTS {
				maxTS = p.Timestamp
			}
			found = true
		}
	}
	if !found {
		return Series{}, ErrNoData
	}

	axis := make([]int64, 0, (maxTS-minTS)/r.Step+1)
	for t := minTS; t < maxTS; t += r.Step {
		axis = append(axis, t)
	}
	total := make([]float64, len(axis))

	dims := make([]census.Dimension, 0, len(samples))
	for d := range samples {
		dims = append(dims, d)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })

	for _, d := range dims {
		pts := samples[d]
		if len(pts) == 0 {
			continue
		}
		weight, ok := w.Census[d]
		if !ok {
			return Series{}, fmt.Errorf("reconstruct: no weight for scale %d: %w", d, census.ErrUnknownDimension)
		}

		sorted := append([]Sample(nil), pts...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })
		xs := make([]int64, len(sorted))
		ys := make([]float64, len(sorted))
		for i, p := range sorted {
			xs[i] = p.Timestamp
			ys[i] = weight * p.Value
		}
		r.correct(d, xs, ys)

		for i, t := range axis {
			total[i] += interp(t, xs, ys)
		}
	}

	return Series{Timestamps: axis, Scores: total}, nil
}

func (r *Reconstructor) correct(d census.Dimension, xs []int64, ys []float64) {
	for _, c := range r.Corrections {
		if c.Dimension != d || c.Divisor == 0 {
			continue
		}
		for i := range xs {
			if xs[i] >= c.Before {
				break
			}
			ys[i] /= c.Divisor
		}
	}
}

// #endregion reconstructor

// #region interp
// interp linearly interpolates at t over ascending xs, clamping to the first
// and last value outside the range. Duplicate timestamps resolve to the later sample.
func interp(t int64, xs []int64, ys []float64) float64 {
	n := len(xs)
	if t <= xs[0] {
		return ys[0]
	}
	if t >= xs[n-1] {
		return ys[n-1]
	}
	// first index with xs[i] > t; 1 <= i <= n-1
	i := sort.Search(n, func(i int) bool { return xs[i] > t })
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	if x1 == x0 {
		return y1
	}
	frac := float64(t-x0) / float64(x1-x0)
	return y0 + frac*(y1-y0)
}

// #endregion interp

// #region fetch
// Fetch pulls history for scales from src and reconstructs it. A nil scale
// list means DefaultScales.
func (r *Reconstructor) Fetch(ctx context.Context, src Source, scales []census.Dimension, w *weights.Model) (Series, error) {
	if len(scales) == 0 {
		scales = DefaultScales()
	}
	samples, err := src.CensusHistory(ctx, scales)
	if err != nil {
		return Series{}, fmt.Errorf("fetch census history: %w", err)
	}
	series, err := r.Reconstruct(samples, w)
	if err != nil {
		return Series{}, err
	}
	log.Printf("[HISTORY] reconstructed %d days across %d scales", series.Len(), len(samples))
	return series, nil
}

// #endregion fetch
