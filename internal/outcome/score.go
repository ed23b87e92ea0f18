// Package outcome models issue outcomes and scores them against a weight model.
package outcome

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
	"github.com/danielpatrickdp/census-maximizer/internal/weights"
)

// #region score
// Score sums census deltas times their weights, then adds the weight of each
// weighted policy the outcome would actually change given the held set.
// Adding a held policy or removing an unheld one contributes nothing.
func Score(o Outcome, w *weights.Model, held PolicySet) (float64, error) {
	var score float64

	dims := make([]census.Dimension, 0, len(o.Census))
	for d := range o.Census {
		dims = append(dims, d)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	for _, d := range dims {
		weight, ok := w.Census[d]
		if !ok {
			return 0, fmt.Errorf("score: no weight for scale %d: %w", d, census.ErrUnknownDimension)
		}
		score += o.Census[d] * weight
	}

	names := make([]string, 0, len(o.Policies))
	for p := range o.Policies {
		names = append(names, p)
	}
	sort.Strings(names)
	for _, p := range names {
		weight, ok := w.Policy[p]
		if !ok {
			continue
		}
		change := o.Policies[p]
		if change == Adds && held.Has(p) {
			continue
		}
		if change == Removes && !held.Has(p) {
			continue
		}
		score += weight * float64(change)
	}
	return score, nil
}

// #endregion score
