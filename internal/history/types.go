package history

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
)

// ErrNoData is returned when there are no samples to reconstruct from.
var ErrNoData = errors.New("no census history")

// Day is the default axis step in seconds.
const Day int64 = 24 * 60 * 60

// #region sample
// Sample is one recorded census score.
type Sample struct {
	Timestamp int64
	Value     float64
}

// Series is a uniformly spaced weighted score. Timestamps and Scores are index-aligned.
type Series struct {
	Timestamps []int64
	Scores     []float64
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.Timestamps) }

// #endregion sample

// #region correction
// Correction divides the samples of one scale taken before a cutoff by a
// constant, to bridge a one-time change in how the game reported that scale.
// The result is an approximation and a jump may remain in the series.
type Correction struct {
	Dimension census.Dimension
	Before    int64
	Divisor   float64
}

// DefaultCorrections covers the Black Market rescale of 2019-11-19.
func DefaultCorrections() []Correction {
	return []Correction{
		{Dimension: 79, Before: 1574164800, Divisor: 6},
	}
}

// #endregion correction

// #region source
// Source fetches raw census history for a set of scales.
type Source interface {
	CensusHistory(ctx context.Context, scales []census.Dimension) (map[census.Dimension][]Sample, error)
}

// DefaultScales lists the scales worth plotting. Zombie, World Assembly and
// residency scales are left out because they swamp everything else.
func DefaultScales() []census.Dimension {
	scales := make([]census.Dimension, 0, 79)
	for d := census.Dimension(0); d <= 64; d++ {
		scales = append(scales, d)
	}
	for d := census.Dimension(67); d <= 79; d++ {
		scales = append(scales, d)
	}
	return append(scales, 85)
}

// #endregion source
