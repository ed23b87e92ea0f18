// Package weights holds the per-scale and per-policy weights used to score
// issue outcomes.
package weights

import (
	"errors"
	"fmt"
	"math"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
)

// ErrZeroSpread is returned when a scale's world spread cannot produce a weight.
var ErrZeroSpread = errors.New("zero world spread")

// #region model
// Model maps census scales to multiplicative weights and policy names to
// additive weights.
type Model struct {
	Census map[census.Dimension]float64
	Policy map[string]float64

	table *census.Table
}

// Default weighs every scale in the table by 1/|world spread|, so rarer
// movements count for more. The policy map starts empty.
func Default(table *census.Table) (*Model, error) {
	m := &Model{
		Census: make(map[census.Dimension]float64, table.Len()),
		Policy: map[string]float64{},
		table:  table,
	}
	for _, d := range table.Dimensions() {
		s, _ := table.Stat(d)
		if s.Spread == 0 {
			return nil, fmt.Errorf("scale %d (%s): %w", d, s.Name, ErrZeroSpread)
		}
		m.Census[d] = 1 / math.Abs(s.Spread)
	}
	return m, nil
}

// Clone returns a deep copy sharing only the read-only table.
func (m *Model) Clone() *Model {
	c := &Model{
		Census: make(map[census.Dimension]float64, len(m.Census)),
		Policy: make(map[string]float64, len(m.Policy)),
		table:  m.table,
	}
	for d, w := range m.Census {
		c.Census[d] = w
	}
	for p, w := range m.Policy {
		c.Policy[p] = w
	}
	return c
}

// Table returns the reference table the model was built from.
func (m *Model) Table() *census.Table {
	return m.table
}

// #endregion model

// #region adjust
// Adjust multiplies the weight of each named scale by its multiplier and
// replaces the policy weights wholesale. A multiplier of 0 ignores a scale;
// a negative one turns maximizing into minimizing. Names are resolved before
// any weight changes, so an unknown name leaves the model untouched.
func (m *Model) Adjust(scales map[float64][]string, policy map[string]float64) error {
	type step struct {
		dim    census.Dimension
		factor float64
	}
	var steps []step
	for factor, names := range scales {
		for _, name := range names {
			d, err := m.table.Lookup(name)
			if err != nil {
				return fmt.Errorf("adjust weights: %w", err)
			}
			steps = append(steps, step{dim: d, factor: factor})
		}
	}
	for _, s := range steps {
		m.Census[s.dim] *= s.factor
	}

	m.Policy = make(map[string]float64, len(policy))
	for p, w := range policy {
		m.Policy[p] = w
	}
	return nil
}

// #endregion adjust
