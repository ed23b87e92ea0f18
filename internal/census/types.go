package census

import "errors"

// #region dimension
// Dimension identifies one census scale.
type Dimension int

// Stat is the reference row for one scale.
type Stat struct {
	Name   string  `yaml:"name"`
	Mean   float64 `yaml:"mean"`
	Spread float64 `yaml:"spread"`
}

// #endregion dimension

// #region errors
// ErrUnknownDimension is returned for scale ids or names missing from the table.
var ErrUnknownDimension = errors.New("unknown census dimension")

// #endregion errors
