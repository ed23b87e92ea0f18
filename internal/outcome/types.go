package outcome

import (
	"errors"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
)

// #region policy-change
// PolicyChange is the direction an outcome moves a policy.
type PolicyChange int

const (
	Removes PolicyChange = -1
	Adds    PolicyChange = 1
)

func (c PolicyChange) String() string {
	switch c {
	case Adds:
		return "adds"
	case Removes:
		return "removes"
	default:
		return "unknown"
	}
}

// ParsePolicyChange accepts "adds" or "removes".
func ParsePolicyChange(s string) (PolicyChange, error) {
	switch s {
	case "adds", "ADDS":
		return Adds, nil
	case "removes", "REMOVES":
		return Removes, nil
	}
	return 0, errors.New("policy change must be adds or removes, got " + s)
}

// #endregion policy-change

// #region outcome
// Outcome is the census and policy effect of picking one issue option.
type Outcome struct {
	Census   map[census.Dimension]float64
	Policies map[string]PolicyChange
}

// New returns an empty outcome with initialized maps.
func New() Outcome {
	return Outcome{
		Census:   map[census.Dimension]float64{},
		Policies: map[string]PolicyChange{},
	}
}

// #endregion outcome
