package update

import (
	"github.com/danielpatrickdp/census-maximizer/internal/outcome"
	"github.com/danielpatrickdp/census-maximizer/internal/state"
)

// #region policy-delta
// PolicyDelta is what the game reported changing after an issue was answered.
type PolicyDelta struct {
	Added   []string
	Removed []string
}

// #endregion policy-delta

// #region decision
// Decision records what the update function decided.
type Decision struct {
	Action string // "commit" | "no_op"
	Reason string
}

// #endregion decision

// #region metrics
// Metrics captures telemetry from an update.
type Metrics struct {
	Added        []string `json:"added,omitempty"`
	Removed      []string `json:"removed,omitempty"`
	PolicyCount  int      `json:"policy_count"`
	UpdateTimeMs int64    `json:"update_time_ms"`
}

// #endregion metrics

// #region update-result
// UpdateResult bundles everything returned by Apply.
type UpdateResult struct {
	NewState    state.PolicyRecord
	NewPolicies outcome.PolicySet
	Decision    Decision
	Metrics     Metrics
}

// #endregion update-result
