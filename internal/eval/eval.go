package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/census-maximizer/internal/outcome"
)

// #region eval-harness
// EvalHarness compares a committed option's predicted outcome with what the
// game actually applied.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Config returns the thresholds the harness checks against.
func (h *EvalHarness) Config() EvalConfig {
	return h.config
}

// Run measures prediction drift. held is the policy set before the commit.
func (h *EvalHarness) Run(predicted, actual outcome.Outcome, predictedScore, actualScore float64, held outcome.PolicySet) EvalResult {
	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. Score drift
	drift := math.Abs(actualScore - predictedScore)
	driftPass := drift <= h.config.MaxScoreDrift
	metrics = append(metrics, EvalMetric{Name: "score_drift", Value: drift, Pass: driftPass})
	if !driftPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("score drift %.6f exceeds %.6f", drift, h.config.MaxScoreDrift))
	}

	// 2. Policy changes that happened differently than predicted
	misses := policyMisses(predicted, actual, held)
	policyPass := misses <= h.config.MaxPolicyMisses
	metrics = append(metrics, EvalMetric{Name: "policy_misses", Value: float64(misses), Pass: policyPass})
	if !policyPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("%d policy changes mispredicted", misses))
	}

	// 3. Predicted scales the game did not report moving
	missing := 0
	for d := range predicted.Census {
		if _, ok := actual.Census[d]; !ok {
			missing++
		}
	}
	censusPass := missing <= h.config.MaxCensusMissing
	metrics = append(metrics, EvalMetric{Name: "census_missing", Value: float64(missing), Pass: censusPass})
	if !censusPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("%d predicted scales did not move", missing))
	}

	reason := "prediction held"
	if !passed {
		reason = fmt.Sprintf("prediction drift: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("prediction drift: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
// policyMisses counts effective predicted changes that did not happen plus
// actual changes that were not predicted.
func policyMisses(predicted, actual outcome.Outcome, held outcome.PolicySet) int {
	misses := 0
	for name, change := range predicted.Policies {
		if change == outcome.Adds && held.Has(name) {
			continue
		}
		if change == outcome.Removes && !held.Has(name) {
			continue
		}
		if actual.Policies[name] != change {
			misses++
		}
	}
	for name, change := range actual.Policies {
		if predicted.Policies[name] != change {
			misses++
		}
	}
	return misses
}

// #endregion helpers
