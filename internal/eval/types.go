package eval

// #region eval-config
// EvalConfig holds thresholds for post-commit prediction checks.
type EvalConfig struct {
	MaxScoreDrift    float64 // flag if |actual - predicted| exceeds this
	MaxPolicyMisses  int     // flag if more policy changes than this were mispredicted
	MaxCensusMissing int     // flag if more predicted scales than this did not move
}

// DefaultEvalConfig returns thresholds tuned for default spread weights.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxScoreDrift:    0.5,
		MaxPolicyMisses:  0,
		MaxCensusMissing: 3,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single prediction check.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of a prediction check. It is informational:
// nothing is rolled back when it fails.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result
