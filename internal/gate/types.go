package gate

// #region action
// Action is the gate's verdict for an issue.
type Action string

const (
	ActionCommit       Action = "commit"
	ActionDismiss      Action = "dismiss"
	ActionUnresolvable Action = "unresolvable"
)

// #endregion action

// #region veto-type
// VetoType enumerates the reasons an issue is not committed.
type VetoType string

const (
	VetoUnsolvable VetoType = "unsolvable"
	VetoSkipList   VetoType = "skip_list"
	VetoThreshold  VetoType = "score_threshold"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds the issue lists and score threshold for gate decisions.
type GateConfig struct {
	SkipIssues []int   // always dismissed
	Unsolvable []int   // never acted on
	MinScore   float64 // best score must be strictly above this to commit
}

// DefaultGateConfig returns a gate that dismisses only non-positive issues.
func DefaultGateConfig() GateConfig {
	return GateConfig{MinScore: 0}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      Action
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
	BestScore   float64
}

// #endregion gate-decision
