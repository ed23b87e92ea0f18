package logging

import "time"

// #region decision-entry
// DecisionEntry is a single row in the decision_log table.
type DecisionEntry struct {
	SessionID      string
	VersionID      string
	Nation         string
	IssueID        int
	OptionID       int
	Decision       string // "commit" | "dismiss" | "unresolvable"
	PredictedScore *float64
	ActualScore    *float64
	Reason         string
	RecordJSON     string
	CreatedAt      time.Time
}

// #endregion decision-entry

// #region decision-record
// DecisionRecord captures everything that went into one issue decision.
// Serialized as JSON into decision_log.record_json and the journal.
type DecisionRecord struct {
	SessionID string `json:"session_id"`
	Nation    string `json:"nation"`
	IssueID   int    `json:"issue_id"`
	Action    string `json:"action"`
	OptionID  int    `json:"option_id"`

	// Predicted score per option id, as evaluated at decision time
	OptionScores map[int]float64 `json:"option_scores,omitempty"`
	Predicted    float64         `json:"predicted"`
	Actual       *float64        `json:"actual,omitempty"`

	// Census rank changes reported by the game, keyed by scale id
	CensusChanges   map[int]float64 `json:"census_changes,omitempty"`
	PoliciesAdded   []string        `json:"policies_added,omitempty"`
	PoliciesRemoved []string        `json:"policies_removed,omitempty"`

	Vetoes     []string          `json:"vetoes,omitempty"`
	Eval       []EvalMetricEntry `json:"eval,omitempty"`
	Thresholds RecordThresholds  `json:"thresholds"`
	Reason     string            `json:"reason"`
	CreatedAt  time.Time         `json:"created_at"`
}

// EvalMetricEntry mirrors one prediction check.
type EvalMetricEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// RecordThresholds captures the gate/eval config active at decision time.
type RecordThresholds struct {
	MinScore      float64 `json:"min_score"`
	MaxScoreDrift float64 `json:"max_score_drift"`
}

// #endregion decision-record
