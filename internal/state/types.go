package state

import "time"

// #region policy-record
// PolicyRecord is a versioned snapshot of the policies a nation holds.
type PolicyRecord struct {
	VersionID   string
	ParentID    string
	Nation      string
	Policies    []string
	CreatedAt   time.Time
	MetricsJSON string
}

// #endregion policy-record

// #region decision-row
// DecisionRow is one audited issue decision as read back from the store.
type DecisionRow struct {
	ID             int64
	SessionID      string
	VersionID      string
	Nation         string
	IssueID        int
	OptionID       int
	Decision       string // "commit" | "dismiss" | "unresolvable"
	PredictedScore float64
	ActualScore    float64
	Reason         string
	RecordJSON     string
	CreatedAt      time.Time
}

// #endregion decision-row
