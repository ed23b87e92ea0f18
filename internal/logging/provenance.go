package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-decision
// LogDecision writes an entry to the decision_log table.
func LogDecision(db *sql.DB, entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO decision_log (session_id, version_id, nation, issue_id, option_id, decision,
		  predicted_score, actual_score, reason, record_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		nullIfEmpty(entry.VersionID),
		entry.Nation,
		entry.IssueID,
		entry.OptionID,
		entry.Decision,
		nullIfNil(entry.PredictedScore),
		nullIfNil(entry.ActualScore),
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.RecordJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfNil(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

// #endregion helpers
