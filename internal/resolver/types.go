package resolver

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
	"github.com/danielpatrickdp/census-maximizer/internal/outcome"
)

// ErrNotWriteCapable is returned when issues are solved without a password.
var ErrNotWriteCapable = errors.New("session is not write-capable")

// #region issue
// Issue is a pending decision and the ids of its options.
type Issue struct {
	ID      int
	Title   string
	Options []int
}

// #endregion issue

// #region nation
// CommitResult is what the game reported after an option was picked.
type CommitResult struct {
	Rankings        map[census.Dimension]float64
	NewPolicies     []string
	RemovedPolicies []string
}

// Nation is the remote actor issues are solved for.
type Nation interface {
	Name() string
	WriteCapable() bool
	PendingIssues(ctx context.Context) ([]Issue, error)
	Policies(ctx context.Context) ([]string, error)
	Dismiss(ctx context.Context, issueID int) error
	Commit(ctx context.Context, issueID, optionID int) (CommitResult, error)
}

// #endregion nation

// #region result
// Status is the terminal state of one issue.
type Status string

const (
	StatusCommitted    Status = "committed"
	StatusDismissed    Status = "dismissed"
	StatusUnresolvable Status = "unresolvable"
)

// Result is the outcome of resolving one issue. OptionID is -1 and Actual is
// nil unless the issue was committed.
type Result struct {
	IssueID     int
	Status      Status
	OptionID    int
	Actual      *outcome.Outcome
	Predicted   float64
	ActualScore float64
	Scores      map[int]float64
	Reason      string
}

// Summary counts results by status.
type Summary struct {
	Total        int
	Committed    int
	Dismissed    int
	Unresolvable int
}

// Summarize computes aggregate counts from results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusCommitted:
			s.Committed++
		case StatusDismissed:
			s.Dismissed++
		case StatusUnresolvable:
			s.Unresolvable++
		}
	}
	return s
}

// #endregion result
