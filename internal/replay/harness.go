// Package replay runs recorded issues through the decision pipeline offline,
// against an in-memory nation that answers commits from the recording.
package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/census-maximizer/internal/resolver"
)

// #region types
// Call is one command the pipeline sent to the nation.
type Call struct {
	IssueID  int
	OptionID int // -1 for a dismissal
}

// Nation replays recorded issues. Commits return the recorded reply for the
// chosen option, or an empty reply when none was recorded.
type Nation struct {
	name     string
	policies []string
	issues   []FixtureIssue
	calls    []Call
}

// NewNation builds a nation from a fixture.
func NewNation(f *Fixture) *Nation {
	name := f.Nation
	if name == "" {
		name = "replay"
	}
	return &Nation{name: name, policies: f.Policies, issues: f.Issues}
}

func (n *Nation) Name() string       { return n.name }
func (n *Nation) WriteCapable() bool { return true }

func (n *Nation) PendingIssues(context.Context) ([]resolver.Issue, error) {
	out := make([]resolver.Issue, len(n.issues))
	for i, is := range n.issues {
		out[i] = resolver.Issue{ID: is.ID, Title: is.Title, Options: is.Options}
	}
	return out, nil
}

func (n *Nation) Policies(context.Context) ([]string, error) {
	return append([]string(nil), n.policies...), nil
}

func (n *Nation) Dismiss(_ context.Context, issueID int) error {
	n.calls = append(n.calls, Call{IssueID: issueID, OptionID: -1})
	return nil
}

func (n *Nation) Commit(_ context.Context, issueID, optionID int) (resolver.CommitResult, error) {
	n.calls = append(n.calls, Call{IssueID: issueID, OptionID: optionID})
	for _, is := range n.issues {
		if is.ID != issueID {
			continue
		}
		if applied, ok := is.Applied[optionID]; ok {
			return applied.ToApplied(), nil
		}
		return resolver.CommitResult{}, nil
	}
	return resolver.CommitResult{}, fmt.Errorf("issue %d is not pending", issueID)
}

// Calls returns the commands sent so far, in order.
func (n *Nation) Calls() []Call {
	return append([]Call(nil), n.calls...)
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	resolver.Summary
	FinalPolicies []string
	Calls         []Call
}

// #endregion types

// #region replay
// Replay resolves every issue in f through a fresh session. Operates entirely in-memory.
func Replay(ctx context.Context, f *Fixture) ([]resolver.Result, ReplaySummary, error) {
	prov, err := f.ToProvider()
	if err != nil {
		return nil, ReplaySummary{}, err
	}
	w, err := f.Config.ToWeights()
	if err != nil {
		return nil, ReplaySummary{}, err
	}

	nation := NewNation(f)
	sess, err := resolver.NewSession(ctx, nation, prov, w, f.Config.ToOptions())
	if err != nil {
		return nil, ReplaySummary{}, err
	}

	results, err := sess.ResolveAll(ctx)
	summary := Summarize(results, sess, nation)
	if err != nil {
		return results, summary, fmt.Errorf("replay %q: %w", f.Description, err)
	}
	return results, summary, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []resolver.Result, sess *resolver.Session, nation *Nation) ReplaySummary {
	return ReplaySummary{
		Summary:       resolver.Summarize(results),
		FinalPolicies: sess.Policies().Names(),
		Calls:         nation.Calls(),
	}
}

// Mismatch describes one expected result that did not hold.
type Mismatch struct {
	Index    int
	Expected FixtureExpectedResult
	Got      resolver.Result
}

func (m Mismatch) String() string {
	return fmt.Sprintf("issue %d: expected %s/%d, got %s/%d (%s)",
		m.Expected.IssueID, m.Expected.Status, m.Expected.OptionID, m.Got.Status, m.Got.OptionID, m.Got.Reason)
}

// Compare checks results against the fixture's expectations. A length
// difference is reported as a mismatch on the first missing index.
func Compare(expected []FixtureExpectedResult, results []resolver.Result) []Mismatch {
	var out []Mismatch
	for i, exp := range expected {
		if i >= len(results) {
			out = append(out, Mismatch{Index: i, Expected: exp})
			break
		}
		got := results[i]
		if got.IssueID != exp.IssueID || string(got.Status) != exp.Status || got.OptionID != exp.OptionID {
			out = append(out, Mismatch{Index: i, Expected: exp, Got: got})
		}
	}
	return out
}

// #endregion replay
