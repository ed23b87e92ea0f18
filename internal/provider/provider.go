// Package provider supplies predicted outcomes for issue options and maps
// game option ids onto the provider's outcome order.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielpatrickdp/census-maximizer/internal/outcome"
)

// ErrNoData is returned when the provider has no predictions for an issue.
var ErrNoData = errors.New("no outcome data")

// #region provider
// Provider returns the predicted outcomes of an issue in provider order.
type Provider interface {
	Outcomes(ctx context.Context, issueID int) ([]outcome.Outcome, error)
}

// #endregion provider

// #region remap
// OptionKey names one option of one issue.
type OptionKey struct {
	IssueID  int
	OptionID int
}

// Remaps lists the options whose provider outcome sits at a different index
// than the game's option id.
var Remaps = map[OptionKey]int{
	{IssueID: 144, OptionID: 2}:  1,
	{IssueID: 906, OptionID: 4}:  3,
	{IssueID: 1187, OptionID: 3}: 2,
}

// OutcomeIndex returns the provider index for an option.
func OutcomeIndex(issueID, optionID int) int {
	if idx, ok := Remaps[OptionKey{IssueID: issueID, OptionID: optionID}]; ok {
		return idx
	}
	return optionID
}

// ForOption picks the predicted outcome of optionID out of outcomes.
func ForOption(outcomes []outcome.Outcome, issueID, optionID int) (outcome.Outcome, error) {
	idx := OutcomeIndex(issueID, optionID)
	if idx < 0 || idx >= len(outcomes) {
		return outcome.Outcome{}, fmt.Errorf("issue %d option %d: outcome index %d of %d: %w",
			issueID, optionID, idx, len(outcomes), ErrNoData)
	}
	return outcomes[idx], nil
}

// #endregion remap
