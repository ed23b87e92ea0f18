package replay

import (
	"github.com/danielpatrickdp/census-maximizer/internal/gate"
	"github.com/danielpatrickdp/census-maximizer/internal/logging"
	"github.com/danielpatrickdp/census-maximizer/internal/resolver"
)

// #region regate
// Regate returns the action and option the gate would choose today for an
// audited decision. Only commit and dismiss rows carry a score for every
// option; any other row stays as recorded unless the deny-list now screens
// the issue out.
func Regate(g *gate.Gate, rec logging.DecisionRecord) (gate.Action, int) {
	if _, blocked := g.Screen(rec.IssueID); blocked {
		return gate.ActionUnresolvable, -1
	}
	switch gate.Action(rec.Action) {
	case gate.ActionCommit, gate.ActionDismiss:
	default:
		return gate.Action(rec.Action), rec.OptionID
	}

	best, score, ok := resolver.SelectBest(rec.OptionScores)
	if !ok {
		return gate.ActionUnresolvable, -1
	}
	if d := g.Evaluate(rec.IssueID, score); d.Action == gate.ActionDismiss {
		return gate.ActionDismiss, -1
	}
	return gate.ActionCommit, best
}

// #endregion regate
