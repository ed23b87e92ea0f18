package gate

import "fmt"

// #region gate
// Gate decides whether an issue's best option is committed or the issue dismissed.
type Gate struct {
	config     GateConfig
	skip       map[int]bool
	unsolvable map[int]bool
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	g := &Gate{
		config:     config,
		skip:       make(map[int]bool, len(config.SkipIssues)),
		unsolvable: make(map[int]bool, len(config.Unsolvable)),
	}
	for _, id := range config.SkipIssues {
		g.skip[id] = true
	}
	for _, id := range config.Unsolvable {
		g.unsolvable[id] = true
	}
	return g
}

// Config returns the configuration the gate was built with.
func (g *Gate) Config() GateConfig {
	return g.config
}

// Screen runs before any outcome data is loaded. Issues known to be
// unsolvable are left alone entirely.
func (g *Gate) Screen(issueID int) (GateDecision, bool) {
	if !g.unsolvable[issueID] {
		return GateDecision{}, false
	}
	v := VetoSignal{
		Type:   VetoUnsolvable,
		Reason: fmt.Sprintf("issue %d is known to be unsolvable", issueID),
	}
	return GateDecision{
		Action:      ActionUnresolvable,
		Reason:      v.Reason,
		Vetoed:      true,
		VetoSignals: []VetoSignal{v},
	}, true
}

// Evaluate checks the skip list and the score threshold for the best option.
func (g *Gate) Evaluate(issueID int, bestScore float64) GateDecision {
	var vetoes []VetoSignal

	if g.skip[issueID] {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoSkipList,
			Reason: fmt.Sprintf("issue %d is in the skip list", issueID),
		})
	}

	if bestScore <= g.config.MinScore {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoThreshold,
			Reason: fmt.Sprintf("best score %.6f is not above %.6f", bestScore, g.config.MinScore),
		})
	}

	if len(vetoes) > 0 {
		return GateDecision{
			Action:      ActionDismiss,
			Reason:      fmt.Sprintf("dismissed: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
			BestScore:   bestScore,
		}
	}

	return GateDecision{
		Action:    ActionCommit,
		Reason:    fmt.Sprintf("passed gate: best_score=%.6f", bestScore),
		BestScore: bestScore,
	}
}

// #endregion gate
