package gate

import "testing"

func TestGateCommitOnPositiveScore(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(10, 0.5)

	if decision.Action != ActionCommit {
		t.Fatalf("expected commit, got %s: %s", decision.Action, decision.Reason)
	}
	if decision.Vetoed {
		t.Fatal("should not be vetoed")
	}
}

func TestGateDismissOnZeroScore(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(10, 0)

	if decision.Action != ActionDismiss {
		t.Fatalf("expected dismiss, got %s", decision.Action)
	}
	if decision.VetoSignals[0].Type != VetoThreshold {
		t.Fatalf("expected VetoThreshold, got %s", decision.VetoSignals[0].Type)
	}
}

func TestGateDismissOnNegativeScore(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(10, -3)

	if decision.Action != ActionDismiss {
		t.Fatalf("expected dismiss, got %s", decision.Action)
	}
}

func TestGateSkipListWinsOverPositiveScore(t *testing.T) {
	g := NewGate(GateConfig{SkipIssues: []int{10}})

	decision := g.Evaluate(10, 99)

	if decision.Action != ActionDismiss {
		t.Fatalf("expected dismiss, got %s", decision.Action)
	}
	if decision.VetoSignals[0].Type != VetoSkipList {
		t.Fatalf("expected VetoSkipList, got %s", decision.VetoSignals[0].Type)
	}
	if decision.BestScore != 99 {
		t.Errorf("expected best score carried through, got %f", decision.BestScore)
	}
}

func TestGateMultipleVetoes(t *testing.T) {
	g := NewGate(GateConfig{SkipIssues: []int{10}})

	decision := g.Evaluate(10, -1)

	if len(decision.VetoSignals) != 2 {
		t.Fatalf("expected 2 veto signals, got %d", len(decision.VetoSignals))
	}
}

func TestGateScreenUnsolvable(t *testing.T) {
	g := NewGate(GateConfig{Unsolvable: []int{407}})

	decision, blocked := g.Screen(407)
	if !blocked {
		t.Fatal("expected issue 407 to be screened out")
	}
	if decision.Action != ActionUnresolvable {
		t.Fatalf("expected unresolvable, got %s", decision.Action)
	}
	if _, blocked := g.Screen(408); blocked {
		t.Fatal("issue 408 should pass screening")
	}
}

func TestGateCustomThreshold(t *testing.T) {
	g := NewGate(GateConfig{MinScore: 1})

	if d := g.Evaluate(1, 1); d.Action != ActionDismiss {
		t.Fatalf("expected dismiss at threshold, got %s", d.Action)
	}
	if d := g.Evaluate(1, 1.01); d.Action != ActionCommit {
		t.Fatalf("expected commit above threshold, got %s", d.Action)
	}
}
