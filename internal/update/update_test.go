package update

import (
	"errors"
	"reflect"
	"testing"

	"github.com/danielpatrickdp/census-maximizer/internal/outcome"
	"github.com/danielpatrickdp/census-maximizer/internal/state"
)

func TestApplyNoOp(t *testing.T) {
	old := state.PolicyRecord{VersionID: "v1", Nation: "testlandia", Policies: []string{"Welfare"}}

	result, err := Apply(old, PolicyDelta{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Decision.Action != "no_op" {
		t.Fatalf("expected no_op, got %s", result.Decision.Action)
	}
	if !reflect.DeepEqual(result.NewState.Policies, old.Policies) {
		t.Fatalf("policies changed: %v", result.NewState.Policies)
	}
	if result.NewState.VersionID == old.VersionID {
		t.Fatal("new version should have different ID")
	}
	if result.NewState.ParentID != old.VersionID {
		t.Fatalf("expected parent %s, got %s", old.VersionID, result.NewState.ParentID)
	}
}

func TestApplyAddsThenRemoves(t *testing.T) {
	old := state.PolicyRecord{VersionID: "v1", Nation: "testlandia", Policies: []string{"Welfare", "Prohibition"}}

	result, err := Apply(old, PolicyDelta{Added: []string{"No Internet"}, Removed: []string{"Welfare"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []string{"Prohibition", "No Internet"}
	if !reflect.DeepEqual(result.NewState.Policies, want) {
		t.Fatalf("expected %v, got %v", want, result.NewState.Policies)
	}
	if !reflect.DeepEqual(result.NewPolicies.Names(), want) {
		t.Fatalf("policy set out of sync with record: %v", result.NewPolicies.Names())
	}
	if result.Decision.Action != "commit" {
		t.Fatalf("expected commit, got %s", result.Decision.Action)
	}
	if result.Metrics.PolicyCount != 2 || result.NewState.MetricsJSON == "" {
		t.Fatalf("unexpected metrics %+v", result.Metrics)
	}
	if !reflect.DeepEqual(old.Policies, []string{"Welfare", "Prohibition"}) {
		t.Fatalf("old record mutated: %v", old.Policies)
	}
}

func TestApplyRemoveMissingFails(t *testing.T) {
	old := state.PolicyRecord{VersionID: "v1", Policies: []string{"Welfare"}}

	_, err := Apply(old, PolicyDelta{Removed: []string{"Slavery"}})
	if !errors.Is(err, outcome.ErrPolicyNotFound) {
		t.Fatalf("expected ErrPolicyNotFound, got %v", err)
	}
}

func TestApplyAddedThenRemovedSameName(t *testing.T) {
	old := state.PolicyRecord{VersionID: "v1", Policies: []string{"A"}}

	result, err := Apply(old, PolicyDelta{Added: []string{"X"}, Removed: []string{"X"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(result.NewState.Policies, []string{"A"}) {
		t.Fatalf("expected round trip to original, got %v", result.NewState.Policies)
	}
}
