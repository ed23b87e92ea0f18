package update

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/census-maximizer/internal/outcome"
	"github.com/danielpatrickdp/census-maximizer/internal/state"
)

// #region apply
// Apply computes the next policy version from the current one and the changes
// the game reported. Added names are appended, removed names dropped. A
// removal the current version does not hold means local state has drifted
// from the game and fails with outcome.ErrPolicyNotFound; old is never touched.
func Apply(old state.PolicyRecord, delta PolicyDelta) (UpdateResult, error) {
	start := time.Now()

	set := outcome.NewPolicySet(old.Policies...)
	for _, name := range delta.Added {
		set.Add(name)
	}
	for _, name := range delta.Removed {
		if err := set.Remove(name); err != nil {
			return UpdateResult{}, fmt.Errorf("apply policy delta: %w", err)
		}
	}

	metrics := Metrics{
		Added:        delta.Added,
		Removed:      delta.Removed,
		PolicyCount:  set.Len(),
		UpdateTimeMs: time.Since(start).Milliseconds(),
	}
	metricsJSON, _ := json.Marshal(metrics)

	newRec := state.PolicyRecord{
		VersionID:   uuid.New().String(),
		ParentID:    old.VersionID,
		Nation:      old.Nation,
		Policies:    set.Names(),
		CreatedAt:   time.Now().UTC(),
		MetricsJSON: string(metricsJSON),
	}

	decision := Decision{Action: "no_op", Reason: "no policy change"}
	if len(delta.Added)+len(delta.Removed) > 0 {
		decision = Decision{
			Action: "commit",
			Reason: fmt.Sprintf("added %v, removed %v", delta.Added, delta.Removed),
		}
	}

	return UpdateResult{
		NewState:    newRec,
		NewPolicies: set,
		Decision:    decision,
		Metrics:     metrics,
	}, nil
}

// #endregion apply
