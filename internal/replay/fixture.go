package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
	"github.com/danielpatrickdp/census-maximizer/internal/eval"
	"github.com/danielpatrickdp/census-maximizer/internal/gate"
	"github.com/danielpatrickdp/census-maximizer/internal/outcome"
	"github.com/danielpatrickdp/census-maximizer/internal/provider"
	"github.com/danielpatrickdp/census-maximizer/internal/resolver"
	"github.com/danielpatrickdp/census-maximizer/internal/weights"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                   `json:"description"`
	Nation          string                   `json:"nation"`
	Policies        []string                 `json:"policies"`
	Config          FixtureConfig            `json:"config"`
	Outcomes        map[int][]FixtureOutcome `json:"outcomes"`
	Issues          []FixtureIssue           `json:"issues"`
	ExpectedResults []FixtureExpectedResult  `json:"expected_results"`
}

// FixtureOutcome mirrors outcome.Outcome with JSON tags. Policy directions
// are "adds" or "removes".
type FixtureOutcome struct {
	Census   map[int]float64   `json:"census"`
	Policies map[string]string `json:"policies"`
}

// FixtureIssue is one recorded issue and, optionally, what the game applied
// for each option.
type FixtureIssue struct {
	ID      int                    `json:"id"`
	Title   string                 `json:"title"`
	Options []int                  `json:"options"`
	Applied map[int]FixtureApplied `json:"applied"`
}

// FixtureApplied mirrors resolver.CommitResult with JSON tags.
type FixtureApplied struct {
	Rankings        map[int]float64 `json:"rankings"`
	NewPolicies     []string        `json:"new_policies"`
	RemovedPolicies []string        `json:"removed_policies"`
}

// FixtureExpectedResult captures the expected status per issue.
type FixtureExpectedResult struct {
	IssueID  int    `json:"issue_id"`
	Status   string `json:"status"`
	OptionID int    `json:"option_id"`
}

// FixtureConfig bundles weights and gate settings for a replay run. With no
// census weights the embedded census table's defaults are used.
type FixtureConfig struct {
	CensusWeights    map[int]float64    `json:"census_weights"`
	PolicyWeights    map[string]float64 `json:"policy_weights"`
	SkipIssues       []int              `json:"skip_issues"`
	UnsolvableIssues []int              `json:"unsolvable_issues"`
	MinScore         float64            `json:"min_score"`
	MaxScoreDrift    float64            `json:"max_score_drift"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToProvider converts the fixture's outcome table to a provider.
func (f *Fixture) ToProvider() (*provider.FileProvider, error) {
	issues := make(map[int][]outcome.Outcome, len(f.Outcomes))
	for id, rows := range f.Outcomes {
		outs := make([]outcome.Outcome, 0, len(rows))
		for i, row := range rows {
			o := outcome.New()
			for d, v := range row.Census {
				o.Census[census.Dimension(d)] = v
			}
			for name, dir := range row.Policies {
				c, err := outcome.ParsePolicyChange(dir)
				if err != nil {
					return nil, fmt.Errorf("issue %d outcome %d policy %q: %w", id, i, name, err)
				}
				o.Policies[name] = c
			}
			outs = append(outs, o)
		}
		issues[id] = outs
	}
	return provider.NewFileProvider(issues, nil), nil
}

// ToWeights converts the fixture config to a weight model.
func (fc *FixtureConfig) ToWeights() (*weights.Model, error) {
	var w *weights.Model
	if len(fc.CensusWeights) == 0 {
		table, err := census.Default()
		if err != nil {
			return nil, err
		}
		if w, err = weights.Default(table); err != nil {
			return nil, err
		}
	} else {
		w = &weights.Model{Census: make(map[census.Dimension]float64, len(fc.CensusWeights))}
		for d, v := range fc.CensusWeights {
			w.Census[census.Dimension(d)] = v
		}
	}
	w.Policy = make(map[string]float64, len(fc.PolicyWeights))
	for p, v := range fc.PolicyWeights {
		w.Policy[p] = v
	}
	return w, nil
}

// ToOptions converts the fixture config to session options.
func (fc *FixtureConfig) ToOptions() resolver.Options {
	opts := resolver.Options{
		Gate: gate.GateConfig{
			SkipIssues: fc.SkipIssues,
			Unsolvable: fc.UnsolvableIssues,
			MinScore:   fc.MinScore,
		},
		Eval: eval.DefaultEvalConfig(),
	}
	if fc.MaxScoreDrift > 0 {
		opts.Eval.MaxScoreDrift = fc.MaxScoreDrift
	}
	return opts
}

// ToApplied converts a recorded reply to a commit result.
func (fa FixtureApplied) ToApplied() resolver.CommitResult {
	res := resolver.CommitResult{
		Rankings:        make(map[census.Dimension]float64, len(fa.Rankings)),
		NewPolicies:     fa.NewPolicies,
		RemovedPolicies: fa.RemovedPolicies,
	}
	for d, v := range fa.Rankings {
		res.Rankings[census.Dimension(d)] = v
	}
	return res
}

// #endregion fixture-loader
