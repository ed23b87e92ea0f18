// Package resolver answers a nation's pending issues by scoring every option's
// predicted outcome and committing the best one.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/census-maximizer/internal/eval"
	"github.com/danielpatrickdp/census-maximizer/internal/gate"
	"github.com/danielpatrickdp/census-maximizer/internal/logging"
	"github.com/danielpatrickdp/census-maximizer/internal/outcome"
	"github.com/danielpatrickdp/census-maximizer/internal/provider"
	"github.com/danielpatrickdp/census-maximizer/internal/state"
	"github.com/danielpatrickdp/census-maximizer/internal/update"
	"github.com/danielpatrickdp/census-maximizer/internal/weights"
)

// #region options
// Options configures a Session. Store and Journal are optional audit sinks.
type Options struct {
	Gate    gate.GateConfig
	Eval    eval.EvalConfig
	Store   *state.Store
	Journal *logging.JournalWriter
}

// DefaultOptions returns the default gate and eval thresholds with no audit sinks.
func DefaultOptions() Options {
	return Options{
		Gate: gate.DefaultGateConfig(),
		Eval: eval.DefaultEvalConfig(),
	}
}

// #endregion options

// #region session
// Session drives issue resolution for one nation. It owns a private copy of
// the weights and the nation's policy set, which it keeps in step with every
// commit. A Session is not safe for concurrent use.
type Session struct {
	id       string
	nation   Nation
	provider provider.Provider
	weights  *weights.Model
	policies outcome.PolicySet
	version  state.PolicyRecord

	gate    *gate.Gate
	eval    *eval.EvalHarness
	store   *state.Store
	journal *logging.JournalWriter
}

// NewSession loads the nation's current policies and copies the weight template.
func NewSession(ctx context.Context, nation Nation, prov provider.Provider, template *weights.Model, opts Options) (*Session, error) {
	names, err := nation.Policies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load policies for %s: %w", nation.Name(), err)
	}

	s := &Session{
		id:       uuid.New().String(),
		nation:   nation,
		provider: prov,
		weights:  template.Clone(),
		policies: outcome.NewPolicySet(names...),
		gate:     gate.NewGate(opts.Gate),
		eval:     eval.NewEvalHarness(opts.Eval),
		store:    opts.Store,
		journal:  opts.Journal,
	}

	if s.store != nil {
		s.version, err = s.store.CreateInitialState(nation.Name(), names)
		if err != nil {
			return nil, fmt.Errorf("record initial policies: %w", err)
		}
	} else {
		s.version = state.PolicyRecord{
			VersionID: uuid.New().String(),
			Nation:    nation.Name(),
			Policies:  names,
			CreatedAt: time.Now().UTC(),
		}
	}
	return s, nil
}

// ID returns the session id stamped on every audit row.
func (s *Session) ID() string { return s.id }

// Weights returns the session's weight model. Adjusting it affects later scoring.
func (s *Session) Weights() *weights.Model { return s.weights }

// Policies returns a copy of the policies the session believes the nation holds.
func (s *Session) Policies() outcome.PolicySet { return s.policies.Clone() }

// Version returns the current policy version.
func (s *Session) Version() state.PolicyRecord { return s.version }

// #endregion session

// #region resolve-all
// ResolveAll answers every issue pending when it is called, in listing order.
// Issues raised by answering earlier ones are left for the next call. The
// first collaborator or data error stops the batch; results so far are returned,
// including an issue that was committed before the error surfaced.
func (s *Session) ResolveAll(ctx context.Context) ([]Result, error) {
	if !s.nation.WriteCapable() {
		return nil, fmt.Errorf("solve issues for %s: %w", s.nation.Name(), ErrNotWriteCapable)
	}

	log.Printf("[RESOLVE] solving issues for %s", s.nation.Name())

	issues, err := s.nation.PendingIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues for %s: %w", s.nation.Name(), err)
	}
	if len(issues) == 0 {
		log.Printf("[RESOLVE] no issues")
		return nil, nil
	}

	results := make([]Result, 0, len(issues))
	for _, issue := range issues {
		r, err := s.Resolve(ctx, issue)
		if err != nil {
			// a commit that the game applied is kept even when its aftermath failed
			if r.Status != "" {
				results = append(results, r)
			}
			return results, err
		}
		results = append(results, r)
	}

	log.Printf("[RESOLVE] %s is now gloriously issue-free", s.nation.Name())
	return results, nil
}

// #endregion resolve-all

// #region resolve
// Resolve scores every option of issue and commits the best one, or dismisses
// the issue when the gate says so.
func (s *Session) Resolve(ctx context.Context, issue Issue) (Result, error) {
	if d, blocked := s.gate.Screen(issue.ID); blocked {
		return s.unresolvable(issue.ID, d.Reason, nil), nil
	}

	outs, err := s.provider.Outcomes(ctx, issue.ID)
	if errors.Is(err, provider.ErrNoData) {
		log.Printf("[RESOLVE] was unable to load outcome data for issue #%d", issue.ID)
		return s.unresolvable(issue.ID, err.Error(), nil), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("issue %d: load outcomes: %w", issue.ID, err)
	}

	scores := make(map[int]float64, len(issue.Options))
	predicted := make(map[int]outcome.Outcome, len(issue.Options))
	for _, opt := range issue.Options {
		o, err := provider.ForOption(outs, issue.ID, opt)
		if err != nil {
			log.Printf("[RESOLVE] issue #%d: %v", issue.ID, err)
			return s.unresolvable(issue.ID, err.Error(), scores), nil
		}
		score, err := outcome.Score(o, s.weights, s.policies)
		if err != nil {
			return Result{}, fmt.Errorf("issue %d option %d: %w", issue.ID, opt, err)
		}
		scores[opt] = score
		predicted[opt] = o
	}

	best, bestScore, ok := SelectBest(scores)
	if !ok {
		return s.unresolvable(issue.ID, "issue has no options", scores), nil
	}

	decision := s.gate.Evaluate(issue.ID, bestScore)
	if decision.Action == gate.ActionDismiss {
		return s.dismiss(ctx, issue.ID, decision, scores)
	}
	return s.commit(ctx, issue.ID, best, predicted[best], scores)
}

// #endregion resolve

// #region dismiss
func (s *Session) dismiss(ctx context.Context, issueID int, decision gate.GateDecision, scores map[int]float64) (Result, error) {
	if err := s.nation.Dismiss(ctx, issueID); err != nil {
		return Result{}, fmt.Errorf("dismiss issue %d: %w", issueID, err)
	}
	log.Printf("[RESOLVE] dismissed issue #%d: %s", issueID, decision.Reason)

	vetoes := make([]string, len(decision.VetoSignals))
	for i, v := range decision.VetoSignals {
		vetoes[i] = string(v.Type)
	}
	s.record(logging.DecisionRecord{
		IssueID:      issueID,
		Action:       string(gate.ActionDismiss),
		OptionID:     -1,
		OptionScores: scores,
		Predicted:    decision.BestScore,
		Vetoes:       vetoes,
		Reason:       decision.Reason,
	})

	return Result{
		IssueID:   issueID,
		Status:    StatusDismissed,
		OptionID:  -1,
		Predicted: decision.BestScore,
		Scores:    scores,
		Reason:    decision.Reason,
	}, nil
}

// #endregion dismiss

// #region commit
func (s *Session) commit(ctx context.Context, issueID, option int, predicted outcome.Outcome, scores map[int]float64) (Result, error) {
	resp, err := s.nation.Commit(ctx, issueID, option)
	if err != nil {
		return Result{}, fmt.Errorf("commit issue %d option %d: %w", issueID, option, err)
	}

	actual := outcome.New()
	for d, change := range resp.Rankings {
		actual.Census[d] = change
	}
	for _, p := range resp.NewPolicies {
		actual.Policies[p] = outcome.Adds
	}
	for _, p := range resp.RemovedPolicies {
		actual.Policies[p] = outcome.Removes
	}

	result := Result{
		IssueID:   issueID,
		Status:    StatusCommitted,
		OptionID:  option,
		Actual:    &actual,
		Predicted: scores[option],
		Scores:    scores,
	}

	held := s.policies
	upd, err := update.Apply(s.version, update.PolicyDelta{Added: resp.NewPolicies, Removed: resp.RemovedPolicies})
	if err != nil {
		err = fmt.Errorf("issue %d: local policies out of sync with %s: %w", issueID, s.nation.Name(), err)
		result.Reason = err.Error()
		s.recordCommit(result, resp, nil)
		return result, err
	}
	s.policies = upd.NewPolicies
	if upd.Decision.Action == "commit" {
		s.version = upd.NewState
		if s.store != nil {
			if err := s.store.CommitState(upd.NewState); err != nil {
				log.Printf("[RESOLVE] failed to record policy version: %v", err)
			}
		}
	}

	actualScore, err := outcome.Score(actual, s.weights, held)
	if err != nil {
		err = fmt.Errorf("issue %d: score applied outcome: %w", issueID, err)
		result.Reason = err.Error()
		s.recordCommit(result, resp, nil)
		return result, err
	}
	result.ActualScore = actualScore

	check := s.eval.Run(predicted, actual, result.Predicted, actualScore, held)
	result.Reason = check.Reason
	s.recordCommit(result, resp, &check)
	return result, nil
}

// recordCommit logs and audits a committed option. check is nil when the
// game applied the option but its effect could not be scored.
func (s *Session) recordCommit(result Result, resp CommitResult, check *eval.EvalResult) {
	if check != nil {
		log.Printf("[RESOLVE] picked option %d for issue #%d. This gave a score increase of %.6f (prediction was %.6f)",
			result.OptionID, result.IssueID, result.ActualScore, result.Predicted)
		if !check.Passed {
			log.Printf("[RESOLVE] issue #%d: %s", result.IssueID, check.Reason)
		}
	} else {
		log.Printf("[RESOLVE] picked option %d for issue #%d (prediction was %.6f); %s",
			result.OptionID, result.IssueID, result.Predicted, result.Reason)
	}
	for _, p := range resp.NewPolicies {
		log.Printf("[RESOLVE] -> this added the policy '%s'", p)
	}
	for _, p := range resp.RemovedPolicies {
		log.Printf("[RESOLVE] -> this removed the policy '%s'", p)
	}

	rec := logging.DecisionRecord{
		IssueID:         result.IssueID,
		Action:          string(gate.ActionCommit),
		OptionID:        result.OptionID,
		OptionScores:    result.Scores,
		Predicted:       result.Predicted,
		PoliciesAdded:   resp.NewPolicies,
		PoliciesRemoved: resp.RemovedPolicies,
		Reason:          result.Reason,
	}
	if result.Actual != nil {
		rec.CensusChanges = make(map[int]float64, len(result.Actual.Census))
		for d, v := range result.Actual.Census {
			rec.CensusChanges[int(d)] = v
		}
	}
	if check != nil {
		actualScore := result.ActualScore
		rec.Actual = &actualScore
		rec.Eval = make([]logging.EvalMetricEntry, len(check.Metrics))
		for i, m := range check.Metrics {
			rec.Eval[i] = logging.EvalMetricEntry{Name: m.Name, Value: m.Value, Pass: m.Pass}
		}
	}
	s.record(rec)
}

// #endregion commit

// #region unresolvable
func (s *Session) unresolvable(issueID int, reason string, scores map[int]float64) Result {
	log.Printf("[RESOLVE] issue #%d left unresolved: %s", issueID, reason)
	s.record(logging.DecisionRecord{
		IssueID:      issueID,
		Action:       string(gate.ActionUnresolvable),
		OptionID:     -1,
		OptionScores: scores,
		Reason:       reason,
	})
	return Result{
		IssueID:  issueID,
		Status:   StatusUnresolvable,
		OptionID: -1,
		Scores:   scores,
		Reason:   reason,
	}
}

// #endregion unresolvable

// #region audit
// record writes rec to whichever audit sinks are configured. Failures are
// logged and never abort resolution.
func (s *Session) record(rec logging.DecisionRecord) {
	if s.store == nil && s.journal == nil {
		return
	}
	rec.SessionID = s.id
	rec.Nation = s.nation.Name()
	rec.CreatedAt = time.Now().UTC()
	cfg := s.gate.Config()
	rec.Thresholds = logging.RecordThresholds{MinScore: cfg.MinScore, MaxScoreDrift: s.eval.Config().MaxScoreDrift}

	if s.journal != nil {
		if err := s.journal.Write(rec); err != nil {
			log.Printf("[RESOLVE] journal error: %v", err)
		}
	}
	if s.store == nil {
		return
	}

	recordJSON, _ := json.Marshal(rec)
	entry := logging.DecisionEntry{
		SessionID:  rec.SessionID,
		VersionID:  s.version.VersionID,
		Nation:     rec.Nation,
		IssueID:    rec.IssueID,
		OptionID:   rec.OptionID,
		Decision:   rec.Action,
		Reason:     rec.Reason,
		RecordJSON: string(recordJSON),
		CreatedAt:  rec.CreatedAt,
	}
	if rec.Action != string(gate.ActionUnresolvable) {
		predicted := rec.Predicted
		entry.PredictedScore = &predicted
	}
	entry.ActualScore = rec.Actual
	if err := logging.LogDecision(s.store.DB(), entry); err != nil {
		log.Printf("[RESOLVE] logging error: %v", err)
	}
}

// #endregion audit
