package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/census-maximizer/internal/config"
	"github.com/danielpatrickdp/census-maximizer/internal/gate"
	"github.com/danielpatrickdp/census-maximizer/internal/logging"
	"github.com/danielpatrickdp/census-maximizer/internal/provider"
	"github.com/danielpatrickdp/census-maximizer/internal/replay"
	"github.com/danielpatrickdp/census-maximizer/internal/resolver"
	"github.com/danielpatrickdp/census-maximizer/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to census-maximizer.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	nation := flag.String("nation", "", "limit DB mode to one nation")
	configPath := flag.String("config", "", "YAML config whose gate settings DB mode replays under")
	limit := flag.Int("limit", 500, "max audited decisions to replay in DB mode")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/census-maximizer.db [--nation name] [--config path]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *nation, *configPath, *limit)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

// runDBMode re-gates the option scores recorded at decision time, so a new
// skip list or threshold can be checked against past runs without touching
// the game. Rows left unresolvable are not re-gated, since their scores may
// be partial.
func runDBMode(dbPath, nation, configPath string, limit int) int {
	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			return 2
		}
	}

	store, err := state.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	rows, err := store.ListDecisions(nation, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list decisions: %v\n", err)
		return 2
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no decisions found in decision_log")
		return 2
	}

	gcfg, err := replayGateConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load outcome table: %v\n", err)
		return 2
	}
	g := gate.NewGate(gcfg)
	var lines []comparison
	// rows are newest first
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		var rec logging.DecisionRecord
		if err := json.Unmarshal([]byte(row.RecordJSON), &rec); err != nil {
			fmt.Fprintf(os.Stderr, "decision %d: bad record: %v\n", row.ID, err)
			continue
		}
		rec.Action = row.Decision
		action, option := replay.Regate(g, rec)
		lines = append(lines, comparison{
			IssueID:  row.IssueID,
			Expected: label(row.Decision, row.OptionID),
			Replayed: label(string(action), option),
		})
	}
	return printComparison(lines)
}

// replayGateConfig builds the gate settings, adding the outcome table's
// deny-list when the config names a local table.
func replayGateConfig(cfg config.Config) (gate.GateConfig, error) {
	if cfg.OutcomeFile == "" {
		return cfg.GateConfig(), nil
	}
	fp, err := provider.LoadFile(cfg.OutcomeFile)
	if err != nil {
		return gate.GateConfig{}, err
	}
	return cfg.GateConfig(fp.Unsolvable()...), nil
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, summary, err := replay.Replay(context.Background(), f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
	}

	lines := make([]comparison, 0, len(f.ExpectedResults))
	for i, exp := range f.ExpectedResults {
		c := comparison{IssueID: exp.IssueID, Expected: label(exp.Status, exp.OptionID), Replayed: "-"}
		if i < len(results) {
			c.Replayed = label(string(results[i].Status), results[i].OptionID)
		}
		lines = append(lines, c)
	}

	code := printComparison(lines)
	fmt.Printf("Final policies: %v\n", summary.FinalPolicies)
	if err != nil {
		return 2
	}
	return code
}

// #endregion fixture-mode

// #region output

type comparison struct {
	IssueID  int
	Expected string
	Replayed string
}

// label renders a decision with its option. Recorded decisions use gate
// action names and results use resolver statuses, so both are normalized.
func label(action string, option int) string {
	switch action {
	case string(gate.ActionCommit), string(resolver.StatusCommitted):
		return fmt.Sprintf("commit(%d)", option)
	case string(gate.ActionDismiss), string(resolver.StatusDismissed):
		return "dismiss"
	default:
		return action
	}
}

// printComparison outputs a comparison table and returns exit code.
func printComparison(lines []comparison) int {
	fmt.Printf("%-8s| %-15s| %-15s| %s\n", "Issue", "Expected", "Replayed", "Match")
	fmt.Printf("%-8s+%-15s+%-15s+%s\n",
		"--------", "----------------", "----------------", "------")

	matches := 0
	for _, l := range lines {
		match := "DIFF"
		if l.Expected == l.Replayed {
			match = "OK"
			matches++
		}
		fmt.Printf("%-8d| %-15s| %-15s| %s\n", l.IssueID, l.Expected, l.Replayed, match)
	}

	diverge := len(lines) - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", len(lines), matches, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

// #endregion output
