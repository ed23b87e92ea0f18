package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
	"github.com/danielpatrickdp/census-maximizer/internal/logging"
	"github.com/danielpatrickdp/census-maximizer/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to census-maximizer.db")
	journalPath := flag.String("journal", "", "read a decision journal file instead of the db")
	nation := flag.String("nation", "", "only show decisions for this nation")
	last := flag.Int("last", 20, "show N most recent rows")
	versions := flag.Bool("versions", false, "list policy versions instead of decisions")
	version := flag.String("version", "", "show single policy version detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" && *journalPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/census-maximizer.db [--nation name] [--last N] [--versions] [--version id] [--json]")
		fmt.Fprintln(os.Stderr, "       inspect --journal path/to/decisions-YYYY-MM-DD.jsonl.zst [--json]")
		os.Exit(2)
	}

	if *journalPath != "" {
		if err := runJournalMode(*journalPath, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *version != "":
		err = runDetailMode(store, *version, *jsonOut)
	case *versions:
		err = runVersionsMode(store, *last, *jsonOut)
	default:
		err = runDecisionsMode(store, *nation, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region decisions-mode

func runDecisionsMode(store *state.Store, nation string, last int, jsonOut bool) error {
	rows, err := store.ListDecisions(nation, last)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no decisions found")
		return nil
	}
	// chronological
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-20s  %-16s  %6s  %-12s  %6s  %10s  %10s  %s\n",
		"Time", "Nation", "Issue", "Decision", "Option", "Predicted", "Actual", "Reason")
	fmt.Printf("%-20s+-%-16s+-%6s+-%-12s+-%6s+-%10s+-%10s+-%s\n",
		"--------------------", "----------------", "------", "------------", "------", "----------", "----------", "------")
	for _, r := range rows {
		fmt.Printf("%-20s  %-16s  %6d  %-12s  %6d  %10.4f  %10.4f  %s\n",
			r.CreatedAt.Format("2006-01-02T15:04:05Z"), r.Nation, r.IssueID, r.Decision, r.OptionID,
			r.PredictedScore, r.ActualScore, r.Reason)
	}

	var drift float64
	commits := 0
	for _, r := range rows {
		if r.Decision == "commit" {
			drift += r.ActualScore - r.PredictedScore
			commits++
		}
	}
	if commits > 0 {
		fmt.Printf("\nMean prediction error over %d commits: %+.4f\n", commits, drift/float64(commits))
	}
	return nil
}

// #endregion decisions-mode

// #region versions-mode

func runVersionsMode(store *state.Store, last int, jsonOut bool) error {
	recs, err := store.ListVersions(last)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "no versions found")
		return nil
	}
	if jsonOut {
		return printJSON(recs)
	}

	fmt.Printf("%-10s  %-10s  %-16s  %8s  %s\n", "Version", "Parent", "Nation", "Policies", "Time")
	fmt.Printf("%-10s+-%-10s+-%-16s+-%8s+-%s\n", "----------", "----------", "----------------", "--------", "--------------------")
	for _, r := range recs {
		parent := "-"
		if r.ParentID != "" {
			parent = shortID(r.ParentID)
		}
		fmt.Printf("%-10s  %-10s  %-16s  %8d  %s\n",
			shortID(r.VersionID), parent, r.Nation, len(r.Policies), r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

func runDetailMode(store *state.Store, versionID string, jsonOut bool) error {
	rec, err := store.GetVersion(versionID)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(rec)
	}

	fmt.Printf("Version:  %s\n", rec.VersionID)
	fmt.Printf("Parent:   %s\n", rec.ParentID)
	fmt.Printf("Nation:   %s\n", rec.Nation)
	fmt.Printf("Created:  %s\n", rec.CreatedAt.Format("2006-01-02T15:04:05Z"))
	if rec.MetricsJSON != "" {
		fmt.Printf("Metrics:  %s\n", rec.MetricsJSON)
	}
	fmt.Printf("\nPolicies (%d):\n", len(rec.Policies))
	for _, p := range rec.Policies {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

// #endregion versions-mode

// #region journal-mode

func runJournalMode(path string, jsonOut bool) error {
	recs, err := logging.ReadJournal(path)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(recs)
	}

	table, err := census.Default()
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Printf("%s  %s  issue #%d  %s", r.CreatedAt.Format("2006-01-02T15:04:05Z"), r.Nation, r.IssueID, r.Action)
		if r.OptionID >= 0 {
			fmt.Printf(" option %d", r.OptionID)
		}
		fmt.Printf("  predicted %.4f", r.Predicted)
		if r.Actual != nil {
			fmt.Printf("  actual %.4f", *r.Actual)
		}
		fmt.Println()
		if len(r.CensusChanges) > 0 {
			fmt.Printf("    %s\n", formatChanges(table, r.CensusChanges))
		}
		for _, p := range r.PoliciesAdded {
			fmt.Printf("    + %s\n", p)
		}
		for _, p := range r.PoliciesRemoved {
			fmt.Printf("    - %s\n", p)
		}
	}
	return nil
}

func formatChanges(table *census.Table, changes map[int]float64) string {
	ids := make([]int, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s %+.2f", table.Name(census.Dimension(id)), changes[id])
	}
	return strings.Join(parts, ", ")
}

// #endregion journal-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
