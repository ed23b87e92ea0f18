package state

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateInitialAndGetCurrent(t *testing.T) {
	s := tempDB(t)

	rec, err := s.CreateInitialState("testlandia", []string{"Welfare", "Nuclear Energy"})
	if err != nil {
		t.Fatalf("CreateInitialState: %v", err)
	}
	if rec.VersionID == "" {
		t.Fatal("expected non-empty version ID")
	}
	if rec.ParentID != "" {
		t.Fatalf("expected empty parent, got %s", rec.ParentID)
	}

	cur, err := s.GetCurrent("testlandia")
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if cur.VersionID != rec.VersionID {
		t.Fatalf("expected %s, got %s", rec.VersionID, cur.VersionID)
	}
	if !reflect.DeepEqual(cur.Policies, []string{"Welfare", "Nuclear Energy"}) {
		t.Fatalf("unexpected policies %v", cur.Policies)
	}
}

func TestCreateInitialEmptyPolicies(t *testing.T) {
	s := tempDB(t)

	rec, err := s.CreateInitialState("emptyland", nil)
	if err != nil {
		t.Fatalf("CreateInitialState: %v", err)
	}
	got, err := s.GetVersion(rec.VersionID)
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if len(got.Policies) != 0 {
		t.Fatalf("expected no policies, got %v", got.Policies)
	}
}

func TestCommitAdvancesActivePointer(t *testing.T) {
	s := tempDB(t)

	v1, err := s.CreateInitialState("testlandia", []string{"Welfare"})
	if err != nil {
		t.Fatalf("CreateInitialState: %v", err)
	}

	v2 := PolicyRecord{
		VersionID:   "v2-test",
		ParentID:    v1.VersionID,
		Nation:      "testlandia",
		Policies:    []string{"Welfare", "Prohibition"},
		CreatedAt:   v1.CreatedAt.Add(time.Second),
		MetricsJSON: `{"added":["Prohibition"]}`,
	}
	if err := s.CommitState(v2); err != nil {
		t.Fatalf("CommitState: %v", err)
	}

	cur, _ := s.GetCurrent("testlandia")
	if cur.VersionID != "v2-test" {
		t.Fatalf("expected v2-test active, got %s", cur.VersionID)
	}
	if cur.ParentID != v1.VersionID {
		t.Fatalf("expected parent %s, got %s", v1.VersionID, cur.ParentID)
	}
	if cur.MetricsJSON == "" {
		t.Fatal("expected metrics json to round trip")
	}

	versions, err := s.ListVersions(10)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 || versions[0].VersionID != "v2-test" {
		t.Fatalf("expected newest first, got %+v", versions)
	}
}

func TestCommitUnknownParentFails(t *testing.T) {
	s := tempDB(t)

	err := s.CommitState(PolicyRecord{
		VersionID: "orphan",
		ParentID:  "does-not-exist",
		Nation:    "testlandia",
		CreatedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected foreign key error for unknown parent")
	}
}

func TestActivePointerIsPerNation(t *testing.T) {
	s := tempDB(t)

	a, _ := s.CreateInitialState("alpha", []string{"A"})
	b, _ := s.CreateInitialState("beta", []string{"B"})

	curA, _ := s.GetCurrent("alpha")
	curB, _ := s.GetCurrent("beta")
	if curA.VersionID != a.VersionID || curB.VersionID != b.VersionID {
		t.Fatal("active pointers leaked across nations")
	}
	if _, err := s.GetCurrent("gamma"); err == nil {
		t.Fatal("expected error for nation without a version")
	}
}

func TestListDecisions(t *testing.T) {
	s := tempDB(t)
	rec, _ := s.CreateInitialState("testlandia", nil)

	_, err := s.DB().Exec(
		`INSERT INTO decision_log (session_id, version_id, nation, issue_id, option_id, decision,
		  predicted_score, actual_score, reason, record_json, created_at)
		 VALUES ('s1', ?, 'testlandia', 144, 1, 'commit', 1.5, 1.25, 'passed gate', '{}', ?),
		        ('s1', ?, 'testlandia', 145, -1, 'dismiss', -0.5, NULL, NULL, NULL, ?),
		        ('s2', NULL, 'otherland', 9, -1, 'unresolvable', NULL, NULL, NULL, NULL, ?)`,
		rec.VersionID, time.Now().UTC().Format(time.RFC3339Nano),
		rec.VersionID, time.Now().UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		t.Fatalf("seed decisions: %v", err)
	}

	rows, err := s.ListDecisions("testlandia", 10)
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].IssueID != 145 || rows[0].Decision != "dismiss" {
		t.Errorf("expected newest first, got %+v", rows[0])
	}
	if rows[1].ActualScore != 1.25 || rows[1].Reason != "passed gate" {
		t.Errorf("unexpected commit row %+v", rows[1])
	}

	all, _ := s.ListDecisions("", 10)
	if len(all) != 3 {
		t.Fatalf("expected 3 rows across nations, got %d", len(all))
	}
}
