package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS policy_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	nation        TEXT NOT NULL,
	policies_json TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	metrics_json  TEXT,
	FOREIGN KEY (parent_id) REFERENCES policy_versions(version_id)
);

CREATE TABLE IF NOT EXISTS decision_log (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id      TEXT NOT NULL,
	version_id      TEXT,
	nation          TEXT NOT NULL,
	issue_id        INTEGER NOT NULL,
	option_id       INTEGER NOT NULL,
	decision        TEXT NOT NULL,
	predicted_score REAL,
	actual_score    REAL,
	reason          TEXT,
	record_json     TEXT,
	created_at      TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES policy_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_policies (
	nation        TEXT PRIMARY KEY,
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES policy_versions(version_id)
);
`

// #endregion schema

// #region store-struct
// Store keeps policy-set versions and the decision audit log in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region create-initial
// CreateInitialState records the policies a nation held when a session
// started and makes that version active.
func (s *Store) CreateInitialState(nation string, policies []string) (PolicyRecord, error) {
	rec := PolicyRecord{
		VersionID: uuid.New().String(),
		Nation:    nation,
		Policies:  append([]string(nil), policies...),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.insert(rec); err != nil {
		return PolicyRecord{}, err
	}
	return rec, nil
}

// #endregion create-initial

// #region get-current
// GetCurrent reads the active policy version of a nation.
func (s *Store) GetCurrent(nation string) (PolicyRecord, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_policies WHERE nation = ?`, nation).Scan(&versionID)
	if err != nil {
		return PolicyRecord{}, fmt.Errorf("get active %s: %w", nation, err)
	}
	return s.GetVersion(versionID)
}

// #endregion get-current

// #region get-version
// GetVersion retrieves a specific policy version by ID.
func (s *Store) GetVersion(id string) (PolicyRecord, error) {
	row := s.db.QueryRow(
		`SELECT version_id, parent_id, nation, policies_json, created_at, metrics_json
		 FROM policy_versions WHERE version_id = ?`, id,
	)
	rec, err := scanRecord(row)
	if err != nil {
		return PolicyRecord{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get-version

// #region commit-state
// CommitState inserts a new version and moves the nation's active pointer to it.
func (s *Store) CommitState(rec PolicyRecord) error {
	return s.insert(rec)
}

func (s *Store) insert(rec PolicyRecord) error {
	policiesJSON, err := json.Marshal(nonNil(rec.Policies))
	if err != nil {
		return fmt.Errorf("marshal policies: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO policy_versions (version_id, parent_id, nation, policies_json, created_at, metrics_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nullIfEmpty(rec.ParentID), rec.Nation, string(policiesJSON),
		rec.CreatedAt.Format(time.RFC3339Nano), nullIfEmpty(rec.MetricsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_policies (nation, version_id) VALUES (?, ?)
		 ON CONFLICT(nation) DO UPDATE SET version_id = excluded.version_id`,
		rec.Nation, rec.VersionID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	return tx.Commit()
}

// #endregion commit-state

// #region list-versions
// ListVersions returns the most recent policy versions, newest first.
func (s *Store) ListVersions(limit int) ([]PolicyRecord, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, nation, policies_json, created_at, metrics_json
		 FROM policy_versions ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []PolicyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-versions

// #region list-decisions
// ListDecisions returns the most recent audited decisions, newest first.
// An empty nation lists every nation.
func (s *Store) ListDecisions(nation string, limit int) ([]DecisionRow, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, version_id, nation, issue_id, option_id, decision,
		        predicted_score, actual_score, reason, record_json, created_at
		 FROM decision_log
		 WHERE ? = '' OR nation = ?
		 ORDER BY id DESC LIMIT ?`, nation, nation, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		var d DecisionRow
		var versionID, reason, recordJSON sql.NullString
		var predicted, actual sql.NullFloat64
		var createdStr string
		if err := rows.Scan(&d.ID, &d.SessionID, &versionID, &d.Nation, &d.IssueID, &d.OptionID,
			&d.Decision, &predicted, &actual, &reason, &recordJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		d.VersionID = versionID.String
		d.Reason = reason.String
		d.RecordJSON = recordJSON.String
		d.PredictedScore = predicted.Float64
		d.ActualScore = actual.Float64
		d.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, d)
	}
	return out, rows.Err()
}

// #endregion list-decisions

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (PolicyRecord, error) {
	var rec PolicyRecord
	var parentID, metricsJSON sql.NullString
	var policiesJSON, createdStr string
	if err := row.Scan(&rec.VersionID, &parentID, &rec.Nation, &policiesJSON, &createdStr, &metricsJSON); err != nil {
		return PolicyRecord{}, err
	}
	rec.ParentID = parentID.String
	rec.MetricsJSON = metricsJSON.String
	if err := json.Unmarshal([]byte(policiesJSON), &rec.Policies); err != nil {
		return PolicyRecord{}, fmt.Errorf("unmarshal policies: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// #endregion helpers
