package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	generation   INTEGER NOT NULL,
	eval_id      TEXT NOT NULL,
	genes_json   TEXT NOT NULL,
	status       TEXT NOT NULL,
	objective    REAL,
	metrics_json TEXT,
	detail       TEXT,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_generation ON evaluations(generation);
`

// #endregion schema

// #region store

// Store is the append-only evaluation ledger backed by SQLite. It is the
// system of record for every evaluation ever performed in a run, including
// designs later discarded by selection.
type Store struct {
	db *sql.DB
}

// Open opens the ledger database and runs migrations. Reopening an
// existing ledger continues where the previous process left off.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region append

// Append writes one entry. The ledger never rewrites or deletes prior
// entries; Append is called on every evaluation outcome, failures included.
func (s *Store) Append(e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	genesJSON, err := json.Marshal(e.Genes)
	if err != nil {
		return fmt.Errorf("marshal genes: %w", err)
	}

	var objective interface{}
	var metricsJSON interface{}
	if e.OK() {
		objective = e.Objective
		data, err := json.Marshal(e.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics: %w", err)
		}
		metricsJSON = string(data)
	}

	_, err = s.db.Exec(
		`INSERT INTO evaluations (generation, eval_id, genes_json, status, objective, metrics_json, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Generation,
		e.EvaluationID,
		string(genesJSON),
		e.Status,
		objective,
		metricsJSON,
		nullIfEmpty(e.Detail),
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// #endregion append

// #region read

// ReadAll returns every entry in the exact order written.
func (s *Store) ReadAll() ([]Entry, error) {
	return s.readWhere("", nil)
}

// Generation returns the entries of a single generation, in write order.
func (s *Store) Generation(g int) ([]Entry, error) {
	return s.readWhere("WHERE generation = ?", []interface{}{g})
}

func (s *Store) readWhere(where string, args []interface{}) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT generation, eval_id, genes_json, status, objective, metrics_json, detail, created_at
		 FROM evaluations `+where+` ORDER BY id`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var genesJSON string
		var objective sql.NullFloat64
		var metricsJSON, detail sql.NullString
		var createdStr string

		if err := rows.Scan(&e.Generation, &e.EvaluationID, &genesJSON, &e.Status, &objective, &metricsJSON, &detail, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(genesJSON), &e.Genes); err != nil {
			return nil, fmt.Errorf("unmarshal genes: %w", err)
		}
		if objective.Valid {
			e.Objective = objective.Float64
		}
		if metricsJSON.Valid {
			if err := json.Unmarshal([]byte(metricsJSON.String), &e.Metrics); err != nil {
				return nil, fmt.Errorf("unmarshal metrics: %w", err)
			}
		}
		if detail.Valid {
			e.Detail = detail.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastGeneration returns the highest generation number recorded, or zero
// for an empty ledger. The optimizer offsets its numbering by this value
// so appending across process restarts never collides.
func (s *Store) LastGeneration() (int, error) {
	var g int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(generation), 0) FROM evaluations`).Scan(&g)
	if err != nil {
		return 0, fmt.Errorf("last generation: %w", err)
	}
	return g, nil
}

// #endregion read

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
