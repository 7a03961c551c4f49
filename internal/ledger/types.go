package ledger

import "time"

// #region entry

// Entry is one row of the evaluation ledger: the snapshot of an individual,
// the outcome of its evaluation, and the generation it was evaluated in.
// Entries are immutable once appended.
type Entry struct {
	Generation   int
	EvaluationID string
	Genes        map[string]float64
	Status       string // solver.Status spelling
	// Objective is meaningful only for successful entries.
	Objective float64
	Metrics   map[string]float64
	Detail    string
	CreatedAt time.Time
}

// OK reports whether the entry records a successful evaluation.
func (e Entry) OK() bool {
	return e.Status == "ok"
}

// #endregion entry
