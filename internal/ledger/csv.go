package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// #region columns

// VariableColumns returns the sorted union of gene names across entries.
func VariableColumns(entries []Entry) []string {
	return sortedKeys(entries, func(e Entry) map[string]float64 { return e.Genes })
}

// MetricColumns returns the sorted union of metric names across entries.
func MetricColumns(entries []Entry) []string {
	return sortedKeys(entries, func(e Entry) map[string]float64 { return e.Metrics })
}

func sortedKeys(entries []Entry, pick func(Entry) map[string]float64) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		for k := range pick(e) {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

// #endregion columns

// #region export

// ExportCSV writes entries as one CSV row per evaluation with columns
// generation, evaluation_id, one column per design variable, the objective
// value, one column per raw metric, and the outcome status. The header is
// written only when writeHeader is set, so repeated exports can append to
// the same file without rewriting it.
func ExportCSV(w io.Writer, entries []Entry, variables, metrics []string, writeHeader bool) error {
	cw := csv.NewWriter(w)

	if writeHeader {
		header := []string{"generation", "evaluation_id"}
		header = append(header, variables...)
		header = append(header, "objective_value")
		header = append(header, metrics...)
		header = append(header, "status")
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for _, e := range entries {
		row := []string{strconv.Itoa(e.Generation), e.EvaluationID}
		for _, name := range variables {
			row = append(row, formatCell(e.Genes, name))
		}
		if e.OK() {
			row = append(row, strconv.FormatFloat(e.Objective, 'g', -1, 64))
		} else {
			row = append(row, "")
		}
		for _, name := range metrics {
			row = append(row, formatCell(e.Metrics, name))
		}
		row = append(row, e.Status)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(values map[string]float64, name string) string {
	v, ok := values[name]
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// #endregion export
