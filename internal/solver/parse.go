package solver

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// #region parse

// parseMetrics extracts aerodynamic coefficients from the solver's output
// files. The history CSV is authoritative for the converged values (last
// row wins); the forces breakdown file overrides when present. Missing
// cl or cd means the case produced nothing usable.
func parseMetrics(historyPath, forcesPath string) (map[string]float64, error) {
	metrics := make(map[string]float64)

	if historyPath != "" {
		if err := parseHistory(historyPath, metrics); err != nil {
			return nil, err
		}
	}
	if forcesPath != "" {
		if err := parseForces(forcesPath, metrics); err != nil {
			return nil, err
		}
	}

	if _, ok := metrics["cl"]; !ok {
		return nil, fmt.Errorf("parse solver output: CL missing")
	}
	if _, ok := metrics["cd"]; !ok {
		return nil, fmt.Errorf("parse solver output: CD missing")
	}
	return metrics, nil
}

// parseHistory reads the convergence history CSV and keeps the last value
// of each coefficient column.
func parseHistory(path string, metrics map[string]float64) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open history %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parse history %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil
	}

	columns := map[string]string{"CL": "cl", "CD": "cd", "CMz": "cm"}
	wanted := make(map[int]string)
	for col, name := range rows[0] {
		if key, ok := columns[strings.Trim(name, `" `)]; ok {
			wanted[col] = key
		}
	}
	for _, row := range rows[1:] {
		for col, key := range wanted {
			if col >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				return fmt.Errorf("parse history %s column %s: %w", path, key, err)
			}
			metrics[key] = v
		}
	}
	return nil
}

// parseForces reads "CL = 0.75"-style lines from the forces breakdown file.
func parseForces(path string, metrics map[string]float64) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open forces %s: %w", path, err)
	}
	defer f.Close()

	keys := map[string]string{"CL": "cl", "CD": "cd", "CMz": "cm"}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		name, rest, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key, ok := keys[strings.TrimSpace(name)]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			return fmt.Errorf("parse forces %s line %q: %w", path, line, err)
		}
		metrics[key] = v
	}
	return scanner.Err()
}

// #endregion parse
