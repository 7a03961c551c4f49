package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/qixiaoyu27/Fluent/internal/design"
	"github.com/qixiaoyu27/Fluent/internal/objective"
)

// #region runner-config

// RunnerConfig holds the paths, files and run parameters for the external
// solver.
type RunnerConfig struct {
	Executable     string   `yaml:"executable"`
	TemplateConfig string   `yaml:"template_config"`
	MeshFile       string   `yaml:"mesh_file"`
	WorkDir        string   `yaml:"working_directory"`
	HistoryFile    string   `yaml:"history_file"`
	ForcesFile     string   `yaml:"result_file"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	ExtraArgs      []string `yaml:"extra_cli_arguments"`
	// Reference carries flow and geometry constants merged into the case
	// template alongside the design variables (cruise_mach_number,
	// reference_length, reference_area, cruise_lift_coefficient, ...).
	Reference map[string]float64 `yaml:"reference"`
}

// #endregion runner-config

// #region case-runner

// CaseRunner evaluates designs by preparing an isolated solver case,
// running the solver binary and parsing its output files.
type CaseRunner struct {
	cfg      RunnerConfig
	set      *design.VariableSet
	obj      *objective.Func
	template string
}

// NewCaseRunner reads the case template and prepares the working directory.
func NewCaseRunner(cfg RunnerConfig, set *design.VariableSet, obj *objective.Func) (*CaseRunner, error) {
	if cfg.Executable == "" {
		return nil, fmt.Errorf("solver: executable not configured")
	}
	if cfg.TemplateConfig == "" {
		return nil, fmt.Errorf("solver: template_config not configured")
	}
	if cfg.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("solver: timeout_seconds must not be negative")
	}
	if cfg.HistoryFile == "" && cfg.ForcesFile == "" {
		return nil, fmt.Errorf("solver: at least one of history_file and result_file required")
	}
	tmpl, err := os.ReadFile(cfg.TemplateConfig)
	if err != nil {
		return nil, fmt.Errorf("solver: read template: %w", err)
	}
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("solver: create working directory: %w", err)
	}
	return &CaseRunner{cfg: cfg, set: set, obj: obj, template: string(tmpl)}, nil
}

// #endregion case-runner

// #region evaluate

// Evaluate runs one solver case for the individual. Every invocation gets
// its own case directory named by a fresh evaluation ID, so cases never
// share artifacts and cancelling one cannot touch another.
func (r *CaseRunner) Evaluate(ctx context.Context, ind design.Individual) (Outcome, error) {
	caseID := uuid.NewString()[:8]
	caseDir := filepath.Join(r.cfg.WorkDir, caseID)
	if err := os.MkdirAll(caseDir, 0o755); err != nil {
		return Outcome{}, fmt.Errorf("case %s: create case directory: %w", caseID, err)
	}

	meshName, err := r.stageMesh(caseDir)
	if err != nil {
		return Outcome{}, fmt.Errorf("case %s: %w", caseID, err)
	}

	cfgPath := filepath.Join(caseDir, "case.cfg")
	rendered := r.renderTemplate(meshName, r.set.Genes(ind))
	if err := os.WriteFile(cfgPath, []byte(rendered), 0o644); err != nil {
		return Outcome{}, fmt.Errorf("case %s: write case config: %w", caseID, err)
	}

	log.Printf("[SOLVER] case %s: starting %s", caseID, r.cfg.Executable)

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if r.cfg.TimeoutSeconds > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.TimeoutSeconds)*time.Second)
	}
	defer cancel()

	args := append([]string{cfgPath}, r.cfg.ExtraArgs...)
	cmd := exec.CommandContext(runCtx, r.cfg.Executable, args...)
	cmd.Dir = caseDir
	// Run the solver in its own process group and kill the whole group on
	// cancellation, so worker processes it forks (mpirun launchers) die
	// with it instead of running to completion as orphans.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	// Give the group a short grace period after the kill signal before
	// Wait gives up; the child must never outlive the evaluation.
	cmd.WaitDelay = 3 * time.Second
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	runErr := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		log.Printf("[SOLVER] case %s: timed out after %ds, process killed", caseID, r.cfg.TimeoutSeconds)
		return Outcome{
			Status:       StatusTimeout,
			EvaluationID: caseID,
			Detail:       fmt.Sprintf("solver exceeded %ds budget", r.cfg.TimeoutSeconds),
		}, nil
	}
	if ctx.Err() != nil {
		// The run itself was cancelled, not this one case.
		return Outcome{}, fmt.Errorf("case %s: %w", caseID, ctx.Err())
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			log.Printf("[SOLVER] case %s: solver exited with code %d", caseID, exitErr.ExitCode())
			return Outcome{
				Status:       StatusProcessFailure,
				EvaluationID: caseID,
				Detail:       fmt.Sprintf("exit code %d\n%s", exitErr.ExitCode(), tail(output.String(), maxDetailBytes)),
			}, nil
		}
		// Binary missing or not startable: an environment problem, not a
		// property of this design.
		return Outcome{}, fmt.Errorf("case %s: start solver: %w", caseID, runErr)
	}

	metrics, err := parseMetrics(
		joinIfSet(caseDir, r.cfg.HistoryFile),
		joinIfSet(caseDir, r.cfg.ForcesFile),
	)
	if err != nil {
		log.Printf("[SOLVER] case %s: %v", caseID, err)
		return Outcome{
			Status:       StatusParseFailure,
			EvaluationID: caseID,
			Detail:       err.Error(),
		}, nil
	}

	score, err := r.obj.Score(metrics)
	if err != nil {
		log.Printf("[SOLVER] case %s: %v", caseID, err)
		return Outcome{
			Status:       StatusParseFailure,
			EvaluationID: caseID,
			Detail:       err.Error(),
		}, nil
	}

	log.Printf("[SOLVER] case %s: done, objective=%.6f", caseID, score)
	return Outcome{
		Status:       StatusOK,
		EvaluationID: caseID,
		Result: Result{
			ObjectiveValue: score,
			Metrics:        metrics,
		},
	}, nil
}

// #endregion evaluate

// #region staging

// stageMesh copies the mesh into the case directory so the solver never
// touches the shared original. Returns the local mesh file name.
func (r *CaseRunner) stageMesh(caseDir string) (string, error) {
	if r.cfg.MeshFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(r.cfg.MeshFile)
	if err != nil {
		return "", fmt.Errorf("read mesh: %w", err)
	}
	name := filepath.Base(r.cfg.MeshFile)
	if err := os.WriteFile(filepath.Join(caseDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("stage mesh: %w", err)
	}
	return name, nil
}

// #endregion staging

// #region template

const (
	aoaMinDeg     = -2.0
	aoaMaxDeg     = 12.0
	aoaDefaultDeg = 3.0
)

// renderTemplate substitutes {placeholder} markers in the case template.
// Design variables override reference constants of the same name, and the
// standard flow placeholders fall back to defaults when unset.
func (r *CaseRunner) renderTemplate(meshName string, genes map[string]float64) string {
	params := make(map[string]float64, len(r.cfg.Reference)+len(genes))
	for k, v := range r.cfg.Reference {
		params[k] = v
	}
	for k, v := range genes {
		params[k] = v
	}

	rendered := strings.ReplaceAll(r.template, "{mesh_filename}", meshName)
	for k, v := range params {
		rendered = strings.ReplaceAll(rendered, "{"+k+"}", formatParam(v))
	}
	for k, v := range map[string]float64{
		"mach_number":      paramOr(params, "cruise_mach_number", 0.08),
		"angle_of_attack":  angleOfAttack(params),
		"reference_length": paramOr(params, "reference_length", 0.8),
		"reference_area":   paramOr(params, "reference_area", 0.6),
	} {
		rendered = strings.ReplaceAll(rendered, "{"+k+"}", formatParam(v))
	}
	return rendered
}

// angleOfAttack resolves the AoA placeholder: use the design variable when
// present, otherwise derive it from the cruise lift coefficient via a thin
// linear lift model, clamped to the solver's trusted incidence range.
func angleOfAttack(params map[string]float64) float64 {
	if aoa, ok := params["angle_of_attack"]; ok {
		return aoa
	}
	clTarget, ok := params["cruise_lift_coefficient"]
	if !ok {
		return aoaDefaultDeg
	}
	cl0 := paramOr(params, "zero_lift_cl", 0.2)
	clAlpha := paramOr(params, "cl_alpha_per_deg", 0.1)
	aoa := (clTarget - cl0) / clAlpha
	if aoa < aoaMinDeg {
		return aoaMinDeg
	}
	if aoa > aoaMaxDeg {
		return aoaMaxDeg
	}
	return aoa
}

func paramOr(params map[string]float64, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return fallback
}

// formatParam renders the shortest exact decimal form, so fine-scaled
// values survive the round trip into the case config untruncated.
func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// #endregion template

// #region helpers

const maxDetailBytes = 4096

// tail returns the last n bytes of s, for failure diagnostics.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

func joinIfSet(dir, name string) string {
	if name == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

// #endregion helpers
