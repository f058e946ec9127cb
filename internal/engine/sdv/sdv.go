// Package sdv runs the external model-backed generation engine: a
// python process speaking JSON over stdin/stdout. The process is an
// opaque collaborator with a bounded lifetime; every failure mode
// (missing interpreter or script, non-zero exit, malformed output,
// reported error, timeout) surfaces as an error so the caller can fall
// back to the deterministic engine.
// It registers itself with the engine registry on import.
package sdv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/vatskrypt/DataMimic/internal/engine"
	"github.com/vatskrypt/DataMimic/internal/logging"
	"github.com/vatskrypt/DataMimic/internal/schema"
	"github.com/vatskrypt/DataMimic/internal/synth"
	"github.com/vatskrypt/DataMimic/internal/synth/evaluate"
	"github.com/vatskrypt/DataMimic/internal/table"
)

const (
	// DefaultPython is the interpreter used when none is configured.
	DefaultPython = "python3"

	// DefaultScript is the engine script path used when none is
	// configured.
	DefaultScript = "scripts/generate_synthetic.py"

	// DefaultTimeout bounds the process lifetime; model fitting is
	// slow but not unbounded.
	DefaultTimeout = 2 * time.Minute

	// ScriptEnvVar overrides the script path.
	ScriptEnvVar = "DATAMIMIC_ENGINE_SCRIPT"

	// PythonEnvVar overrides the interpreter.
	PythonEnvVar = "DATAMIMIC_PYTHON"
)

func init() {
	engine.Register(&Engine{})
}

// Engine implements engine.Engine over an external python process.
// Zero-value fields resolve to defaults (and env overrides) at call
// time, so the registry can hold an unconfigured instance.
type Engine struct {
	Python  string
	Script  string
	Timeout time.Duration
}

// Name returns the primary engine name.
func (e *Engine) Name() string {
	return "sdv"
}

// Aliases returns the model types this engine serves.
func (e *Engine) Aliases() []string {
	return []string{"ctgan", "copula", "gaussian_copula", "copulagan", "copula_gan", "tvae"}
}

// request is the JSON payload handed to the engine process.
type request struct {
	CSVData    string         `json:"csvData"`
	ModelType  string         `json:"modelType"`
	RowCount   int            `json:"rowCount"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Controlled *controlled    `json:"controlled,omitempty"`
}

// controlled carries the constrained-generation section of the payload.
type controlled struct {
	ColsToSynthesize []string                         `json:"cols_to_synthesize,omitempty"`
	Constraints      map[string]synth.FieldConstraint `json:"constraints,omitempty"`
	Relations        [][2]string                      `json:"relations,omitempty"`
}

// response is the engine process output.
type response struct {
	Success       bool             `json:"success"`
	Error         string           `json:"error,omitempty"`
	SyntheticData string           `json:"syntheticData"`
	Evaluation    *evaluate.Report `json:"evaluation"`
}

// Generate runs the external process once. On success the returned
// table has been re-parsed, year-clamped, and evaluated (the process
// report is kept when it carries one).
func (e *Engine) Generate(ctx context.Context, src *table.Table, an *schema.Analysis, req synth.Request) (*engine.Result, error) {
	python, script, timeout := e.resolve()

	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%w: engine script %s: %v", engine.ErrUnavailable, script, err)
	}
	if _, err := exec.LookPath(python); err != nil {
		return nil, fmt.Errorf("%w: interpreter %s: %v", engine.ErrUnavailable, python, err)
	}

	payload, err := json.Marshal(buildRequest(src, req))
	if err != nil {
		return nil, fmt.Errorf("marshal engine request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, python, script, "-")
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("Running engine process: %s %s (%d byte payload, timeout %v)", python, script, len(payload), timeout)
	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("engine process timed out after %v", timeout)
		}
		return nil, fmt.Errorf("engine process failed: %w (stderr: %s)", err, firstLine(stderr.String()))
	}
	logging.Debug("Engine process finished in %v", time.Since(start).Round(time.Millisecond))

	return parseResult(src, an, req, stdout.Bytes())
}

func (e *Engine) resolve() (python, script string, timeout time.Duration) {
	python = e.Python
	if python == "" {
		python = os.Getenv(PythonEnvVar)
	}
	if python == "" {
		python = DefaultPython
	}
	script = e.Script
	if script == "" {
		script = os.Getenv(ScriptEnvVar)
	}
	if script == "" {
		script = DefaultScript
	}
	timeout = e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return python, script, timeout
}

// buildRequest maps the generation request onto the process protocol.
// The controlled section is only sent when the request actually
// constrains generation.
func buildRequest(src *table.Table, req synth.Request) request {
	r := request{
		CSVData:    src.Serialize(),
		ModelType:  req.ModelType,
		RowCount:   req.Rows,
		Parameters: req.Parameters,
	}
	if r.RowCount <= 0 {
		r.RowCount = src.RowCount()
	}
	if len(req.Columns) > 0 || len(req.Constraints) > 0 || len(req.Relations) > 0 {
		r.Controlled = &controlled{
			ColsToSynthesize: req.Columns,
			Constraints:      req.Constraints,
			Relations:        req.Relations,
		}
	}
	return r
}

// parseResult validates and post-processes the process output. A
// missing or sparse evaluation is recomputed locally so callers always
// receive a complete report.
func parseResult(src *table.Table, an *schema.Analysis, req synth.Request, raw []byte) (*engine.Result, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unparsable engine output: %w", err)
	}
	if !resp.Success {
		if resp.Error == "" {
			resp.Error = "engine reported failure without detail"
		}
		return nil, fmt.Errorf("engine error: %s", resp.Error)
	}

	syn := table.Parse(resp.SyntheticData)
	if syn.RowCount() == 0 {
		return nil, fmt.Errorf("engine returned empty synthetic data")
	}

	repaired := synth.ClampYears(syn)
	report := resp.Evaluation
	if report == nil || len(report.DistributionData) == 0 {
		report = evaluate.Evaluate(src, syn, an, &synth.Stats{Rows: syn.RowCount(), RepairedCells: repaired})
	}

	return &engine.Result{Synthetic: syn, Report: report}, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
