// Package orchestrator coordinates the full generation flow: dataset
// storage, schema analysis, engine selection with deterministic
// fallback, and run history.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vatskrypt/DataMimic/internal/config"
	"github.com/vatskrypt/DataMimic/internal/engine"
	"github.com/vatskrypt/DataMimic/internal/engine/fallback"
	"github.com/vatskrypt/DataMimic/internal/engine/sdv"
	"github.com/vatskrypt/DataMimic/internal/logging"
	"github.com/vatskrypt/DataMimic/internal/progress"
	"github.com/vatskrypt/DataMimic/internal/schema"
	"github.com/vatskrypt/DataMimic/internal/store"
	"github.com/vatskrypt/DataMimic/internal/synth"
	"github.com/vatskrypt/DataMimic/internal/synth/evaluate"
	"github.com/vatskrypt/DataMimic/internal/table"
)

// Service wires the store and the engine registry behind one API.
type Service struct {
	cfg   *config.Config
	store *store.Store
}

// New opens the store and configures the registered engines from cfg.
func New(cfg *config.Config) (*Service, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if eng, err := engine.Get("sdv"); err == nil {
		if e, ok := eng.(*sdv.Engine); ok {
			e.Python = cfg.Engine.Python
			e.Script = cfg.Engine.Script
			e.Timeout = cfg.Engine.Timeout()
		}
	}

	return &Service{cfg: cfg, store: st}, nil
}

// Close releases the store.
func (s *Service) Close() error {
	return s.store.Close()
}

// Store exposes the underlying store for read-only queries.
func (s *Service) Store() *store.Store {
	return s.store
}

// ImportCSV parses raw comma-separated text and persists it as a named
// dataset.
func (s *Service) ImportCSV(name, raw string) (*store.Dataset, error) {
	t := table.Parse(raw)
	return s.ImportTable(name, t)
}

// ImportTable persists an already-parsed table as a named dataset.
func (s *Service) ImportTable(name string, t *table.Table) (*store.Dataset, error) {
	if len(t.Headers) == 0 || (len(t.Headers) == 1 && t.Headers[0] == "") {
		return nil, fmt.Errorf("dataset %q has no columns", name)
	}
	d, err := s.store.CreateDataset(name, t.Serialize(), len(t.Headers), t.RowCount())
	if err != nil {
		return nil, err
	}
	logging.Info("Imported dataset %s (%d columns, %d rows) as %s", name, d.Columns, d.Rows, d.ID)
	return d, nil
}

// Analyze loads a dataset and profiles its columns.
func (s *Service) Analyze(datasetID string) (*schema.Analysis, *table.Table, error) {
	d, err := s.store.GetDataset(datasetID)
	if err != nil {
		return nil, nil, err
	}
	t := table.Parse(d.CSVData)
	an := schema.AnalyzeSample(t, s.cfg.Generation.SampleLimit)
	return an, t, nil
}

// GenerateOptions parameterizes one generation run.
type GenerateOptions struct {
	DatasetID   string
	Rows        int
	Columns     []string
	Constraints map[string]synth.FieldConstraint
	Relations   [][2]string
	Model       string
	Parameters  map[string]any
	Seed        int64
	NoExternal  bool
	Progress    bool
}

// GenerateResult is the outcome of one generation run.
type GenerateResult struct {
	Run       *store.Run
	Synthetic *table.Table
	Report    *evaluate.Report
	Engine    string
	Fallback  bool
}

// Generate runs one end-to-end generation: resolve the dataset (a
// missing dataset is the one unrecoverable error), pick the model,
// try the external engine, and fall back to the deterministic engine
// at most once. Every run is recorded, failed ones included.
func (s *Service) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	d, err := s.store.GetDataset(opts.DatasetID)
	if err != nil {
		return nil, err
	}
	src := table.Parse(d.CSVData)
	an := schema.AnalyzeSample(src, s.cfg.Generation.SampleLimit)

	model := opts.Model
	if model == "" {
		model = s.cfg.Engine.DefaultModel
	}
	if model == "" || model == "auto" {
		model = engine.AutoModel(an)
		logging.Info("Auto-selected model type %s", model)
	}

	rows := opts.Rows
	if rows <= 0 {
		rows = s.cfg.Generation.DefaultRows
	}
	if rows <= 0 {
		rows = src.RowCount()
	}

	req := synth.Request{
		Columns:     opts.Columns,
		Constraints: opts.Constraints,
		Relations:   opts.Relations,
		Rows:        rows,
		ModelType:   model,
		Parameters:  opts.Parameters,
		Seed:        opts.Seed,
	}

	run, err := s.store.CreateRun(d.ID, "sdv", model)
	if err != nil {
		return nil, err
	}

	res, engineName, fellBack, genErr := s.generate(ctx, src, an, req, opts)

	run.Engine = engineName
	run.Fallback = fellBack
	if genErr != nil {
		run.Status = store.StatusFailed
		run.Error = genErr.Error()
		if err := s.store.CompleteRun(run); err != nil {
			logging.Error("Failed to record run %s: %v", run.ID, err)
		}
		return nil, genErr
	}

	run.Status = store.StatusSuccess
	run.SyntheticCSV = res.Synthetic.Serialize()
	if body, err := json.Marshal(res.Report); err == nil {
		run.ReportJSON = string(body)
	}
	if err := s.store.CompleteRun(run); err != nil {
		logging.Error("Failed to record run %s: %v", run.ID, err)
	}

	return &GenerateResult{
		Run:       run,
		Synthetic: res.Synthetic,
		Report:    res.Report,
		Engine:    engineName,
		Fallback:  fellBack,
	}, nil
}

// generate tries the external engine first and the deterministic
// fallback at most once.
func (s *Service) generate(ctx context.Context, src *table.Table, an *schema.Analysis, req synth.Request, opts GenerateOptions) (*engine.Result, string, bool, error) {
	external := !s.cfg.Engine.Disabled && !opts.NoExternal
	attempted := false

	if external {
		eng, err := engine.Get(req.ModelType)
		if err == nil && eng.Name() != "fallback" {
			attempted = true
			res, genErr := eng.Generate(ctx, src, an, req)
			if genErr == nil {
				return res, eng.Name(), false, nil
			}
			if ctx.Err() != nil {
				return nil, eng.Name(), false, ctx.Err()
			}
			logging.Warn("External engine failed, using deterministic fallback: %v", genErr)
		} else if err != nil {
			logging.Warn("No engine serves model type %s, using deterministic fallback", req.ModelType)
		}
	}

	eng, err := engine.Get("fallback")
	if err != nil {
		return nil, "", false, fmt.Errorf("no fallback engine registered: %w", err)
	}
	fb, _ := eng.(*fallback.Engine)
	if fb != nil && opts.Progress {
		tracker := progress.New(int64(req.Rows))
		fb.Progress = tracker.Add
		defer func() {
			tracker.Finish()
			fb.Progress = nil
		}()
	}

	res, genErr := eng.Generate(ctx, src, an, req)
	if genErr != nil {
		return nil, eng.Name(), attempted, genErr
	}
	return res, eng.Name(), attempted, nil
}

// History lists recorded runs, optionally scoped to one dataset.
func (s *Service) History(datasetID string) ([]store.Run, error) {
	return s.store.ListRuns(datasetID)
}

// RunDetails fetches one recorded run.
func (s *Service) RunDetails(id string) (*store.Run, error) {
	return s.store.GetRun(id)
}

// Datasets lists stored datasets.
func (s *Service) Datasets() ([]store.Dataset, error) {
	return s.store.ListDatasets()
}
