// Package fallback provides the deterministic generation engine: the
// constrained/relational generator plus the statistical evaluator, with
// no external dependencies. It is the default when no model-backed
// engine is available, and the recovery path when one fails.
// It registers itself with the engine registry on import.
package fallback

import (
	"context"
	"math/rand"
	"time"

	"github.com/vatskrypt/DataMimic/internal/engine"
	"github.com/vatskrypt/DataMimic/internal/schema"
	"github.com/vatskrypt/DataMimic/internal/synth"
	"github.com/vatskrypt/DataMimic/internal/synth/evaluate"
	"github.com/vatskrypt/DataMimic/internal/table"
)

func init() {
	engine.Register(&Engine{})
}

// Engine implements engine.Engine deterministically.
type Engine struct {
	// Progress, when set, receives per-row increments during synthesis.
	Progress func(n int64)
}

// Name returns the primary engine name.
func (e *Engine) Name() string {
	return "fallback"
}

// Aliases returns alternative names for this engine.
func (e *Engine) Aliases() []string {
	return []string{"deterministic", "builtin"}
}

// Generate synthesizes req.Rows rows and evaluates them against the
// source. The model type and parameters in the request are ignored:
// this engine has exactly one strategy. A zero seed falls back to a
// time-based one, so only explicitly seeded requests replay.
func (e *Engine) Generate(ctx context.Context, src *table.Table, an *schema.Analysis, req synth.Request) (*engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	gen := synth.New(rand.New(rand.NewSource(seed)))
	gen.Progress = e.Progress

	syn, stats, err := gen.Generate(src, an, req)
	if err != nil {
		return nil, err
	}

	return &engine.Result{
		Synthetic: syn,
		Report:    evaluate.Evaluate(src, syn, an, stats),
	}, nil
}
