// Package engine provides pluggable generation engine abstractions.
// Each engine (external model-backed, deterministic fallback) implements
// the Engine interface and registers itself with the registry, so the
// orchestrator is decoupled from whichever technique backs a run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vatskrypt/DataMimic/internal/schema"
	"github.com/vatskrypt/DataMimic/internal/synth"
	"github.com/vatskrypt/DataMimic/internal/synth/evaluate"
	"github.com/vatskrypt/DataMimic/internal/table"
)

// ErrUnavailable marks an engine that cannot run in the current
// environment (missing binary, missing script). Callers treat it the
// same as any other engine failure: fall back, do not abort.
var ErrUnavailable = errors.New("engine unavailable")

// Result is the output of one generation run: the synthetic table plus
// its evaluation.
type Result struct {
	Synthetic *table.Table
	Report    *evaluate.Report
}

// Engine produces a synthetic table and evaluation for a request.
//
// To add a new engine:
// 1. Create a package under internal/engine/<name>/
// 2. Implement the Engine interface
// 3. Register via init(): engine.Register(&MyEngine{})
type Engine interface {
	// Name returns the primary engine name (e.g., "sdv", "fallback").
	Name() string

	// Aliases returns alternative names that resolve to this engine,
	// such as the model types it serves.
	Aliases() []string

	// Generate runs one synthesis request against an analyzed source
	// table. It must honor ctx cancellation.
	Generate(ctx context.Context, src *table.Table, an *schema.Analysis, req synth.Request) (*Result, error)
}

var (
	mu      sync.RWMutex
	engines = make(map[string]Engine)
)

// Register adds an engine to the registry under its name and aliases.
// Later registrations of the same name overwrite earlier ones.
func Register(e Engine) {
	mu.Lock()
	defer mu.Unlock()
	engines[strings.ToLower(e.Name())] = e
	for _, alias := range e.Aliases() {
		engines[strings.ToLower(alias)] = e
	}
}

// Get resolves an engine by name or alias, case-insensitively.
func Get(name string) (Engine, error) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := engines[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown engine %q (registered: %s)", name, strings.Join(names(), ", "))
	}
	return e, nil
}

// Names returns the primary names of all registered engines, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return names()
}

func names() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range engines {
		if !seen[e.Name()] {
			seen[e.Name()] = true
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

// Aliases returns the alias list for a registered engine name, sorted.
func Aliases(name string) []string {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := engines[strings.ToLower(name)]
	if !ok {
		return nil
	}
	out := append([]string(nil), e.Aliases()...)
	sort.Strings(out)
	return out
}
