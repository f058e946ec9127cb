// Package synth implements constrained, relation-preserving row
// synthesis over an analyzed source table.
package synth

// FieldConstraint is a caller-supplied override of a column's inferred
// type and bounds. Missing or invalid pieces fall back to the column
// profile's observed values.
type FieldConstraint struct {
	Type string   `json:"type,omitempty"` // "int", "float", or "categorical"
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
}

// Request describes one generation run.
type Request struct {
	// Columns lists the columns to synthesize. Empty means all columns.
	Columns []string `json:"cols_to_synthesize,omitempty"`

	// Constraints maps column name to its override.
	Constraints map[string]FieldConstraint `json:"constraints,omitempty"`

	// Relations lists ordered column pairs whose joint values must be
	// drawn together from the source table's observed pairs.
	Relations [][2]string `json:"relations,omitempty"`

	// Rows is the target row count. Zero defaults to the source row count.
	Rows int `json:"rowCount"`

	// ModelType names the requested generation model ("auto", "ctgan",
	// "copula", ...). The deterministic generator ignores it beyond
	// recording; it is forwarded to external engines.
	ModelType string `json:"modelType,omitempty"`

	// Parameters are engine tuning knobs (epochs, batchSize, pac),
	// forwarded to external engines only.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Seed makes the deterministic path reproducible. Zero means a
	// time-based seed.
	Seed int64 `json:"-"`
}

// SynthSet resolves the effective synthesize-set against the table's
// headers: the requested columns that actually exist, or all headers
// when no selection was made.
func (r Request) SynthSet(headers []string) map[string]bool {
	set := make(map[string]bool, len(headers))
	if len(r.Columns) == 0 {
		for _, h := range headers {
			set[h] = true
		}
		return set
	}
	exists := make(map[string]bool, len(headers))
	for _, h := range headers {
		exists[h] = true
	}
	for _, c := range r.Columns {
		if exists[c] {
			set[c] = true
		}
	}
	return set
}

// Stats carries bookkeeping from one generation run, consumed by the
// evaluator's integrity score.
type Stats struct {
	// Rows is the number of synthesized rows.
	Rows int
	// DedupRedraws counts rows that were redrawn because they exactly
	// matched a source row.
	DedupRedraws int
	// RepairedCells counts cells clamped back into range after
	// generation (year columns).
	RepairedCells int
}
