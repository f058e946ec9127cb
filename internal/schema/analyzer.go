// Package schema implements column profiling for tabular datasets:
// type inference, per-column statistics, constraint suggestions, and
// relation-pair discovery.
//
// Inference is best-effort and never fails: malformed input degrades to
// a degenerate single-column dataset. The numeric sniff runs on a
// bounded prefix of each column, so a column whose anomalies occur
// after the sampled prefix is still classified numeric.
package schema

import (
	"math"
	"strconv"
	"strings"

	"github.com/vatskrypt/DataMimic/internal/table"
)

// Kind classifies a column as numeric or categorical.
type Kind string

const (
	// KindNumeric means every sampled non-empty cell parsed as a number.
	KindNumeric Kind = "numeric"
	// KindCategorical means at least one sampled cell failed numeric parsing.
	KindCategorical Kind = "categorical"
)

// DefaultSampleSize bounds how many non-empty values the numeric sniff
// inspects per column.
const DefaultSampleSize = 100

// Year columns are clamped to this calendar range regardless of the
// observed data.
const (
	YearMin = 1900
	YearMax = 2025
)

// ColumnProfile holds the inferred type and value pool for one column.
type ColumnProfile struct {
	Name string
	Kind Kind
	// Values are the raw non-empty cells of the column in row order.
	Values []string
	// NullCount is the number of empty cells excluded from Values.
	NullCount int
}

// NumericValues parses the profile's value pool, skipping cells that do
// not parse. Strays can exist even in a numeric-classified column when
// they fall outside the sniffed prefix.
func (p *ColumnProfile) NumericValues() []float64 {
	out := make([]float64, 0, len(p.Values))
	for _, v := range p.Values {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// DistinctValues returns the distinct observed values in first-seen
// order. Order stability matters for seeded generation.
func (p *ColumnProfile) DistinctValues() []string {
	seen := make(map[string]struct{}, len(p.Values))
	var out []string
	for _, v := range p.Values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Suggestion is the per-column constraint suggestion surfaced to the
// caller ahead of generation.
type Suggestion struct {
	Type string   `json:"type"` // "int", "float", or "categorical"
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
}

// RelationPair is an ordered (code column, name column) pair whose joint
// values must be preserved together during synthesis.
type RelationPair struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Analysis is the full analyzer output for one table.
type Analysis struct {
	Profiles []ColumnProfile
	// Suggestions align positionally with Profiles.
	Suggestions []Suggestion
	Relations   []RelationPair
}

// Profile returns the profile for the named column, or nil.
func (a *Analysis) Profile(name string) *ColumnProfile {
	for i := range a.Profiles {
		if a.Profiles[i].Name == name {
			return &a.Profiles[i]
		}
	}
	return nil
}

// SuggestionFor returns the suggestion for the named column, or nil.
func (a *Analysis) SuggestionFor(name string) *Suggestion {
	for i := range a.Profiles {
		if a.Profiles[i].Name == name {
			return &a.Suggestions[i]
		}
	}
	return nil
}

// Analyze profiles every column of the table with the default sniff
// sample size.
func Analyze(t *table.Table) *Analysis {
	return AnalyzeSample(t, DefaultSampleSize)
}

// AnalyzeSample profiles every column, sniffing numeric-ness on at most
// sampleSize non-empty values per column.
func AnalyzeSample(t *table.Table, sampleSize int) *Analysis {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	a := &Analysis{
		Profiles:    make([]ColumnProfile, len(t.Headers)),
		Suggestions: make([]Suggestion, len(t.Headers)),
	}

	for ix, name := range t.Headers {
		p := ColumnProfile{Name: name}
		for row := range t.Rows {
			cell := t.Cell(row, ix)
			if cell == "" {
				p.NullCount++
				continue
			}
			p.Values = append(p.Values, cell)
		}
		p.Kind = sniffKind(p.Values, sampleSize)
		a.Profiles[ix] = p
		a.Suggestions[ix] = suggest(&p)
	}

	a.Relations = DiscoverRelations(t.Headers)
	return a
}

// sniffKind classifies a column from a bounded prefix of its non-empty
// values. An empty pool is numeric by vacuous truth, matching DictReader
// semantics downstream callers rely on.
func sniffKind(values []string, sampleSize int) Kind {
	sample := values
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	for _, v := range sample {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return KindCategorical
		}
	}
	return KindNumeric
}

// suggest derives the constraint suggestion for one profiled column.
// The year-name prior takes precedence over the generic numeric range.
func suggest(p *ColumnProfile) Suggestion {
	nums := p.NumericValues()

	if IsYearColumn(p.Name) {
		lo, hi := float64(YearMin), float64(YearMax)
		if len(nums) > 0 {
			lo = math.Max(YearMin, minOf(nums))
			hi = math.Min(YearMax, maxOf(nums))
			if lo > hi {
				// Observed range is entirely outside the calendar
				// window; keep the window itself.
				lo, hi = YearMin, YearMax
			}
		}
		return Suggestion{Type: "int", Min: &lo, Max: &hi}
	}

	if p.Kind != KindNumeric || len(nums) == 0 {
		if p.Kind == KindNumeric {
			return Suggestion{Type: "float"}
		}
		return Suggestion{Type: "categorical"}
	}

	lo, hi := minOf(nums), maxOf(nums)
	typ := "float"
	if lo == math.Trunc(lo) && hi == math.Trunc(hi) {
		typ = "int"
	}
	return Suggestion{Type: typ, Min: &lo, Max: &hi}
}

// IsYearColumn reports whether a column name carries the calendar-year
// domain prior.
func IsYearColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "year")
}

// DiscoverRelations pairs every header ending in "code" with a header
// named <prefix>name, case-insensitively. The pairs are suggestions;
// whether they are honored is up to the generation request.
func DiscoverRelations(headers []string) []RelationPair {
	var pairs []RelationPair
	for _, h := range headers {
		lower := strings.ToLower(h)
		if !strings.HasSuffix(lower, "code") {
			continue
		}
		want := lower[:len(lower)-len("code")] + "name"
		for _, other := range headers {
			if other == h {
				continue
			}
			if strings.ToLower(other) == want {
				pairs = append(pairs, RelationPair{Code: h, Name: other})
				break
			}
		}
	}
	return pairs
}

func minOf(nums []float64) float64 {
	m := nums[0]
	for _, n := range nums[1:] {
		if n < m {
			m = n
		}
	}
	return m
}

func maxOf(nums []float64) float64 {
	m := nums[0]
	for _, n := range nums[1:] {
		if n > m {
			m = n
		}
	}
	return m
}
