package synth

import (
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/vatskrypt/DataMimic/internal/schema"
	"github.com/vatskrypt/DataMimic/internal/table"
)

// maxDedupAttempts bounds how many times a row is redrawn when it
// collides with a source row. After the budget the row is kept:
// availability beats uniqueness.
const maxDedupAttempts = 8

// Generator synthesizes rows from an analyzed source table. Randomness
// comes from the injected rng so seeded runs replay identically.
type Generator struct {
	rng *rand.Rand

	// Progress, when set, is called once per synthesized row.
	Progress func(n int64)
}

// New creates a Generator around the given random source.
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// columnPlan is the precomputed synthesis strategy for one column.
type columnPlan struct {
	name    string
	numeric bool
	// integral selects nearest-integer rounding; otherwise values are
	// rounded to 3 decimal places.
	integral bool
	// bounded is false when the column has no observed or supplied
	// bounds; such columns synthesize "0".
	bounded bool
	min     float64
	max     float64
	// uniform draws uniformly in [min, max]; otherwise a gaussian fit
	// to the observed values is drawn and clamped into [min, max].
	uniform bool
	mean    float64
	std     float64
	// pool is the categorical value pool: every observed non-empty
	// cell, so draws are weighted by empirical frequency.
	pool []string
}

// Generate produces a synthetic table with req.Rows rows (defaulting to
// the source row count). Columns outside the synthesize-set pass
// through from the source by row index, cycling modulo the source
// length when the target count exceeds it.
func (g *Generator) Generate(src *table.Table, an *schema.Analysis, req Request) (*table.Table, *Stats, error) {
	rows := req.Rows
	if rows <= 0 {
		rows = src.RowCount()
	}

	synthSet := req.SynthSet(src.Headers)
	plans := g.buildPlans(an, req, synthSet)
	relations := buildRelationPools(src, req.Relations, synthSet)
	srcKeys := rowKeySet(src)

	out := &table.Table{
		Headers: append([]string(nil), src.Headers...),
		Rows:    make([][]string, 0, rows),
	}
	stats := &Stats{Rows: rows}

	for i := 0; i < rows; i++ {
		var row []string
		for attempt := 0; ; attempt++ {
			row = g.synthesizeRow(src, i, plans, relations, synthSet)
			if len(srcKeys) == 0 || !srcKeys[rowKey(row)] || attempt >= maxDedupAttempts {
				break
			}
			stats.DedupRedraws++
		}
		out.Rows = append(out.Rows, row)
		if g.Progress != nil {
			g.Progress(1)
		}
	}

	stats.RepairedCells = ClampYears(out)
	return out, stats, nil
}

// synthesizeRow builds one output row: seed from the source row, apply
// relation pairs, then independently synthesize the remaining selected
// columns.
func (g *Generator) synthesizeRow(src *table.Table, i int, plans map[string]columnPlan, relations []relationPool, synthSet map[string]bool) []string {
	row := make([]string, len(src.Headers))
	if n := src.RowCount(); n > 0 {
		base := i % n
		for col := range src.Headers {
			row[col] = src.Cell(base, col)
		}
	}

	remaining := make(map[string]bool, len(synthSet))
	for name := range synthSet {
		remaining[name] = true
	}

	// Relation pairs are applied before independent synthesis so the
	// joint draw is never overwritten.
	for _, rel := range relations {
		if !remaining[rel.a] || !remaining[rel.b] || len(rel.pairs) == 0 {
			continue
		}
		p := rel.pairs[g.rng.Intn(len(rel.pairs))]
		row[rel.aIx] = p[0]
		row[rel.bIx] = p[1]
		delete(remaining, rel.a)
		delete(remaining, rel.b)
	}

	for col, name := range src.Headers {
		if !remaining[name] {
			continue
		}
		plan, ok := plans[name]
		if !ok {
			continue
		}
		row[col] = g.drawValue(plan)
		// A header name can repeat; only the first occurrence is
		// synthesized per draw so remove it now.
		delete(remaining, name)
	}
	return row
}

// drawValue synthesizes one cell according to the column plan.
func (g *Generator) drawValue(plan columnPlan) string {
	if !plan.numeric {
		if len(plan.pool) == 0 {
			return ""
		}
		return plan.pool[g.rng.Intn(len(plan.pool))]
	}

	if !plan.bounded {
		return "0"
	}

	var v float64
	if plan.uniform || plan.std == 0 {
		v = plan.min + g.rng.Float64()*(plan.max-plan.min)
	} else {
		v = plan.mean + g.rng.NormFloat64()*plan.std
		v = math.Min(math.Max(v, plan.min), plan.max)
	}

	if plan.integral {
		return strconv.FormatInt(int64(math.Round(v)), 10)
	}
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// buildPlans resolves the effective type, bounds, and strategy for every
// column in the synthesize-set.
func (g *Generator) buildPlans(an *schema.Analysis, req Request, synthSet map[string]bool) map[string]columnPlan {
	plans := make(map[string]columnPlan, len(synthSet))
	for name := range synthSet {
		profile := an.Profile(name)
		if profile == nil {
			continue
		}
		suggestion := an.SuggestionFor(name)
		constraint, constrained := req.Constraints[name]
		plans[name] = buildPlan(profile, suggestion, constraint, constrained)
	}
	return plans
}

func buildPlan(profile *schema.ColumnProfile, suggestion *schema.Suggestion, c FieldConstraint, constrained bool) columnPlan {
	plan := columnPlan{name: profile.Name}

	effType := suggestion.Type
	if c.Type == "int" || c.Type == "float" || c.Type == "categorical" {
		effType = c.Type
	}

	if effType == "categorical" {
		plan.pool = profile.Values
		return plan
	}

	plan.numeric = true
	plan.integral = effType == "int"

	nums := profile.NumericValues()
	obsMin, obsMax, ok := observedBounds(nums, suggestion)

	// Per-bound fallback: a missing or invalid user bound falls back to
	// the observed bound.
	switch {
	case c.Min != nil && c.Max != nil:
		plan.min, plan.max, plan.bounded = *c.Min, *c.Max, true
	case c.Min != nil && ok:
		plan.min, plan.max, plan.bounded = *c.Min, obsMax, true
	case c.Max != nil && ok:
		plan.min, plan.max, plan.bounded = obsMin, *c.Max, true
	case ok:
		plan.min, plan.max, plan.bounded = obsMin, obsMax, true
	}
	if plan.max < plan.min {
		plan.min, plan.max = plan.max, plan.min
	}

	// A user constraint makes the bounds the contract: draw uniformly.
	// Without one, fit a gaussian to the observed values and clamp into
	// the observed range, which tracks the original distribution's
	// shape instead of flattening it.
	plan.uniform = constrained && (c.Min != nil || c.Max != nil)
	if !plan.uniform && len(nums) > 0 {
		plan.mean, plan.std = meanStd(nums)
	} else {
		plan.uniform = true
	}
	return plan
}

// observedBounds prefers the suggestion's bounds (which carry the year
// clamp) and falls back to the raw observed min/max.
func observedBounds(nums []float64, s *schema.Suggestion) (lo, hi float64, ok bool) {
	if s != nil && s.Min != nil && s.Max != nil {
		return *s.Min, *s.Max, true
	}
	if len(nums) == 0 {
		return 0, 0, false
	}
	lo, hi = nums[0], nums[0]
	for _, n := range nums[1:] {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	return lo, hi, true
}

func meanStd(nums []float64) (mean, std float64) {
	for _, n := range nums {
		mean += n
	}
	mean /= float64(len(nums))
	for _, n := range nums {
		std += (n - mean) * (n - mean)
	}
	std = math.Sqrt(std / float64(len(nums)))
	return mean, std
}

// relationPool holds the observed joint value pairs for one honored
// relation. Pairs are collected per row, so the draw is frequency
// weighted by the empirical joint distribution.
type relationPool struct {
	a, b     string
	aIx, bIx int
	pairs    [][2]string
}

func buildRelationPools(src *table.Table, relations [][2]string, synthSet map[string]bool) []relationPool {
	var pools []relationPool
	for _, rel := range relations {
		a, b := rel[0], rel[1]
		if !synthSet[a] || !synthSet[b] {
			continue
		}
		aIx, bIx := src.ColumnIndex(a), src.ColumnIndex(b)
		if aIx < 0 || bIx < 0 {
			continue
		}
		pool := relationPool{a: a, b: b, aIx: aIx, bIx: bIx}
		for i := range src.Rows {
			pool.pairs = append(pool.pairs, [2]string{src.Cell(i, aIx), src.Cell(i, bIx)})
		}
		pools = append(pools, pool)
	}
	return pools
}

// ClampYears clamps every numeric cell of year-named columns into the
// calendar window, returning how many cells were repaired. Applied to
// every synthetic table regardless of which engine produced it.
func ClampYears(t *table.Table) int {
	repaired := 0
	for col, name := range t.Headers {
		if !schema.IsYearColumn(name) {
			continue
		}
		for i, row := range t.Rows {
			if col >= len(row) {
				continue
			}
			f, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				continue
			}
			clamped := math.Min(math.Max(f, schema.YearMin), schema.YearMax)
			if clamped != f {
				t.Rows[i][col] = strconv.FormatInt(int64(clamped), 10)
				repaired++
			}
		}
	}
	return repaired
}

func rowKey(row []string) string {
	return strings.Join(row, "\x1f")
}

func rowKeySet(t *table.Table) map[string]bool {
	keys := make(map[string]bool, len(t.Rows))
	for _, row := range t.Rows {
		padded := row
		if len(row) < len(t.Headers) {
			padded = make([]string, len(t.Headers))
			copy(padded, row)
		}
		keys[rowKey(padded)] = true
	}
	return keys
}
