// Package evaluate scores how well a synthetic table matches its source
// statistically: per-column distributions, correlation structure, and
// composite privacy/utility/integrity scores.
package evaluate

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vatskrypt/DataMimic/internal/schema"
	"github.com/vatskrypt/DataMimic/internal/synth"
	"github.com/vatskrypt/DataMimic/internal/table"
)

// histogramBins is the fixed bin count for distribution comparisons.
// Both tables are binned over the same edges so histograms compare
// bin-by-bin.
const histogramBins = 6

// linkageSampleCap bounds the nearest-neighbor scan for the privacy
// score on large tables.
const linkageSampleCap = 500

// Utility penalty weights. Divergence dominates; correlation drift
// refines.
const (
	ksWeight   = 0.6
	corrWeight = 0.4
)

// Report is the structured evaluation of one generation run.
type Report struct {
	PrivacyScore        float64              `json:"privacyScore"`
	UtilityScore        float64              `json:"utilityScore"`
	IntegrityScore      float64              `json:"integrityScore"`
	KSTestScore         float64              `json:"ksTestScore"`
	CorrelationDistance float64              `json:"correlationDistance"`
	StatisticalMetrics  StatisticalMetrics   `json:"statisticalMetrics"`
	DistributionData    []ColumnDistribution `json:"distributionData"`
	CorrelationData     CorrelationData      `json:"correlationData"`
}

// ColumnDistribution holds directly comparable histograms of one numeric
// column in both tables. Bins has histogramBins+1 edges.
type ColumnDistribution struct {
	Column        string    `json:"column"`
	Bins          []float64 `json:"bins"`
	OriginalDist  []int     `json:"originalDist"`
	SyntheticDist []int     `json:"syntheticDist"`
	KS            float64   `json:"ks"`
}

// CorrelationData carries the pairwise Pearson matrices over the numeric
// columns of both tables.
type CorrelationData struct {
	ColumnNames   []string    `json:"columnNames"`
	OriginalCorr  [][]float64 `json:"originalCorr"`
	SyntheticCorr [][]float64 `json:"syntheticCorr"`
}

// StatisticalMetrics summarizes per-column mean and standard deviation.
type StatisticalMetrics struct {
	OriginalMean  map[string]float64 `json:"originalMean"`
	SyntheticMean map[string]float64 `json:"syntheticMean"`
	OriginalStd   map[string]float64 `json:"originalStd"`
	SyntheticStd  map[string]float64 `json:"syntheticStd"`
}

// Evaluate scores the synthetic table against its source. stats may be
// nil when the synthetic table came from an external engine without
// generation bookkeeping.
func Evaluate(src, syn *table.Table, an *schema.Analysis, stats *synth.Stats) *Report {
	report := &Report{
		StatisticalMetrics: StatisticalMetrics{
			OriginalMean:  map[string]float64{},
			SyntheticMean: map[string]float64{},
			OriginalStd:   map[string]float64{},
			SyntheticStd:  map[string]float64{},
		},
	}

	numericCols := numericColumns(an)

	var ksSum float64
	var ksCount int
	for _, name := range numericCols {
		orig := numericCells(src, name)
		gen := numericCells(syn, name)
		if len(orig) == 0 {
			continue
		}

		om, os := meanStd(orig)
		report.StatisticalMetrics.OriginalMean[name] = om
		report.StatisticalMetrics.OriginalStd[name] = os
		if len(gen) > 0 {
			sm, ss := meanStd(gen)
			report.StatisticalMetrics.SyntheticMean[name] = sm
			report.StatisticalMetrics.SyntheticStd[name] = ss
		}

		dist := buildDistribution(name, orig, gen)
		dist.KS = ksStatistic(orig, gen)
		report.DistributionData = append(report.DistributionData, dist)

		ksSum += dist.KS
		ksCount++
	}
	if ksCount > 0 {
		report.KSTestScore = round4(ksSum / float64(ksCount))
	}

	report.CorrelationData = CorrelationData{
		ColumnNames:   numericCols,
		OriginalCorr:  correlationMatrix(src, numericCols),
		SyntheticCorr: correlationMatrix(syn, numericCols),
	}
	report.CorrelationDistance = round4(frobenius(
		report.CorrelationData.OriginalCorr,
		report.CorrelationData.SyntheticCorr,
	))

	report.UtilityScore = utilityScore(report.KSTestScore, report.CorrelationDistance, len(numericCols))
	report.PrivacyScore = privacyScore(src, syn, numericCols)
	report.IntegrityScore = integrityScore(syn, stats)
	return report
}

func numericColumns(an *schema.Analysis) []string {
	var cols []string
	for i := range an.Profiles {
		p := &an.Profiles[i]
		if p.Kind == schema.KindNumeric && len(p.NumericValues()) > 0 {
			cols = append(cols, p.Name)
		}
	}
	return cols
}

// numericCells parses the non-empty cells of a column that read as
// numbers, in row order.
func numericCells(t *table.Table, name string) []float64 {
	var out []float64
	for _, v := range t.Column(name) {
		if v == "" {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// buildDistribution bins both samples over shared fixed-width edges
// spanning their combined range.
func buildDistribution(name string, orig, syn []float64) ColumnDistribution {
	lo, hi := orig[0], orig[0]
	for _, v := range orig {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	for _, v := range syn {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	width := (hi - lo) / histogramBins
	if width == 0 {
		width = 1
	}

	edges := make([]float64, histogramBins+1)
	for i := range edges {
		edges[i] = lo + width*float64(i)
	}

	count := func(values []float64) []int {
		bins := make([]int, histogramBins)
		for _, v := range values {
			ix := int((v - lo) / width)
			if ix >= histogramBins {
				ix = histogramBins - 1
			}
			if ix < 0 {
				ix = 0
			}
			bins[ix]++
		}
		return bins
	}

	return ColumnDistribution{
		Column:        name,
		Bins:          edges,
		OriginalDist:  count(orig),
		SyntheticDist: count(syn),
	}
}

// ksStatistic computes the two-sample Kolmogorov-Smirnov statistic: the
// maximum distance between the two empirical CDFs. Zero means identical
// distributions; an empty synthetic sample scores the maximum 1.
func ksStatistic(orig, syn []float64) float64 {
	if len(orig) == 0 || len(syn) == 0 {
		return 1
	}

	a := append([]float64(nil), orig...)
	b := append([]float64(nil), syn...)
	sort.Float64s(a)
	sort.Float64s(b)

	na, nb := float64(len(a)), float64(len(b))
	var i, j int
	var d float64
	for i < len(a) && j < len(b) {
		x := math.Min(a[i], b[j])
		for i < len(a) && a[i] == x {
			i++
		}
		for j < len(b) && b[j] == x {
			j++
		}
		if gap := math.Abs(float64(i)/na - float64(j)/nb); gap > d {
			d = gap
		}
	}
	return round4(d)
}

// correlationMatrix computes pairwise Pearson correlations. Each pair
// uses the rows where both cells parse as numbers. Undefined
// correlations (zero variance) report as 0; the diagonal is always 1.
func correlationMatrix(t *table.Table, cols []string) [][]float64 {
	parsed := make([][]float64, len(cols))
	valid := make([][]bool, len(cols))
	for c, name := range cols {
		col := t.Column(name)
		parsed[c] = make([]float64, len(col))
		valid[c] = make([]bool, len(col))
		for i, v := range col {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				parsed[c][i] = f
				valid[c][i] = true
			}
		}
	}

	m := make([][]float64, len(cols))
	for i := range m {
		m[i] = make([]float64, len(cols))
		m[i][i] = 1
	}
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			var xs, ys []float64
			for row := 0; row < t.RowCount(); row++ {
				if valid[i][row] && valid[j][row] {
					xs = append(xs, parsed[i][row])
					ys = append(ys, parsed[j][row])
				}
			}
			r := pearson(xs, ys)
			m[i][j], m[j][i] = r, r
		}
	}
	return m
}

func pearson(xs, ys []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mx, _ := meanStd(xs)
	my, _ := meanStd(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// frobenius returns the Frobenius norm of the elementwise difference of
// two equally sized matrices.
func frobenius(a, b [][]float64) float64 {
	var sum float64
	for i := range a {
		if i >= len(b) {
			break
		}
		for j := range a[i] {
			if j >= len(b[i]) {
				break
			}
			d := a[i][j] - b[i][j]
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}

// utilityScore maps divergence to 0..100, decreasing monotonically in
// both the KS statistic and the correlation distance.
func utilityScore(meanKS, corrDist float64, numericCount int) float64 {
	corrPenalty := 0.0
	if numericCount > 0 {
		corrPenalty = math.Min(1, corrDist/float64(numericCount))
	}
	score := 100 * (1 - ksWeight*meanKS - corrWeight*corrPenalty)
	return round1(clamp(score, 0, 100))
}

// privacyScore reflects how distinguishable synthetic records are from
// real ones: exact record linkage pulls the score down hard, and close
// nearest neighbors in normalized numeric space pull it down softly.
func privacyScore(src, syn *table.Table, numericCols []string) float64 {
	if syn.RowCount() == 0 {
		return 100
	}

	srcKeys := make(map[string]bool, src.RowCount())
	for i := range src.Rows {
		srcKeys[strings.Join(src.Rows[i], "\x1f")] = true
	}
	linked := 0
	for i := range syn.Rows {
		if srcKeys[strings.Join(syn.Rows[i], "\x1f")] {
			linked++
		}
	}
	linkRate := float64(linked) / float64(syn.RowCount())

	score := 100 * (1 - linkRate)
	if nn, ok := meanNearestNeighbor(src, syn, numericCols); ok {
		// nn of 0.25 (a quarter of the normalized range) or more is
		// treated as fully unlinkable.
		score *= 0.5 + 0.5*math.Min(1, nn/0.25)
	}
	return round1(clamp(score, 0, 100))
}

// meanNearestNeighbor computes the mean distance from each synthetic
// record to its closest source record over min-max normalized numeric
// columns. Both sides are capped for cost on large tables.
func meanNearestNeighbor(src, syn *table.Table, numericCols []string) (float64, bool) {
	if len(numericCols) == 0 {
		return 0, false
	}

	srcVecs := numericVectors(src, numericCols)
	synVecs := numericVectors(syn, numericCols)
	if len(srcVecs) == 0 || len(synVecs) == 0 {
		return 0, false
	}
	if len(srcVecs) > linkageSampleCap {
		srcVecs = srcVecs[:linkageSampleCap]
	}
	if len(synVecs) > linkageSampleCap {
		synVecs = synVecs[:linkageSampleCap]
	}

	// Normalize by the source range so every column weighs equally.
	lo := make([]float64, len(numericCols))
	hi := make([]float64, len(numericCols))
	for c := range numericCols {
		lo[c], hi[c] = srcVecs[0][c], srcVecs[0][c]
		for _, vec := range srcVecs {
			lo[c], hi[c] = math.Min(lo[c], vec[c]), math.Max(hi[c], vec[c])
		}
	}
	norm := func(vec []float64) []float64 {
		out := make([]float64, len(vec))
		for c, v := range vec {
			if hi[c] > lo[c] {
				out[c] = (v - lo[c]) / (hi[c] - lo[c])
			}
		}
		return out
	}

	normSrc := make([][]float64, len(srcVecs))
	for i, vec := range srcVecs {
		normSrc[i] = norm(vec)
	}

	dims := math.Sqrt(float64(len(numericCols)))
	var total float64
	for _, vec := range synVecs {
		nv := norm(vec)
		best := math.Inf(1)
		for _, sv := range normSrc {
			var d float64
			for c := range nv {
				diff := nv[c] - sv[c]
				d += diff * diff
			}
			if d < best {
				best = d
			}
		}
		total += math.Sqrt(best) / dims
	}
	return total / float64(len(synVecs)), true
}

// numericVectors extracts rows where every numeric column parses.
func numericVectors(t *table.Table, cols []string) [][]float64 {
	ixs := make([]int, len(cols))
	for c, name := range cols {
		ixs[c] = t.ColumnIndex(name)
	}
	var vecs [][]float64
	for row := 0; row < t.RowCount(); row++ {
		vec := make([]float64, len(cols))
		ok := true
		for c, ix := range ixs {
			f, err := strconv.ParseFloat(t.Cell(row, ix), 64)
			if err != nil {
				ok = false
				break
			}
			vec[c] = f
		}
		if ok {
			vecs = append(vecs, vec)
		}
	}
	return vecs
}

// integrityScore penalizes duplicated synthetic rows and repaired cells.
func integrityScore(syn *table.Table, stats *synth.Stats) float64 {
	n := syn.RowCount()
	if n == 0 {
		return 100
	}

	seen := make(map[string]bool, n)
	distinct := 0
	for i := range syn.Rows {
		key := strings.Join(syn.Rows[i], "\x1f")
		if !seen[key] {
			seen[key] = true
			distinct++
		}
	}
	dupRatio := float64(n-distinct) / float64(n)

	repairRatio := 0.0
	if stats != nil {
		repairRatio = math.Min(1, float64(stats.RepairedCells)/float64(n))
	}

	return round1(clamp(100-50*dupRatio-50*repairRatio, 0, 100))
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

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
