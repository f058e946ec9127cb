package evaluate

import (
	"math"
	"testing"

	"github.com/vatskrypt/DataMimic/internal/schema"
	"github.com/vatskrypt/DataMimic/internal/synth"
	"github.com/vatskrypt/DataMimic/internal/table"
)

func evalTables(t *testing.T, src, syn string, stats *synth.Stats) *Report {
	t.Helper()
	srcTbl := table.Parse(src)
	return Evaluate(srcTbl, table.Parse(syn), schema.Analyze(srcTbl), stats)
}

func TestIdenticalTables(t *testing.T) {
	data := "a,b\n1,10\n2,20\n3,30\n4,40\n"
	r := evalTables(t, data, data, nil)

	if r.KSTestScore != 0 {
		t.Errorf("KS = %v, want 0 for identical tables", r.KSTestScore)
	}
	if r.CorrelationDistance != 0 {
		t.Errorf("correlation distance = %v, want 0", r.CorrelationDistance)
	}
	if r.UtilityScore < 99 {
		t.Errorf("utility = %v, want near maximum", r.UtilityScore)
	}
	// Every synthetic row links exactly to a real one.
	if r.PrivacyScore != 0 {
		t.Errorf("privacy = %v, want 0 when all rows link back", r.PrivacyScore)
	}
}

func TestDivergenceLowersUtility(t *testing.T) {
	src := "v\n1\n2\n3\n4\n5\n"
	same := evalTables(t, src, src, nil)
	shifted := evalTables(t, src, "v\n101\n102\n103\n104\n105\n", nil)

	if shifted.KSTestScore <= same.KSTestScore {
		t.Errorf("shifted KS = %v, want > %v", shifted.KSTestScore, same.KSTestScore)
	}
	if shifted.UtilityScore >= same.UtilityScore {
		t.Errorf("shifted utility = %v, want < %v", shifted.UtilityScore, same.UtilityScore)
	}
}

func TestDisjointRowsRaisePrivacy(t *testing.T) {
	src := "a,b\n1,10\n2,20\n3,30\n"
	copied := evalTables(t, src, src, nil)
	distant := evalTables(t, src, "a,b\n7,95\n8,85\n9,75\n", nil)

	if distant.PrivacyScore <= copied.PrivacyScore {
		t.Errorf("distant privacy = %v, want > copied %v", distant.PrivacyScore, copied.PrivacyScore)
	}
	if distant.PrivacyScore < 50 {
		t.Errorf("distant privacy = %v, want well above midpoint", distant.PrivacyScore)
	}
}

func TestKSStatistic(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"disjoint ranges", []float64{1, 2, 3, 4}, []float64{10, 11, 12, 13}, 1},
		{"half overlap", []float64{1, 2}, []float64{2, 3}, 0.5},
		{"empty synthetic", []float64{1, 2}, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ksStatistic(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ksStatistic = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		ys   []float64
		want float64
	}{
		{"perfect positive", []float64{1, 2, 3}, []float64{10, 20, 30}, 1},
		{"perfect negative", []float64{1, 2, 3}, []float64{30, 20, 10}, -1},
		{"zero variance", []float64{1, 2, 3}, []float64{5, 5, 5}, 0},
		{"too few points", []float64{1}, []float64{2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pearson(tt.xs, tt.ys); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("pearson = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCorrelationMatrix(t *testing.T) {
	tbl := table.Parse("x,y\n1,2\n2,4\n3,6\n")
	m := correlationMatrix(tbl, []string{"x", "y"})

	if m[0][0] != 1 || m[1][1] != 1 {
		t.Errorf("diagonal = %v,%v, want 1,1", m[0][0], m[1][1])
	}
	if math.Abs(m[0][1]-1) > 1e-9 || m[0][1] != m[1][0] {
		t.Errorf("off-diagonal = %v/%v, want symmetric 1", m[0][1], m[1][0])
	}
}

func TestHistogramsShareEdges(t *testing.T) {
	r := evalTables(t, "v\n0\n10\n20\n30\n", "v\n5\n15\n25\n60\n", nil)

	if len(r.DistributionData) != 1 {
		t.Fatalf("distributions = %d, want 1", len(r.DistributionData))
	}
	d := r.DistributionData[0]
	if len(d.Bins) != histogramBins+1 {
		t.Errorf("edges = %d, want %d", len(d.Bins), histogramBins+1)
	}
	if d.Bins[0] != 0 || d.Bins[histogramBins] != 60 {
		t.Errorf("edge span = [%v,%v], want combined range [0,60]", d.Bins[0], d.Bins[histogramBins])
	}

	sum := func(bins []int) int {
		total := 0
		for _, b := range bins {
			total += b
		}
		return total
	}
	if sum(d.OriginalDist) != 4 || sum(d.SyntheticDist) != 4 {
		t.Errorf("bin totals = %d/%d, want 4/4", sum(d.OriginalDist), sum(d.SyntheticDist))
	}
}

func TestIntegrityPenalizesDuplicatesAndRepairs(t *testing.T) {
	src := "v\n1\n2\n3\n4\n"

	clean := evalTables(t, src, "v\n5\n6\n7\n8\n", nil)
	if clean.IntegrityScore != 100 {
		t.Errorf("clean integrity = %v, want 100", clean.IntegrityScore)
	}

	dup := evalTables(t, src, "v\n5\n5\n5\n5\n", nil)
	if dup.IntegrityScore >= clean.IntegrityScore {
		t.Errorf("duplicated integrity = %v, want < %v", dup.IntegrityScore, clean.IntegrityScore)
	}

	repaired := evalTables(t, src, "v\n5\n6\n7\n8\n", &synth.Stats{Rows: 4, RepairedCells: 2})
	if repaired.IntegrityScore != 75 {
		t.Errorf("repaired integrity = %v, want 75", repaired.IntegrityScore)
	}
}

func TestNoNumericColumns(t *testing.T) {
	r := evalTables(t, "city\nParis\nOslo\n", "city\nOslo\nParis\n", nil)

	if r.KSTestScore != 0 {
		t.Errorf("KS = %v, want 0 with no numeric columns", r.KSTestScore)
	}
	if len(r.CorrelationData.ColumnNames) != 0 {
		t.Errorf("correlation columns = %v, want none", r.CorrelationData.ColumnNames)
	}
	if r.UtilityScore != 100 {
		t.Errorf("utility = %v, want 100 (no measurable divergence)", r.UtilityScore)
	}
}
