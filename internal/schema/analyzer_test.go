package schema

import (
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/vatskrypt/DataMimic/internal/table"
)

func TestAnalyzeKinds(t *testing.T) {
	tbl := table.Parse("id,score,city\n1,9.5,Paris\n2,8.1,Oslo\n3,7.7,Lima\n")
	a := Analyze(tbl)

	tests := []struct {
		column string
		kind   Kind
	}{
		{"id", KindNumeric},
		{"score", KindNumeric},
		{"city", KindCategorical},
	}
	for _, tt := range tests {
		p := a.Profile(tt.column)
		if p == nil {
			t.Fatalf("no profile for %q", tt.column)
		}
		if p.Kind != tt.kind {
			t.Errorf("%s: kind = %v, want %v", tt.column, p.Kind, tt.kind)
		}
	}
}

func TestAnalyzeNullCount(t *testing.T) {
	tbl := table.Parse("a,b\n1,x\n2,\n3,y\n")
	a := Analyze(tbl)

	p := a.Profile("b")
	if p.NullCount != 1 {
		t.Errorf("NullCount = %d, want 1", p.NullCount)
	}
	if got := len(p.Values); got != 2 {
		t.Errorf("len(Values) = %d, want 2", got)
	}
}

func TestSniffIsPrefixBounded(t *testing.T) {
	// 100 numeric values followed by a stray string: still numeric,
	// because the sniff only inspects the first 100 non-empty values.
	var b strings.Builder
	b.WriteString("v\n")
	for i := 0; i < 100; i++ {
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('\n')
	}
	b.WriteString("not-a-number\n")

	a := Analyze(table.Parse(b.String()))
	if got := a.Profiles[0].Kind; got != KindNumeric {
		t.Errorf("kind = %v, want numeric (stray beyond sample prefix)", got)
	}

	// The same stray inside the prefix flips the column to categorical.
	a = AnalyzeSample(table.Parse(b.String()), 101)
	if got := a.Profiles[0].Kind; got != KindCategorical {
		t.Errorf("kind = %v, want categorical (stray inside sample)", got)
	}
}

func TestSuggestions(t *testing.T) {
	tbl := table.Parse("age,rate,city\n30,0.5,Paris\n40,1.25,Oslo\n50,2.0,Lima\n")
	a := Analyze(tbl)

	age := a.SuggestionFor("age")
	if age.Type != "int" || *age.Min != 30 || *age.Max != 50 {
		t.Errorf("age suggestion = %+v, want int [30,50]", age)
	}

	rate := a.SuggestionFor("rate")
	if rate.Type != "float" || *rate.Min != 0.5 || *rate.Max != 2.0 {
		t.Errorf("rate suggestion = %+v, want float [0.5,2.0]", rate)
	}

	city := a.SuggestionFor("city")
	if city.Type != "categorical" || city.Min != nil || city.Max != nil {
		t.Errorf("city suggestion = %+v, want bare categorical", city)
	}
}

func TestYearClamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMin float64
		wantMax float64
	}{
		{
			name:    "observed range inside window",
			input:   "year\n1995\n2010\n",
			wantMin: 1995,
			wantMax: 2010,
		},
		{
			name:    "observed range wider than window",
			input:   "year\n1850\n2300\n",
			wantMin: 1900,
			wantMax: 2025,
		},
		{
			name:    "no values falls back to window",
			input:   "year\n",
			wantMin: 1900,
			wantMax: 2025,
		},
		{
			name:    "observed range fully outside window",
			input:   "year\n2300\n2400\n",
			wantMin: 1900,
			wantMax: 2025,
		},
		{
			name:    "case-insensitive name match",
			input:   "ModelYear\n2001\n2005\n",
			wantMin: 2001,
			wantMax: 2005,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Analyze(table.Parse(tt.input))
			s := a.Suggestions[0]
			if s.Type != "int" {
				t.Errorf("type = %q, want int", s.Type)
			}
			if s.Min == nil || s.Max == nil {
				t.Fatalf("suggestion = %+v, want bounded", s)
			}
			if *s.Min != tt.wantMin || *s.Max != tt.wantMax {
				t.Errorf("range = [%v,%v], want [%v,%v]", *s.Min, *s.Max, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestDiscoverRelations(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    []RelationPair
	}{
		{
			name:    "basic pair",
			headers: []string{"country_code", "country_name", "year"},
			want:    []RelationPair{{Code: "country_code", Name: "country_name"}},
		},
		{
			name:    "case-insensitive",
			headers: []string{"CountryCode", "countryname"},
			want:    []RelationPair{{Code: "CountryCode", Name: "countryname"}},
		},
		{
			name:    "no matching name column",
			headers: []string{"country_code", "population"},
			want:    nil,
		},
		{
			name:    "multiple pairs",
			headers: []string{"a_code", "a_name", "b_code", "b_name"},
			want:    []RelationPair{{Code: "a_code", Name: "a_name"}, {Code: "b_code", Name: "b_name"}},
		},
		{
			name:    "bare code header never pairs with itself",
			headers: []string{"code"},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscoverRelations(tt.headers)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DiscoverRelations(%v) = %v, want %v", tt.headers, got, tt.want)
			}
		})
	}
}

func TestDistinctValuesOrder(t *testing.T) {
	tbl := table.Parse("c\nb\na\nb\nc\na\n")
	p := Analyze(tbl).Profile("c")

	want := []string{"b", "a", "c"}
	if got := p.DistinctValues(); !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctValues() = %v, want %v (first-seen order)", got, want)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := Analyze(table.Parse(""))

	if len(a.Profiles) != 1 {
		t.Fatalf("profiles = %d, want 1 (degenerate empty header)", len(a.Profiles))
	}
	if a.Profiles[0].Name != "" {
		t.Errorf("header = %q, want empty string", a.Profiles[0].Name)
	}
	if len(a.Profiles[0].Values) != 0 {
		t.Errorf("values = %v, want none", a.Profiles[0].Values)
	}
}

func TestContract(t *testing.T) {
	tbl := table.Parse("country_code,country_name,year\nUS,United States,2000\nFR,France,2010\n")
	c := Analyze(tbl).Contract()

	if !reflect.DeepEqual(c.Columns, []string{"country_code", "country_name", "year"}) {
		t.Errorf("Columns = %v", c.Columns)
	}
	if len(c.Dtypes) != 3 || c.Dtypes[2].Dtype != "numeric" || c.Dtypes[0].Dtype != "categorical" {
		t.Errorf("Dtypes = %+v", c.Dtypes)
	}
	if !reflect.DeepEqual(c.Relations, [][2]string{{"country_code", "country_name"}}) {
		t.Errorf("Relations = %v", c.Relations)
	}
}
