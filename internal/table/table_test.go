package table

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeaders []string
		wantRows    [][]string
	}{
		{
			name:        "basic table",
			input:       "name,age\nAlice,30\nBob,40\n",
			wantHeaders: []string{"name", "age"},
			wantRows:    [][]string{{"Alice", "30"}, {"Bob", "40"}},
		},
		{
			name:        "empty input degrades to single empty header",
			input:       "",
			wantHeaders: []string{""},
			wantRows:    nil,
		},
		{
			name:        "header only",
			input:       "a,b,c",
			wantHeaders: []string{"a", "b", "c"},
			wantRows:    nil,
		},
		{
			name:        "headers and cells are trimmed",
			input:       " name , age \n Alice , 30 \n",
			wantHeaders: []string{"name", "age"},
			wantRows:    [][]string{{"Alice", "30"}},
		},
		{
			name:        "windows line endings",
			input:       "a,b\r\n1,2\r\n",
			wantHeaders: []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}},
		},
		{
			name:        "blank lines skipped",
			input:       "a,b\n1,2\n\n3,4\n\n",
			wantHeaders: []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:        "ragged rows kept as-is",
			input:       "a,b,c\n1,2\n",
			wantHeaders: []string{"a", "b", "c"},
			wantRows:    [][]string{{"1", "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got.Headers, tt.wantHeaders) {
				t.Errorf("Headers = %v, want %v", got.Headers, tt.wantHeaders)
			}
			if !reflect.DeepEqual(got.Rows, tt.wantRows) {
				t.Errorf("Rows = %v, want %v", got.Rows, tt.wantRows)
			}
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	input := "name,age,city\nAlice,30,Paris\nBob,40,Oslo\n"
	parsed := Parse(input)

	if got := parsed.Serialize(); got != input {
		t.Errorf("Serialize() = %q, want %q", got, input)
	}

	reparsed := Parse(parsed.Serialize())
	if !reflect.DeepEqual(reparsed, parsed) {
		t.Errorf("round trip mismatch: %v vs %v", reparsed, parsed)
	}
}

func TestCellMissing(t *testing.T) {
	tbl := Parse("a,b,c\n1,2\n")

	if got := tbl.Cell(0, 2); got != "" {
		t.Errorf("missing cell = %q, want empty string", got)
	}
	if got := tbl.Cell(5, 0); got != "" {
		t.Errorf("out-of-range row = %q, want empty string", got)
	}
}

func TestColumn(t *testing.T) {
	tbl := Parse("a,b\n1,x\n2,\n3,z\n")

	want := []string{"x", "", "z"}
	if got := tbl.Column("b"); !reflect.DeepEqual(got, want) {
		t.Errorf("Column(b) = %v, want %v", got, want)
	}
	if got := tbl.Column("missing"); got != nil {
		t.Errorf("Column(missing) = %v, want nil", got)
	}
}

func TestRowMap(t *testing.T) {
	tbl := Parse("name,age\nAlice,30\n")

	want := map[string]string{"name": "Alice", "age": "30"}
	if got := tbl.RowMap(0); !reflect.DeepEqual(got, want) {
		t.Errorf("RowMap(0) = %v, want %v", got, want)
	}
}

func TestClone(t *testing.T) {
	tbl := Parse("a,b\n1,2\n")
	cp := tbl.Clone()

	cp.Rows[0][0] = "mutated"
	if tbl.Rows[0][0] != "1" {
		t.Error("Clone() shares row storage with the original")
	}
}
