package ingest

import (
	"testing"
	"time"
)

func TestRenderCell(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"bytes", []byte("raw"), "raw"},
		{"int", int64(42), "42"},
		{"float", 3.5, "3.5"},
		{"bool", true, "true"},
		{"time", ts, "2024-03-15T10:30:00Z"},
		{"comma stripped", "a,b", "a b"},
		{"newline stripped", "a\nb", "a b"},
		{"crlf stripped", "a\r\nb", "a  b"},
		{"whitespace trimmed", "  padded  ", "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderCell(tt.in); got != tt.want {
				t.Errorf("renderCell(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "users", "users", false},
		{"qualified", "public.users", "public.users", false},
		{"underscore", "order_items", "order_items", false},
		{"empty", "", "", true},
		{"injection", "users; DROP TABLE x", "", true},
		{"quoted", `"users"`, "", true},
		{"too many parts", "a.b.c", "", true},
		{"empty part", "public.", "", true},
		{"space", "my table", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeIdentifier(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("sanitizeIdentifier(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("sanitizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderRow(t *testing.T) {
	got := renderRow([]any{nil, "x", int64(7)})
	want := []string{"", "x", "7"}
	if len(got) != len(want) {
		t.Fatalf("renderRow() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("renderRow()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
