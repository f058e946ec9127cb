package main

import (
	"testing"
)

func TestParseConstraints(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name:  "single column",
			input: `{"age":{"type":"int","min":25,"max":60}}`,
		},
		{
			name:  "bounds only",
			input: `{"salary":{"min":30000}}`,
		},
		{
			name:    "malformed",
			input:   `{"age":`,
			wantErr: true,
		},
		{
			name:    "wrong shape",
			input:   `["age"]`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseConstraints(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseConstraints(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.input == "" && got != nil {
				t.Error("parseConstraints(\"\") should return nil")
			}
		})
	}
}

func TestParseConstraintsValues(t *testing.T) {
	got, err := parseConstraints(`{"age":{"type":"int","min":25,"max":60}}`)
	if err != nil {
		t.Fatalf("parseConstraints() error = %v", err)
	}
	fc, ok := got["age"]
	if !ok {
		t.Fatal("parseConstraints() missing age")
	}
	if fc.Type != "int" {
		t.Errorf("Type = %q, want int", fc.Type)
	}
	if fc.Min == nil || *fc.Min != 25 {
		t.Errorf("Min = %v, want 25", fc.Min)
	}
	if fc.Max == nil || *fc.Max != 60 {
		t.Errorf("Max = %v, want 60", fc.Max)
	}
}
