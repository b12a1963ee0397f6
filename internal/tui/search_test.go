package tui

import (
	"testing"
)

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		text   string
		query  string
		expect bool
	}{
		{"c3f1a2b4-resource-instance", "resource", true},
		{"c3f1a2b4-resource-instance", "rsrc", true},
		{"c3f1a2b4-resource-instance", "c3f", true},
		{"date of birth", "dob", true},
		{"date of birth", "birth", true},
		{"nodegroup-7 changed", "ng7", true},
		{"date of birth", "xyz", false},
		{"name", "nmae", false},
		{"", "a", false},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got := fuzzyMatch(tt.text, tt.query)
		if got != tt.expect {
			t.Errorf("fuzzyMatch(%q, %q) = %v, want %v", tt.text, tt.query, got, tt.expect)
		}
	}
}
