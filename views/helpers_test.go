package views

import "testing"

func TestFormatDate(t *testing.T) {
	if got := FormatDate("2025-03-09"); got != "March 9, 2025" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate("not a date"); got != "not a date" {
		t.Errorf("FormatDate should pass through unparseable input, got %q", got)
	}
}

func TestTagClass(t *testing.T) {
	inactive := TagClass(false)
	active := TagClass(true)
	if inactive == active {
		t.Error("active tag class should differ from inactive")
	}
	if len(active) <= len(inactive) {
		t.Error("active tag class should extend the base class")
	}
}

func TestSnippetLabel(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"graphql", "GraphQL"},
		{"GQL", "GraphQL"},
		{"json", "JSON"},
		{"", "Code"},
		{"ruby", "RUBY"},
	}
	for _, tt := range tests {
		if got := SnippetLabel(tt.lang); got != tt.want {
			t.Errorf("SnippetLabel(%q) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}
