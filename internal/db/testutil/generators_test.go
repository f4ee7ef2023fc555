package testutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"
)

func testGenerators_ValidUTF8(t *rapid.T) {
	gens := []struct {
		name string
		gen  *rapid.Generator[string]
	}{
		{"string", ArbitraryString()},
		{"non-empty", ArbitraryNonEmptyString()},
		{"plain", ArbitraryPlainText()},
		{"markup", ArbitraryMarkup()},
	}
	for _, g := range gens {
		s := g.gen.Draw(t, g.name)
		if !utf8.ValidString(s) {
			t.Fatalf("%s generator produced invalid UTF-8: %q", g.name, s)
		}
	}
}

func TestGenerators_ValidUTF8(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testGenerators_ValidUTF8)
}

func TestArbitraryUnicode_IncludesInvisibleRunes(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{}
	rapid.Check(t, func(t *rapid.T) {
		seen[arbitraryUnicode().Draw(t, "s")] = true
	})
	found := false
	for s := range seen {
		if strings.ContainsAny(s, "\uFEFF\u200B\u202E") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no zero-width, BOM or RTL sample drawn from %d values", len(seen))
	}
}

func TestArbitraryPlainText_HasNoBrackets(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := ArbitraryPlainText().Draw(t, "s")
		if strings.ContainsAny(s, "<>") {
			t.Fatalf("plain text contains a bracket: %q", s)
		}
	})
}
