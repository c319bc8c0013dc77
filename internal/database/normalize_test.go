package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Daft Punk", "daft punk"},
		{"strips leading article", "The Beatles", "beatles"},
		{"folds diacritics", "Björk", "bjork"},
		{"collapses whitespace", "  Pink   Floyd  ", "pink floyd"},
		{"article plus diacritics", "The Présidents", "presidents"},
		{"article-only name kept", "The", "the"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, s := range []string{"The Beatles", "Björk", "  A  Tribe  Called  Quest "} {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestStripLeadingArticle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The Beatles", "Beatles"},
		{"A Perfect Circle", "Perfect Circle"},
		{"An Horse", "Horse"},
		{"Los Lobos", "Lobos"},
		{"Theatre of Tragedy", "Theatre of Tragedy"},
		{"The", "The"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, StripLeadingArticle(tt.input), "input %q", tt.input)
	}
}

func TestSortableName(t *testing.T) {
	assert.Equal(t, "Beatles", SortableName("The Beatles"))
	assert.Equal(t, "Björk", SortableName("Björk"))
}

func TestNewNameInfo(t *testing.T) {
	info := NewNameInfo("The Rolling Stones")
	assert.Equal(t, "The Rolling Stones", info.Name)
	assert.Equal(t, "rolling stones", info.NameNormalized)
	assert.Equal(t, "Rolling Stones", info.SortName)
}

func TestNameInfoWithSortName(t *testing.T) {
	info := NewNameInfo("The Rolling Stones").WithSortName("Rolling Stones, The")
	assert.Equal(t, "Rolling Stones, The", info.SortName)
	assert.Equal(t, "rolling stones", info.NameNormalized)

	// Blank override keeps the derived form.
	info = NewNameInfo("The Rolling Stones").WithSortName("   ")
	assert.Equal(t, "Rolling Stones", info.SortName)
}
