package database

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Leading articles stripped from normalized and sort forms. Matching the
// tag conventions of the common metadata providers.
var leadingArticles = []string{
	"the ", "a ", "an ", "el ", "la ", "los ", "las ", "le ", "les ",
	"der ", "die ", "das ",
}

var diacriticFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldDiacritics removes combining marks: "Björk" becomes "Bjork".
func FoldDiacritics(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// StripLeadingArticle removes a single leading article, case-insensitively.
// "The Beatles" becomes "Beatles".
func StripLeadingArticle(s string) string {
	lower := strings.ToLower(s)
	for _, article := range leadingArticles {
		if strings.HasPrefix(lower, article) && len(s) > len(article) {
			return s[len(article):]
		}
	}
	return s
}

// Normalize derives the search/uniqueness form of a display name:
// diacritic-folded, case-folded, article-stripped, whitespace-collapsed.
// Normalized columns must always equal Normalize(display); the NameInfo
// and SetTitle helpers keep that invariant out of caller hands.
func Normalize(s string) string {
	s = FoldDiacritics(s)
	s = StripLeadingArticle(strings.TrimSpace(s))
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// SortableName derives the sort form of a display name: article-stripped
// but case-preserved, so "The Beatles" sorts under B.
func SortableName(s string) string {
	return strings.TrimSpace(StripLeadingArticle(strings.TrimSpace(s)))
}

// NameInfo bundles the three parallel name columns every named catalog
// entity carries. Construct it with NewNameInfo so the normalized and
// sort forms can never drift from the display form.
type NameInfo struct {
	Name           string
	NameNormalized string
	SortName       string
}

// NewNameInfo builds a NameInfo from a display name, deriving the
// normalized and sort forms.
func NewNameInfo(display string) NameInfo {
	return NameInfo{
		Name:           display,
		NameNormalized: Normalize(display),
		SortName:       SortableName(display),
	}
}

// WithSortName returns a copy with an explicit sort override (e.g. a
// TSOP/TSOA tag value from file metadata).
func (n NameInfo) WithSortName(sort string) NameInfo {
	if strings.TrimSpace(sort) != "" {
		n.SortName = strings.TrimSpace(sort)
	}
	return n
}
