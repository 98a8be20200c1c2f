package dataset

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer canonicalizes the free-text fields that act as join keys.
// State offices disagree on casing and spacing ("PUNE", "pune ", "Pune"),
// and a handful of names arrive with decomposed accents; all variants must
// land on one key or the outer join silently splits districts.
//
// Not safe for concurrent use; the pipeline is single-threaded.
type Normalizer struct {
	title cases.Caser
}

// NewNormalizer creates a Normalizer with English title casing.
func NewNormalizer() *Normalizer {
	return &Normalizer{title: cases.Title(language.English)}
}

// Name canonicalizes a state or district value: NFC, trimmed, inner
// whitespace collapsed, title case.
func (n *Normalizer) Name(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return s
	}
	return n.title.String(s)
}

// NormalizeHeader canonicalizes a CSV header cell: trimmed, lowered,
// whitespace runs replaced with a single underscore.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t'
	}), "_")
}
