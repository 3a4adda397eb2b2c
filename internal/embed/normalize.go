package embed

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// NormalizeText applies NFKC normalization, case folding and whitespace
// collapsing so that visually identical inputs encode identically.
func NormalizeText(text string) string {
	text = norm.NFKC.String(text)
	text = folder.String(text)
	return strings.Join(strings.Fields(text), " ")
}

// Tokenize splits normalized text into word tokens. Hyphenated words are kept
// whole; their parts are returned separately by SubTokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(NormalizeText(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if len(f) < 2 {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// SubTokens returns the parts of a hyphenated token, or nil.
func SubTokens(token string) []string {
	if !strings.Contains(token, "-") {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(token, "-") {
		if len(p) >= 2 {
			parts = append(parts, p)
		}
	}
	return parts
}
