package lexicon

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Bias multipliers for token shape and word-class membership.
const (
	adjectivalBias  = 1.2
	nominalBias     = 1.15
	hyphenBias      = 1.1
	longTokenBias   = 1.05
	colorBias       = 1.25
	moodBias        = 1.2
	compositionBias = 1.15

	longTokenLen = 7
)

var adjectivalSuffixes = []string{"ful", "less", "ous", "ive", "ish", "y", "ly"}
var nominalSuffixes = []string{"tion", "ment", "ness", "scape", "graphy"}

// Tokenize lowercases text and splits it into word tokens on any rune that is
// not a letter, digit or hyphen. Stray hyphens are trimmed so "--" or "-x-"
// never produce junk tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if f == "" {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// PosBias rewards morphological shape suggestive of descriptive content.
// Only the first matching rule applies: adjectival suffix, nominal suffix,
// hyphenated compound, then plain length.
func PosBias(token string) float64 {
	for _, suf := range adjectivalSuffixes {
		if len(token) > len(suf) && strings.HasSuffix(token, suf) {
			return adjectivalBias
		}
	}
	for _, suf := range nominalSuffixes {
		if len(token) > len(suf) && strings.HasSuffix(token, suf) {
			return nominalBias
		}
	}
	if strings.Contains(token, "-") {
		return hyphenBias
	}
	if utf8.RuneCountInString(token) >= longTokenLen {
		return longTokenBias
	}
	return 1.0
}

// DomainBias multiplies the bias of every word-class set the token belongs to.
func DomainBias(token string) float64 {
	bias := 1.0
	if IsColor(token) {
		bias *= colorBias
	}
	if IsMood(token) {
		bias *= moodBias
	}
	if IsComposition(token) {
		bias *= compositionBias
	}
	return bias
}
