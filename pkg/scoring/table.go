package scoring

import (
	"sort"
	"strings"

	"vibe-curation-be/pkg/lexicon"
)

// MinTokenLen excludes very short tokens from scoring (not from tokenization).
const MinTokenLen = 3

// rootSuffixes are stripped to form a crude stem for keyword deduplication,
// longest first so "ing" wins over "g"-less prefixes of itself.
var rootSuffixes = []string{"ing", "ed", "es", "ly", "s"}

// Table accumulates non-negative weights per lowercase token. Insertion order
// is retained and used as the tie-break when extracting top keywords, which
// follows scoring call order. Built fresh per refinement, never persisted.
type Table struct {
	scores map[string]float64
	order  []string
}

func NewTable() *Table {
	return &Table{scores: make(map[string]float64)}
}

// Add accumulates delta onto the token's running total, creating the entry
// (and recording insertion order) if absent.
func (t *Table) Add(token string, delta float64) {
	if _, ok := t.scores[token]; !ok {
		t.order = append(t.order, token)
	}
	t.scores[token] += delta
}

func (t *Table) Score(token string) float64 {
	return t.scores[token]
}

func (t *Table) Len() int {
	return len(t.order)
}

// ScoreText tokenizes text, drops stopwords and sub-length tokens, and adds
// weight x positional bias x domain bias for every surviving token.
func (t *Table) ScoreText(text string, weight float64) {
	for _, token := range lexicon.Tokenize(text) {
		if len(token) < MinTokenLen || lexicon.IsStopword(token) {
			continue
		}
		t.Add(token, weight*lexicon.PosBias(token)*lexicon.DomainBias(token))
	}
}

// PreseedColorHints gives every color-set token found in the raw user-entered
// text a flat bump, so color intent typed by the user survives dilution by
// higher-weighted but less color-specific signal. Must run before any
// weighted scoring pass.
func (t *Table) PreseedColorHints(rawUserText string, bump float64) {
	for _, token := range lexicon.Tokenize(rawUserText) {
		if lexicon.IsColor(token) {
			t.Add(token, bump)
		}
	}
}

// TopKeywords returns up to max tokens ordered by descending score, ties
// broken by insertion order. A naive stemming pass keeps only the first
// (highest-scoring) token per root so "cloud" suppresses "clouds".
func (t *Table) TopKeywords(max int) []string {
	ranked := make([]string, len(t.order))
	copy(ranked, t.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return t.scores[ranked[i]] > t.scores[ranked[j]]
	})

	keywords := make([]string, 0, max)
	seenRoots := make(map[string]struct{}, max)
	for _, token := range ranked {
		root := rootOf(token)
		if _, dup := seenRoots[root]; dup {
			continue
		}
		seenRoots[root] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == max {
			break
		}
	}
	return keywords
}

// rootOf strips one common suffix, keeping the token itself when the
// remainder would be too short to identify a stem.
func rootOf(token string) string {
	for _, suf := range rootSuffixes {
		if strings.HasSuffix(token, suf) {
			root := strings.TrimSuffix(token, suf)
			if len(root) >= MinTokenLen {
				return root
			}
		}
	}
	return token
}
