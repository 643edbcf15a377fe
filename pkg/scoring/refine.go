package scoring

import (
	"strings"

	"vibe-curation-be/pkg/store"
)

// Weights holds the refinement blending policy. The defaults are tuning
// constants carried over from production behavior; treat them as
// configuration, not ground truth.
type Weights struct {
	// Base weighs the current active query.
	Base float64
	// Kept weighs each of the most recently kept item titles.
	Kept float64
	// Accepted weighs the just-accepted item's title.
	Accepted float64
	// ColorPreseed is the flat bump for color words in the raw user text.
	ColorPreseed float64

	MaxKeywords   int
	MaxKeptTitles int
}

func DefaultWeights() Weights {
	return Weights{
		Base:          1.0,
		Kept:          1.4,
		Accepted:      1.8,
		ColorPreseed:  0.6,
		MaxKeywords:   12,
		MaxKeptTitles: 5,
	}
}

// RefineQuery blends accumulated user signal into a compact search query:
// color hints from the raw user text, the active query, the most recent kept
// titles, then the accepted item's title, in that fixed order. When the
// pipeline yields nothing the session's active query stands, so context is
// never discarded. Callers must hold the session lock.
func RefineQuery(accepted store.Item, s *store.Session, w Weights) string {
	table := NewTable()
	table.PreseedColorHints(s.VisibleText, w.ColorPreseed)
	table.ScoreText(s.ActiveQuery, w.Base)

	// The accepted item may already sit at the head of the kept list; it is
	// weighted separately below, not as a kept title.
	titles := 0
	for _, kept := range s.Kept {
		if kept.ID == accepted.ID || kept.Title == "" {
			continue
		}
		table.ScoreText(kept.Title, w.Kept)
		titles++
		if titles == w.MaxKeptTitles {
			break
		}
	}

	table.ScoreText(accepted.Title, w.Accepted)

	keywords := table.TopKeywords(w.MaxKeywords)
	if len(keywords) == 0 {
		return s.ActiveQuery
	}
	return strings.Join(keywords, " ")
}
