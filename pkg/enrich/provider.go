package enrich

import (
	"context"
	"fmt"
)

// Result is the enrichment boundary response: a refined search query derived
// from free text plus optional descriptive tags.
type Result struct {
	Query string   `json:"query"`
	Tags  []string `json:"tags,omitempty"`
}

// Provider turns free text (and up to a handful of recently kept titles) into
// a refined query. Implementations must honor ctx cancellation; the
// orchestrator bounds every call with a hard timeout.
type Provider interface {
	Refine(ctx context.Context, text string, keptTitles []string) (*Result, error)
}

// MalformedError signals a response that could not be parsed. The
// orchestrator treats it exactly like a timeout: the enrichment is abandoned
// and the optimistic results stand.
type MalformedError struct {
	Raw string
}

func (e *MalformedError) Error() string {
	const window = 120
	raw := e.Raw
	if len(raw) > window {
		raw = raw[:window] + "..."
	}
	return fmt.Sprintf("enrichment response is not valid JSON: %q", raw)
}
