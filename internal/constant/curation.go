package constant

// User-facing status lines. The status line reflects the last surfaced error
// or empty-result condition for the current fetch cycle; it is cleared at the
// start of every new cycle.
const (
	StatusNoMatches      = "No matches found. Try broader words."
	StatusRateLimited    = "The image catalog asked us to slow down. Try again shortly."
	StatusRateLimitedFmt = "The image catalog asked us to slow down. Try again in %ds."
	StatusUpstreamFmt    = "Image search failed upstream (status %d)."
	StatusUnavailable    = "Image search is temporarily unavailable. Please retry."
)

// Watermill topics and event types for the in-process curation event bus.
const (
	TopicSessionUpdates = "CURATION_SESSION_UPDATES"
	TopicCurationAudit  = "CURATION_AUDIT"

	EventSessionUpdated = "SESSION_UPDATED"
	EventItemAccepted   = "ITEM_ACCEPTED"
	EventItemRejected   = "ITEM_REJECTED"
	EventSessionReset   = "SESSION_RESET"
)
