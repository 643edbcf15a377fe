package store

import (
	"sync"
	"time"
)

// Item is a candidate image descriptor as returned by the search provider.
// Identity is ID; two items with the same ID are the same candidate even if
// other fields drift between provider responses. Items are never mutated,
// only moved between queue/visible/kept/seen membership.
type Item struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Thumbnail      string `json:"thumbnail"`
	URL            string `json:"url"`
	Creator        string `json:"creator"`
	CreatorURL     string `json:"creator_url,omitempty"`
	License        string `json:"license"`
	LicenseVersion string `json:"license_version,omitempty"`
	Source         string `json:"source,omitempty"`
}

// Session represents the active curation state in memory. One instance per
// curation flow; discarded when the flow ends (TTL eviction). All mutation
// goes through the curation engine while the session lock is held.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	// VisibleText is the text the user is actively editing. The engine
	// reads it (color preseeding) but only writes it when an analyze or
	// research action carries new user input.
	VisibleText string `json:"visible_text"`

	// ActiveQuery drives provider fetches. It is distinct from VisibleText
	// and is never serialized to clients. It changes only on an accept,
	// a successful enrichment, or a manual research reset.
	ActiveQuery string `json:"-"`

	Queue   []Item `json:"queue"`
	Visible []Item `json:"visible"`
	Kept    []Item `json:"kept"`

	// Seen records every id ever shown, accepted, rejected or skipped.
	// Monotone within a session (ManualResearch resets the whole session).
	Seen map[string]struct{} `json:"-"`

	// Page is the provider paging cursor; resets to 1 on a full query change.
	Page int `json:"page"`

	// Generation identifies the current refinement cycle. Async results
	// captured under an older generation are discarded on arrival.
	Generation uint64 `json:"-"`

	// FetchInFlight guards against overlapping image-search fetches.
	FetchInFlight bool `json:"-"`

	Loading bool   `json:"loading"`
	Status  string `json:"status"`

	CreatedAt time.Time `json:"created_at"`

	mu sync.Mutex
}

func NewSession(id, userID, seedQuery string) *Session {
	return &Session{
		ID:          id,
		UserID:      userID,
		VisibleText: seedQuery,
		ActiveQuery: seedQuery,
		Seen:        make(map[string]struct{}),
		Page:        1,
		Generation:  1,
		CreatedAt:   time.Now(),
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// MarkSeen records an id permanently. Callers must hold the session lock.
func (s *Session) MarkSeen(id string) {
	s.Seen[id] = struct{}{}
}

func (s *Session) IsSeen(id string) bool {
	_, ok := s.Seen[id]
	return ok
}

// NextGeneration starts a new refinement cycle and returns its number.
// Callers must hold the session lock.
func (s *Session) NextGeneration() uint64 {
	s.Generation++
	return s.Generation
}

// KeptTitles returns up to max titles of the most recently kept items,
// skipping empty titles. Callers must hold the session lock.
func (s *Session) KeptTitles(max int) []string {
	titles := make([]string, 0, max)
	for _, item := range s.Kept {
		if item.Title == "" {
			continue
		}
		titles = append(titles, item.Title)
		if len(titles) == max {
			break
		}
	}
	return titles
}
