package curation

import (
	"vibe-curation-be/pkg/store"
)

// Mode selects how freshly fetched items enter the candidate queue.
type Mode int

const (
	// ModeReplace makes the queue exactly the deduplicated survivors.
	ModeReplace Mode = iota
	// ModeAppend keeps the current queue and appends survivors not already
	// present, preserving arrival order.
	ModeAppend
)

// filterFresh drops items that are already seen, lack an id, or duplicate an
// earlier item in the same batch. Callers must hold the session lock.
func filterFresh(s *store.Session, items []store.Item) []store.Item {
	fresh := make([]store.Item, 0, len(items))
	inBatch := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" || s.IsSeen(item.ID) {
			continue
		}
		if _, dup := inBatch[item.ID]; dup {
			continue
		}
		inBatch[item.ID] = struct{}{}
		fresh = append(fresh, item)
	}
	return fresh
}

// EnqueueFresh merges freshly fetched items into the session queue and
// returns how many were actually added, so the orchestrator can detect a
// provider that returned nothing new. Callers must hold the session lock.
func EnqueueFresh(s *store.Session, items []store.Item, mode Mode) int {
	fresh := filterFresh(s, items)

	if mode == ModeReplace {
		s.Queue = fresh
		return len(fresh)
	}

	inQueue := make(map[string]struct{}, len(s.Queue))
	for _, item := range s.Queue {
		inQueue[item.ID] = struct{}{}
	}
	added := 0
	for _, item := range fresh {
		if _, dup := inQueue[item.ID]; dup {
			continue
		}
		inQueue[item.ID] = struct{}{}
		s.Queue = append(s.Queue, item)
		added++
	}
	return added
}

// FillSlots tops the visible window up to slotCount from the queue head,
// skipping anything already seen or visible (provider responses may race the
// queue invariants). Placing an item marks it seen in the same step. Returns
// the number of items moved; a zero return means no state changed at all, so
// callers can avoid emitting redundant updates. Callers must hold the
// session lock.
func FillSlots(s *store.Session, slotCount int) int {
	moved := 0
	for len(s.Visible) < slotCount && len(s.Queue) > 0 {
		item := s.Queue[0]
		s.Queue = s.Queue[1:]
		if s.IsSeen(item.ID) || inVisible(s, item.ID) {
			continue
		}
		s.Visible = append(s.Visible, item)
		s.MarkSeen(item.ID)
		moved++
	}
	return moved
}

func inVisible(s *store.Session, id string) bool {
	for _, item := range s.Visible {
		if item.ID == id {
			return true
		}
	}
	return false
}
