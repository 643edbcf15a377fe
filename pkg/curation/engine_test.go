package curation

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"vibe-curation-be/internal/constant"
	"vibe-curation-be/pkg/enrich"
	"vibe-curation-be/pkg/scoring"
	"vibe-curation-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchCall struct {
	query string
	page  int
}

// fakeSearcher answers via fn and records every call in order.
type fakeSearcher struct {
	mu    sync.Mutex
	calls []searchCall
	fn    func(query string, page int) ([]store.Item, error)
}

func (f *fakeSearcher) Search(_ context.Context, query string, page int) ([]store.Item, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{query: query, page: page})
	f.mu.Unlock()
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(query, page)
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeEnricher scripts one outcome per input text. A nil gate returns
// immediately, otherwise the call blocks until the gate closes or the context
// expires. Unscripted inputs behave like an empty enrichment.
type fakeEnricher struct {
	steps map[string]enrichStep
}

type enrichStep struct {
	res  *enrich.Result
	err  error
	gate chan struct{}
}

func (f *fakeEnricher) Refine(ctx context.Context, text string, _ []string) (*enrich.Result, error) {
	step := f.steps[text]
	if step.gate != nil {
		select {
		case <-step.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return step.res, step.err
}

func newTestEngine(searcher *fakeSearcher, enricher *fakeEnricher) *Engine {
	return NewEngine(searcher, enricher, scoring.DefaultWeights(), Config{
		SlotCount:         3,
		PrefetchThreshold: 3,
		EnrichTimeout:     200 * time.Millisecond,
	}, log.New(io.Discard, "", 0))
}

// assertConsistent checks the structural invariants that must hold after any
// settled transition: no id appears twice across queue and window, the window
// never exceeds the slot count, and everything visible is marked seen.
func assertConsistent(t *testing.T, s *store.Session, slotCount int) {
	t.Helper()
	s.Lock()
	defer s.Unlock()

	assert.LessOrEqual(t, len(s.Visible), slotCount)
	ids := make(map[string]int)
	for _, item := range s.Visible {
		ids[item.ID]++
		assert.True(t, s.IsSeen(item.ID), "visible item %s not seen", item.ID)
	}
	for _, item := range s.Queue {
		ids[item.ID]++
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, "id %s appears %d times across queue and window", id, n)
	}
}

func TestStartSessionFillsWindow(t *testing.T) {
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		if query == "forest" && page == 1 {
			return items("a", "b", "c", "d", "e", "f"), nil
		}
		return nil, nil
	}}
	engine := newTestEngine(searcher, &fakeEnricher{})

	updates := 0
	engine.OnUpdate = func(*store.Session) { updates++ }

	s := store.NewSession("s1", "u1", "forest")
	engine.StartSession(context.Background(), s)

	assert.Equal(t, []string{"a", "b", "c"}, visibleIDs(s))
	assert.Equal(t, []string{"d", "e", "f"}, queueIDs(s))
	assert.False(t, s.Loading)
	assert.Empty(t, s.Status)
	assert.Equal(t, 1, updates, "one batched notification per transition")
	assertConsistent(t, s, 3)
}

func TestAcceptRefinesQueryAndReplacesQueue(t *testing.T) {
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		return items("f", "g", "h", "i"), nil
	}}
	engine := newTestEngine(searcher, &fakeEnricher{})

	s := store.NewSession("s1", "u1", "forest")
	s.Visible = items("a", "b", "c")
	for _, id := range []string{"a", "b", "c"} {
		s.MarkSeen(id)
	}
	s.Queue = items("d", "e")

	require.NoError(t, engine.Accept(context.Background(), s, 1))

	// b moves to the head of the kept list and the stale queue is gone.
	require.Len(t, s.Kept, 1)
	assert.Equal(t, "b", s.Kept[0].ID)
	assert.True(t, s.IsSeen("b"))
	assert.NotEqual(t, "forest", s.ActiveQuery, "accept must refine the active query")

	// Window refilled from the refined fetch, not from the old queue.
	assert.Equal(t, []string{"a", "c", "f"}, visibleIDs(s))
	assert.Equal(t, []string{"g", "h", "i"}, queueIDs(s))
	assert.False(t, s.Loading)
	assertConsistent(t, s, 3)
}

func TestAcceptSlotOutOfRange(t *testing.T) {
	searcher := &fakeSearcher{}
	engine := newTestEngine(searcher, &fakeEnricher{})

	s := store.NewSession("s1", "u1", "forest")
	s.Visible = items("a")

	assert.Error(t, engine.Accept(context.Background(), s, 1))
	assert.Error(t, engine.Accept(context.Background(), s, -1))
	assert.Equal(t, 0, searcher.callCount(), "invalid slot must not trigger a fetch")
}

func TestRejectRefillsAndPrefetches(t *testing.T) {
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		if query == "forest" && page == 2 {
			return items("n1", "n2", "n3", "n4"), nil
		}
		return nil, nil
	}}
	engine := newTestEngine(searcher, &fakeEnricher{})

	s := store.NewSession("s1", "u1", "forest")
	s.Visible = items("a", "b")
	s.MarkSeen("a")
	s.MarkSeen("b")
	s.Queue = items("z")

	require.NoError(t, engine.Reject(context.Background(), s, 1))

	// b is gone for good, z moved up, and the low queue triggered an
	// append-mode prefetch of the next page on the unchanged query.
	assert.True(t, s.IsSeen("b"))
	assert.Equal(t, "forest", s.ActiveQuery)
	assert.Equal(t, []string{"a", "z", "n1"}, visibleIDs(s))
	assert.Equal(t, []string{"n2", "n3", "n4"}, queueIDs(s))
	assert.Equal(t, 2, s.Page)

	require.Equal(t, 1, searcher.callCount())
	assert.Equal(t, searchCall{query: "forest", page: 2}, searcher.calls[0])
	assert.Empty(t, s.Kept, "reject never keeps anything")
	assertConsistent(t, s, 3)
}

func TestAnalyzeEnrichmentWins(t *testing.T) {
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		switch {
		case query == "raw mood text" && page == 1:
			return items("o1", "o2", "o3"), nil
		case query == "refined mood" && page == 1:
			return items("r1", "r2", "r3", "r4"), nil
		}
		return nil, nil
	}}
	enricher := &fakeEnricher{steps: map[string]enrichStep{
		"raw mood text": {res: &enrich.Result{Query: "refined mood"}},
	}}
	engine := newTestEngine(searcher, enricher)

	s := store.NewSession("s1", "u1", "forest")
	engine.AnalyzeAndSearch(context.Background(), s, "raw mood text")

	assert.Equal(t, "raw mood text", s.VisibleText)
	assert.Equal(t, "refined mood", s.ActiveQuery)
	assert.Equal(t, []string{"r1", "r2", "r3"}, visibleIDs(s))
	assert.Equal(t, []string{"r4"}, queueIDs(s))
	assert.False(t, s.Loading)
	assert.Empty(t, s.Status)
	assertConsistent(t, s, 3)
}

func TestAnalyzeEnrichmentTimeoutKeepsOptimisticResults(t *testing.T) {
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		if query == "raw mood text" && page == 1 {
			return items("o1", "o2", "o3", "o4"), nil
		}
		return nil, nil
	}}
	// The gate never opens; the enricher only returns when the bounded
	// context expires.
	enricher := &fakeEnricher{steps: map[string]enrichStep{
		"raw mood text": {res: &enrich.Result{Query: "too late"}, gate: make(chan struct{})},
	}}
	engine := newTestEngine(searcher, enricher)

	s := store.NewSession("s1", "u1", "forest")
	start := time.Now()
	engine.AnalyzeAndSearch(context.Background(), s, "raw mood text")

	assert.Less(t, time.Since(start), 2*time.Second, "analyze must not hang past the enrichment timeout")
	assert.Equal(t, "forest", s.ActiveQuery, "a failed enrichment must not change the active query")
	assert.Equal(t, []string{"o1", "o2", "o3"}, visibleIDs(s))
	assert.False(t, s.Loading)
	assert.Empty(t, s.Status, "an absorbed enrichment failure surfaces no error")
	assertConsistent(t, s, 3)
}

func TestAnalyzeDryRefinedFetchKeepsOptimisticResults(t *testing.T) {
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		if query == "raw mood text" && page == 1 {
			return items("o1", "o2", "o3", "o4"), nil
		}
		// The refined query finds nothing at all.
		return nil, nil
	}}
	enricher := &fakeEnricher{steps: map[string]enrichStep{
		"raw mood text": {res: &enrich.Result{Query: "hyper specific nonsense"}},
	}}
	engine := newTestEngine(searcher, enricher)

	s := store.NewSession("s1", "u1", "forest")
	engine.AnalyzeAndSearch(context.Background(), s, "raw mood text")

	assert.Equal(t, "forest", s.ActiveQuery, "a dry refined fetch must not promote the refined query")
	assert.Equal(t, []string{"o1", "o2", "o3"}, visibleIDs(s))
	assert.Empty(t, s.Status)
	assertConsistent(t, s, 3)
}

func TestAnalyzeNoMatchesAnywhere(t *testing.T) {
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		return nil, nil
	}}
	enricher := &fakeEnricher{steps: map[string]enrichStep{
		"raw mood text": {res: &enrich.Result{Query: "also nothing"}},
	}}
	engine := newTestEngine(searcher, enricher)

	s := store.NewSession("s1", "u1", "forest")
	engine.AnalyzeAndSearch(context.Background(), s, "raw mood text")

	assert.Empty(t, s.Visible)
	assert.Equal(t, constant.StatusNoMatches, s.Status)
	assert.False(t, s.Loading)
}

func TestAnalyzeStaleGenerationIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	firstPainted := make(chan struct{}, 8)

	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		switch {
		case query == "first text" && page == 1:
			return items("f1", "f2", "f3"), nil
		case query == "second text" && page == 1:
			return items("s1", "s2", "s3", "s4", "s5", "s6"), nil
		}
		return nil, nil
	}}
	enricher := &fakeEnricher{steps: map[string]enrichStep{
		"first text":  {res: &enrich.Result{Query: "stale refined"}, gate: gate},
		"second text": {err: context.DeadlineExceeded},
	}}
	engine := newTestEngine(searcher, enricher)
	engine.OnUpdate = func(*store.Session) {
		select {
		case firstPainted <- struct{}{}:
		default:
		}
	}

	s := store.NewSession("s1", "u1", "forest")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		engine.AnalyzeAndSearch(context.Background(), s, "first text")
	}()

	// Wait for the first cycle's optimistic paint, so it is parked on its
	// gated enrichment before the second cycle starts.
	select {
	case <-firstPainted:
	case <-time.After(2 * time.Second):
		t.Fatal("first analyze never painted its optimistic results")
	}

	engine.AnalyzeAndSearch(context.Background(), s, "second text")

	before := snapshot(s)

	// Release the stale enrichment; its result must change nothing.
	close(gate)
	wg.Wait()

	assert.Equal(t, before, snapshot(s), "a stale cycle must produce zero observable state change")
	assert.Equal(t, "second text", s.VisibleText)
	assert.NotContains(t, s.ActiveQuery, "stale")
	assertConsistent(t, s, 3)
}

func TestAnalyzeStaleEnrichmentFailureIsInert(t *testing.T) {
	gate := make(chan struct{})
	firstPainted := make(chan struct{}, 8)

	// The second cycle settles with a short queue, so a stale arrival that
	// still ran the post-transition hook would issue an extra prefetch and
	// grow the queue.
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		switch {
		case query == "first text" && page == 1:
			return items("f1", "f2", "f3"), nil
		case query == "second text" && page == 1:
			return items("s1", "s2", "s3", "s4", "s5"), nil
		case query == "forest" && page == 3:
			// Only reachable by a stale settle prefetching past the
			// second cycle's cursor.
			return items("x1", "x2", "x3"), nil
		}
		return nil, nil
	}}
	enricher := &fakeEnricher{steps: map[string]enrichStep{
		"first text":  {err: fmt.Errorf("enrichment provider down"), gate: gate},
		"second text": {err: context.DeadlineExceeded},
	}}
	// Long enrichment timeout so only the gate releases the first cycle.
	engine := NewEngine(searcher, enricher, scoring.DefaultWeights(), Config{
		SlotCount:         3,
		PrefetchThreshold: 3,
		EnrichTimeout:     5 * time.Second,
	}, log.New(io.Discard, "", 0))
	engine.OnUpdate = func(*store.Session) {
		select {
		case firstPainted <- struct{}{}:
		default:
		}
	}

	s := store.NewSession("s1", "u1", "forest")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		engine.AnalyzeAndSearch(context.Background(), s, "first text")
	}()

	select {
	case <-firstPainted:
	case <-time.After(2 * time.Second):
		t.Fatal("first analyze never painted its optimistic results")
	}

	engine.AnalyzeAndSearch(context.Background(), s, "second text")

	before := snapshot(s)
	fetches := searcher.callCount()

	// Release the stale enrichment failure; the superseded cycle must not
	// touch the session or reach the provider again.
	close(gate)
	wg.Wait()

	assert.Equal(t, before, snapshot(s), "a stale cycle must produce zero observable state change")
	assert.Equal(t, fetches, searcher.callCount(), "a stale cycle must not issue further fetches")
	assert.Equal(t, []string{"s4", "s5"}, queueIDs(s))
	assertConsistent(t, s, 3)
}

func TestManualResearchResetsEverything(t *testing.T) {
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		if query == "fresh start" && page == 1 {
			return items("a", "b", "c", "d", "e", "f"), nil
		}
		return nil, nil
	}}
	engine := newTestEngine(searcher, &fakeEnricher{})

	s := store.NewSession("s1", "u1", "forest")
	s.Visible = items("x")
	s.Kept = items("k")
	s.Queue = items("q")
	s.MarkSeen("x")
	s.MarkSeen("k")
	s.MarkSeen("a") // would block "a" if the seen set survived

	engine.ManualResearch(context.Background(), s, "fresh start")

	assert.Equal(t, "fresh start", s.ActiveQuery)
	assert.Equal(t, "fresh start", s.VisibleText)
	assert.Empty(t, s.Kept, "manual research clears the kept list")
	assert.Equal(t, []string{"a", "b", "c"}, visibleIDs(s), "the seen set must be forgotten")
	assert.Equal(t, []string{"d", "e", "f"}, queueIDs(s))
	assert.False(t, s.Loading)
	assertConsistent(t, s, 3)
}

func TestFetchWhileFetchInFlightIsNoOp(t *testing.T) {
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		return items("a"), nil
	}}
	engine := newTestEngine(searcher, &fakeEnricher{})

	s := store.NewSession("s1", "u1", "forest")
	s.FetchInFlight = true

	added, ran := engine.fetchFresh(context.Background(), s, "forest", 1, ModeReplace, s.Generation)
	assert.Equal(t, 0, added)
	assert.False(t, ran)
	assert.Equal(t, 0, searcher.callCount(), "an overlapping fetch must not reach the provider")
	assert.True(t, s.FetchInFlight, "the guard belongs to the fetch that set it")
}

func TestSearchErrorSurfacesStatus(t *testing.T) {
	searcher := &fakeSearcher{fn: func(query string, page int) ([]store.Item, error) {
		return nil, fmt.Errorf("connection refused")
	}}
	engine := newTestEngine(searcher, &fakeEnricher{})

	s := store.NewSession("s1", "u1", "forest")
	engine.StartSession(context.Background(), s)

	assert.Equal(t, constant.StatusUnavailable, s.Status)
	assert.False(t, s.Loading, "a failed fetch must not leave the session loading")
	assert.Empty(t, s.Visible)
}

func snapshot(s *store.Session) string {
	s.Lock()
	defer s.Unlock()
	return fmt.Sprintf("q=%v v=%v kept=%v active=%q page=%d status=%q loading=%v",
		queueIDsLocked(s), visibleIDsLocked(s), keptIDs(s), s.ActiveQuery, s.Page, s.Status, s.Loading)
}

func queueIDsLocked(s *store.Session) []string {
	ids := make([]string, 0, len(s.Queue))
	for _, item := range s.Queue {
		ids = append(ids, item.ID)
	}
	return ids
}

func visibleIDsLocked(s *store.Session) []string {
	ids := make([]string, 0, len(s.Visible))
	for _, item := range s.Visible {
		ids = append(ids, item.ID)
	}
	return ids
}

func keptIDs(s *store.Session) []string {
	ids := make([]string, 0, len(s.Kept))
	for _, item := range s.Kept {
		ids = append(ids, item.ID)
	}
	return ids
}
