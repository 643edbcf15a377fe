package curation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"vibe-curation-be/internal/constant"
	"vibe-curation-be/pkg/enrich"
	"vibe-curation-be/pkg/imagesearch"
	"vibe-curation-be/pkg/scoring"
	"vibe-curation-be/pkg/store"
)

// Config encapsulates the engine's tuning parameters.
type Config struct {
	// SlotCount is the fixed size of the visible window.
	SlotCount int
	// PrefetchThreshold triggers a low-queue append fetch after a
	// transition when the queue drops below it.
	PrefetchThreshold int
	// EnrichTimeout bounds the racing enrichment call. When it elapses the
	// optimistic results stand and no error surfaces.
	EnrichTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		SlotCount:         3,
		PrefetchThreshold: 3,
		EnrichTimeout:     3500 * time.Millisecond,
	}
}

// Engine owns every session state transition: accept/reject, the analyze
// orchestration (optimistic fetch racing a bounded enrichment call), manual
// research resets and the post-transition fill/prefetch hook. The engine
// itself is stateless; all mutable state lives on the session, mutated only
// while its lock is held. Provider calls run with the lock released, so
// ordering is enforced by the generation counter and the fetch-in-flight
// guard rather than by the lock.
type Engine struct {
	searcher imagesearch.Provider
	enricher enrich.Provider
	weights  scoring.Weights
	cfg      Config
	logger   *log.Logger

	// OnUpdate, when set, receives one batched notification per settled
	// transition (and one extra for the optimistic paint during analyze).
	OnUpdate func(s *store.Session)
}

func NewEngine(searcher imagesearch.Provider, enricher enrich.Provider, weights scoring.Weights, cfg Config, logger *log.Logger) *Engine {
	if cfg.SlotCount <= 0 {
		cfg.SlotCount = DefaultConfig().SlotCount
	}
	if cfg.PrefetchThreshold <= 0 {
		cfg.PrefetchThreshold = DefaultConfig().PrefetchThreshold
	}
	if cfg.EnrichTimeout <= 0 {
		cfg.EnrichTimeout = DefaultConfig().EnrichTimeout
	}
	return &Engine{
		searcher: searcher,
		enricher: enricher,
		weights:  weights,
		cfg:      cfg,
		logger:   logger,
	}
}

// StartSession issues the seed fetch for a freshly constructed session.
func (e *Engine) StartSession(ctx context.Context, s *store.Session) {
	s.Lock()
	gen := s.Generation
	query := s.ActiveQuery
	s.Loading = true
	s.Status = ""
	s.Unlock()

	e.fetchFresh(ctx, s, query, 1, ModeReplace, gen)
	e.clearLoading(s, gen)
	e.settle(ctx, s)
}

// Accept moves the item at the given visible slot to the head of the kept
// list, refines the active query from the accumulated signal, and issues a
// replace-mode fetch for the refined query. This is the only path that
// changes the active query via scoring.
func (e *Engine) Accept(ctx context.Context, s *store.Session, slot int) error {
	s.Lock()
	if slot < 0 || slot >= len(s.Visible) {
		s.Unlock()
		return fmt.Errorf("accept: slot %d out of range (visible %d)", slot, len(s.Visible))
	}
	item := s.Visible[slot]
	s.Visible = append(s.Visible[:slot], s.Visible[slot+1:]...)
	s.MarkSeen(item.ID)
	s.Kept = append([]store.Item{item}, s.Kept...)

	refined := scoring.RefineQuery(item, s, e.weights)
	s.ActiveQuery = refined
	s.Queue = nil
	s.Page = 1
	gen := s.NextGeneration()
	s.Loading = true
	s.Status = ""
	s.Unlock()

	e.fetchFresh(ctx, s, refined, 1, ModeReplace, gen)
	e.clearLoading(s, gen)
	e.settle(ctx, s)
	return nil
}

// Reject drops the item at the given visible slot without any scoring or
// query change. The post-transition hook refills the window and issues a
// low-queue append prefetch at the next page against the unchanged query.
func (e *Engine) Reject(ctx context.Context, s *store.Session, slot int) error {
	s.Lock()
	if slot < 0 || slot >= len(s.Visible) {
		s.Unlock()
		return fmt.Errorf("reject: slot %d out of range (visible %d)", slot, len(s.Visible))
	}
	item := s.Visible[slot]
	s.MarkSeen(item.ID)
	s.Visible = append(s.Visible[:slot], s.Visible[slot+1:]...)
	s.Unlock()

	e.settle(ctx, s)
	return nil
}

// AnalyzeAndSearch is the two-phase orchestration: an immediate optimistic
// fetch on the raw input races an enrichment call bounded by a hard timeout.
// A stale cycle (generation advanced past the captured one) produces zero
// observable state change regardless of how its calls complete.
func (e *Engine) AnalyzeAndSearch(ctx context.Context, s *store.Session, text string) {
	s.Lock()
	gen := s.NextGeneration()
	s.VisibleText = text
	s.Page = 1
	s.Queue = nil
	s.Visible = nil
	s.Loading = true
	s.Status = ""
	titles := s.KeptTitles(e.weights.MaxKeptTitles)
	s.Unlock()

	type enrichOutcome struct {
		res *enrich.Result
		err error
	}
	enriched := make(chan enrichOutcome, 1)
	go func() {
		ectx, cancel := context.WithTimeout(ctx, e.cfg.EnrichTimeout)
		defer cancel()
		res, err := e.enricher.Refine(ectx, text, titles)
		enriched <- enrichOutcome{res: res, err: err}
	}()

	optimistic, _ := e.fetchFresh(ctx, s, text, 1, ModeReplace, gen)

	s.Lock()
	current := s.Generation == gen
	if current {
		FillSlots(s, e.cfg.SlotCount)
	}
	s.Unlock()
	if current {
		e.notify(s)
	}

	out := <-enriched
	s.Lock()
	stale := s.Generation != gen
	s.Unlock()
	if stale {
		// A newer cycle owns the session; this arrival must be inert no
		// matter how the enrichment ended.
		return
	}
	if out.err != nil || out.res == nil || strings.TrimSpace(out.res.Query) == "" {
		// Timeout, transport failure or malformed output: the enrichment
		// is abandoned and the optimistic results stand.
		if out.err != nil {
			e.logger.Printf("[INFO] enrichment absorbed: %v", out.err)
		}
		e.clearLoading(s, gen)
		e.settle(ctx, s)
		return
	}

	refined := strings.TrimSpace(out.res.Query)
	fresh, ran := e.fetchRefined(ctx, s, refined, gen)

	s.Lock()
	if s.Generation == gen {
		if fresh > 0 {
			s.ActiveQuery = refined
		} else if ran && optimistic == 0 {
			s.Status = constant.StatusNoMatches
		}
		s.Loading = false
	}
	s.Unlock()
	e.settle(ctx, s)
}

// ManualResearch is the full reset: queue, window, kept list and seen set are
// all cleared, the active query becomes the given text verbatim, and a
// replace-mode fetch starts over at page 1.
func (e *Engine) ManualResearch(ctx context.Context, s *store.Session, text string) {
	s.Lock()
	gen := s.NextGeneration()
	s.VisibleText = text
	s.ActiveQuery = text
	s.Queue = nil
	s.Visible = nil
	s.Kept = nil
	s.Seen = make(map[string]struct{})
	s.Page = 1
	s.Loading = true
	s.Status = ""
	s.Unlock()

	e.fetchFresh(ctx, s, text, 1, ModeReplace, gen)
	e.clearLoading(s, gen)
	e.settle(ctx, s)
}

// fetchFresh runs one guarded provider fetch and merges the fresh survivors
// into the queue. Returns the added count and whether the fetch actually ran;
// a fetch attempted while another is in flight is a no-op. Results arriving
// under a stale generation are discarded without touching the session.
func (e *Engine) fetchFresh(ctx context.Context, s *store.Session, query string, page int, mode Mode, gen uint64) (int, bool) {
	s.Lock()
	if s.FetchInFlight {
		s.Unlock()
		return 0, false
	}
	s.FetchInFlight = true
	s.Unlock()

	items, err := e.searcher.Search(ctx, query, page)

	s.Lock()
	defer s.Unlock()
	s.FetchInFlight = false
	if gen != s.Generation {
		return 0, false
	}
	if err != nil {
		e.logger.Printf("[WARN] image search failed (query=%q page=%d): %v", query, page, err)
		s.Status = statusFromError(err)
		return 0, true
	}
	s.Page = page
	return EnqueueFresh(s, items, mode), true
}

// fetchRefined is the commit step of the enrichment race. Unlike fetchFresh
// it stages survivors first and only replaces the window and queue when the
// refined query produced at least one fresh item, so a dry refined fetch
// silently keeps whatever the optimistic fetch already produced.
func (e *Engine) fetchRefined(ctx context.Context, s *store.Session, query string, gen uint64) (int, bool) {
	s.Lock()
	if s.FetchInFlight {
		s.Unlock()
		return 0, false
	}
	s.FetchInFlight = true
	s.Unlock()

	items, err := e.searcher.Search(ctx, query, 1)

	s.Lock()
	defer s.Unlock()
	s.FetchInFlight = false
	if gen != s.Generation {
		return 0, false
	}
	if err != nil {
		e.logger.Printf("[WARN] refined search failed (query=%q): %v", query, err)
		s.Status = statusFromError(err)
		return 0, true
	}

	fresh := filterFresh(s, items)
	if len(fresh) == 0 {
		return 0, true
	}
	s.Page = 1
	s.Queue = fresh
	s.Visible = nil
	FillSlots(s, e.cfg.SlotCount)
	return len(fresh), true
}

// settle is the post-transition hook, run once per state machine transition:
// fill slots first, then evaluate the prefetch threshold, in that fixed
// order. It ends with the single batched update notification.
func (e *Engine) settle(ctx context.Context, s *store.Session) {
	s.Lock()
	FillSlots(s, e.cfg.SlotCount)
	needPrefetch := len(s.Queue) < e.cfg.PrefetchThreshold &&
		!s.FetchInFlight && s.ActiveQuery != "" && !s.Loading
	query := s.ActiveQuery
	page := s.Page + 1
	gen := s.Generation
	s.Unlock()

	if needPrefetch {
		if added, ran := e.fetchFresh(ctx, s, query, page, ModeAppend, gen); ran && added > 0 {
			s.Lock()
			if s.Generation == gen {
				FillSlots(s, e.cfg.SlotCount)
			}
			s.Unlock()
		}
	}
	e.notify(s)
}

func (e *Engine) clearLoading(s *store.Session, gen uint64) {
	s.Lock()
	if s.Generation == gen {
		s.Loading = false
	}
	s.Unlock()
}

func (e *Engine) notify(s *store.Session) {
	if e.OnUpdate != nil {
		e.OnUpdate(s)
	}
}

// statusFromError maps the provider error taxonomy onto the user-facing
// status line. Rate limits surface immediately with the provider's hint;
// everything else degrades to a short diagnostic. No failure is fatal to the
// session: the next action starts a fresh cycle.
func statusFromError(err error) string {
	var rate *imagesearch.RateLimitedError
	if errors.As(err, &rate) {
		if rate.RetryAfter > 0 {
			return fmt.Sprintf(constant.StatusRateLimitedFmt, int(rate.RetryAfter.Seconds()))
		}
		return constant.StatusRateLimited
	}
	var upstream *imagesearch.UpstreamError
	if errors.As(err, &upstream) {
		return fmt.Sprintf(constant.StatusUpstreamFmt, upstream.StatusCode)
	}
	return constant.StatusUnavailable
}
