package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/promatch/agent"
	"github.com/smallnest/promatch/cache"
	"github.com/smallnest/promatch/enrich"
	"github.com/smallnest/promatch/extract"
	"github.com/smallnest/promatch/log"
	"github.com/smallnest/promatch/match"
	"github.com/smallnest/promatch/profile"
	"github.com/smallnest/promatch/scoring"
)

const (
	// DefaultMaxResults applies when a request does not specify a cap.
	DefaultMaxResults = 10
	// MaxResultsLimit is the hard upper bound on requested results.
	MaxResultsLimit = 50
	// DefaultMinCompatibility is the score cutoff for the agentic path. The
	// deterministic path keeps its own cutoff (scoring.MinScore); the two are
	// independent, documented thresholds.
	DefaultMinCompatibility = 40
)

// Request are the parameters of one match computation.
type Request struct {
	OwnerID          string
	MaxResults       int
	MinCompatibility int
	ForceRefresh     bool
}

// Response is the externally visible result of a match request.
type Response struct {
	Matches          []match.Enriched `json:"matches"`
	TotalFound       int              `json:"totalFound"`
	ProcessingTimeMs int64            `json:"processingTimeMs"`
	CacheUsed        bool             `json:"cacheUsed"`
	CacheAgeMinutes  int              `json:"cacheAgeMinutes"`
}

// Engine is the compatibility matching engine. All collaborators are injected;
// the engine holds no construction-time environment lookups.
type Engine struct {
	profiles     profile.Store
	orchestrator *agent.Orchestrator
	extractor    *extract.Extractor
	enricher     *enrich.Enricher
	cache        cache.Store
	logger       log.Logger

	ttl              time.Duration
	freshness        time.Duration
	minCompatibility int
	now              func() time.Time

	// cacheWrites tracks in-flight asynchronous cache upserts.
	cacheWrites sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTTL sets how long computed match lists stay valid in the cache.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.ttl = ttl
	}
}

// WithFreshness sets the window within which a cached entry is served without
// recomputation.
func WithFreshness(window time.Duration) Option {
	return func(e *Engine) {
		e.freshness = window
	}
}

// WithMinCompatibility sets the default agentic-path score cutoff.
func WithMinCompatibility(min int) Option {
	return func(e *Engine) {
		e.minCompatibility = min
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates a matching engine from its injected collaborators.
func New(profiles profile.Store, orchestrator *agent.Orchestrator, extractor *extract.Extractor, enricher *enrich.Enricher, cacheStore cache.Store, opts ...Option) *Engine {
	e := &Engine{
		profiles:         profiles,
		orchestrator:     orchestrator,
		extractor:        extractor,
		enricher:         enricher,
		cache:            cacheStore,
		logger:           log.GetDefaultLogger(),
		ttl:              cache.DefaultTTL,
		freshness:        cache.DefaultFreshness,
		minCompatibility: DefaultMinCompatibility,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FindMatches returns ranked, explained matches for the owner. A valid, fresh
// cache entry short-circuits the pipeline unless ForceRefresh is set. A fresh
// computation is written back to the cache asynchronously and best-effort: a
// cache write failure never fails the request that triggered it.
func (e *Engine) FindMatches(ctx context.Context, req Request) (*Response, error) {
	start := e.now()

	requester, maxResults, minCompat, err := e.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	if !req.ForceRefresh {
		if resp := e.fromCache(ctx, req.OwnerID); resp != nil {
			return resp, nil
		}
	}

	runID := uuid.New().String()
	e.logger.Info("match run %s: computing matches for owner %s", runID, req.OwnerID)

	result, err := e.orchestrator.Run(ctx, agent.BuildMessages(requester, maxResults, minCompat))
	if err != nil {
		return nil, fmt.Errorf("match run %s failed: %w", runID, err)
	}
	if result.BudgetExceeded {
		e.logger.Warn("match run %s: iteration budget exceeded, using partial output", runID)
	}

	extracted := e.extractor.Extract(result.FinalText)
	if extracted.Empty() {
		e.logger.Warn("match run %s: no parseable matches in model output", runID)
	}

	stubs := filterStubs(extracted.Stubs, req.OwnerID, minCompat, maxResults)

	enriched, err := e.enricher.Enrich(ctx, stubs)
	if err != nil {
		return nil, fmt.Errorf("match run %s enrichment failed: %w", runID, err)
	}

	processingMs := e.now().Sub(start).Milliseconds()
	meta := cache.Metadata{
		ProcessingTimeMs:   processingMs,
		CandidatesAnalyzed: len(extracted.Stubs),
	}
	e.writeCacheAsync(req.OwnerID, enriched, meta)

	return &Response{
		Matches:          enriched,
		TotalFound:       len(enriched),
		ProcessingTimeMs: processingMs,
	}, nil
}

// ScoreAll is the synchronous, deterministic alternative to the agentic
// pipeline. It requires no reasoning capability and no cache.
func (e *Engine) ScoreAll(requester *profile.Profile, candidates []*profile.Profile) []scoring.Match {
	return scoring.ScoreAll(requester, candidates)
}

// ScoreOwner runs the deterministic path over every stored profile.
func (e *Engine) ScoreOwner(ctx context.Context, ownerID string) ([]scoring.Match, error) {
	requester, err := e.profiles.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, &ValidationError{Reason: fmt.Sprintf("unknown owner %q", ownerID)}
		}
		return nil, fmt.Errorf("owner lookup failed: %w", err)
	}

	candidates, err := e.profiles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("candidate listing failed: %w", err)
	}

	return scoring.ScoreAll(requester, candidates), nil
}

// WaitForCacheWrites blocks until all in-flight asynchronous cache upserts
// have finished. Intended for orderly shutdown.
func (e *Engine) WaitForCacheWrites() {
	e.cacheWrites.Wait()
}

func (e *Engine) validate(ctx context.Context, req Request) (*profile.Profile, int, int, error) {
	if req.OwnerID == "" {
		return nil, 0, 0, &ValidationError{Reason: "owner id is required"}
	}

	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults < 1 || maxResults > MaxResultsLimit {
		return nil, 0, 0, &ValidationError{Reason: fmt.Sprintf("max results must be between 1 and %d", MaxResultsLimit)}
	}

	minCompat := req.MinCompatibility
	if minCompat == 0 {
		minCompat = e.minCompatibility
	}
	if minCompat < 0 || minCompat > 100 {
		return nil, 0, 0, &ValidationError{Reason: "min compatibility must be between 0 and 100"}
	}

	requester, err := e.profiles.GetByID(ctx, req.OwnerID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, 0, 0, &ValidationError{Reason: fmt.Sprintf("unknown owner %q", req.OwnerID)}
		}
		return nil, 0, 0, fmt.Errorf("owner lookup failed: %w", err)
	}

	return requester, maxResults, minCompat, nil
}

// fromCache serves a valid, fresh entry. A cache read failure is treated as a
// miss, never as a request failure.
func (e *Engine) fromCache(ctx context.Context, ownerID string) *Response {
	entry, err := e.cache.Get(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			e.logger.Warn("cache read failed for owner %s, treating as miss: %v", ownerID, err)
		}
		return nil
	}

	now := e.now()
	if !entry.Fresh(e.freshness, now) {
		e.logger.Debug("cache entry for owner %s is stale, recomputing", ownerID)
		return nil
	}

	return &Response{
		Matches:         entry.Matches,
		TotalFound:      entry.TotalMatches,
		CacheUsed:       true,
		CacheAgeMinutes: int(entry.Age(now).Minutes()),
	}
}

// writeCacheAsync fires the upsert without blocking the response path. The
// write uses a detached context so a caller cancellation cannot abort it, and
// its failure is swallowed and logged. The upsert's whole-entry replace keeps
// concurrent writers for the same owner safe without extra locking.
func (e *Engine) writeCacheAsync(ownerID string, matches []match.Enriched, meta cache.Metadata) {
	entry := cache.NewEntry(ownerID, matches, meta, e.ttl)

	e.cacheWrites.Add(1)
	go func() {
		defer e.cacheWrites.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := e.cache.Upsert(ctx, entry); err != nil {
			e.logger.Warn("cache write failed for owner %s: %v", ownerID, err)
		}
	}()
}

// filterStubs drops self-matches and below-threshold stubs, orders the rest by
// score descending (stable) and caps the list.
func filterStubs(stubs []match.Stub, ownerID string, minCompat, maxResults int) []match.Stub {
	filtered := make([]match.Stub, 0, len(stubs))
	for _, stub := range stubs {
		if stub.CandidateID == ownerID || stub.Score < minCompat {
			continue
		}
		filtered = append(filtered, stub)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})

	if len(filtered) > maxResults {
		filtered = filtered[:maxResults]
	}
	return filtered
}
