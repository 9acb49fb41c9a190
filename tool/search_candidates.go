package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/smallnest/promatch/index"
	"github.com/smallnest/promatch/log"
	"github.com/smallnest/promatch/profile"
)

// FallbackSimilarity is the sentinel similarity assigned to candidates returned
// by the unranked fallback listing when the index produces zero hits.
const FallbackSimilarity = -1.0

// SearchCandidates is a tool that discovers candidate profiles by semantic
// similarity against the profile index.
type SearchCandidates struct {
	index      index.Index
	profiles   profile.Store
	logger     log.Logger
	maxResults int
	minScore   float64
	timeout    time.Duration
}

// SearchOption configures a SearchCandidates tool.
type SearchOption func(*SearchCandidates)

// WithSearchMaxResults sets the default result cap (1-25).
func WithSearchMaxResults(n int) SearchOption {
	return func(s *SearchCandidates) {
		if n < 1 {
			n = 1
		}
		if n > 25 {
			n = 25
		}
		s.maxResults = n
	}
}

// WithSearchMinSimilarity sets the default similarity floor.
func WithSearchMinSimilarity(min float64) SearchOption {
	return func(s *SearchCandidates) {
		s.minScore = min
	}
}

// WithSearchTimeout bounds each index call.
func WithSearchTimeout(d time.Duration) SearchOption {
	return func(s *SearchCandidates) {
		s.timeout = d
	}
}

// WithSearchLogger sets the logger.
func WithSearchLogger(logger log.Logger) SearchOption {
	return func(s *SearchCandidates) {
		s.logger = logger
	}
}

// NewSearchCandidates creates a new candidate search tool.
func NewSearchCandidates(idx index.Index, profiles profile.Store, opts ...SearchOption) *SearchCandidates {
	s := &SearchCandidates{
		index:      idx,
		profiles:   profiles,
		logger:     log.GetDefaultLogger(),
		maxResults: 10,
		minScore:   0.3,
		timeout:    15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the name of the tool.
func (s *SearchCandidates) Name() string {
	return "search_candidates"
}

// Description returns the description of the tool.
func (s *SearchCandidates) Description() string {
	return "Search for candidate profiles semantically similar to a text query. " +
		`Input is a JSON object: {"query": string, "excludeId": string (optional), ` +
		`"minSimilarity": number (optional), "maxResults": number (optional)}. ` +
		"Returns a JSON array of {candidateId, similarity, profileSummary}."
}

type searchInput struct {
	Query         string   `json:"query"`
	ExcludeID     string   `json:"excludeId"`
	MinSimilarity *float64 `json:"minSimilarity"`
	MaxResults    int      `json:"maxResults"`
}

type searchResult struct {
	CandidateID    string  `json:"candidateId"`
	Similarity     float64 `json:"similarity"`
	ProfileSummary string  `json:"profileSummary"`
}

// Call executes the search. A zero-hit index response degrades to an unranked
// listing of all stored profiles rather than an error.
func (s *SearchCandidates) Call(ctx context.Context, input string) (string, error) {
	var req searchInput
	if err := json.Unmarshal([]byte(input), &req); err != nil {
		// Plain-text input is treated as the query itself
		req.Query = strings.TrimSpace(input)
	}
	if req.Query == "" {
		return "", fmt.Errorf("query is required")
	}

	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > 25 {
		maxResults = s.maxResults
	}
	minScore := s.minScore
	if req.MinSimilarity != nil {
		minScore = *req.MinSimilarity
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	hits, err := s.index.Search(ctx, req.Query, maxResults*2)
	if err != nil {
		return "", fmt.Errorf("similarity search failed: %w", err)
	}

	results := make([]searchResult, 0, maxResults)
	for _, hit := range hits {
		if hit.ID == req.ExcludeID || hit.Score < minScore {
			continue
		}
		p, err := s.profiles.GetByID(ctx, hit.ID)
		if err != nil {
			s.logger.Warn("search_candidates: skipping unknown indexed id %s", hit.ID)
			continue
		}
		results = append(results, searchResult{
			CandidateID:    hit.ID,
			Similarity:     hit.Score,
			ProfileSummary: profile.ShortSummary(p),
		})
		if len(results) == maxResults {
			break
		}
	}

	if len(results) == 0 {
		results, err = s.fallbackListing(ctx, req.ExcludeID, maxResults)
		if err != nil {
			return "", err
		}
	}

	out, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}
	return string(out), nil
}

// fallbackListing returns all stored profiles with the sentinel similarity.
func (s *SearchCandidates) fallbackListing(ctx context.Context, excludeID string, maxResults int) ([]searchResult, error) {
	all, err := s.profiles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fallback listing failed: %w", err)
	}

	s.logger.Debug("search_candidates: zero hits, falling back to full listing (%d profiles)", len(all))

	results := make([]searchResult, 0, maxResults)
	for _, p := range all {
		if p.ID == excludeID {
			continue
		}
		results = append(results, searchResult{
			CandidateID:    p.ID,
			Similarity:     FallbackSimilarity,
			ProfileSummary: profile.ShortSummary(p),
		})
		if len(results) == maxResults {
			break
		}
	}
	return results, nil
}
