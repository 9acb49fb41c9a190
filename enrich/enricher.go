package enrich

import (
	"context"
	"fmt"

	"github.com/smallnest/promatch/log"
	"github.com/smallnest/promatch/match"
	"github.com/smallnest/promatch/profile"
)

// Enricher joins extracted match stubs to authoritative profile records.
type Enricher struct {
	profiles profile.Store
	logger   log.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// New creates a new Enricher over the given profile store.
func New(profiles profile.Store, opts ...Option) *Enricher {
	e := &Enricher{
		profiles: profiles,
		logger:   log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich resolves all distinct stub identifiers in a single batch fetch and
// joins each stub to its profile. Stubs referencing unknown identifiers are
// dropped and logged, never defaulted. The recommendation strength is
// recomputed from the score so that score and band always agree, regardless
// of what the reasoning model claimed.
func (e *Enricher) Enrich(ctx context.Context, stubs []match.Stub) ([]match.Enriched, error) {
	if len(stubs) == 0 {
		return []match.Enriched{}, nil
	}

	ids := distinctIDs(stubs)
	profiles, err := e.profiles.GetManyByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("batch profile fetch failed: %w", err)
	}

	byID := make(map[string]*profile.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	enriched := make([]match.Enriched, 0, len(stubs))
	for _, stub := range stubs {
		p, ok := byID[stub.CandidateID]
		if !ok {
			e.logger.Warn("enricher: dropping stub with unknown candidate id %q", stub.CandidateID)
			continue
		}
		score := match.ClampScore(stub.Score)
		enriched = append(enriched, match.Enriched{
			Profile:                p,
			Score:                  score,
			Reasoning:              stub.Reasoning,
			SharedInterests:        stub.SharedInterests,
			ComplementarySkills:    stub.ComplementarySkills,
			MatchTypes:             match.NormalizeTypes(stub.MatchTypes),
			RecommendationStrength: match.StrengthForScore(score),
		})
	}

	return enriched, nil
}

func distinctIDs(stubs []match.Stub) []string {
	seen := make(map[string]bool, len(stubs))
	ids := make([]string, 0, len(stubs))
	for _, stub := range stubs {
		if stub.CandidateID == "" || seen[stub.CandidateID] {
			continue
		}
		seen[stub.CandidateID] = true
		ids = append(ids, stub.CandidateID)
	}
	return ids
}
