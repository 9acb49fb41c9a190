package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/promatch/match"
	"github.com/smallnest/promatch/profile"
)

func testStore() *profile.MemoryStore {
	store := profile.NewMemoryStore()
	store.Put(&profile.Profile{ID: "u1", Name: "Ada"})
	store.Put(&profile.Profile{ID: "u2", Name: "Grace"})
	return store
}

func TestEnrichJoinsProfiles(t *testing.T) {
	e := New(testStore())

	stubs := []match.Stub{
		{CandidateID: "u1", Score: 85, Reasoning: "strong fit", MatchTypes: []string{match.TypeMentor}},
		{CandidateID: "u2", Score: 65, Reasoning: "same field"},
	}

	enriched, err := e.Enrich(context.Background(), stubs)
	assert.NoError(t, err)
	assert.Len(t, enriched, 2)
	assert.Equal(t, "Ada", enriched[0].Profile.Name)
	assert.Equal(t, "Grace", enriched[1].Profile.Name)
}

func TestEnrichDropsUnknownIdentifiers(t *testing.T) {
	e := New(testStore())

	stubs := []match.Stub{
		{CandidateID: "u1", Score: 80},
		{CandidateID: "ghost", Score: 95},
	}

	enriched, err := e.Enrich(context.Background(), stubs)
	assert.NoError(t, err)
	assert.Len(t, enriched, 1)
	assert.Equal(t, "u1", enriched[0].Profile.ID)
}

func TestEnrichRecomputesStrength(t *testing.T) {
	e := New(testStore())

	// The stub claims "low" but the score says "high"; the score wins
	stubs := []match.Stub{
		{CandidateID: "u1", Score: 90, RecommendationStrength: match.StrengthLow},
	}

	enriched, err := e.Enrich(context.Background(), stubs)
	assert.NoError(t, err)
	assert.Equal(t, match.StrengthHigh, enriched[0].RecommendationStrength)
}

func TestEnrichEmptyInput(t *testing.T) {
	e := New(testStore())

	enriched, err := e.Enrich(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, enriched)
}
