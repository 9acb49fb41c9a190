package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/promatch/cache"
	"github.com/smallnest/promatch/match"
	"github.com/smallnest/promatch/profile"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	store, err := NewSqliteStore(SqliteOptions{
		Path: filepath.Join(t.TempDir(), "cache.db"),
	})
	assert.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSqliteStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := cache.NewEntry("u1", []match.Enriched{
		{
			Profile:                &profile.Profile{ID: "u2", Name: "Grace", Skills: []string{"Design"}},
			Score:                  81,
			Reasoning:              "adjacent fields",
			SharedInterests:        []string{"AI"},
			MatchTypes:             []string{match.TypeMentor},
			RecommendationStrength: match.StrengthHigh,
		},
	}, cache.Metadata{ProcessingTimeMs: 250, CandidatesAnalyzed: 8}, 24*time.Hour)

	assert.NoError(t, store.Upsert(ctx, entry))

	loaded, err := store.Get(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, "u1", loaded.OwnerID)
	assert.Equal(t, 1, loaded.TotalMatches)
	assert.Equal(t, "Grace", loaded.Matches[0].Profile.Name)
	assert.Equal(t, 81, loaded.Matches[0].Score)
	assert.Equal(t, 250, int(loaded.Metadata.ProcessingTimeMs))
	assert.Equal(t, cache.FormatVersion, loaded.Metadata.FormatVersion)
}

func TestSqliteStoreMiss(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestSqliteStoreExpiredEntryIsMiss(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := cache.NewEntry("u1", nil, cache.Metadata{}, time.Hour)
	// Force the entry into the past
	entry.CreatedAt = entry.CreatedAt.Add(-3 * time.Hour)
	entry.UpdatedAt = entry.UpdatedAt.Add(-3 * time.Hour)
	entry.ExpiresAt = entry.ExpiresAt.Add(-3 * time.Hour)

	assert.NoError(t, store.Upsert(ctx, entry))

	_, err := store.Get(ctx, "u1")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestSqliteStoreUpsertReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := cache.NewEntry("u1", []match.Enriched{
		{Profile: &profile.Profile{ID: "a"}, Score: 50},
	}, cache.Metadata{CandidatesAnalyzed: 4}, time.Hour)
	assert.NoError(t, store.Upsert(ctx, first))

	second := cache.NewEntry("u1", nil, cache.Metadata{CandidatesAnalyzed: 7}, time.Hour)
	assert.NoError(t, store.Upsert(ctx, second))

	loaded, err := store.Get(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, 0, loaded.TotalMatches)
	assert.Equal(t, 7, loaded.Metadata.CandidatesAnalyzed)
	assert.Empty(t, loaded.Matches)
}

func TestSqliteStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := cache.NewEntry("u1", nil, cache.Metadata{}, time.Hour)
	assert.NoError(t, store.Upsert(ctx, entry))
	assert.NoError(t, store.Delete(ctx, "u1"))

	_, err := store.Get(ctx, "u1")
	assert.ErrorIs(t, err, cache.ErrMiss)
}
