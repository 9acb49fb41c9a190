package cache

import (
	"context"
	"errors"
	"time"

	"github.com/smallnest/promatch/match"
)

// ErrMiss is returned by Get when no valid entry exists for the owner, whether
// because nothing was written or because the entry has expired.
var ErrMiss = errors.New("cache miss")

// FormatVersion is stamped into every entry's metadata so readers can detect
// entries written by an incompatible engine version.
const FormatVersion = 1

// DefaultTTL is how long a computed match list stays valid.
const DefaultTTL = 24 * time.Hour

// DefaultFreshness is the window after which a technically valid entry should
// nonetheless trigger recomputation. It is deliberately shorter than the TTL.
const DefaultFreshness = 6 * time.Hour

// Metadata describes how an entry was computed.
type Metadata struct {
	ProcessingTimeMs   int64 `json:"processingTimeMs"`
	CandidatesAnalyzed int   `json:"candidatesAnalyzed"`
	FormatVersion      int   `json:"formatVersion"`
}

// Entry is one owner's cached match list. Entries are only ever replaced
// wholesale, never mutated in place.
type Entry struct {
	OwnerID      string           `json:"ownerId"`
	Matches      []match.Enriched `json:"matches"`
	TotalMatches int              `json:"totalMatches"`
	Metadata     Metadata         `json:"metadata"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	ExpiresAt    time.Time        `json:"expiresAt"`
}

// NewEntry builds a cache entry for the given owner with fresh timestamps.
func NewEntry(ownerID string, matches []match.Enriched, meta Metadata, ttl time.Duration) *Entry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	meta.FormatVersion = FormatVersion
	now := time.Now()
	return &Entry{
		OwnerID:      ownerID,
		Matches:      matches,
		TotalMatches: len(matches),
		Metadata:     meta,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

// Expired reports whether the entry's hard expiry has passed.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Fresh reports whether the entry is recent enough to be served without
// recomputation.
func (e *Entry) Fresh(window time.Duration, now time.Time) bool {
	if window <= 0 {
		window = DefaultFreshness
	}
	return now.Sub(e.UpdatedAt) < window
}

// Age returns how long ago the entry was last updated.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.UpdatedAt)
}

// Store is the match cache contract. At most one entry exists per owner, and
// Upsert is an atomic whole-entry replace.
type Store interface {
	// Get returns the entry for the owner, or ErrMiss.
	Get(ctx context.Context, ownerID string) (*Entry, error)

	// Upsert inserts or wholly replaces the owner's entry.
	Upsert(ctx context.Context, entry *Entry) error

	// Delete removes the owner's entry if present.
	Delete(ctx context.Context, ownerID string) error
}
