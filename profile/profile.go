package profile

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a profile does not exist in the store.
var ErrNotFound = errors.New("profile not found")

// Preferences are the connection intents a member opted into.
type Preferences struct {
	Mentor      bool `json:"mentor"`
	Invest      bool `json:"invest"`
	Discuss     bool `json:"discuss"`
	Collaborate bool `json:"collaborate"`
	Hire        bool `json:"hire"`
}

// Profile is a read-only snapshot of a member record. The authoritative copy
// lives in the profile store; the engine never mutates it.
type Profile struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Company     string      `json:"company"`
	Location    string      `json:"location"`
	Bio         string      `json:"bio"`
	Skills      []string    `json:"skills"`
	Interests   []string    `json:"interests"`
	Preferences Preferences `json:"preferences"`
	Connections int         `json:"connections"`
}

// Store is the read contract the engine requires from the profile backend.
type Store interface {
	// GetByID returns a single profile or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Profile, error)

	// GetManyByID returns profiles for the given ids in one round trip.
	// Missing ids are silently omitted, never an error.
	GetManyByID(ctx context.Context, ids []string) ([]*Profile, error)

	// ListAll returns every profile in the store.
	ListAll(ctx context.Context) ([]*Profile, error)
}
