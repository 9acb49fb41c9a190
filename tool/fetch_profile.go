package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallnest/promatch/profile"
)

// FetchProfile is a tool that looks up a single profile by identifier.
type FetchProfile struct {
	profiles profile.Store
	timeout  time.Duration
}

// FetchOption configures a FetchProfile tool.
type FetchOption func(*FetchProfile)

// WithFetchTimeout bounds each store call.
func WithFetchTimeout(d time.Duration) FetchOption {
	return func(f *FetchProfile) {
		f.timeout = d
	}
}

// NewFetchProfile creates a new profile lookup tool.
func NewFetchProfile(profiles profile.Store, opts ...FetchOption) *FetchProfile {
	f := &FetchProfile{
		profiles: profiles,
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the name of the tool.
func (f *FetchProfile) Name() string {
	return "fetch_profile"
}

// Description returns the description of the tool.
func (f *FetchProfile) Description() string {
	return "Fetch the full profile record for a candidate. " +
		`Input is either the profile id as plain text or {"id": string}. ` +
		"Returns the profile as JSON, or a not-found message."
}

// Call executes the lookup. A missing profile is reported as text so the
// reasoning step can react to it; it is not a tool error.
func (f *FetchProfile) Call(ctx context.Context, input string) (string, error) {
	id := parseID(input)
	if id == "" {
		return "", fmt.Errorf("profile id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	p, err := f.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return fmt.Sprintf("no profile found with id %q", id), nil
		}
		return "", fmt.Errorf("profile lookup failed: %w", err)
	}

	out, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}
	return string(out), nil
}

func parseID(input string) string {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(input), &req); err == nil && req.ID != "" {
		return req.ID
	}
	return strings.Trim(strings.TrimSpace(input), `"`)
}
