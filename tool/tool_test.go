package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/promatch/index"
	"github.com/smallnest/promatch/profile"
)

// MockLLM implements llms.Model for testing
type MockLLM struct {
	responses []llms.ContentResponse
	callCount int
	err       error
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.callCount >= len(m.responses) {
		return &llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{Content: "No more responses"},
			},
		}, nil
	}
	resp := m.responses[m.callCount]
	m.callCount++
	return &resp, nil
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

// fixedIndex returns a canned hit list
type fixedIndex struct {
	hits []index.Hit
	err  error
}

func (f *fixedIndex) Search(ctx context.Context, query string, k int) ([]index.Hit, error) {
	return f.hits, f.err
}

func testStore() *profile.MemoryStore {
	store := profile.NewMemoryStore()
	store.Put(&profile.Profile{ID: "u1", Name: "Ada", Title: "Engineer", Company: "Acme Tech", Location: "Austin, TX"})
	store.Put(&profile.Profile{ID: "u2", Name: "Grace", Title: "Designer", Company: "Fjord Design", Location: "Austin, TX"})
	store.Put(&profile.Profile{ID: "u3", Name: "Linus", Title: "Founder", Company: "Kernel Labs", Location: "Portland, OR"})
	return store
}

func TestSearchCandidates(t *testing.T) {
	idx := &fixedIndex{hits: []index.Hit{
		{ID: "u2", Score: 0.9},
		{ID: "u3", Score: 0.6},
		{ID: "u1", Score: 0.1}, // below the floor
	}}
	search := NewSearchCandidates(idx, testStore())

	out, err := search.Call(context.Background(), `{"query":"design collaborator"}`)
	assert.NoError(t, err)

	var results []searchResult
	assert.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Len(t, results, 2)
	assert.Equal(t, "u2", results[0].CandidateID)
	assert.Equal(t, "u3", results[1].CandidateID)
	assert.Contains(t, results[0].ProfileSummary, "Grace")
}

func TestSearchCandidatesExcludesRequester(t *testing.T) {
	idx := &fixedIndex{hits: []index.Hit{
		{ID: "u1", Score: 0.9},
		{ID: "u2", Score: 0.8},
	}}
	search := NewSearchCandidates(idx, testStore())

	out, err := search.Call(context.Background(), `{"query":"anyone","excludeId":"u1"}`)
	assert.NoError(t, err)

	var results []searchResult
	assert.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Len(t, results, 1)
	assert.Equal(t, "u2", results[0].CandidateID)
}

func TestSearchCandidatesFallbackOnZeroHits(t *testing.T) {
	search := NewSearchCandidates(&fixedIndex{}, testStore())

	out, err := search.Call(context.Background(), `{"query":"nothing indexed","excludeId":"u1"}`)
	assert.NoError(t, err)

	var results []searchResult
	assert.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "u1", r.CandidateID)
		assert.Equal(t, FallbackSimilarity, r.Similarity)
	}
}

func TestSearchCandidatesPlainTextQuery(t *testing.T) {
	idx := &fixedIndex{hits: []index.Hit{{ID: "u2", Score: 0.9}}}
	search := NewSearchCandidates(idx, testStore())

	out, err := search.Call(context.Background(), "design collaborator")
	assert.NoError(t, err)
	assert.Contains(t, out, "u2")
}

func TestFetchProfile(t *testing.T) {
	fetch := NewFetchProfile(testStore())

	out, err := fetch.Call(context.Background(), `{"id":"u1"}`)
	assert.NoError(t, err)

	var p profile.Profile
	assert.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "Ada", p.Name)

	// Plain-text id works too
	out, err = fetch.Call(context.Background(), "u2")
	assert.NoError(t, err)
	assert.Contains(t, out, "Grace")
}

func TestFetchProfileNotFound(t *testing.T) {
	fetch := NewFetchProfile(testStore())

	out, err := fetch.Call(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Contains(t, out, "no profile found")
}

func TestJudgeCompatibility(t *testing.T) {
	mockLLM := &MockLLM{
		responses: []llms.ContentResponse{
			{
				Choices: []*llms.ContentChoice{
					{Content: "Here is my verdict:\n" +
						`{"compatibilityScore": 85, "reasoning": "Strong mutual fit", ` +
						`"sharedInterests": ["AI"], "complementarySkills": ["Design"], ` +
						`"matchTypes": ["Collaborator"], "recommendationStrength": "low"}`},
				},
			},
		},
	}
	judge := NewJudgeCompatibility(mockLLM, testStore())

	out, err := judge.Call(context.Background(), `{"requesterId":"u1","candidateId":"u2"}`)
	assert.NoError(t, err)

	var v Verdict
	assert.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, 85, v.Score)
	assert.Equal(t, "Strong mutual fit", v.Reasoning)
	assert.Equal(t, []string{"Collaborator"}, v.MatchTypes)
	// Strength is recomputed from the score, not trusted from the model
	assert.Equal(t, "high", v.RecommendationStrength)
}

func TestJudgeCompatibilityDefaultOnMalformedOutput(t *testing.T) {
	mockLLM := &MockLLM{
		responses: []llms.ContentResponse{
			{Choices: []*llms.ContentChoice{{Content: "I cannot produce JSON today."}}},
		},
	}
	judge := NewJudgeCompatibility(mockLLM, testStore())

	store := testStore()
	requester, _ := store.GetByID(context.Background(), "u1")
	candidate, _ := store.GetByID(context.Background(), "u2")

	v := judge.Judge(context.Background(), requester, candidate, "")
	assert.Equal(t, 50, v.Score)
	assert.Equal(t, "medium", v.RecommendationStrength)
	assert.NotEmpty(t, v.Reasoning)
}

func TestJudgeCompatibilityDefaultOnModelError(t *testing.T) {
	judge := NewJudgeCompatibility(&MockLLM{err: errors.New("upstream down")}, testStore())

	store := testStore()
	requester, _ := store.GetByID(context.Background(), "u1")
	candidate, _ := store.GetByID(context.Background(), "u2")

	v := judge.Judge(context.Background(), requester, candidate, "")
	assert.Equal(t, 50, v.Score)
	assert.Equal(t, "medium", v.RecommendationStrength)
}

func TestJudgeCompatibilityRequiresBothIDs(t *testing.T) {
	judge := NewJudgeCompatibility(&MockLLM{}, testStore())

	_, err := judge.Call(context.Background(), `{"requesterId":"u1"}`)
	assert.Error(t, err)
}
