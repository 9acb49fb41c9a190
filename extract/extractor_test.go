package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/promatch/match"
)

func TestExtractWholeText(t *testing.T) {
	e := New()

	res := e.Extract(`[{"user_id":"u1","compatibilityScore":75,"reasoning":"good fit"}]`)
	assert.False(t, res.Empty())
	assert.Equal(t, "whole_text", res.Strategy)
	assert.Len(t, res.Stubs, 1)
	assert.Equal(t, "u1", res.Stubs[0].CandidateID)
	assert.Equal(t, 75, res.Stubs[0].Score)
	assert.Equal(t, "good fit", res.Stubs[0].Reasoning)
}

func TestExtractRoundTrip(t *testing.T) {
	original := []match.Stub{
		{
			CandidateID:            "u1",
			Score:                  85,
			Reasoning:              "strong alignment",
			SharedInterests:        []string{"AI", "Music"},
			ComplementarySkills:    []string{"Design"},
			MatchTypes:             []string{match.TypeCollaborator},
			RecommendationStrength: match.StrengthHigh,
		},
		{
			CandidateID:            "u2",
			Score:                  62,
			Reasoning:              "same region",
			MatchTypes:             []string{match.TypeDiscussionPartner},
			RecommendationStrength: match.StrengthMedium,
		},
	}

	encoded, err := json.Marshal(original)
	assert.NoError(t, err)

	res := New().Extract(string(encoded))
	assert.False(t, res.Empty())
	assert.Equal(t, original, res.Stubs)
}

func TestExtractFencedBlock(t *testing.T) {
	e := New()

	raw := "Here are matches:\n```json\n[{\"user_id\":\"u1\",\"compatibilityScore\":82}]\n```"
	res := e.Extract(raw)
	assert.False(t, res.Empty())
	assert.Equal(t, "fenced_block", res.Strategy)
	assert.Len(t, res.Stubs, 1)
	assert.Equal(t, "u1", res.Stubs[0].CandidateID)
	assert.Equal(t, 82, res.Stubs[0].Score)
	assert.Equal(t, match.StrengthHigh, res.Stubs[0].RecommendationStrength)
}

func TestExtractLabeledArray(t *testing.T) {
	e := New()

	raw := `I found two people. matches: [{"user_id":"u1","compatibilityScore":70},{"user_id":"u2","compatibilityScore":55}] Hope this helps!`
	res := e.Extract(raw)
	assert.False(t, res.Empty())
	assert.Len(t, res.Stubs, 2)
}

func TestExtractTrailingArray(t *testing.T) {
	e := New()

	raw := "After careful analysis of all the candidates, here is my final answer.\n\n" +
		`[{"user_id":"u3","compatibilityScore":64,"reasoning":"shared interests"}]`
	res := e.Extract(raw)
	assert.False(t, res.Empty())
	assert.Equal(t, "u3", res.Stubs[0].CandidateID)
}

func TestExtractObjectSalvage(t *testing.T) {
	e := New()

	// Broken array syntax: individual objects are salvaged independently
	raw := `Results: {"user_id":"u1","compatibilityScore":77} and also ` +
		`{"user_id":"u2","compatibilityScore":61} plus {"noise": true} and {broken`
	res := e.Extract(raw)
	assert.False(t, res.Empty())
	assert.Equal(t, "object_salvage", res.Strategy)
	assert.Len(t, res.Stubs, 2)
	assert.Equal(t, "u1", res.Stubs[0].CandidateID)
	assert.Equal(t, "u2", res.Stubs[1].CandidateID)
}

func TestExtractNoJSONAtAll(t *testing.T) {
	e := New()

	assert.NotPanics(t, func() {
		res := e.Extract("no json here at all")
		assert.True(t, res.Empty())
		assert.Nil(t, res.Stubs)
	})
}

func TestExtractEmptyInput(t *testing.T) {
	assert.True(t, New().Extract("").Empty())
	assert.True(t, New().Extract("   \n ").Empty())
}

func TestExtractRejectsSemanticallyEmptyArray(t *testing.T) {
	e := New()

	// A valid JSON array without identifiers must not be accepted even though
	// it parses, so later strategies get their chance.
	res := e.Extract(`Scores were [1, 2, 3] overall. {"user_id":"u9","compatibilityScore":50}`)
	assert.False(t, res.Empty())
	assert.Equal(t, "object_salvage", res.Strategy)
	assert.Equal(t, "u9", res.Stubs[0].CandidateID)
}

func TestExtractAlternateIdentifierKeys(t *testing.T) {
	e := New()

	res := e.Extract(`[{"candidateId":"c1","score":44}]`)
	assert.False(t, res.Empty())
	assert.Equal(t, "c1", res.Stubs[0].CandidateID)
	assert.Equal(t, 44, res.Stubs[0].Score)
}

func TestExtractClampsAndNormalizes(t *testing.T) {
	e := New()

	res := e.Extract(`[{"user_id":"u1","compatibilityScore":250,"matchTypes":["Wizard","Mentor"]}]`)
	assert.False(t, res.Empty())
	assert.Equal(t, 100, res.Stubs[0].Score)
	assert.Equal(t, []string{match.TypeMentor}, res.Stubs[0].MatchTypes)
	assert.Equal(t, match.StrengthHigh, res.Stubs[0].RecommendationStrength)
}

func TestStrategiesIndividually(t *testing.T) {
	assert.Equal(t, []string{`[{"a":1}]`}, wholeText(`[{"a":1}]`))
	assert.Nil(t, wholeText(`prose first [{"a":1}]`))

	blocks := fencedBlocks("text\n```json\n[1]\n```\nmore\n```\n[2]\n```")
	assert.Equal(t, []string{"[1]", "[2]"}, blocks)

	assert.Equal(t, []string{`[{"x":1}]`}, bracketStrip(`before [{"x":1}] after`))
	assert.Nil(t, bracketStrip("no brackets"))

	assert.Nil(t, objectSalvage(`{"no_identifier": 1}`))
}
