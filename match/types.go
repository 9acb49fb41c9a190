package match

import "github.com/smallnest/promatch/profile"

// Relationship types the reasoning capability may assign to a match. The
// vocabulary is fixed; anything outside it is dropped during normalization.
const (
	TypeMentor                = "Mentor"
	TypeMentee                = "Mentee"
	TypeCollaborator          = "Collaborator"
	TypeInvestor              = "Investor"
	TypeInvestmentOpportunity = "Investment Opportunity"
	TypeHiringManager         = "Hiring Manager"
	TypePotentialHire         = "Potential Hire"
	TypeDiscussionPartner     = "Discussion Partner"
	TypeProfessional          = "Professional"
)

// Recommendation strength bands derived from the compatibility score.
const (
	StrengthHigh   = "high"
	StrengthMedium = "medium"
	StrengthLow    = "low"
)

// knownTypes is the closed relationship-type vocabulary.
var knownTypes = map[string]bool{
	TypeMentor:                true,
	TypeMentee:                true,
	TypeCollaborator:          true,
	TypeInvestor:              true,
	TypeInvestmentOpportunity: true,
	TypeHiringManager:         true,
	TypePotentialHire:         true,
	TypeDiscussionPartner:     true,
	TypeProfessional:          true,
}

// Stub is an unvalidated candidate match produced by the response extractor.
// It only becomes externally visible after enrichment against the profile store.
type Stub struct {
	CandidateID            string   `json:"user_id"`
	Score                  int      `json:"compatibilityScore"`
	Reasoning              string   `json:"reasoning,omitempty"`
	SharedInterests        []string `json:"sharedInterests,omitempty"`
	ComplementarySkills    []string `json:"complementarySkills,omitempty"`
	MatchTypes             []string `json:"matchTypes,omitempty"`
	RecommendationStrength string   `json:"recommendationStrength,omitempty"`
}

// Enriched is a stub joined to an authoritative profile snapshot. The strength
// band is always recomputed from the score, never trusted from the stub.
type Enriched struct {
	Profile                *profile.Profile `json:"profile"`
	Score                  int              `json:"compatibilityScore"`
	Reasoning              string           `json:"reasoning,omitempty"`
	SharedInterests        []string         `json:"sharedInterests,omitempty"`
	ComplementarySkills    []string         `json:"complementarySkills,omitempty"`
	MatchTypes             []string         `json:"matchTypes,omitempty"`
	RecommendationStrength string           `json:"recommendationStrength"`
}

// StrengthForScore maps a 0-100 compatibility score to its strength band.
func StrengthForScore(score int) string {
	switch {
	case score >= 80:
		return StrengthHigh
	case score >= 60:
		return StrengthMedium
	default:
		return StrengthLow
	}
}

// NormalizeTypes filters unknown relationship types and caps the list at three.
// An empty result falls back to the generic Professional tag.
func NormalizeTypes(types []string) []string {
	var normalized []string
	for _, t := range types {
		if knownTypes[t] {
			normalized = append(normalized, t)
			if len(normalized) == 3 {
				break
			}
		}
	}
	if len(normalized) == 0 {
		return []string{TypeProfessional}
	}
	return normalized
}

// ClampScore bounds a score to the valid 0-100 range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
