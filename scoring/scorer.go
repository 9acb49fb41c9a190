package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/smallnest/promatch/profile"
)

// Sub-score weights. They must sum to 1.0.
const (
	weightPreferences = 0.40
	weightLocation    = 0.20
	weightInterests   = 0.20
	weightSkills      = 0.10
	weightCompany     = 0.10
)

// MinScore is the cutoff for the deterministic path: candidates scoring at or
// below it are excluded from results.
const MinScore = 30

// neutralScore is the residual sub-score when a dimension carries no signal.
// / It is never zero: a virtual connection always has some value.
const neutralScore = 20

// Match is the result of scoring one candidate against a requester.
type Match struct {
	Profile *profile.Profile `json:"profile"`
	Score   int              `json:"score"`
	Reasons []string         `json:"reasons"`
}

// Score computes the weighted compatibility between a requester and a
// candidate. It is a pure function: no I/O, deterministic for a given input.
// The returned score is always within [0, 100].
func Score(requester, candidate *profile.Profile) (int, []string) {
	var reasons []string

	prefScore, prefReasons := scorePreferences(requester.Preferences, candidate.Preferences)
	reasons = append(reasons, prefReasons...)

	locScore, locReason := scoreLocation(requester.Location, candidate.Location)
	if locReason != "" {
		reasons = append(reasons, locReason)
	}

	intScore, intReason := scoreInterests(requester.Interests, candidate.Interests)
	if intReason != "" {
		reasons = append(reasons, intReason)
	}

	skillScore, skillReason := scoreSkills(requester.Skills, candidate.Skills)
	if skillReason != "" {
		reasons = append(reasons, skillReason)
	}

	compScore, compReason := scoreCompany(requester.Company, candidate.Company)
	if compReason != "" {
		reasons = append(reasons, compReason)
	}

	total := weightPreferences*float64(prefScore) +
		weightLocation*float64(locScore) +
		weightInterests*float64(intScore) +
		weightSkills*float64(skillScore) +
		weightCompany*float64(compScore)

	return int(math.Round(total)), reasons
}

// ScoreAll scores every candidate against the requester and returns the
// surviving matches sorted by score descending. Ties keep input order.
// Self-pairs and candidates scoring at or below MinScore are excluded.
func ScoreAll(requester *profile.Profile, candidates []*profile.Profile) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == requester.ID {
			continue
		}
		score, reasons := Score(requester, candidate)
		if score <= MinScore {
			continue
		}
		matches = append(matches, Match{
			Profile: candidate,
			Score:   score,
			Reasons: reasons,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// scorePreferences awards points for each aligned connection intent. Asymmetric
// intents (mentoring, investing, hiring) score in both directions; discussion
// and collaboration must be mutual.
func scorePreferences(a, b profile.Preferences) (int, []string) {
	points := 0
	var reasons []string

	if a.Mentor && !b.Mentor {
		points += 25
		reasons = append(reasons, "candidate can mentor you")
	}
	if b.Mentor && !a.Mentor {
		points += 25
		reasons = append(reasons, "you can mentor the candidate")
	}
	if a.Invest && !b.Invest {
		points += 20
		reasons = append(reasons, "candidate may be an investment contact")
	}
	if b.Invest && !a.Invest {
		points += 20
		reasons = append(reasons, "candidate is looking for investors")
	}
	if a.Collaborate && b.Collaborate {
		points += 20
		reasons = append(reasons, "both want to collaborate")
	}
	if a.Discuss && b.Discuss {
		points += 10
		reasons = append(reasons, "both open to discussing ideas")
	}
	if a.Hire && !b.Hire {
		points += 15
		reasons = append(reasons, "candidate may be open to opportunities")
	}
	if b.Hire && !a.Hire {
		points += 15
		reasons = append(reasons, "candidate is hiring")
	}

	if points > 100 {
		points = 100
	}
	return points, reasons
}

func scoreLocation(a, b string) (int, string) {
	locA := strings.TrimSpace(a)
	locB := strings.TrimSpace(b)

	if locA != "" && strings.EqualFold(locA, locB) {
		return 100, fmt.Sprintf("both located in %s", locA)
	}
	if regionOf(locA) != "" && strings.EqualFold(regionOf(locA), regionOf(locB)) {
		return 60, "same region"
	}
	return neutralScore, ""
}

// regionOf returns the trailing comma-separated token of a location string,
// typically the state or region.
func regionOf(location string) string {
	parts := strings.Split(location, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

func scoreInterests(a, b []string) (int, string) {
	if len(a) == 0 || len(b) == 0 {
		return neutralScore, ""
	}

	shared := intersect(a, b)
	if len(shared) == 0 {
		return 0, ""
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	score := math.Min(float64(len(shared))/float64(maxLen)*100, 100)

	display := shared
	if len(display) > 2 {
		display = display[:2]
	}
	return int(math.Round(score)), fmt.Sprintf("shared interests: %s", strings.Join(display, ", "))
}

func scoreSkills(requesterSkills, candidateSkills []string) (int, string) {
	if len(requesterSkills) == 0 || len(candidateSkills) == 0 {
		return neutralScore, ""
	}

	have := make(map[string]bool, len(requesterSkills))
	for _, s := range requesterSkills {
		have[strings.ToLower(s)] = true
	}

	var complementary []string
	for _, s := range candidateSkills {
		if !have[strings.ToLower(s)] {
			complementary = append(complementary, s)
		}
	}

	if len(complementary) == 0 {
		return 0, ""
	}

	score := math.Min(float64(len(complementary))/float64(len(candidateSkills))*100, 100)

	display := complementary
	if len(display) > 3 {
		display = display[:3]
	}
	return int(math.Round(score)), fmt.Sprintf("complementary skills: %s", strings.Join(display, ", "))
}

func scoreCompany(a, b string) (int, string) {
	compA := strings.TrimSpace(a)
	compB := strings.TrimSpace(b)

	if compA == "" || compB == "" {
		return neutralScore, ""
	}
	if strings.EqualFold(compA, compB) {
		return 100, fmt.Sprintf("both at %s", compA)
	}

	bucketA := industryBucket(compA)
	bucketB := industryBucket(compB)
	if bucketA != "other" && bucketA == bucketB {
		return 60, fmt.Sprintf("both in %s", bucketA)
	}
	return neutralScore, ""
}

// industryBuckets classifies a company name into a coarse industry by keyword.
// Order matters: the first matching bucket wins.
var industryBuckets = []struct {
	name     string
	keywords []string
}{
	{"tech", []string{"tech", "software", "labs", "data", "cloud", "digital", "ai"}},
	{"design", []string{"design", "studio", "creative"}},
	{"consulting", []string{"consult", "advisory", "partners"}},
	{"investment", []string{"capital", "ventures", "invest", "fund"}},
}

func industryBucket(company string) string {
	lower := strings.ToLower(company)
	for _, bucket := range industryBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				return bucket.name
			}
		}
	}
	return "other"
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, s := range b {
		set[strings.ToLower(s)] = true
	}

	var shared []string
	for _, s := range a {
		if set[strings.ToLower(s)] {
			shared = append(shared, s)
		}
	}
	return shared
}
