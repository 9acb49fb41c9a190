package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/promatch/log"
	"github.com/smallnest/promatch/match"
	"github.com/smallnest/promatch/profile"
)

// Verdict is the structured output of a pairwise compatibility judgement.
type Verdict struct {
	Score                  int      `json:"compatibilityScore"`
	Reasoning              string   `json:"reasoning"`
	SharedInterests        []string `json:"sharedInterests"`
	ComplementarySkills    []string `json:"complementarySkills"`
	MatchTypes             []string `json:"matchTypes"`
	RecommendationStrength string   `json:"recommendationStrength"`
}

// JudgeCompatibility is a tool that asks the reasoning model to judge the
// compatibility of a single requester/candidate pair.
type JudgeCompatibility struct {
	model    llms.Model
	profiles profile.Store
	logger   log.Logger
	timeout  time.Duration
}

// JudgeOption configures a JudgeCompatibility tool.
type JudgeOption func(*JudgeCompatibility)

// WithJudgeTimeout bounds each model call.
func WithJudgeTimeout(d time.Duration) JudgeOption {
	return func(j *JudgeCompatibility) {
		j.timeout = d
	}
}

// WithJudgeLogger sets the logger.
func WithJudgeLogger(logger log.Logger) JudgeOption {
	return func(j *JudgeCompatibility) {
		j.logger = logger
	}
}

// NewJudgeCompatibility creates a new pairwise judge tool.
func NewJudgeCompatibility(model llms.Model, profiles profile.Store, opts ...JudgeOption) *JudgeCompatibility {
	j := &JudgeCompatibility{
		model:    model,
		profiles: profiles,
		logger:   log.GetDefaultLogger(),
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Name returns the name of the tool.
func (j *JudgeCompatibility) Name() string {
	return "judge_compatibility"
}

// Description returns the description of the tool.
func (j *JudgeCompatibility) Description() string {
	return "Judge the professional compatibility of a requester/candidate pair. " +
		`Input is a JSON object: {"requesterId": string, "candidateId": string, "context": string (optional)}. ` +
		"Returns a JSON verdict with compatibilityScore, reasoning, sharedInterests, " +
		"complementarySkills, matchTypes and recommendationStrength."
}

type judgeInput struct {
	RequesterID string `json:"requesterId"`
	CandidateID string `json:"candidateId"`
	Context     string `json:"context"`
}

// Call resolves both profiles and delegates to Judge.
func (j *JudgeCompatibility) Call(ctx context.Context, input string) (string, error) {
	var req judgeInput
	if err := json.Unmarshal([]byte(input), &req); err != nil {
		return "", fmt.Errorf("invalid judge input: %w", err)
	}
	if req.RequesterID == "" || req.CandidateID == "" {
		return "", fmt.Errorf("requesterId and candidateId are required")
	}

	requester, err := j.profiles.GetByID(ctx, req.RequesterID)
	if err != nil {
		return "", fmt.Errorf("requester lookup failed: %w", err)
	}
	candidate, err := j.profiles.GetByID(ctx, req.CandidateID)
	if err != nil {
		return "", fmt.Errorf("candidate lookup failed: %w", err)
	}

	verdict := j.Judge(ctx, requester, candidate, req.Context)

	out, err := json.Marshal(verdict)
	if err != nil {
		return "", fmt.Errorf("failed to encode verdict: %w", err)
	}
	return string(out), nil
}

// Judge asks the model for a structured compatibility verdict. Malformed model
// output never surfaces as an error: the judge degrades to a conservative
// default verdict instead.
func (j *JudgeCompatibility) Judge(ctx context.Context, requester, candidate *profile.Profile, extra string) *Verdict {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	prompt := judgePrompt(requester, candidate, extra)
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := j.model.GenerateContent(ctx, messages)
	if err != nil {
		j.logger.Warn("judge_compatibility: model call failed: %v", err)
		return defaultVerdict()
	}
	if len(resp.Choices) == 0 {
		j.logger.Warn("judge_compatibility: model returned no choices")
		return defaultVerdict()
	}

	verdict, ok := parseVerdict(resp.Choices[0].Content)
	if !ok {
		j.logger.Warn("judge_compatibility: unparseable model output, using default verdict")
		return defaultVerdict()
	}
	return verdict
}

func judgePrompt(requester, candidate *profile.Profile, extra string) string {
	var sb strings.Builder
	sb.WriteString("Judge the professional compatibility of the two people below on a 0-100 scale.\n\n")
	sb.WriteString("Requester: " + profile.SummaryText(requester) + "\n")
	sb.WriteString("Candidate: " + profile.SummaryText(candidate) + "\n")
	if extra != "" {
		sb.WriteString("Additional context: " + extra + "\n")
	}
	sb.WriteString("\nWeigh preference alignment most (40%), then location (20%), shared interests (20%), ")
	sb.WriteString("complementary skills (10%) and company/industry fit (10%).\n")
	sb.WriteString("Respond with ONLY a JSON object with keys: compatibilityScore (integer 0-100), ")
	sb.WriteString("reasoning (string), sharedInterests (array of strings), complementarySkills (array of strings), ")
	sb.WriteString("matchTypes (1-3 of: Mentor, Mentee, Collaborator, Investor, Investment Opportunity, ")
	sb.WriteString("Hiring Manager, Potential Hire, Discussion Partner, Professional), ")
	sb.WriteString(`recommendationStrength ("high", "medium" or "low").`)
	return sb.String()
}

// parseVerdict extracts a JSON object from the model output, tolerating
// surrounding prose and code fences.
func parseVerdict(text string) (*Verdict, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var v Verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return nil, false
	}

	v.Score = match.ClampScore(v.Score)
	v.MatchTypes = match.NormalizeTypes(v.MatchTypes)
	v.RecommendationStrength = match.StrengthForScore(v.Score)
	return &v, true
}

func defaultVerdict() *Verdict {
	return &Verdict{
		Score:                  50,
		Reasoning:              "Potential professional connection worth exploring.",
		MatchTypes:             []string{match.TypeProfessional},
		RecommendationStrength: match.StrengthMedium,
	}
}
