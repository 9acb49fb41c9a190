package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/smallnest/promatch/log"
	"github.com/smallnest/promatch/match"
)

// Result is the outcome of one extraction: either a parsed stub list or empty.
// There is no error case by design; unparseable text yields Empty.
type Result struct {
	Parsed bool
	Stubs  []match.Stub
	// Strategy names the cascade step that produced the stubs, for diagnosis.
	Strategy string
}

// Empty reports whether extraction produced nothing.
func (r Result) Empty() bool {
	return !r.Parsed || len(r.Stubs) == 0
}

// Strategy is one parsing attempt. It returns the candidate JSON array text,
// or "" if the strategy does not apply to this input.
type Strategy struct {
	Name  string
	Apply func(text string) []string
}

// Extractor turns free-form model output into match stubs by trying an ordered
// list of strategies; the first one that yields a valid stub list wins.
type Extractor struct {
	strategies []Strategy
	logger     log.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithStrategies replaces the default strategy cascade.
func WithStrategies(strategies []Strategy) Option {
	return func(e *Extractor) {
		e.strategies = strategies
	}
}

// New creates an Extractor with the default strategy cascade.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		strategies: DefaultStrategies(),
		logger:     log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultStrategies is the standard cascade, ordered from strictest to most
// forgiving.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "whole_text", Apply: wholeText},
		{Name: "fenced_block", Apply: fencedBlocks},
		{Name: "labeled_or_trailing_array", Apply: labeledOrTrailingArray},
		{Name: "bracket_strip", Apply: bracketStrip},
		{Name: "object_salvage", Apply: objectSalvage},
	}
}

// Extract runs the cascade over the raw text. It never fails: if every
// strategy comes up empty the result is Empty, not an error.
func (e *Extractor) Extract(rawText string) Result {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return Result{}
	}

	for _, strategy := range e.strategies {
		for _, candidate := range strategy.Apply(text) {
			stubs, ok := parseStubArray(candidate)
			if !ok {
				continue
			}
			e.logger.Debug("extractor: strategy %s matched %d stubs", strategy.Name, len(stubs))
			return Result{Parsed: true, Stubs: stubs, Strategy: strategy.Name}
		}
	}

	e.logger.Warn("extractor: all strategies exhausted, returning empty result")
	return Result{}
}

// wholeText treats the entire input as a JSON array.
func wholeText(text string) []string {
	if strings.HasPrefix(text, "[") {
		return []string{text}
	}
	return nil
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// fencedBlocks returns the contents of every fenced code block.
func fencedBlocks(text string) []string {
	var candidates []string
	for _, m := range fencedBlockRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	return candidates
}

var labeledArrayRe = regexp.MustCompile(`(?si)(?:matches|results|recommendations)"?\s*[:=]\s*(\[.*\])`)

// labeledOrTrailingArray looks for an array following a labeled field, or an
// array of objects anchored near the end of the text.
func labeledOrTrailingArray(text string) []string {
	var candidates []string
	if m := labeledArrayRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	if start := strings.LastIndex(text, "[{"); start >= 0 {
		if end := strings.LastIndex(text, "}]"); end > start {
			candidates = append(candidates, text[start:end+2])
		}
	}
	return candidates
}

// bracketStrip strips everything before the first '[' and after the last ']'.
func bracketStrip(text string) []string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}
	return []string{text[start : end+1]}
}

var objectRe = regexp.MustCompile(`\{[^{}]*\}`)
var idFieldRe = regexp.MustCompile(`"(?:user_?id|candidate_?id|id)"\s*:`)

// objectSalvage extracts individual {...} objects that contain an
// identifier-shaped field and reassembles them into an array, discarding
// unparseable ones.
func objectSalvage(text string) []string {
	var objects []string
	for _, obj := range objectRe.FindAllString(text, -1) {
		if !idFieldRe.MatchString(obj) {
			continue
		}
		var probe map[string]any
		if err := json.Unmarshal([]byte(obj), &probe); err != nil {
			continue
		}
		objects = append(objects, obj)
	}
	if len(objects) == 0 {
		return nil
	}
	return []string{"[" + strings.Join(objects, ",") + "]"}
}

// parseStubArray parses candidate text as a JSON array of stubs and validates
// the result: it must be an array, and at least one element must carry a
// plausible candidate identifier. This rejects structurally valid but
// semantically empty arrays that co-occur with narrative text.
func parseStubArray(text string) ([]match.Stub, bool) {
	var raw []map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, false
	}

	stubs := make([]match.Stub, 0, len(raw))
	for _, obj := range raw {
		stub, ok := stubFromObject(obj)
		if !ok {
			continue
		}
		stubs = append(stubs, stub)
	}
	if len(stubs) == 0 {
		return nil, false
	}
	return stubs, true
}

// idKeys are the accepted spellings of the candidate identifier field.
var idKeys = []string{"user_id", "userId", "candidateId", "candidate_id", "id"}

func stubFromObject(obj map[string]any) (match.Stub, bool) {
	var stub match.Stub

	for _, key := range idKeys {
		if id, ok := obj[key].(string); ok && id != "" {
			stub.CandidateID = id
			break
		}
	}
	if stub.CandidateID == "" {
		return match.Stub{}, false
	}

	stub.Score = match.ClampScore(numberField(obj, "compatibilityScore", "score"))
	stub.Reasoning, _ = stringField(obj, "reasoning", "reason")
	stub.SharedInterests = stringSliceField(obj, "sharedInterests", "shared_interests")
	stub.ComplementarySkills = stringSliceField(obj, "complementarySkills", "complementary_skills")
	stub.MatchTypes = match.NormalizeTypes(stringSliceField(obj, "matchTypes", "match_types"))
	stub.RecommendationStrength = match.StrengthForScore(stub.Score)
	return stub, true
}

func numberField(obj map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

func stringField(obj map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok {
			return s, true
		}
	}
	return "", false
}

func stringSliceField(obj map[string]any, keys ...string) []string {
	for _, key := range keys {
		items, ok := obj[key].([]any)
		if !ok {
			continue
		}
		var result []string
		for _, item := range items {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}
