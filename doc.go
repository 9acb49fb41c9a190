// Promatch - Compatibility Matching for Professional Networks
//
// Promatch computes ranked, explained connection recommendations between
// professional profiles. It combines a deterministic rule-based scorer with an
// agentic pipeline in which a tool-calling language model searches, inspects
// and judges candidates before emitting structured match recommendations.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/smallnest/promatch
//
// Deterministic scoring needs no model:
//
//	package main
//
//	import (
//		"fmt"
//
//		"github.com/smallnest/promatch/profile"
//		"github.com/smallnest/promatch/scoring"
//	)
//
//	func main() {
//		requester := &profile.Profile{
//			ID: "u1", Name: "Ada",
//			Location:  "Berlin, Germany",
//			Interests: []string{"AI", "Open Source"},
//		}
//		candidate := &profile.Profile{
//			ID: "u2", Name: "Grace",
//			Location:  "Berlin, Germany",
//			Interests: []string{"AI"},
//		}
//
//		score, reasons := scoring.Score(requester, candidate)
//		fmt.Println(score, reasons)
//	}
//
// The agentic pipeline wires a model, tools, extraction, enrichment and a
// cache behind a single call:
//
//	llm, _ := openai.New()
//	profiles := profile.NewMemoryStore()
//	e := engine.New(
//		profiles,
//		agent.New(llm, []tools.Tool{
//			tool.NewSearchCandidates(idx, profiles),
//			tool.NewFetchProfile(profiles),
//			tool.NewJudgeCompatibility(llm, profiles),
//		}),
//		extract.New(),
//		enrich.New(profiles),
//		cache.NewMemoryStore(),
//	)
//	resp, _ := e.FindMatches(ctx, engine.Request{OwnerID: "u1"})
//
// # Key Features
//
//   - Rule-Based Scoring: weighted interest, location, skill, industry and
//     preference-alignment dimensions with human-readable reasons
//   - Agent Orchestration: bounded tool-calling loop with concurrent tool
//     execution and graceful budget exhaustion
//   - Robust Extraction: layered JSON recovery from free-form model output
//   - Enrichment: extracted matches are joined to authoritative profile
//     records, never trusted as-is
//   - Caching: in-memory, Redis and SQLite match caches with distinct
//     freshness and expiry windows
//   - Storage: in-memory and PostgreSQL profile stores
//
// # Packages
//
//   - profile: profile model and stores
//   - scoring: deterministic compatibility scorer
//   - index: embedding-backed similarity index
//   - tool: agent tools (search, fetch, judge)
//   - agent: tool-calling orchestration loop
//   - extract: structured-output recovery
//   - enrich: stub-to-profile joining
//   - cache: match result caches
//   - engine: request validation, pipeline wiring, batch precompute
//   - report: Markdown and sanitized HTML rendering
package promatch
