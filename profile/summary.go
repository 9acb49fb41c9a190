package profile

import (
	"fmt"
	"strings"
)

// SummaryText flattens a profile into a single text block. The result feeds the
// similarity index (as embedding input) and the reasoning prompts.
func SummaryText(p *Profile) string {
	var sb strings.Builder

	sb.WriteString(p.Name)
	if p.Title != "" {
		sb.WriteString(", " + p.Title)
	}
	if p.Company != "" {
		sb.WriteString(" at " + p.Company)
	}
	if p.Location != "" {
		sb.WriteString(" (" + p.Location + ")")
	}
	sb.WriteString(".")

	if p.Bio != "" {
		sb.WriteString(" " + p.Bio)
	}
	if len(p.Skills) > 0 {
		sb.WriteString(" Skills: " + strings.Join(p.Skills, ", ") + ".")
	}
	if len(p.Interests) > 0 {
		sb.WriteString(" Interests: " + strings.Join(p.Interests, ", ") + ".")
	}

	if goals := preferenceGoals(p.Preferences); len(goals) > 0 {
		sb.WriteString(" Looking to: " + strings.Join(goals, ", ") + ".")
	}

	return sb.String()
}

// ShortSummary is a one-line rendering used inside tool results, where token
// budget matters more than completeness.
func ShortSummary(p *Profile) string {
	parts := []string{p.Name}
	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if p.Company != "" {
		parts = append(parts, p.Company)
	}
	if p.Location != "" {
		parts = append(parts, p.Location)
	}
	summary := strings.Join(parts, " | ")
	if len(p.Skills) > 0 {
		summary += fmt.Sprintf(" | skills: %s", strings.Join(p.Skills, ", "))
	}
	return summary
}

func preferenceGoals(prefs Preferences) []string {
	var goals []string
	if prefs.Mentor {
		goals = append(goals, "find a mentor")
	}
	if prefs.Invest {
		goals = append(goals, "meet investors")
	}
	if prefs.Discuss {
		goals = append(goals, "discuss ideas")
	}
	if prefs.Collaborate {
		goals = append(goals, "collaborate on projects")
	}
	if prefs.Hire {
		goals = append(goals, "hire talent")
	}
	return goals
}
