// Package report renders computed match lists as Markdown and sanitized HTML,
// suitable for embedding in mails or web views.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/promatch/match"
	"github.com/smallnest/promatch/profile"
)

// Markdown renders the owner's match list as a Markdown document. Matches are
// rendered in the order given; callers are expected to pass an already ranked
// list.
func Markdown(owner *profile.Profile, matches []match.Enriched) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Connection Recommendations for %s\n\n", owner.Name)
	if len(matches) == 0 {
		b.WriteString("No compatible connections found. Try broadening your interests or skills.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d recommendation(s), strongest first.\n\n", len(matches))

	for i, m := range matches {
		fmt.Fprintf(&b, "## %d. %s — %d/100\n\n", i+1, m.Profile.Name, m.Score)

		if m.Profile.Title != "" || m.Profile.Company != "" {
			fmt.Fprintf(&b, "**%s**", m.Profile.Title)
			if m.Profile.Company != "" {
				fmt.Fprintf(&b, " at %s", m.Profile.Company)
			}
			b.WriteString("\n\n")
		}
		if m.Profile.Location != "" {
			fmt.Fprintf(&b, "- Location: %s\n", m.Profile.Location)
		}
		if len(m.MatchTypes) > 0 {
			fmt.Fprintf(&b, "- Connection type: %s\n", strings.Join(m.MatchTypes, ", "))
		}
		fmt.Fprintf(&b, "- Recommendation strength: %s\n", m.RecommendationStrength)
		if len(m.SharedInterests) > 0 {
			fmt.Fprintf(&b, "- Shared interests: %s\n", strings.Join(m.SharedInterests, ", "))
		}
		if len(m.ComplementarySkills) > 0 {
			fmt.Fprintf(&b, "- Complementary skills: %s\n", strings.Join(m.ComplementarySkills, ", "))
		}
		if m.Reasoning != "" {
			fmt.Fprintf(&b, "\n%s\n", m.Reasoning)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the match list as sanitized HTML. The Markdown renderer output
// is passed through a UGC sanitizer because reasoning text originates from a
// model and must be treated as untrusted input.
func HTML(owner *profile.Profile, matches []match.Enriched) string {
	md := Markdown(owner, matches)

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	rendered := markdown.Render(doc, renderer)

	sanitizer := bluemonday.UGCPolicy()
	return string(sanitizer.SanitizeBytes(rendered))
}
