package responder

import (
	"regexp"
	"strings"
)

var (
	numberedItemRe = regexp.MustCompile(`^\d+[.)]\s`)
	bulletItemRe   = regexp.MustCompile(`^[-*•]\s`)
	blankRunRe     = regexp.MustCompile(`\n{3,}`)
)

// Paragraph openers that read better set off from the preceding text.
var transitionPrefixes = []string{
	"In summary",
	"To summarize",
	"Remember",
	"Additionally",
	"Finally",
	"Overall",
	"References:",
}

// Format normalizes generated text for chat display. It strips markdown
// emphasis markers, sets list items and summary transitions off with a
// blank line, and collapses excess blank lines. Deterministic: the same
// input always yields the same output.
func Format(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")

	lines := strings.Split(text, "\n")
	var out []string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if i > 0 && needsLeadingBlank(trimmed) && len(out) > 0 && out[len(out)-1] != "" {
			// do not split consecutive list items apart
			if !isListItem(strings.TrimSpace(out[len(out)-1])) || !isListItem(trimmed) {
				out = append(out, "")
			}
		}
		out = append(out, line)
	}

	text = strings.Join(out, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func isListItem(line string) bool {
	return numberedItemRe.MatchString(line) || bulletItemRe.MatchString(line)
}

func needsLeadingBlank(line string) bool {
	if isListItem(line) {
		return true
	}
	for _, prefix := range transitionPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
