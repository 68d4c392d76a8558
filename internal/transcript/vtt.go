package transcript

import (
	"html"
	"regexp"
	"strings"
)

var inlineTagPattern = regexp.MustCompile(`<[^>]*>`)

// flattenVTT turns a WebVTT caption track into one plain-text transcript:
// cue payload lines joined by single spaces, timing lines, headers and
// inline tags dropped. Consecutive duplicate lines are emitted once, since
// auto-generated tracks repeat each line across rolling cues.
func flattenVTT(vtt string) string {
	var parts []string
	var last string
	inNote := false
	for _, line := range strings.Split(vtt, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		switch {
		case line == "":
			inNote = false
			continue
		case inNote:
			continue
		case strings.HasPrefix(line, "WEBVTT"),
			strings.HasPrefix(line, "Kind:"),
			strings.HasPrefix(line, "Language:"):
			continue
		case strings.HasPrefix(line, "NOTE"), strings.HasPrefix(line, "STYLE"), strings.HasPrefix(line, "REGION"):
			inNote = true
			continue
		case strings.Contains(line, "-->"):
			continue
		}
		text := inlineTagPattern.ReplaceAllString(line, "")
		text = strings.TrimSpace(html.UnescapeString(text))
		if text == "" || text == last {
			continue
		}
		parts = append(parts, text)
		last = text
	}
	return strings.Join(parts, " ")
}
