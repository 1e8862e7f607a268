package snippet

import "strings"

// TitleMaxRunes caps titles derived from captured text.
const TitleMaxRunes = 80

// DeriveTitle builds a title from raw captured text: the first non-empty
// line, trimmed and truncated to TitleMaxRunes. Returns "" when the text
// contains no non-blank line, which the store then rejects as invalid.
func DeriveTitle(text string) string {
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > TitleMaxRunes {
			return string(runes[:TitleMaxRunes-1]) + "…"
		}
		return line
	}
	return ""
}
