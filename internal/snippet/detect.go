package snippet

import "strings"

// codeKeywords are keywords commonly found in source code across languages.
var codeKeywords = []string{
	"function", "class", "def", "import", "export", "const", "let", "var",
	"return", "if", "else", "for", "while", "fn", "pub", "struct", "enum",
	"interface", "type", "async", "await", "try", "catch", "throw", "new",
	"extends", "implements", "package", "use", "mod", "impl", "trait",
	"func",
}

// IsLikelyCode classifies text as code vs. plain prose using a scoring
// heuristic: brackets, semicolons, arrows, operators, keywords, indentation,
// and comment markers each add to the score; three points or more counts as
// code. Used by the CLI capture path when no external classifier supplied a
// verdict.
func IsLikelyCode(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	score := 0

	if strings.Contains(text, "{") && strings.Contains(text, "}") {
		score += 2
	}
	if strings.Contains(text, "(") && strings.Contains(text, ")") {
		score++
	}
	if strings.Contains(text, "[") && strings.Contains(text, "]") {
		score++
	}
	if strings.Contains(text, ";") {
		score++
	}
	if strings.Contains(text, "=>") || strings.Contains(text, "->") {
		score += 2
	}
	if strings.Contains(text, "===") || strings.Contains(text, "!==") ||
		strings.Contains(text, "&&") || strings.Contains(text, "||") {
		score++
	}

	lower := strings.ToLower(text)
	for _, kw := range codeKeywords {
		if strings.Contains(lower, kw+" ") || strings.Contains(lower, " "+kw) ||
			strings.HasPrefix(lower, kw) {
			score += 2
			break
		}
	}

	// Multi-line with indentation suggests code.
	lines := strings.Split(text, "\n")
	if len(lines) > 1 {
		for _, l := range lines {
			if strings.HasPrefix(l, "  ") || strings.HasPrefix(l, "\t") {
				score += 2
				break
			}
		}
	}

	if strings.Contains(text, "//") || strings.Contains(text, "/*") ||
		strings.Contains(text, "#!") {
		score++
	}

	return score >= 3
}

// languageMarkers maps a language tag to strings that strongly indicate it.
// Checked in order; the first language with two or more hits wins.
var languageMarkers = []struct {
	language string
	markers  []string
}{
	{"go", []string{"func ", ":= ", "package ", "fmt.", "chan ", "go func"}},
	{"rust", []string{"fn ", "let mut", "impl ", "pub fn", "-> ", "::"}},
	{"python", []string{"def ", "self.", "elif ", "import ", "print(", "__init__"}},
	{"typescript", []string{": string", ": number", "interface ", "export const", "=> {", "import {"}},
	{"javascript", []string{"function ", "const ", "console.", "=> ", "require(", "let "}},
	{"shell", []string{"#!/bin/", "echo ", "$(", "fi\n", "esac"}},
	{"sql", []string{"select ", "insert into", "create table", "where ", "from "}},
}

// GuessLanguage infers a language tag from code text. Returns "unknown" when
// no language scores at least two marker hits.
func GuessLanguage(text string) string {
	lower := strings.ToLower(text)
	for _, cand := range languageMarkers {
		hits := 0
		for _, m := range cand.markers {
			if strings.Contains(lower, strings.ToLower(m)) {
				hits++
			}
		}
		if hits >= 2 {
			return cand.language
		}
	}
	return "unknown"
}
