package opportunity

import "strings"

// PracticeAreaSeparator delimits the labels of a multi-valued practice-area cell.
const PracticeAreaSeparator = ";"

var placeholderPracticeAreas = map[string]bool{
	"unknown": true,
	"other":   true,
	"others":  true,
	"n/a":     true,
}

// SplitPracticeAreas tokenizes a raw practice-area cell. Tokens are trimmed;
// blanks and placeholders are dropped; duplicates within the cell collapse.
func SplitPracticeAreas(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, PracticeAreaSeparator)
	tokens := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if !IsPracticeAreaToken(token) || seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	return tokens
}

// IsPracticeAreaToken reports whether a trimmed label is a real practice area.
func IsPracticeAreaToken(token string) bool {
	if token == "" {
		return false
	}
	return !placeholderPracticeAreas[strings.ToLower(token)]
}
