package parser

import (
	"regexp"
	"strings"
)

var multiSpaceRE = regexp.MustCompile(`\s+`)

func normaliseInput(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	var b strings.Builder
	lastSpace := false
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '-' || r == '_' || r == '/' || r == '\'' {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		}
	}
	return strings.TrimSpace(multiSpaceRE.ReplaceAllString(b.String(), " "))
}

func tokenise(normalised string) []string {
	if strings.TrimSpace(normalised) == "" {
		return nil
	}
	return strings.Fields(normalised)
}

func isPronoun(token string) bool {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "him", "her", "them", "they", "he", "she":
		return true
	default:
		return false
	}
}

func isFiller(token string) bool {
	switch token {
	case "to", "the", "into", "at", "a", "an", "towards":
		return true
	default:
		return false
	}
}

func dropFillers(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !isFiller(t) {
			out = append(out, t)
		}
	}
	return out
}
