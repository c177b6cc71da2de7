package resolve

import "strings"

// GlobMatch reports whether text matches pattern, where '*' is the only
// wildcard. No escaping, no character classes. Matching is case-sensitive.
//
// Interior segments are located with a leftmost scan from the current cursor
// and never backtrack, so some patterns a backtracking matcher would accept
// are rejected (e.g. "a*ab" against "aab" fails because the interior scan
// consumes the first "a"). This is intentional behavior, not a bug to fix.
func GlobMatch(text, pattern string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		// No wildcard: exact match.
		return text == pattern
	}

	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}

		switch {
		case i == 0:
			if !strings.HasPrefix(text, part) {
				return false
			}
			pos = len(part)
		case i == len(parts)-1:
			if !strings.HasSuffix(text[pos:], part) {
				return false
			}
		default:
			idx := strings.Index(text[pos:], part)
			if idx < 0 {
				return false
			}
			pos += idx + len(part)
		}
	}

	return true
}

// IsGlob reports whether a pattern contains the wildcard character.
func IsGlob(pattern string) bool {
	return strings.Contains(pattern, "*")
}
