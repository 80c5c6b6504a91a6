package triage

import "regexp"

// typePrefixRe matches a conventional-commit style title prefix: a word
// token, an optional parenthesized scope, then a colon. "fix: x" and
// "fix(ui): x" both yield "fix".
var typePrefixRe = regexp.MustCompile(`^(\w+)(?:\(.*?\))?:`)

// ExtractIssueType extracts the type token from an issue title. The token
// must be a member of validTypes (case-sensitive); an unrecognized prefix is
// treated the same as a missing one. Pure function, no I/O.
func ExtractIssueType(title string, validTypes []string) (string, bool) {
	m := typePrefixRe.FindStringSubmatch(title)
	if m == nil {
		return "", false
	}
	for _, t := range validTypes {
		if t == m[1] {
			return t, true
		}
	}
	return "", false
}
