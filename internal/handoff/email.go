package handoff

import "strings"

// ValidEmail reports whether s looks like an email address: exactly one "@"
// with a non-empty local part and a dotted domain. Deliberately syntactic —
// the Drive API is the authority on whether the account exists, this check
// only catches obvious typos before any API call is spent.
func ValidEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at != strings.LastIndexByte(s, '@') {
		return false
	}

	domain := s[at+1:]
	if domain == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}

	dot := strings.IndexByte(domain, '.')

	// Domain needs an interior dot: not leading, not trailing.
	return dot > 0 && dot < len(domain)-1
}
