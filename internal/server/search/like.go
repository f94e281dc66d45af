package search

import (
	"strings"

	"github.com/tidwall/match"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE wildcards in s so it matches literally
// inside a pattern that uses '\' as the escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// likeToGlob rewrites a LIKE pattern ('\' escape) into tidwall/match
// syntax: '%' becomes '*', '_' becomes '?', everything else is literal.
func likeToGlob(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 4)
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '%':
			b.WriteByte('*')
			continue
		case '_':
			b.WriteByte('?')
			continue
		case '\\':
			if i+1 < len(runes) {
				i++
				r = runes[i]
			}
		}
		if r == '*' || r == '?' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// likeMatch reports whether s matches the LIKE pattern, ignoring case,
// with the same semantics PostgreSQL gives ILIKE ... ESCAPE '\'.
func likeMatch(s, pattern string) bool {
	return match.Match(strings.ToLower(s), likeToGlob(strings.ToLower(pattern)))
}
