package normalize

import (
	"strings"
	"unicode/utf8"
)

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// JoinDescription joins an item name and description with an em-dash separator.
// Surrounding spaces and dashes are trimmed, so a lone description is returned as is.
func JoinDescription(name, desc string) string {
	name = strings.TrimSpace(name)
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return name
	}
	return strings.Trim(name+" — "+desc, " —")
}
