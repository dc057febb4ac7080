package logger

import "unicode/utf8"

// truncateString truncates a string to at most maxLength bytes, cutting on a
// rune boundary and appending "...truncated" when there is room for it.
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}

	const ellipsis = "...truncated"

	cut := maxLength
	suffix := ""
	if maxLength > len(ellipsis) {
		cut = maxLength - len(ellipsis)
		suffix = ellipsis
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}
