package predictit

import "strings"

// NormalizeTicker upper-cases a user supplied ticker.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Segments returns the number of dot separated parts in ticker. "FOO" has one
// segment, "FOO.BAR" has two.
func Segments(ticker string) int {
	return strings.Count(ticker, ".") + 1
}
