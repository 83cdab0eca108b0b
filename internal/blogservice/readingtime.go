package blogservice

import "strings"

const wordsPerMinute = 200

// ReadingTime estimates the minutes needed to read body, rounded up.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
