// Package lineref extracts editor line positions from gate detail strings.
//
// The backend embeds 1-based line numbers in free text as "L<digits>:".
// Editors are 0-based, and the document may have changed since analysis, so
// callers clamp the parsed value to the current document length.
package lineref

import (
	"regexp"
	"strconv"
)

var marker = regexp.MustCompile(`L(\d+):`)

// Parse returns the 0-based line of the first "L<n>:" marker in detail, or 0
// when there is none. It never fails.
func Parse(detail string) int {
	m := marker.FindStringSubmatch(detail)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0
	}
	return n - 1
}

// Clamp bounds line to [0, lineCount-1].
func Clamp(line, lineCount int) int {
	if lineCount <= 0 || line < 0 {
		return 0
	}
	if line >= lineCount {
		return lineCount - 1
	}
	return line
}

// Resolve parses detail and clamps the result to the document length.
func Resolve(detail string, lineCount int) int {
	return Clamp(Parse(detail), lineCount)
}
