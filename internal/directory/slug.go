package directory

import (
	"regexp"
	"strings"
)

var (
	spaceRun = regexp.MustCompile(`\s+`)
	nonWord  = regexp.MustCompile(`[^\w-]+`)
	dashRun  = regexp.MustCompile(`-{2,}`)
)

// Slugify lowercases and trims s, turns whitespace runs into a single hyphen,
// strips everything but ASCII word characters and hyphens, collapses hyphen
// runs and trims hyphens from both ends.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = spaceRun.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	s = dashRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
