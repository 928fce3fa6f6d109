package models

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxSlugAttempts bounds collision resolution: the base slug plus
	// suffixes -1 through -99.
	MaxSlugAttempts = 100

	// FallbackSlug is the base used when a title has no slug-safe characters.
	FallbackSlug = "event"
)

// slugSpace extends RE2's ASCII-only \s with \v, NEL, the Unicode space
// separators, U+2028/U+2029 and the byte order mark.
const slugSpace = `\s\v\x{85}\p{Zs}\x{2028}\x{2029}\x{FEFF}`

var (
	slugUnsafe  = regexp.MustCompile(`[^a-z0-9` + slugSpace + `-]`)
	slugSpaces  = regexp.MustCompile(`[` + slugSpace + `]+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slugify returns the canonical base slug for a title.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugUnsafe.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return FallbackSlug
	}
	return s
}

// SlugCandidate returns the n-th candidate for base: base itself for 0,
// base-n otherwise.
func SlugCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
