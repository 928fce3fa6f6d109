package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Go Meetup":                "go-meetup",
		"  Go   Meetup 2025  ":     "go-meetup-2025",
		"React & Next.js: Summit!": "react-nextjs-summit",
		"--Already-- -Hyphened-":   "already-hyphened",
		"Tabs\tand\nnewlines":      "tabs-and-newlines",
		"Vertical\vtab":            "vertical-tab",
		"No\u00a0break\u3000space": "no-break-space",
		"Line\u2028separator":      "line-separator",
		"!!!":                      FallbackSlug,
		"":                         FallbackSlug,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Slugify(in))
		})
	}
}

func TestSlugCandidate(t *testing.T) {
	assert.Equal(t, "go-meetup", SlugCandidate("go-meetup", 0))
	assert.Equal(t, "go-meetup-1", SlugCandidate("go-meetup", 1))
	assert.Equal(t, "go-meetup-99", SlugCandidate("go-meetup", 99))
}
