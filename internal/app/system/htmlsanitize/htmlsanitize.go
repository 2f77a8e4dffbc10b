// Package htmlsanitize cleans free-text fields (order and product notes,
// addresses) before they are stored. The console renders them in the admin
// UI, so any markup is stripped down to plain text.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxNoteLength caps a sanitized note, in runes.
const MaxNoteLength = 2000

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strip-everything policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
		// <script> and <style> bodies go with their tags.
		policy.SkipElementsContent("script", "style")
	})
	return policy
}

// PlainText strips all markup from s and trims surrounding whitespace.
// Entities are decoded, so "a &amp; b" and "a & b" both come back as "a & b".
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<>&") {
		s = html.UnescapeString(getPolicy().Sanitize(s))
	}
	return strings.TrimSpace(s)
}

// Note is PlainText capped at MaxNoteLength runes.
func Note(s string) string {
	s = PlainText(s)
	if utf8.RuneCountInString(s) <= MaxNoteLength {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:MaxNoteLength]))
}

// IsPlainText reports whether s contains no markup.
func IsPlainText(s string) bool {
	if s == "" {
		return true
	}
	// Valid HTML tags require both characters.
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
