package connectors

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultSnippetLength bounds snippets in runes.
const DefaultSnippetLength = 300

// Cleaner turns upstream descriptions (often HTML) into short plain text.
type Cleaner struct {
	policy          *bluemonday.Policy
	multiWhitespace *regexp.Regexp
	maxRunes        int
}

func NewCleaner(maxRunes int) *Cleaner {
	return &Cleaner{
		policy:          bluemonday.StrictPolicy(),
		multiWhitespace: regexp.MustCompile(`\s+`),
		maxRunes:        maxRunes,
	}
}

// Clean strips markup, decodes entities and collapses whitespace.
func (c *Cleaner) Clean(content string) string {
	content = c.policy.Sanitize(content)
	content = html.UnescapeString(content)
	content = c.multiWhitespace.ReplaceAllString(content, " ")
	content = strings.TrimSpace(content)

	if c.maxRunes > 0 && utf8.RuneCountInString(content) > c.maxRunes {
		runes := []rune(content)
		content = strings.TrimSpace(string(runes[:c.maxRunes])) + "…"
	}
	return content
}

// Snippet is Clean returning nil for empty text.
func (c *Cleaner) Snippet(content string) *string {
	if s := c.Clean(content); s != "" {
		return models.Ptr(s)
	}
	return nil
}
