// Package htmlsanitize strips dangerous markup from user-generated
// content before it is stored. Event descriptions, discussion comments,
// and profile bios accept limited formatting; everything else is
// reduced to plain text.
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc allows the formatting commonly produced by rich-text editors:
	// paragraphs, emphasis, lists, tables, blockquotes, and safe links.
	// Scripts, event handlers, and javascript: URLs are removed.
	ugc = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowElements("u", "s", "sub", "sup", "mark")
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
		p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		return p
	}()

	// strict removes all markup. Titles, usernames, and similar
	// single-line fields go through this.
	strict = bluemonday.StrictPolicy()
)

// Sanitize cleans rich-text content, keeping safe formatting.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// StripTags removes all HTML, leaving only text content.
func StripTags(s string) string {
	return strict.Sanitize(s)
}
