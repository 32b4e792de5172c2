// Package sanitize cleans author-supplied blog markup before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// BlogContent keeps formatting markup and drops scripts, handlers and
// javascript: links.
func BlogContent(html string) string {
	return strings.TrimSpace(ugc.Sanitize(html))
}

// Text strips every tag and returns plain text. The policy escapes what it
// keeps, so entities are decoded again before storing.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
