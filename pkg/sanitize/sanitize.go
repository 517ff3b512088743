// Package sanitize strips embedded markup from user-supplied text before it
// is persisted or rendered.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Plain removes every HTML tag from s, decodes entities the stripping left
// behind and trims surrounding whitespace. The result is plain text safe to
// store and echo back into a page.
func Plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
