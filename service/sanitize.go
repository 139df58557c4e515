package service

import (
	"regexp"
	"strings"
)

var whitespaceRunRe = regexp.MustCompile(`\s+`)

// A single-pass replacer escapes '&' without re-escaping the entities it
// itself produces.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// SanitizeDropContent collapses whitespace runs (CR/LF included) to single
// spaces, trims, and escapes the five HTML-reserved characters. The result
// is safe for storage and for direct embedding in HTML with no downstream
// templating escape. Length is the caller's concern and is checked before
// sanitization.
func SanitizeDropContent(raw string) string {
	collapsed := strings.TrimSpace(whitespaceRunRe.ReplaceAllString(raw, " "))
	return htmlEscaper.Replace(collapsed)
}
