package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/Moole123/cf-tempmail/internal/model"
)

// Patterns for reducing an HTML body to terminal text. The resolver has
// already rewritten inline references by the time these run.
var (
	scriptPattern   = regexp.MustCompile(`(?is)<(script|style|head)\b.*?</(script|style|head)>`)
	commentPattern  = regexp.MustCompile(`(?s)<!--.*?-->`)
	breakPattern    = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockEndPattern = regexp.MustCompile(`(?i)</(p|div|tr|table|h[1-6]|ul|ol|blockquote)>`)
	listItemPattern = regexp.MustCompile(`(?i)<li\b[^>]*>`)
	anchorPattern   = regexp.MustCompile(`(?is)<a\b[^>]*\bhref\s*=\s*["']([^"']+)["'][^>]*>(.*?)</a>`)
	imagePattern    = regexp.MustCompile(`(?is)<img\b[^>]*\bsrc\s*=\s*["']([^"']+)["'][^>]*>`)
	tagPattern      = regexp.MustCompile(`(?s)<[^>]*>`)
	blankPattern    = regexp.MustCompile(`\n{3,}`)
	spacePattern    = regexp.MustCompile(`[ \t]{2,}`)
)

// Body returns the best terminal representation of an email body:
// the HTML body reduced to text when present, the plain text body
// otherwise.
func Body(e model.Email) string {
	if e.HTMLBody != "" {
		return HTMLToText(e.HTMLBody)
	}
	return strings.TrimSpace(e.TextBody)
}

// HTMLToText reduces an HTML fragment to displayable text: block
// elements become line breaks, anchors keep their target, images
// surface their (already resolved) source as a bracketed reference,
// everything else is stripped and entity-decoded. Malformed input
// degrades to whatever text survives stripping; nothing is rejected.
func HTMLToText(in string) string {
	out := scriptPattern.ReplaceAllString(in, "")
	out = commentPattern.ReplaceAllString(out, "")

	out = breakPattern.ReplaceAllString(out, "\n")
	out = blockEndPattern.ReplaceAllString(out, "\n\n")
	out = listItemPattern.ReplaceAllString(out, "\n  • ")

	out = anchorPattern.ReplaceAllString(out, "$2 ($1)")
	out = imagePattern.ReplaceAllString(out, "[image: $1]")

	out = tagPattern.ReplaceAllString(out, "")
	out = html.UnescapeString(out)

	out = spacePattern.ReplaceAllString(out, " ")
	out = blankPattern.ReplaceAllString(out, "\n\n")

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
