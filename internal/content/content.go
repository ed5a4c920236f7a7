// Package content turns user-authored FAQ answers into HTML that is safe to
// inject into a host page, and reports what looks risky or broken in them.
//
// Answers arrive as HTML, Markdown or plain text. ProcessContent renders any of
// them through one allow-list policy; GetContentWarnings inspects the raw input
// without changing it. Everything here is stateless and safe for concurrent use.
package content

import (
	"html/template"
	"strings"
)

// Format is the declared markup format of a piece of content.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Formats lists every recognized format.
var Formats = []Format{FormatHTML, FormatMarkdown, FormatText}

// ParseFormat maps s onto a known Format. Matching ignores case and
// surrounding spaces. Unknown values yield FormatHTML and false, so callers
// that ignore the flag still end up sanitizing.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatHTML:
		return FormatHTML, true
	case FormatMarkdown:
		return FormatMarkdown, true
	case FormatText:
		return FormatText, true
	}
	return FormatHTML, false
}

// Valid reports whether f is one of the recognized formats.
func (f Format) Valid() bool {
	_, ok := ParseFormat(string(f))
	return ok
}

// EscapeHTML escapes special characters like "<" to become "&lt;".
// It matches the behavior of html/template and is safe for use in HTML attributes.
func EscapeHTML(input string) string {
	return template.HTMLEscapeString(input)
}

// TextToHTML escapes input and turns every "\n" into a <br> element.
// CRLF pairs count as a single newline.
func TextToHTML(input string) string {
	if input == "" {
		return ""
	}
	input = strings.ReplaceAll(input, "\r\n", "\n")
	return strings.ReplaceAll(EscapeHTML(input), "\n", "<br>")
}
