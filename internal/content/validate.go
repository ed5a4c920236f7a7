package content

import (
	"regexp"
	"strings"
)

const embeddedHTMLPrefix = "Embedded HTML: "

var (
	scriptRe       = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	eventHandlerRe = regexp.MustCompile(`(?i)<[^>]*\son\w+\s*=`)
	jsURLRe        = regexp.MustCompile(`(?i)javascript\s*:`)
	dataURIRe      = regexp.MustCompile(`(?i)\bdata:`)
	iframeRe       = regexp.MustCompile(`(?i)<iframe\b`)
	objectRe       = regexp.MustCompile(`(?i)<(object|embed)\b`)

	// markupTokenRe finds HTML tags inside Markdown source. The name must be
	// followed by space, "/" or ">" so autolinks like <https://x> are skipped.
	markupTokenRe = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9-]*(?:[\s/][^>]*)?>`)
)

// ValidateHTML reports security-relevant constructs in input. Each category
// produces at most one message, always in the same order.
func ValidateHTML(input string) []string {
	if input == "" {
		return nil
	}

	var warnings []string
	if scriptRe.MatchString(input) {
		warnings = append(warnings, "Script tags detected - these will be removed for security")
	}
	if eventHandlerRe.MatchString(input) {
		warnings = append(warnings, "Event handlers (onclick, onload, etc.) detected - these will be removed for security")
	}
	if jsURLRe.MatchString(input) {
		warnings = append(warnings, "JavaScript URLs detected - these will be removed for security")
	}
	if hasNonImageDataURI(input) {
		warnings = append(warnings, "Data URIs detected (except images) - these may be removed for security")
	}
	if iframeRe.MatchString(input) {
		warnings = append(warnings, "Iframes detected - these will be removed for security")
	}
	if objectRe.MatchString(input) {
		warnings = append(warnings, "Object/embed tags detected - these will be removed for security")
	}
	return warnings
}

func hasNonImageDataURI(input string) bool {
	for _, loc := range dataURIRe.FindAllStringIndex(input, -1) {
		rest := input[loc[1]:]
		if len(rest) < len("image/") || !strings.EqualFold(rest[:len("image/")], "image/") {
			return true
		}
	}
	return false
}

// GetContentWarnings returns human-readable warnings about content declared
// as format. It never modifies content and never fails: empty content, plain
// text and unknown formats produce no warnings.
//
// For Markdown only the embedded HTML tags are checked, and every resulting
// warning is prefixed with "Embedded HTML: ".
func GetContentWarnings(content, format string) []string {
	if content == "" {
		return nil
	}

	f, ok := ParseFormat(format)
	if !ok {
		return nil
	}

	switch f {
	case FormatHTML:
		return validateAll(content)
	case FormatMarkdown:
		tags := markupTokenRe.FindAllStringIndex(content, -1)
		if len(tags) == 0 {
			return nil
		}
		found := validateAll(maskOutside(content, tags))
		if len(found) == 0 {
			return nil
		}
		warnings := make([]string, 0, len(found))
		for _, w := range found {
			warnings = append(warnings, embeddedHTMLPrefix+w)
		}
		return warnings
	default:
		return nil
	}
}

// maskOutside blanks every byte of s outside spans, keeping offsets so
// reported positions point into the original source.
func maskOutside(s string, spans [][]int) string {
	masked := []byte(strings.Repeat(" ", len(s)))
	for _, span := range spans {
		copy(masked[span[0]:span[1]], s[span[0]:span[1]])
	}
	return string(masked)
}

func validateAll(input string) []string {
	return append(ValidateHTML(input), ValidateHTMLSyntax(input)...)
}
