package content

import (
	"regexp"
	"slices"

	"github.com/microcosm-cc/bluemonday"
)

// No headings or blockquote: the question is the heading.
var allowedTags = []string{
	"p", "br", "hr",
	"b", "i", "em", "strong", "u", "s", "del", "ins", "sub", "sup", "mark", "small",
	"a",
	"ul", "ol", "li",
	"code", "pre",
	"table", "caption", "col", "colgroup", "thead", "tbody", "tfoot", "tr", "th", "td",
	"img",
	"div", "span",
	"video", "source", "figure", "figcaption",
}

var allowedAttrs = []string{
	"href", "title", "target", "rel",
	"src", "alt", "width", "height",
	"class", "id", "style",
	"rowspan", "colspan", "scope", "headers",
	"controls", "autoplay", "loop", "muted", "poster",
}

var allowedSchemes = []string{
	"http", "https", "ftp", "ftps", "mailto", "tel", "callto", "sms", "cid", "xmpp",
}

// URL-valued attributes. They are allowed per element only, since bluemonday
// does not scheme-check every element/attribute pair.
var urlAttrs = []string{"src", "poster"}

// safeURLRe accepts the allowed schemes, data:image payloads and relative
// URLs (no colon before the first "/", "?" or "#").
var safeURLRe = regexp.MustCompile(`^(?i)(?:(?:https?|ftps?|mailto|tel|callto|sms|cid|xmpp):|data:image/|[^:/?#]*(?:[/?#]|$))`)

// policy must not be modified after init.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedTags...)
	var global []string
	for _, a := range allowedAttrs {
		if !slices.Contains(urlAttrs, a) {
			global = append(global, a)
		}
	}
	p.AllowAttrs(global...).Globally()
	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("src").Matching(safeURLRe).OnElements("video", "source")
	p.AllowAttrs("poster").Matching(safeURLRe).OnElements("video")

	p.AllowURLSchemes(allowedSchemes...)
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	// data: only for image/* payloads
	p.AllowDataURIImages()

	return p
}

// AllowedTags returns the element names the sanitizer keeps.
func AllowedTags() []string {
	return slices.Clone(allowedTags)
}

// AllowedAttributes returns the attribute names the sanitizer keeps on any
// allowed element.
func AllowedAttributes() []string {
	return slices.Clone(allowedAttrs)
}

// AllowedSchemes returns the absolute URL schemes accepted in links and
// sources. Relative URLs are always accepted.
func AllowedSchemes() []string {
	return slices.Clone(allowedSchemes)
}
