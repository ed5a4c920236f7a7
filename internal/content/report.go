package content

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Report is the rendered HTML of one piece of content plus the warnings for
// its author. Modified is set when sanitization changed the markup.
type Report struct {
	HTML     string   `json:"html"`
	Warnings []string `json:"warnings"`
	Modified bool     `json:"modified"`
}

// Inspect renders content and validates it in one call.
// Modified compares the markup before and after sanitization once both are
// re-serialized and whitespace-collapsed, so quoting and void-tag spelling do
// not count as changes.
func (r *Renderer) Inspect(content, format string) Report {
	out, before := r.render(content, format)
	rep := Report{
		HTML:     out,
		Warnings: GetContentWarnings(content, format),
	}
	if rep.Warnings == nil {
		rep.Warnings = []string{}
	}
	if before != "" {
		rep.Modified = normalizeHTML(before) != normalizeHTML(out)
	}
	return rep
}

// Inspect uses the default Renderer.
func Inspect(content, format string) Report {
	return defaultRenderer.Inspect(content, format)
}

func normalizeHTML(s string) string {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return collapseSpace(s)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return collapseSpace(s)
		}
	}
	return collapseSpace(buf.String())
}

func collapseSpace(s string) string {
	return strings.ReplaceAll(strings.Join(strings.Fields(s), " "), "> <", "><")
}
