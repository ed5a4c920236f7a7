package content

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Sanitizer strips everything that is not on the allow-list from an HTML
// fragment. *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(s string) string
}

// MarkdownEngine converts Markdown source into HTML. goldmark.Markdown
// satisfies it.
type MarkdownEngine interface {
	Convert(source []byte, w io.Writer, opts ...parser.ParseOption) error
}

// Raw HTML is kept and left to the sanitizer.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)
}

// Renderer converts content of any Format into sanitized HTML.
// A Renderer has no mutable state and may be shared between goroutines.
type Renderer struct {
	sanitizer Sanitizer
	markdown  MarkdownEngine
	logger    *slog.Logger
}

type Option func(*Renderer)

// WithLogger sets the logger used for fallback and unknown-format events.
// A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithSanitizer replaces the allow-list sanitizer.
func WithSanitizer(s Sanitizer) Option {
	return func(r *Renderer) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

// WithMarkdown replaces the Markdown engine.
func WithMarkdown(m MarkdownEngine) Option {
	return func(r *Renderer) {
		if m != nil {
			r.markdown = m
		}
	}
}

// New returns a Renderer using the shared allow-list policy and a GFM
// Markdown engine with hard line breaks. Without WithLogger nothing is logged.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		sanitizer: policy,
		markdown:  newMarkdown(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = New()

// ProcessContent renders content with the default Renderer.
func ProcessContent(content, format string) string {
	return defaultRenderer.ProcessContent(content, format)
}

// SanitizeHTML sanitizes input with the default Renderer.
func SanitizeHTML(input string) string {
	return defaultRenderer.SanitizeHTML(input)
}

// MarkdownToHTML renders and sanitizes Markdown with the default Renderer.
func MarkdownToHTML(input string) string {
	return defaultRenderer.MarkdownToHTML(input)
}

// ProcessContent renders content declared as format into sanitized HTML.
// Unknown formats are treated as HTML. It never panics and returns "" for
// empty content.
func (r *Renderer) ProcessContent(content, format string) string {
	out, _ := r.render(content, format)
	return out
}

// SanitizeHTML runs input through the allow-list. If the sanitizer fails the
// input is escaped as plain text instead.
func (r *Renderer) SanitizeHTML(input string) string {
	if input == "" {
		return ""
	}
	out, err := r.sanitize(input)
	if err != nil {
		r.logger.Warn("sanitizer failed, falling back to escaped text", "error", err)
		return TextToHTML(input)
	}
	return out
}

// MarkdownToHTML converts Markdown to HTML and sanitizes the result. Raw HTML
// inside the Markdown goes through the same allow-list.
func (r *Renderer) MarkdownToHTML(input string) string {
	out, _ := r.renderMarkdown(input)
	return out
}

// render returns the final output together with the markup as it was before
// sanitization. The second value is empty when no sanitization took place.
func (r *Renderer) render(content, format string) (string, string) {
	if content == "" {
		return "", ""
	}

	f, ok := ParseFormat(format)
	if !ok {
		r.logger.Warn("unrecognized content format, treating as html", "format", format)
	}

	switch f {
	case FormatText:
		return TextToHTML(content), ""
	case FormatMarkdown:
		return r.renderMarkdown(content)
	default:
		return r.SanitizeHTML(content), content
	}
}

func (r *Renderer) renderMarkdown(input string) (string, string) {
	if input == "" {
		return "", ""
	}

	raw, err := r.convertMarkdown(input)
	if err != nil {
		r.logger.Warn("markdown conversion failed, falling back to escaped text", "error", err)
		return TextToHTML(input), ""
	}

	out, err := r.sanitize(raw)
	if err != nil {
		r.logger.Warn("sanitizer failed, falling back to escaped text", "error", err)
		return TextToHTML(input), ""
	}
	return out, raw
}

func (r *Renderer) convertMarkdown(input string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("markdown engine panic: %v", rec)
		}
	}()

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(input), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) sanitize(input string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("sanitizer panic: %v", rec)
		}
	}()
	return r.sanitizer.Sanitize(input), nil
}
