package stubs

import (
	"fmt"

	"accordion/internal/content"
	"accordion/internal/faq"
	"accordion/internal/models"
)

var Entries = []faq.CreateEntryRequest{
	{
		Question: "What is this page?",
		Answer:   "A list of **frequently asked questions**. Click a question to expand its answer.",
		Format:   content.FormatMarkdown,
	},
	{
		Question: "Which formats can answers use?",
		Answer: "<p>Answers can be written as <b>HTML</b>, Markdown or plain text.</p>" +
			"<ul><li>HTML is sanitized</li><li>Markdown is rendered, then sanitized</li><li>Text is escaped</li></ul>",
		Format: content.FormatHTML,
	},
	{
		Question: "Can I embed links?",
		Answer:   "Yes, see [the docs](https://example.com/docs) or write to <help@example.com>.",
		Format:   content.FormatMarkdown,
	},
	{
		Question: "How do I contact support?",
		Answer:   "Email support@example.com\nor call +1 555 0100.",
		Format:   content.FormatText,
	},
}

type seeder interface {
	List() ([]models.RenderedEntry, error)
	Create(req faq.CreateEntryRequest) (models.Entry, error)
}

// Seed creates the demo entries when the store is empty. It returns the
// number of entries created.
func Seed(svc seeder) (int, error) {
	existing, err := svc.List()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, req := range Entries {
		if _, err := svc.Create(req); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", req.Question, err)
		}
	}
	return len(Entries), nil
}
