// Package faq manages FAQ entries: validation, ordering, rendering and change
// notifications.
package faq

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"accordion/internal/content"
	"accordion/internal/models"

	"github.com/c-pro/geche"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	MaxQuestionLength = 500
	MaxAnswerBytes    = 64 * 1024

	DefaultCacheTTL = 10 * time.Minute
)

type Store interface {
	UpsertEntry(entry models.Entry) error
	GetEntry(id string) (models.Entry, error)
	ListEntries() ([]models.Entry, error)
	DeleteEntry(id string) error
	ReorderEntries(ids []string, updatedAt int64) error
}

// Notifier receives a message for every successful write.
type Notifier interface {
	Broadcast(msg models.ServerMessage)
}

type CreateEntryRequest struct {
	Question string         `json:"question" yaml:"question"`
	Answer   string         `json:"answer" yaml:"answer"`
	Format   content.Format `json:"format" yaml:"format"`
}

func (r *CreateEntryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Question, validation.Required, validation.RuneLength(1, MaxQuestionLength)),
		validation.Field(&r.Answer, validation.Length(0, MaxAnswerBytes)),
		validation.Field(&r.Format, validation.In(content.FormatHTML, content.FormatMarkdown, content.FormatText)),
	)
}

// UpdateEntryRequest is a partial update. Nil fields are left unchanged.
type UpdateEntryRequest struct {
	Question *string         `json:"question,omitempty"`
	Answer   *string         `json:"answer,omitempty"`
	Format   *content.Format `json:"format,omitempty"`
}

func (r *UpdateEntryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Question, validation.NilOrNotEmpty, validation.RuneLength(1, MaxQuestionLength)),
		validation.Field(&r.Answer, validation.Length(0, MaxAnswerBytes)),
		validation.Field(&r.Format, validation.In(content.FormatHTML, content.FormatMarkdown, content.FormatText)),
	)
}

type ReorderRequest struct {
	IDs []string `json:"ids"`
}

func (r *ReorderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.IDs, validation.NotNil, validation.Each(validation.Required)),
	)
}

type Service struct {
	store    Store
	renderer *content.Renderer
	notifier Notifier
	reports  geche.Geche[string, content.Report]
	now      func() time.Time

	// Serializes writes so appended positions stay contiguous.
	mu sync.Mutex
}

func NewService(ctx context.Context, store Store, renderer *content.Renderer, notifier Notifier, cacheTTL time.Duration) *Service {
	if renderer == nil {
		renderer = content.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Service{
		store:    store,
		renderer: renderer,
		notifier: notifier,
		reports:  geche.NewMapTTLCache[string, content.Report](ctx, cacheTTL, time.Minute),
		now:      time.Now,
	}
}

func (s *Service) Create(req CreateEntryRequest) (models.Entry, error) {
	req.Question = strings.TrimSpace(req.Question)
	req.Format = normalizeFormat(req.Format)
	if err := req.Validate(); err != nil {
		return models.Entry{}, err
	}
	if req.Format == "" {
		req.Format = content.FormatHTML
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ListEntries()
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to list entries: %w", err)
	}

	now := s.now().Unix()
	entry := models.Entry{
		ID:        uuid.NewString(),
		Question:  req.Question,
		Answer:    req.Answer,
		Format:    req.Format,
		Position:  len(existing),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.UpsertEntry(entry); err != nil {
		return models.Entry{}, fmt.Errorf("failed to save entry: %w", err)
	}

	s.notify(models.ServerMessage{Type: models.ServerMessageTypeEntryCreated, Entry: &entry, EntryID: entry.ID})
	return entry, nil
}

func (s *Service) Update(id string, req UpdateEntryRequest) (models.Entry, error) {
	if req.Question != nil {
		q := strings.TrimSpace(*req.Question)
		req.Question = &q
	}
	if req.Format != nil {
		f := normalizeFormat(*req.Format)
		req.Format = &f
	}
	if err := req.Validate(); err != nil {
		return models.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.store.GetEntry(id)
	if err != nil {
		return models.Entry{}, err
	}

	if req.Question != nil {
		entry.Question = *req.Question
	}
	if req.Answer != nil {
		entry.Answer = *req.Answer
	}
	if req.Format != nil {
		entry.Format = *req.Format
		if entry.Format == "" {
			entry.Format = content.FormatHTML
		}
	}
	entry.UpdatedAt = s.now().Unix()

	if err := s.store.UpsertEntry(entry); err != nil {
		return models.Entry{}, fmt.Errorf("failed to save entry: %w", err)
	}

	s.notify(models.ServerMessage{Type: models.ServerMessageTypeEntryUpdated, Entry: &entry, EntryID: entry.ID})
	return entry, nil
}

func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteEntry(id); err != nil {
		return err
	}

	s.notify(models.ServerMessage{Type: models.ServerMessageTypeEntryDeleted, EntryID: id})
	return nil
}

func (s *Service) Reorder(req ReorderRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.ReorderEntries(req.IDs, s.now().Unix()); err != nil {
		return err
	}

	s.notify(models.ServerMessage{Type: models.ServerMessageTypeReordered, Order: req.IDs})
	return nil
}

// Get returns a single entry ready for display.
func (s *Service) Get(id string) (models.RenderedEntry, error) {
	entry, err := s.store.GetEntry(id)
	if err != nil {
		return models.RenderedEntry{}, err
	}
	return s.render(entry), nil
}

// List returns every entry in display order, rendered.
func (s *Service) List() ([]models.RenderedEntry, error) {
	entries, err := s.store.ListEntries()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	rendered := make([]models.RenderedEntry, 0, len(entries))
	for _, e := range entries {
		rendered = append(rendered, s.render(e))
	}
	return rendered, nil
}

// Preview renders content without storing anything. format is taken as is,
// unknown values render as html.
func (s *Service) Preview(text, format string) content.Report {
	key := cacheKey(format, text)
	if report, err := s.reports.Get(key); err == nil {
		return report
	}

	report := s.renderer.Inspect(text, format)
	s.reports.Set(key, report)
	return report
}

func (s *Service) render(e models.Entry) models.RenderedEntry {
	report := s.Preview(e.Answer, string(e.Format))
	return models.RenderedEntry{
		Entry:        e,
		QuestionHTML: content.TextToHTML(e.Question),
		HTML:         report.HTML,
		Warnings:     report.Warnings,
		Modified:     report.Modified,
	}
}

func (s *Service) notify(msg models.ServerMessage) {
	if s.notifier == nil {
		return
	}
	s.notifier.Broadcast(msg)
}

// normalizeFormat maps any spelling ParseFormat accepts onto the canonical
// name. Unknown values are returned unchanged so validation rejects them.
func normalizeFormat(f content.Format) content.Format {
	if parsed, ok := content.ParseFormat(string(f)); ok {
		return parsed
	}
	return f
}

func cacheKey(format, text string) string {
	h := sha256.New()
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
