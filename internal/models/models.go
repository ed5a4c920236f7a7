package models

import (
	"errors"

	"accordion/internal/content"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidOrder = errors.New("order must list every entry exactly once")
)

// Entry is a single FAQ item as authored.
type Entry struct {
	ID        string         `json:"id"`
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	Format    content.Format `json:"format"`
	Position  int            `json:"position"`
	CreatedAt int64          `json:"createdAt"` // Unix timestamp (seconds)
	UpdatedAt int64          `json:"updatedAt"` // Unix timestamp (seconds)
}

// RenderedEntry is an Entry ready for display. HTML is sanitized and may be
// injected into a page as is.
type RenderedEntry struct {
	Entry
	QuestionHTML string   `json:"questionHtml"`
	HTML         string   `json:"html"`
	Warnings     []string `json:"warnings"`
	Modified     bool     `json:"modified"`
}

// APIResponse is the generic envelope for write endpoints and errors.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// UploadResponse describes a stored image that answers can reference.
type UploadResponse struct {
	APIResponse
	ID       string `json:"id,omitempty"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type ClientMessageType string

const (
	ClientMessageTypePreview ClientMessageType = "preview"
)

// ClientMessage is sent by an authoring client over the live socket.
type ClientMessage struct {
	Type      ClientMessageType `json:"type"`
	RequestID string            `json:"requestId,omitempty"`
	Content   string            `json:"content"`
	Format    string            `json:"format"`
}

type ServerMessageType string

const (
	ServerMessageTypePreview      ServerMessageType = "preview"
	ServerMessageTypeEntryCreated ServerMessageType = "entryCreated"
	ServerMessageTypeEntryUpdated ServerMessageType = "entryUpdated"
	ServerMessageTypeEntryDeleted ServerMessageType = "entryDeleted"
	ServerMessageTypeReordered    ServerMessageType = "reordered"
	ServerMessageTypeError        ServerMessageType = "error"
)

// ServerMessage is pushed to connected authoring clients.
type ServerMessage struct {
	Type      ServerMessageType `json:"type"`
	RequestID string            `json:"requestId,omitempty"`
	Report    *content.Report   `json:"report,omitempty"`
	Entry     *Entry            `json:"entry,omitempty"`
	EntryID   string            `json:"entryId,omitempty"`
	Order     []string          `json:"order,omitempty"`
	Message   string            `json:"message,omitempty"`
}
