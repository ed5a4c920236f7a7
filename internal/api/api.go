package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"accordion/internal/filestore"
	"accordion/internal/models"
	"accordion/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const DefaultMaxUploadSize = 5 << 20

type fileMetaStore interface {
	UpsertFileMetadata(meta storage.FileMetadata) error
	GetFileMetadata(id string) (storage.FileMetadata, error)
}

type Config struct {
	BaseURL       string
	MaxUploadSize int64
}

type API struct {
	faq       faqService
	files     filestore.FileStore
	meta      fileMetaStore
	baseURL   string
	maxUpload int64
	logger    *slog.Logger
}

func New(faq faqService, files filestore.FileStore, meta fileMetaStore, cfg Config, logger *slog.Logger) *API {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		faq:       faq,
		files:     files,
		meta:      meta,
		baseURL:   cfg.BaseURL,
		maxUpload: cfg.MaxUploadSize,
		logger:    logger,
	}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("failed to encode response", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, models.APIResponse{Success: false, Message: message})
}

// writeServiceError maps a service error onto a status code. Unexpected
// errors are logged and reported without detail.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		a.writeError(w, http.StatusBadRequest, verrs.Error())
	case errors.Is(err, models.ErrNotFound):
		a.writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, models.ErrInvalidOrder):
		a.writeError(w, http.StatusBadRequest, models.ErrInvalidOrder.Error())
	default:
		a.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
