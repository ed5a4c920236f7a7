package api

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"accordion/internal/models"
	"accordion/internal/storage"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// filetype needs at most this many bytes to recognise a format.
const sniffLen = 261

func (a *API) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload)
	if err := r.ParseMultipartForm(a.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File is larger than %d bytes", a.maxUpload))
			return
		}
		a.writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		a.writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	head = head[:n]

	if !filetype.IsImage(head) {
		a.writeError(w, http.StatusUnsupportedMediaType, "Only image uploads are allowed")
		return
	}
	kind, err := filetype.Match(head)
	if err != nil {
		a.writeError(w, http.StatusUnsupportedMediaType, "Unrecognised image type")
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		a.writeServiceError(w, r, fmt.Errorf("failed to rewind upload: %w", err))
		return
	}

	hash, size, err := a.files.Save(file)
	if err != nil {
		a.writeServiceError(w, r, fmt.Errorf("failed to store upload: %w", err))
		return
	}

	meta := storage.FileMetadata{
		ID:        uuid.NewString(),
		Hash:      hash,
		MimeType:  kind.MIME.Value,
		Size:      size,
		CreatedAt: time.Now().Unix(),
	}
	if err := a.meta.UpsertFileMetadata(meta); err != nil {
		a.writeServiceError(w, r, fmt.Errorf("failed to save file metadata: %w", err))
		return
	}

	a.logger.Info("image uploaded", "id", meta.ID, "mime", meta.MimeType, "size", meta.Size)
	a.writeJSON(w, http.StatusCreated, models.UploadResponse{
		APIResponse: models.APIResponse{Success: true},
		ID:          meta.ID,
		URL:         strings.TrimRight(a.baseURL, "/") + "/api/images/" + meta.ID,
		MimeType:    meta.MimeType,
	})
}

func (a *API) GetImageHandler(w http.ResponseWriter, r *http.Request) {
	meta, err := a.meta.GetFileMetadata(r.PathValue("id"))
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	rc, err := a.files.Get(meta.Hash)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.writeError(w, http.StatusNotFound, "Not found")
			return
		}
		a.writeServiceError(w, r, err)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", meta.MimeType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, rc); err != nil {
		a.logger.Warn("failed to stream image", "id", meta.ID, "error", err)
	}
}
