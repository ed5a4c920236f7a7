package api

import (
	"net/http"

	"accordion/internal/content"
	"accordion/internal/faq"
	"accordion/internal/models"
)

type faqService interface {
	Create(req faq.CreateEntryRequest) (models.Entry, error)
	Update(id string, req faq.UpdateEntryRequest) (models.Entry, error)
	Delete(id string) error
	Reorder(req faq.ReorderRequest) error
	Get(id string) (models.RenderedEntry, error)
	List() ([]models.RenderedEntry, error)
	Preview(text, format string) content.Report
}

type PreviewRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

func (a *API) ListHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := a.faq.List()
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, entries)
}

func (a *API) GetHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := a.faq.Get(r.PathValue("id"))
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, entry)
}

func (a *API) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req faq.CreateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := a.faq.Create(req)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, entry)
}

func (a *API) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req faq.UpdateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := a.faq.Update(r.PathValue("id"), req)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, entry)
}

func (a *API) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.faq.Delete(id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Message: "Entry " + id + " deleted"})
}

func (a *API) ReorderHandler(w http.ResponseWriter, r *http.Request) {
	var req faq.ReorderRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := a.faq.Reorder(req); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, models.APIResponse{Success: true})
}

// PreviewHandler renders content without storing it.
func (a *API) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a.writeJSON(w, http.StatusOK, a.faq.Preview(req.Content, req.Format))
}
