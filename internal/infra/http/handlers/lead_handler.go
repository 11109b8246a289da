package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

type LeadHandler struct {
	Store    *usecase.Store
	Language language.Tag
	Logger   *slog.Logger
}

func NewLeadHandler(store *usecase.Store, lang language.Tag, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{Store: store, Language: lang, Logger: loggerOrDefault(logger)}
}

// HandleList serves GET /leads?q=&tag=&status=&sort=name|dateAdded&order=asc|desc.
func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := usecase.LeadFilter{
		Search: q.Get("q"),
		Tag:    entity.LeadTag(q.Get("tag")),
		Status: entity.LeadStatus(q.Get("status")),
	}

	var errs entity.ValidationErrors
	if filter.Tag != "" && !filter.Tag.IsValid() {
		errs = append(errs, entity.ValidationError{Field: "tag", Message: "must be one of hot, new, cold"})
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		errs = append(errs, entity.ValidationError{Field: "status", Message: "must be one of contacted, qualified, negotiation, closed, lost"})
	}
	sortField := usecase.LeadSortField(q.Get("sort"))
	if sortField != "" && !sortField.IsValid() {
		errs = append(errs, entity.ValidationError{Field: "sort", Message: "must be name or dateAdded"})
	}
	order := q.Get("order")
	if order != "" && order != "asc" && order != "desc" {
		errs = append(errs, entity.ValidationError{Field: "order", Message: "must be asc or desc"})
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	leads := usecase.FilterLeads(h.Store.Leads(), filter)
	if sortField != "" {
		leads = usecase.SortLeads(leads, sortField, order != "desc", h.Language)
	}

	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Store.AddLead(r.Context(), input)
	if err != nil && !usecase.NotPersisted(err) {
		writeStoreError(w, h.Logger, err)
		return
	}
	warnIfNotPersisted(w, h.Logger, err)

	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	lead, ok := h.Store.GetLead(chi.URLParam(r, "id"))
	if !ok {
		writeNotFound(w, "lead")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch entity.LeadPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	lead, found, err := h.Store.UpdateLead(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, h.Logger, err)
		return
	}
	if !found {
		writeNotFound(w, "lead")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// HandleTasks serves GET /leads/{id}/tasks in insertion order.
func (h *LeadHandler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.Store.GetLead(id); !ok {
		writeNotFound(w, "lead")
		return
	}
	writeJSON(w, http.StatusOK, h.Store.GetLeadTasks(id))
}
