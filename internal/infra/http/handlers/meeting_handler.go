package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

type MeetingHandler struct {
	Store  *usecase.Store
	Logger *slog.Logger
}

func NewMeetingHandler(store *usecase.Store, logger *slog.Logger) *MeetingHandler {
	return &MeetingHandler{Store: store, Logger: loggerOrDefault(logger)}
}

// CreateMeetingRequest omits status to start the meeting in the status named after its type.
type CreateMeetingRequest struct {
	Type   entity.MeetingType    `json:"type"`
	Status *entity.MeetingStatus `json:"status,omitempty"`
	Date   *string               `json:"date"`
}

// HandleList serves GET /leads/{id}/meetings?type=&status=, ordered by type priority.
func (h *MeetingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.Store.GetLead(id); !ok {
		writeNotFound(w, "lead")
		return
	}

	q := r.URL.Query()
	filter := usecase.MeetingFilter{
		Type:   entity.MeetingType(q.Get("type")),
		Status: entity.MeetingStatus(q.Get("status")),
	}
	meetings := usecase.SortMeetings(usecase.FilterMeetings(h.Store.GetMeetingsByLead(id), filter))

	writeJSON(w, http.StatusOK, meetings)
}

func (h *MeetingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateMeetingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status := entity.DefaultStatus(req.Type)
	if req.Status != nil {
		status = *req.Status
	}
	if errs := usecase.ValidateMeetingInput(req.Type, status); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	meeting, added, err := h.Store.AddMeeting(r.Context(), usecase.AddMeetingInput{
		Type:   req.Type,
		Status: status,
		Date:   req.Date,
		LeadID: chi.URLParam(r, "id"),
	})
	if err != nil && !usecase.NotPersisted(err) {
		writeStoreError(w, h.Logger, err)
		return
	}
	if !added {
		writeNotFound(w, "lead")
		return
	}
	warnIfNotPersisted(w, h.Logger, err)

	writeJSON(w, http.StatusCreated, meeting)
}

// HandleUpdate rejects a patch whose resulting type/status pair is not allowed.
// The pair is checked inside the store update, against the current meeting.
func (h *MeetingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch entity.MeetingPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	meeting, found, err := h.Store.UpdateMeeting(r.Context(), chi.URLParam(r, "id"), patch, func(next entity.Meeting) error {
		if patch.Type == nil && patch.Status == nil {
			return nil
		}
		if errs := usecase.ValidateMeetingInput(next.Type, next.Status); len(errs) > 0 {
			return errs
		}
		return nil
	})
	if err != nil {
		writeStoreError(w, h.Logger, err)
		return
	}
	if !found {
		writeNotFound(w, "meeting")
		return
	}

	writeJSON(w, http.StatusOK, meeting)
}

func (h *MeetingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Store.DeleteMeeting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.Logger, err)
		return
	}
	if !deleted {
		writeNotFound(w, "meeting")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
