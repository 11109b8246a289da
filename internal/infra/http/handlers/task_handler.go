package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

type TaskHandler struct {
	Store  *usecase.Store
	Now    func() time.Time
	Logger *slog.Logger
}

func NewTaskHandler(store *usecase.Store, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{Store: store, Now: time.Now, Logger: loggerOrDefault(logger)}
}

// TaskView is a task as listed on the tasks screen.
type TaskView struct {
	entity.Task
	LeadName   string `json:"leadName"`
	Overdue    bool   `json:"overdue"`
	DueDisplay string `json:"dueDisplay"`
}

// HandleList serves GET /tasks?completed=true|false: incomplete first, then by due date.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var completed *bool
	if raw := r.URL.Query().Get("completed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeValidationError(w, entity.ValidationErrors{{Field: "completed", Message: "must be true or false"}})
			return
		}
		completed = &v
	}

	tasks := usecase.SortTasks(usecase.FilterTasks(h.Store.Tasks(), completed))
	now := h.Now()

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		view := TaskView{
			Task:       t,
			Overdue:    t.IsOverdue(now),
			DueDisplay: entity.FormatDisplayDateTime(t.DueDate),
		}
		if lead, ok := h.Store.GetLead(t.LeadID); ok {
			view.LeadName = lead.Name
		} else {
			view.LeadName = "Unknown Lead"
		}
		views = append(views, view)
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddTaskInput
	if !decodeJSON(w, r, &input) {
		return
	}

	task, err := h.Store.AddTask(r.Context(), input)
	if err != nil && !usecase.NotPersisted(err) {
		writeStoreError(w, h.Logger, err)
		return
	}
	warnIfNotPersisted(w, h.Logger, err)

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch entity.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	task, found, err := h.Store.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, h.Logger, err)
		return
	}
	if !found {
		writeNotFound(w, "task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	task, found, err := h.Store.ToggleTaskCompletion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.Logger, err)
		return
	}
	if !found {
		writeNotFound(w, "task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}
