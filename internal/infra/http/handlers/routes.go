package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/xavierca1/leadbridge/internal/usecase"
)

// API groups the handlers mounted under /api.
type API struct {
	Leads    *LeadHandler
	Meetings *MeetingHandler
	Tasks    *TaskHandler
	Settings *SettingsHandler
	Chat     *ChatHandler
}

func NewAPI(store *usecase.Store, lang language.Tag, logger *slog.Logger) *API {
	return &API{
		Leads:    NewLeadHandler(store, lang, logger),
		Meetings: NewMeetingHandler(store, logger),
		Tasks:    NewTaskHandler(store, logger),
		Settings: NewSettingsHandler(store, DefaultAppInfo, logger),
		Chat:     NewChatHandler(store, logger),
	}
}

// Routes returns the /api router. Middlewares are applied by the caller.
func (a *API) Routes(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares...)

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", a.Leads.HandleList)
		r.Post("/", a.Leads.HandleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.Leads.HandleGet)
			r.Patch("/", a.Leads.HandleUpdate)
			r.Get("/tasks", a.Leads.HandleTasks)
			r.Get("/meetings", a.Meetings.HandleList)
			r.Post("/meetings", a.Meetings.HandleCreate)
			r.Get("/chat/qr", a.Chat.HandleQRCode)
		})
	})

	r.Patch("/meetings/{id}", a.Meetings.HandleUpdate)
	r.Delete("/meetings/{id}", a.Meetings.HandleDelete)

	r.Get("/tasks", a.Tasks.HandleList)
	r.Post("/tasks", a.Tasks.HandleCreate)
	r.Patch("/tasks/{id}", a.Tasks.HandleUpdate)
	r.Post("/tasks/{id}/toggle", a.Tasks.HandleToggle)

	r.Get("/settings", a.Settings.HandleGet)
	r.Post("/settings/vpn/toggle", a.Settings.HandleToggleVPN)
	r.Post("/settings/session/clear", a.Settings.HandleClearSession)

	r.Get("/chat", a.Chat.HandleGet)
	r.Put("/chat/selection", a.Chat.HandleSelect)
	r.Post("/chat/session", a.Chat.HandleOpenSession)

	return r
}
