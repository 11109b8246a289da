package handlers

import (
	"log/slog"
	"net/http"

	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

// AppInfo is shown on the settings screen.
type AppInfo struct {
	Version     string `json:"version"`
	BuildNumber string `json:"buildNumber"`
	Developer   string `json:"developer"`
}

var DefaultAppInfo = AppInfo{
	Version:     "1.0.0",
	BuildNumber: "202309001",
	Developer:   "LeadBridge Team",
}

type SettingsResponse struct {
	entity.Settings
	App AppInfo `json:"app"`
}

type SettingsHandler struct {
	Store  *usecase.Store
	Info   AppInfo
	Logger *slog.Logger
}

func NewSettingsHandler(store *usecase.Store, info AppInfo, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{Store: store, Info: info, Logger: loggerOrDefault(logger)}
}

func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SettingsResponse{Settings: h.Store.Settings(), App: h.Info})
}

func (h *SettingsHandler) HandleToggleVPN(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Store.ToggleVPN(r.Context()); err != nil {
		writeStoreError(w, h.Logger, err)
		return
	}
	h.HandleGet(w, r)
}

func (h *SettingsHandler) HandleClearSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.ClearWebViewSession(r.Context()); err != nil {
		writeStoreError(w, h.Logger, err)
		return
	}
	h.HandleGet(w, r)
}
