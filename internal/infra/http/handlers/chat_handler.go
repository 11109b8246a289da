package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

const vpnBanner = "VPN Active: Your connection is secure"

type ChatHandler struct {
	Store  *usecase.Store
	Logger *slog.Logger
}

func NewChatHandler(store *usecase.Store, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{Store: store, Logger: loggerOrDefault(logger)}
}

// ChatView is everything the chat screen renders.
type ChatView struct {
	VPNEnabled     bool         `json:"vpnEnabled"`
	Banner         string       `json:"banner,omitempty"`
	WebViewSession bool         `json:"webViewSession"`
	SelectedLead   *entity.Lead `json:"selectedLead"`
	ChatLink       string       `json:"chatLink,omitempty"`
}

type SelectLeadRequest struct {
	LeadID string `json:"leadId"`
}

func (h *ChatHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	settings := h.Store.Settings()
	view := ChatView{
		VPNEnabled:     settings.VPNEnabled,
		WebViewSession: settings.WebViewSession,
	}
	if settings.VPNEnabled {
		view.Banner = vpnBanner
	}
	if settings.SelectedLeadID != "" {
		if lead, ok := h.Store.GetLead(settings.SelectedLeadID); ok {
			view.SelectedLead = &lead
			view.ChatLink = usecase.ChatLink(lead.Phone)
		}
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleSelect serves PUT /chat/selection; an empty leadId clears the selection.
func (h *ChatHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectLeadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Store.SelectLead(r.Context(), req.LeadID); err != nil {
		writeStoreError(w, h.Logger, err)
		return
	}
	h.HandleGet(w, r)
}

func (h *ChatHandler) HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.OpenWebViewSession(r.Context()); err != nil {
		writeStoreError(w, h.Logger, err)
		return
	}
	h.HandleGet(w, r)
}

// HandleQRCode serves GET /leads/{id}/chat/qr?size= as a PNG of the lead's wa.me link.
func (h *ChatHandler) HandleQRCode(w http.ResponseWriter, r *http.Request) {
	lead, ok := h.Store.GetLead(chi.URLParam(r, "id"))
	if !ok {
		writeNotFound(w, "lead")
		return
	}

	link := usecase.ChatLink(lead.Phone)
	if link == "" {
		writeValidationError(w, entity.ValidationErrors{{Field: "phone", Message: "lead has no usable phone number"}})
		return
	}

	size := 256
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 1024 {
			writeValidationError(w, entity.ValidationErrors{{Field: "size", Message: "must be between 64 and 1024"}})
			return
		}
		size = n
	}

	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		h.Logger.Error("failed to render QR code", "lead", lead.ID, "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "QR_ERROR", "failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
