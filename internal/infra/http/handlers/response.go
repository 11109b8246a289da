package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

type ErrorResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Fields  entity.ValidationErrors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func writeValidationError(w http.ResponseWriter, errs entity.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: errs.Error(),
		Fields:  errs,
	})
}

func writeNotFound(w http.ResponseWriter, what string) {
	writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", what+" not found")
}

// writeStoreError maps an error returned by the store to a response.
func writeStoreError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if errs := entity.AsValidationErrors(err); errs != nil {
		writeValidationError(w, errs)
		return
	}
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if errors.Is(err, usecase.ErrStaleMirror) {
		writeErrorResponse(w, http.StatusConflict, "STORE_CONFLICT", "data was changed by another process and has been reloaded; retry the request")
		return
	}
	if errors.Is(err, usecase.ErrStoreClosed) {
		writeErrorResponse(w, http.StatusServiceUnavailable, "STORE_ERROR", "store is shutting down")
		return
	}

	logger.Error("store operation failed", "error", err)
	writeErrorResponse(w, http.StatusInternalServerError, "STORE_ERROR", "failed to save changes")
}

// NotPersistedWarning is sent in the Warning header of a 201 whose record
// exists in memory but could not be saved. The client must not retry.
const NotPersistedWarning = `199 leadbridge "created but not saved to storage; do not retry"`

func warnIfNotPersisted(w http.ResponseWriter, logger *slog.Logger, err error) {
	if err == nil {
		return
	}
	logger.Error("created record not persisted", "error", err)
	w.Header().Set("Warning", NotPersistedWarning)
}

// decodeJSON writes the INVALID_JSON response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
