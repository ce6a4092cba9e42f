package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted appropriately based on request type (HTMX, JSON, or plain text)
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusFor(err))
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error is logged with request and session IDs for correlation
//  5. User message is rendered in the appropriate format for the client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/porelog/internal/core"
	"github.com/JonMunkholm/porelog/internal/logging"
	"github.com/JonMunkholm/porelog/internal/porelog"
	"github.com/JonMunkholm/porelog/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an error returned by the service.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, porelog.ErrInvalidJSON):
		return http.StatusUnprocessableEntity
	case errors.Is(err, porelog.ErrMissingFile), errors.Is(err, porelog.ErrReadFailed):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyLoads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := logError(r, err, statusCode)

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	default:
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", statusCode)
	}
}

// logError logs the technical error and returns its user-facing mapping.
// Client errors are logged at warn level. Server errors and errors without a
// user-facing mapping are logged at error level.
func logError(r *http.Request, err error, statusCode int) core.UserMessage {
	userErr := core.NewUserError(err)
	userMsg := userErr.User

	logging.FromContext(r.Context()).Log(r.Context(), errorLevel(err, statusCode), "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", userErr.Technical.Error(),
		"code", userMsg.Code,
	)
	return userMsg
}

func errorLevel(err error, statusCode int) slog.Level {
	switch {
	case !core.IsUserFacing(err):
		return slog.LevelError
	case statusCode >= http.StatusInternalServerError && statusCode != http.StatusServiceUnavailable:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPartial renders an HTML error fragment for the page script.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request came from the page script.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
